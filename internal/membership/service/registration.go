package service

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/ziberlive/colive/internal/membership/domain"
	"github.com/ziberlive/colive/internal/membership/store"
	"github.com/ziberlive/colive/pkg/cryptox"
	"github.com/ziberlive/colive/pkg/idx"
	"github.com/ziberlive/colive/pkg/invitecode"
	"github.com/ziberlive/colive/pkg/slogx"
)

var (
	ErrEmailTaken          = errors.New("email already registered")
	ErrIdentityCreation    = errors.New("failed to create identity")
	ErrApplicationCreation = errors.New("failed to create membership application")
	ErrMemberNotFound      = errors.New("member not found")
	ErrInviteAlreadyBound  = errors.New("application already belongs to a community")
)

type RegistrationService struct {
	Store  store.Store
	Hasher *cryptox.Hasher
	Now    func() time.Time
}

func (s *RegistrationService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// ValidateStage checks the fields of one stage without persisting anything.
// The account stage additionally reports an email that is already in use.
func (s *RegistrationService) ValidateStage(ctx context.Context, draft domain.RegistrationDraft, stage domain.RegistrationStage) (domain.FieldErrors, error) {
	errs := draft.ValidateStage(stage)
	if stage != domain.StageAccount || errs["email"] != "" {
		return errs, nil
	}

	_, err := s.Store.Users().GetUserByEmail(ctx, normalizeEmail(draft.Email))
	switch {
	case err == nil:
		errs.Add("email", "email is already registered")
	case !errors.Is(err, store.ErrNotFound):
		return nil, err
	}
	return errs, nil
}

// Register submits a completed draft. Identity, membership and the invite
// use are written in one transaction, so any failure leaves no trace.
func (s *RegistrationService) Register(ctx context.Context, draft domain.RegistrationDraft) (domain.Member, error) {
	log := slogx.FromContext(ctx)
	now := s.now()

	// 1. Validate every stage.
	if err := draft.Validate().Err(); err != nil {
		return domain.Member{}, err
	}

	// 2. Hash the password before entering the transaction.
	hash, err := s.Hasher.Hash(draft.Password)
	if err != nil {
		log.Error("failed to hash password", slog.Any("error", err))
		return domain.Member{}, errors.Join(ErrIdentityCreation, err)
	}

	user := domain.User{
		ID:           idx.New().String(),
		Email:        normalizeEmail(draft.Email),
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	member := domain.Member{
		ID:               idx.New().String(),
		UserID:           user.ID,
		Name:             strings.TrimSpace(draft.Name),
		Email:            user.Email,
		Phone:            strings.TrimSpace(draft.Phone),
		Documents:        draft.Documents,
		EmergencyContact: draft.EmergencyContact,
		OptIns:           draft.OptIns,
		Status:           domain.StatusPending,
		Role:             domain.RoleMember,
		RequestedAt:      now,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		// 3. Create the identity.
		if err := tx.Users().CreateUser(ctx, user); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrEmailTaken
			}
			log.Error("failed to create user", slog.Any("error", err))
			return errors.Join(ErrIdentityCreation, err)
		}

		// 4. Re-validate the invite against the state inside the transaction.
		var inv domain.Invite
		if draft.InviteMethod != domain.InviteDeferred {
			res, err := resolveInvite(ctx, tx, draft.InviteCode(), now)
			if err != nil {
				log.Info("invite rejected at join",
					slog.String("code", draft.InviteCode()),
					slog.Any("error", err),
				)
				return err
			}
			inv = res.Invite
			member.CommunityID = inv.CommunityID
			member.LocationID = inv.LocationID
			member.InviteCode = inv.Code
			member.InviteConsumed = true
		}

		// 5. Create the pending application.
		if err := tx.Members().CreateMember(ctx, member); err != nil {
			log.Error("failed to create member", slog.Any("error", err))
			return errors.Join(ErrApplicationCreation, err)
		}

		// 6. Count the invite use. Losing the race for the last use aborts.
		if inv.ID != "" {
			if err := tx.Invites().ConsumeInvite(ctx, inv.ID, now); err != nil {
				if errors.Is(err, store.ErrConflict) {
					return ErrInviteExhausted
				}
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.Member{}, contended(err)
	}

	log.Info("membership application submitted",
		slog.String("member_id", member.ID),
		slog.String("community_id", member.CommunityID),
		slog.String("invite_method", string(draft.InviteMethod)),
	)
	return member, nil
}

// ClaimInvite binds a deferred application to the community of an invite.
// The use is counted when the application is approved.
func (s *RegistrationService) ClaimInvite(ctx context.Context, userID, code string) (domain.Member, error) {
	log := slogx.FromContext(ctx)
	now := s.now()
	code = invitecode.Normalize(invitecode.FromScan(code))

	var member domain.Member
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		m, err := tx.Members().GetMemberByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrMemberNotFound
			}
			return err
		}
		if m.Status != domain.StatusPending || m.CommunityID != "" {
			return ErrInviteAlreadyBound
		}

		res, err := resolveInvite(ctx, tx, code, now)
		if err != nil {
			return err
		}
		if err := tx.Members().AttachInvite(ctx, m.ID, res.Invite, now); err != nil {
			if errors.Is(err, store.ErrConflict) {
				return ErrInviteAlreadyBound
			}
			return err
		}

		m.CommunityID = res.Invite.CommunityID
		m.LocationID = res.Invite.LocationID
		m.InviteCode = res.Invite.Code
		m.InviteConsumed = false
		m.UpdatedAt = now
		member = m
		return nil
	})
	if err != nil {
		return domain.Member{}, contended(err)
	}

	log.Info("deferred application claimed invite",
		slog.String("member_id", member.ID),
		slog.String("community_id", member.CommunityID),
	)
	return member, nil
}

// normalizeEmail reduces "Name <addr>" forms to the bare, lower-cased address.
func normalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	if addr, err := mail.ParseAddress(email); err == nil {
		email = addr.Address
	}
	return strings.ToLower(email)
}

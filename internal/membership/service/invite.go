package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/ziberlive/colive/internal/membership/domain"
	"github.com/ziberlive/colive/internal/membership/store"
	"github.com/ziberlive/colive/pkg/idx"
	"github.com/ziberlive/colive/pkg/invitecode"
	"github.com/ziberlive/colive/pkg/slogx"
)

var (
	ErrInviteNotFound  = errors.New("invite not found")
	ErrInviteDisabled  = errors.New("invite is disabled")
	ErrInviteExpired   = errors.New("invite has expired")
	ErrInviteExhausted = errors.New("invite has no uses left")

	ErrInvalidInviteRequest = errors.New("invalid invite request")
	ErrCommunityNotFound    = errors.New("community not found")
	ErrInviteCodeTaken      = errors.New("invite code already in use")
)

// maxCodeAttempts bounds how often CreateInvite redraws a colliding code.
const maxCodeAttempts = 5

// InviteRejectionError maps a domain rejection onto its sentinel error.
func InviteRejectionError(r domain.InviteRejection) error {
	switch r {
	case domain.InviteNotFound:
		return ErrInviteNotFound
	case domain.InviteDisabled:
		return ErrInviteDisabled
	case domain.InviteExpired:
		return ErrInviteExpired
	case domain.InviteExhausted:
		return ErrInviteExhausted
	}
	return nil
}

// InviteRejectionReason is the inverse of InviteRejectionError, used by the
// transport to report a machine readable reason.
func InviteRejectionReason(err error) (domain.InviteRejection, bool) {
	switch {
	case errors.Is(err, ErrInviteNotFound):
		return domain.InviteNotFound, true
	case errors.Is(err, ErrInviteDisabled):
		return domain.InviteDisabled, true
	case errors.Is(err, ErrInviteExpired):
		return domain.InviteExpired, true
	case errors.Is(err, ErrInviteExhausted):
		return domain.InviteExhausted, true
	}
	return "", false
}

// InviteResolution is what a usable invite tells an applicant before they
// commit to joining.
type InviteResolution struct {
	Invite        domain.Invite
	Community     domain.Community
	ActiveMembers int
	Location      *domain.Location // pre-assigned location, nil when none
}

// CreateInviteRequest describes a new invite. Code may carry a previously
// drawn code; empty means draw one.
type CreateInviteRequest struct {
	CommunityID string
	CreatedBy   string
	Code        string
	Type        domain.InviteType
	MaxUses     int
	ExpiresAt   *time.Time
	NeverExpire bool
	LocationID  string
}

type InviteService struct {
	Store      store.Store
	Codes      *invitecode.Generator
	DefaultTTL time.Duration
	BaseURL    string // public base of join links
	Now        func() time.Time
}

func (s *InviteService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// GenerateCode draws a fresh candidate code. Nothing is persisted, so an
// administrator can call it repeatedly until they keep one.
func (s *InviteService) GenerateCode() string {
	return s.codes().Generate()
}

func (s *InviteService) codes() *invitecode.Generator {
	if s.Codes == nil {
		return invitecode.NewGenerator()
	}
	return s.Codes
}

// JoinURL is the deep link encoded in an invite's QR code.
func (s *InviteService) JoinURL(code string) string {
	return invitecode.JoinURL(s.BaseURL, code)
}

// CreateInvite persists a new invite for a community.
func (s *InviteService) CreateInvite(ctx context.Context, req CreateInviteRequest) (domain.Invite, error) {
	log := slogx.FromContext(ctx)
	now := s.now()

	// 1. Resolve the use limit from the invite type.
	if req.Type == "" {
		req.Type = domain.InviteGeneral
	}
	maxUses, err := domain.MaxUsesFor(req.Type, req.MaxUses)
	if err != nil {
		log.Warn("rejected invite request", slog.Any("error", err))
		return domain.Invite{}, errors.Join(ErrInvalidInviteRequest, err)
	}

	// 2. Resolve the expiry. Explicit dates must lie in the future.
	var expiresAt *time.Time
	switch {
	case req.NeverExpire:
	case req.ExpiresAt != nil:
		if !req.ExpiresAt.After(now) {
			return domain.Invite{}, ErrInvalidInviteRequest
		}
		t := req.ExpiresAt.UTC()
		expiresAt = &t
	case s.DefaultTTL > 0:
		t := now.Add(s.DefaultTTL)
		expiresAt = &t
	}

	// 3. Check the community and the optional pre-assigned location.
	if _, err := s.Store.Communities().GetCommunity(ctx, req.CommunityID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Invite{}, ErrCommunityNotFound
		}
		return domain.Invite{}, err
	}
	if req.LocationID != "" {
		loc, err := s.Store.Locations().GetLocation(ctx, req.LocationID)
		if err != nil || loc.CommunityID != req.CommunityID || loc.Type != domain.LocationBed {
			if err != nil && !errors.Is(err, store.ErrNotFound) {
				return domain.Invite{}, err
			}
			return domain.Invite{}, ErrLocationUnavailable
		}
	}

	// 4. Persist, redrawing the code on collision unless the caller chose it.
	code := invitecode.Normalize(req.Code)
	chosen := code != ""
	if chosen && !invitecode.Valid(code) {
		return domain.Invite{}, ErrInvalidInviteRequest
	}

	for attempt := 1; ; attempt++ {
		if !chosen {
			code = s.codes().Generate()
		}
		inv := domain.Invite{
			ID:          idx.New().String(),
			Code:        code,
			Type:        req.Type,
			MaxUses:     maxUses,
			ExpiresAt:   expiresAt,
			Active:      true,
			CommunityID: req.CommunityID,
			LocationID:  req.LocationID,
			CreatedBy:   req.CreatedBy,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		err := s.Store.Invites().CreateInvite(ctx, inv)
		if err == nil {
			log.Info("invite created",
				slog.String("invite_id", inv.ID),
				slog.String("community_id", inv.CommunityID),
				slog.String("type", string(inv.Type)),
			)
			return inv, nil
		}
		if !errors.Is(err, store.ErrAlreadyExists) {
			log.Error("failed to create invite", slog.Any("error", err))
			return domain.Invite{}, err
		}
		if chosen || attempt >= maxCodeAttempts {
			log.Warn("invite code collision", slog.String("code", code), slog.Int("attempt", attempt))
			return domain.Invite{}, ErrInviteCodeTaken
		}
	}
}

// ListInvites returns the invites of a community with their totals.
func (s *InviteService) ListInvites(ctx context.Context, communityID string) ([]domain.Invite, domain.InviteStats, error) {
	invites, err := s.Store.Invites().ListInvites(ctx, communityID)
	if err != nil {
		return nil, domain.InviteStats{}, err
	}
	return invites, domain.SummariseInvites(invites), nil
}

// SetActive enables or disables an invite of communityID.
func (s *InviteService) SetActive(ctx context.Context, communityID, inviteID string, active bool) (domain.Invite, error) {
	inv, err := s.Store.Invites().GetInviteByID(ctx, inviteID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Invite{}, ErrInviteNotFound
		}
		return domain.Invite{}, err
	}
	if inv.CommunityID != communityID {
		return domain.Invite{}, ErrInviteNotFound
	}

	now := s.now()
	if err := s.Store.Invites().SetInviteActive(ctx, inviteID, active, now); err != nil {
		return domain.Invite{}, err
	}
	inv.Active = active
	inv.UpdatedAt = now

	slogx.FromContext(ctx).Info("invite toggled",
		slog.String("invite_id", inviteID),
		slog.Bool("active", active),
	)
	return inv, nil
}

// Validate resolves a typed code. It never mutates state, so calling it any
// number of times leaves the use count untouched.
func (s *InviteService) Validate(ctx context.Context, code string) (InviteResolution, error) {
	return resolveInvite(ctx, s.Store, invitecode.Normalize(code), s.now())
}

// ResolveScan extracts the code from a scanned QR payload and validates it.
func (s *InviteService) ResolveScan(ctx context.Context, payload string) (InviteResolution, error) {
	return s.Validate(ctx, invitecode.FromScan(payload))
}

// resolveInvite runs the validator against st, which may be a transaction.
// Checks run in order: not found, disabled, expired, exhausted.
func resolveInvite(ctx context.Context, st store.Store, code string, now time.Time) (InviteResolution, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return InviteResolution{}, ErrInviteNotFound
	}

	inv, err := st.Invites().GetInviteByCode(ctx, code)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return InviteResolution{}, ErrInviteNotFound
		}
		return InviteResolution{}, err
	}
	if rejection := inv.Check(now); rejection != domain.InviteUsable {
		return InviteResolution{}, InviteRejectionError(rejection)
	}

	community, err := st.Communities().GetCommunity(ctx, inv.CommunityID)
	if err != nil {
		return InviteResolution{}, err
	}
	active, err := st.Members().CountActiveMembers(ctx, inv.CommunityID)
	if err != nil {
		return InviteResolution{}, err
	}

	res := InviteResolution{Invite: inv, Community: community, ActiveMembers: active}
	if inv.LocationID != "" {
		loc, err := st.Locations().GetLocation(ctx, inv.LocationID)
		switch {
		case err == nil:
			res.Location = &loc
		case !errors.Is(err, store.ErrNotFound):
			return InviteResolution{}, err
		}
	}
	return res, nil
}

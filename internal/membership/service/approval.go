package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/ziberlive/colive/internal/membership/domain"
	"github.com/ziberlive/colive/internal/membership/store"
	"github.com/ziberlive/colive/pkg/slogx"
)

var (
	ErrNoAvailableLocation     = errors.New("no available location in community")
	ErrLocationUnavailable     = errors.New("location is not an unoccupied bed of the community")
	ErrLocationTaken           = errors.New("location was taken by another approval")
	ErrNotPending              = errors.New("application is not pending")
	ErrRejectionReasonRequired = errors.New("a rejection reason is required")
	ErrInvalidFilter           = errors.New("unknown application filter")

	ErrConcurrentUpdate = errors.New("record changed concurrently, retry the request")
)

// contended maps lock contention the store could not wait out onto
// ErrConcurrentUpdate. Guarded updates are mapped by their callers first.
func contended(err error) error {
	if errors.Is(err, store.ErrConflict) {
		return ErrConcurrentUpdate
	}
	return err
}

type ApprovalService struct {
	Store store.Store
	Now   func() time.Time
}

func (s *ApprovalService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// ListApplications returns the approval queue of a community narrowed by
// filter and a free-text query over name, email, phone and invite code.
func (s *ApprovalService) ListApplications(ctx context.Context, communityID string, filter domain.ApplicationFilter, query string) ([]domain.Member, error) {
	statuses, ok := filter.Statuses()
	if !ok {
		return nil, ErrInvalidFilter
	}

	q := store.MemberQuery{CommunityID: communityID, Search: strings.TrimSpace(query)}
	if len(statuses) == 1 {
		q.Status = statuses[0]
	}
	return s.Store.Members().ListMembers(ctx, q)
}

// AvailableLocations lists the beds an applicant of communityID could be
// assigned to.
func (s *ApprovalService) AvailableLocations(ctx context.Context, communityID string) ([]domain.Location, error) {
	return s.Store.Locations().ListAvailableBeds(ctx, communityID)
}

// Approve activates a pending application of communityID at locationID. An
// empty locationID falls back to the location pre-assigned by the invite.
func (s *ApprovalService) Approve(ctx context.Context, communityID, memberID, locationID string) (domain.Member, error) {
	log := slogx.FromContext(ctx)
	now := s.now()

	var approved domain.Member
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		// 1. The application must be pending in this community.
		m, err := tx.Members().GetMember(ctx, memberID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrMemberNotFound
			}
			return err
		}
		if m.CommunityID != communityID {
			return ErrMemberNotFound
		}
		if m.Status != domain.StatusPending {
			return ErrNotPending
		}

		// 2. Approval is blocked while the community has no free bed.
		beds, err := tx.Locations().ListAvailableBeds(ctx, communityID)
		if err != nil {
			return err
		}
		if len(beds) == 0 {
			return ErrNoAvailableLocation
		}

		// 3. The chosen location must be one of them.
		if locationID == "" {
			locationID = m.LocationID
		}
		loc, err := tx.Locations().GetLocation(ctx, locationID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrLocationUnavailable
			}
			return err
		}
		if !loc.AssignableTo(communityID) {
			return ErrLocationUnavailable
		}

		// 4. Occupy the location. A concurrent approval that got there
		// first turns this into a conflict.
		if err := tx.Locations().OccupyLocation(ctx, loc.ID, m.ID, now); err != nil {
			if errors.Is(err, store.ErrConflict) || errors.Is(err, store.ErrAlreadyExists) {
				return ErrLocationTaken
			}
			return err
		}

		// 5. Activate the membership. A concurrent reject leaves it no longer
		// pending.
		if err := tx.Members().ApproveMember(ctx, m.ID, loc.ID, now); err != nil {
			if errors.Is(err, store.ErrConflict) {
				return ErrNotPending
			}
			return err
		}

		// 6. Count the invite use of deferred applications.
		if m.InviteCode != "" && !m.InviteConsumed {
			if err := s.consumeInvite(ctx, tx, m, now); err != nil {
				return err
			}
			m.InviteConsumed = true
		}

		m.Status = domain.StatusActive
		m.LocationID = loc.ID
		m.ApprovedAt = &now
		m.UpdatedAt = now
		approved = m
		return nil
	})
	if errors.Is(err, store.ErrConflict) {
		// Another approval held the write lock past the busy timeout.
		err = ErrLocationTaken
	}
	if err != nil {
		log.Info("approval failed",
			slog.String("member_id", memberID),
			slog.String("location_id", locationID),
			slog.Any("error", err),
		)
		return domain.Member{}, err
	}

	log.Info("application approved",
		slog.String("member_id", approved.ID),
		slog.String("location_id", approved.LocationID),
	)
	return approved, nil
}

func (s *ApprovalService) consumeInvite(ctx context.Context, tx store.Tx, m domain.Member, now time.Time) error {
	inv, err := tx.Invites().GetInviteByCode(ctx, m.InviteCode)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInviteNotFound
		}
		return err
	}
	if err := tx.Invites().ConsumeInvite(ctx, inv.ID, now); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return ErrInviteExhausted
		}
		return err
	}
	return tx.Members().MarkInviteConsumed(ctx, m.ID, now)
}

// Reject closes a pending application with a reason. Locations and invites
// are left untouched.
func (s *ApprovalService) Reject(ctx context.Context, communityID, memberID, reason string) (domain.Member, error) {
	log := slogx.FromContext(ctx)
	now := s.now()

	reason = strings.TrimSpace(reason)
	if reason == "" {
		return domain.Member{}, ErrRejectionReasonRequired
	}

	m, err := s.Store.Members().GetMember(ctx, memberID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Member{}, ErrMemberNotFound
		}
		return domain.Member{}, err
	}
	if m.CommunityID != communityID {
		return domain.Member{}, ErrMemberNotFound
	}
	if m.Status != domain.StatusPending {
		return domain.Member{}, ErrNotPending
	}

	if err := s.Store.Members().RejectMember(ctx, memberID, reason, now); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return domain.Member{}, ErrNotPending
		}
		return domain.Member{}, err
	}

	m.Status = domain.StatusRejected
	m.RejectionReason = reason
	m.RejectedAt = &now
	m.UpdatedAt = now

	log.Info("application rejected", slog.String("member_id", m.ID))
	return m, nil
}

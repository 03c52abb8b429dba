package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ziberlive/colive/internal/membership/domain"
	"github.com/ziberlive/colive/internal/membership/store"
	"github.com/ziberlive/colive/pkg/slogx"
)

var (
	ErrInvalidRole         = errors.New("invalid role")
	ErrInvalidStatusChange = errors.New("status change not allowed")
)

type MemberService struct {
	Store store.Store
	Now   func() time.Time
}

func (s *MemberService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Directory lists the active members of a community, highest loyalty
// points first.
func (s *MemberService) Directory(ctx context.Context, communityID string) ([]domain.Member, error) {
	return s.Store.Members().ListDirectory(ctx, communityID)
}

// Me returns the membership record of a user.
func (s *MemberService) Me(ctx context.Context, userID string) (domain.Member, error) {
	m, err := s.Store.Members().GetMemberByUserID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Member{}, ErrMemberNotFound
	}
	return m, err
}

// Get returns a member of communityID.
func (s *MemberService) Get(ctx context.Context, communityID, memberID string) (domain.Member, error) {
	m, err := s.Store.Members().GetMember(ctx, memberID)
	if errors.Is(err, store.ErrNotFound) || (err == nil && m.CommunityID != communityID) {
		return domain.Member{}, ErrMemberNotFound
	}
	return m, err
}

// UpdateRole changes the role of a member.
func (s *MemberService) UpdateRole(ctx context.Context, communityID, memberID string, role domain.Role) (domain.Member, error) {
	if !role.Valid() {
		return domain.Member{}, ErrInvalidRole
	}
	m, err := s.Get(ctx, communityID, memberID)
	if err != nil {
		return domain.Member{}, err
	}

	now := s.now()
	if err := s.Store.Members().UpdateRole(ctx, m.ID, role, now); err != nil {
		return domain.Member{}, err
	}
	m.Role = role
	m.UpdatedAt = now

	slogx.FromContext(ctx).Info("member role updated",
		slog.String("member_id", m.ID),
		slog.String("role", string(role)),
	)
	return m, nil
}

// UpdateStatus moves a member between active, inactive, suspended and
// moved_out. Moving out frees the member's location.
func (s *MemberService) UpdateStatus(ctx context.Context, communityID, memberID string, to domain.MemberStatus) (domain.Member, error) {
	log := slogx.FromContext(ctx)
	now := s.now()

	var updated domain.Member
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
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
		if !domain.CanChangeStatus(m.Status, to) {
			return ErrInvalidStatusChange
		}

		if to == domain.StatusMovedOut && m.LocationID != "" {
			err := tx.Locations().VacateLocation(ctx, m.LocationID, m.ID, now)
			if err != nil && !errors.Is(err, store.ErrConflict) {
				return err
			}
			m.LocationID = ""
		}
		if err := tx.Members().UpdateStatus(ctx, m.ID, m.Status, to, now); err != nil {
			if errors.Is(err, store.ErrConflict) {
				return ErrInvalidStatusChange
			}
			return err
		}

		m.Status = to
		m.UpdatedAt = now
		updated = m
		return nil
	})
	if err != nil {
		return domain.Member{}, contended(err)
	}

	log.Info("member status updated",
		slog.String("member_id", updated.ID),
		slog.String("status", string(to)),
	)
	return updated, nil
}

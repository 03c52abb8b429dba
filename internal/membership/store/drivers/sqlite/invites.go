package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/ziberlive/colive/internal/membership/domain"
	"github.com/ziberlive/colive/internal/membership/store"
	"github.com/ziberlive/colive/internal/membership/store/drivers/sqlite/gen"
)

type invitesRepo struct {
	q *gen.Queries
}

func (r *invitesRepo) CreateInvite(ctx context.Context, inv domain.Invite) error {
	return mapWriteErr(r.q.CreateInvite(ctx, gen.CreateInviteParams{
		ID:          inv.ID,
		Code:        inv.Code,
		Type:        string(inv.Type),
		MaxUses:     mapOptionalInt(inv.MaxUses),
		CurrentUses: int64(inv.CurrentUses),
		ExpiresAt:   mapOptionalTime(inv.ExpiresAt),
		Active:      inv.Active,
		CommunityID: inv.CommunityID,
		LocationID:  mapStringNull(inv.LocationID),
		CreatedBy:   inv.CreatedBy,
		CreatedAt:   inv.CreatedAt.UTC(),
		UpdatedAt:   inv.UpdatedAt.UTC(),
	}))
}

func (r *invitesRepo) GetInviteByID(ctx context.Context, id string) (domain.Invite, error) {
	row, err := r.q.GetInviteByID(ctx, id)
	if err != nil {
		return domain.Invite{}, mapNotFound(err)
	}
	return mapInvite(row), nil
}

func (r *invitesRepo) GetInviteByCode(ctx context.Context, code string) (domain.Invite, error) {
	row, err := r.q.GetInviteByCode(ctx, code)
	if err != nil {
		return domain.Invite{}, mapNotFound(err)
	}
	return mapInvite(row), nil
}

func (r *invitesRepo) ListInvites(ctx context.Context, communityID string) ([]domain.Invite, error) {
	rows, err := r.q.ListInvites(ctx, communityID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Invite, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapInvite(row))
	}
	return out, nil
}

func (r *invitesRepo) SetInviteActive(ctx context.Context, id string, active bool, at time.Time) error {
	n, err := r.q.SetInviteActive(ctx, gen.SetInviteActiveParams{
		Active:    active,
		UpdatedAt: at.UTC(),
		ID:        id,
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *invitesRepo) ConsumeInvite(ctx context.Context, id string, at time.Time) error {
	return expectOne(r.q.ConsumeInvite(ctx, gen.ConsumeInviteParams{
		UpdatedAt: at.UTC(),
		ID:        id,
	}))
}

func (r *invitesRepo) ArchiveStaleInvites(ctx context.Context, cutoff, at time.Time) (int64, error) {
	return r.q.ArchiveStaleInvites(ctx, gen.ArchiveStaleInvitesParams{
		ArchivedAt: sql.NullTime{Time: at.UTC(), Valid: true},
		UpdatedAt:  at.UTC(),
		ExpiresAt:  sql.NullTime{Time: cutoff.UTC(), Valid: true},
	})
}

func mapInvite(row gen.Invite) domain.Invite {
	return domain.Invite{
		ID:          row.ID,
		Code:        row.Code,
		Type:        domain.InviteType(row.Type),
		MaxUses:     mapNullIntPtr(row.MaxUses),
		CurrentUses: int(row.CurrentUses),
		ExpiresAt:   mapNullTimePtr(row.ExpiresAt),
		Active:      row.Active,
		CommunityID: row.CommunityID,
		LocationID:  mapNullString(row.LocationID),
		CreatedBy:   row.CreatedBy,
		CreatedAt:   row.CreatedAt.UTC(),
		UpdatedAt:   row.UpdatedAt.UTC(),
	}
}

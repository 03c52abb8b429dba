package sqlite

import (
	"context"

	"github.com/ziberlive/colive/internal/membership/domain"
	"github.com/ziberlive/colive/internal/membership/store/drivers/sqlite/gen"
)

type communitiesRepo struct {
	q *gen.Queries
}

func (r *communitiesRepo) CreateCommunity(ctx context.Context, c domain.Community) error {
	return mapWriteErr(r.q.CreateCommunity(ctx, gen.CreateCommunityParams{
		ID:        c.ID,
		Name:      c.Name,
		Address:   c.Address,
		CreatedAt: c.CreatedAt.UTC(),
		UpdatedAt: c.UpdatedAt.UTC(),
	}))
}

func (r *communitiesRepo) GetCommunity(ctx context.Context, id string) (domain.Community, error) {
	row, err := r.q.GetCommunity(ctx, id)
	if err != nil {
		return domain.Community{}, mapNotFound(err)
	}
	return domain.Community{
		ID:        row.ID,
		Name:      row.Name,
		Address:   row.Address,
		CreatedAt: row.CreatedAt.UTC(),
		UpdatedAt: row.UpdatedAt.UTC(),
	}, nil
}

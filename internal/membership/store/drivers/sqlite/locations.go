package sqlite

import (
	"context"
	"time"

	"github.com/ziberlive/colive/internal/membership/domain"
	"github.com/ziberlive/colive/internal/membership/store/drivers/sqlite/gen"
)

type locationsRepo struct {
	q *gen.Queries
}

func (r *locationsRepo) CreateLocation(ctx context.Context, l domain.Location) error {
	return mapWriteErr(r.q.CreateLocation(ctx, gen.CreateLocationParams{
		ID:          l.ID,
		CommunityID: l.CommunityID,
		Name:        l.Name,
		Type:        string(l.Type),
		CreatedAt:   l.CreatedAt.UTC(),
		UpdatedAt:   l.UpdatedAt.UTC(),
	}))
}

func (r *locationsRepo) GetLocation(ctx context.Context, id string) (domain.Location, error) {
	row, err := r.q.GetLocation(ctx, id)
	if err != nil {
		return domain.Location{}, mapNotFound(err)
	}
	return mapLocation(row), nil
}

func (r *locationsRepo) ListLocations(ctx context.Context, communityID string) ([]domain.Location, error) {
	rows, err := r.q.ListLocations(ctx, communityID)
	if err != nil {
		return nil, err
	}
	return mapLocations(rows), nil
}

func (r *locationsRepo) ListAvailableBeds(ctx context.Context, communityID string) ([]domain.Location, error) {
	rows, err := r.q.ListAvailableBeds(ctx, communityID)
	if err != nil {
		return nil, err
	}
	return mapLocations(rows), nil
}

func (r *locationsRepo) OccupyLocation(ctx context.Context, locationID, memberID string, at time.Time) error {
	return expectOne(r.q.OccupyLocation(ctx, gen.OccupyLocationParams{
		OccupiedBy: mapStringNull(memberID),
		UpdatedAt:  at.UTC(),
		ID:         locationID,
	}))
}

func (r *locationsRepo) VacateLocation(ctx context.Context, locationID, memberID string, at time.Time) error {
	return expectOne(r.q.VacateLocation(ctx, gen.VacateLocationParams{
		UpdatedAt:  at.UTC(),
		ID:         locationID,
		OccupiedBy: mapStringNull(memberID),
	}))
}

func mapLocation(row gen.Location) domain.Location {
	return domain.Location{
		ID:          row.ID,
		CommunityID: row.CommunityID,
		Name:        row.Name,
		Type:        domain.LocationType(row.Type),
		OccupiedBy:  mapNullString(row.OccupiedBy),
		CreatedAt:   row.CreatedAt.UTC(),
		UpdatedAt:   row.UpdatedAt.UTC(),
	}
}

func mapLocations(rows []gen.Location) []domain.Location {
	out := make([]domain.Location, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapLocation(row))
	}
	return out
}

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
	"github.com/ziberlive/colive/pkg/slogx"
)

var (
	ErrInvalidLocation   = errors.New("invalid location")
	ErrLocationNameTaken = errors.New("location name already used in community")
)

type LocationService struct {
	Store store.Store
	Now   func() time.Time
}

// CreateLocation adds a bed or resource to a community.
func (s *LocationService) CreateLocation(ctx context.Context, communityID, name string, typ domain.LocationType) (domain.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" || !typ.Valid() {
		return domain.Location{}, ErrInvalidLocation
	}

	now := time.Now().UTC()
	if s.Now != nil {
		now = s.Now().UTC()
	}
	loc := domain.Location{
		ID:          idx.New().String(),
		CommunityID: communityID,
		Name:        name,
		Type:        typ,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.Store.Locations().CreateLocation(ctx, loc); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Location{}, ErrLocationNameTaken
		}
		slogx.FromContext(ctx).Error("failed to create location", slog.Any("error", err))
		return domain.Location{}, err
	}
	return loc, nil
}

// ListLocations returns every location of a community.
func (s *LocationService) ListLocations(ctx context.Context, communityID string) ([]domain.Location, error) {
	return s.Store.Locations().ListLocations(ctx, communityID)
}

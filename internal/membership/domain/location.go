package domain

import "time"

type LocationType string

const (
	LocationBed        LocationType = "bed"
	LocationCommonArea LocationType = "common-area"
	LocationEquipment  LocationType = "equipment"
	LocationParking    LocationType = "parking"
)

func (t LocationType) Valid() bool {
	switch t {
	case LocationBed, LocationCommonArea, LocationEquipment, LocationParking:
		return true
	}
	return false
}

// Location is an occupiable bed or a bookable resource of a community.
type Location struct {
	ID          string
	CommunityID string
	Name        string
	Type        LocationType
	OccupiedBy  string // member id, empty when free
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// AssignableTo reports whether the location can be handed to an applicant
// of communityID on approval.
func (l Location) AssignableTo(communityID string) bool {
	return l.Type == LocationBed && l.OccupiedBy == "" && l.CommunityID == communityID
}

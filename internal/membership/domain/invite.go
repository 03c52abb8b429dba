package domain

import (
	"fmt"
	"time"
)

type InviteType string

const (
	InviteGeneral   InviteType = "general"    // unlimited uses
	InviteSingleUse InviteType = "single_use" // exactly one use
	InviteLimited   InviteType = "limited"    // capped at MaxUses
)

// MaxUsesFor returns the use limit an invite of type t carries. limit is
// only read for InviteLimited.
func MaxUsesFor(t InviteType, limit int) (*int, error) {
	switch t {
	case InviteGeneral:
		return nil, nil
	case InviteSingleUse:
		one := 1
		return &one, nil
	case InviteLimited:
		if limit < 1 {
			return nil, fmt.Errorf("limited invite needs max uses >= 1, got %d", limit)
		}
		return &limit, nil
	default:
		return nil, fmt.Errorf("unknown invite type %q", t)
	}
}

// InviteRejection is why an invite cannot be used right now. The zero value
// means the invite is usable.
type InviteRejection string

const (
	InviteUsable    InviteRejection = ""
	InviteNotFound  InviteRejection = "not_found"
	InviteDisabled  InviteRejection = "disabled"
	InviteExpired   InviteRejection = "expired"
	InviteExhausted InviteRejection = "exhausted"
)

type Invite struct {
	ID          string
	Code        string
	Type        InviteType
	MaxUses     *int // nil means unlimited
	CurrentUses int
	ExpiresAt   *time.Time // nil means never
	Active      bool
	CommunityID string
	LocationID  string // pre-assigned location, optional
	CreatedBy   string // user id of the issuer
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Check applies the usability rules in order: disabled, expired, exhausted.
// The first failing rule wins.
func (i Invite) Check(now time.Time) InviteRejection {
	switch {
	case !i.Active:
		return InviteDisabled
	case i.Expired(now):
		return InviteExpired
	case i.Exhausted():
		return InviteExhausted
	}
	return InviteUsable
}

func (i Invite) Expired(now time.Time) bool {
	return i.ExpiresAt != nil && now.After(*i.ExpiresAt)
}

func (i Invite) Exhausted() bool {
	return i.MaxUses != nil && i.CurrentUses >= *i.MaxUses
}

// RemainingUses returns nil for unlimited invites.
func (i Invite) RemainingUses() *int {
	if i.MaxUses == nil {
		return nil
	}
	left := max(*i.MaxUses-i.CurrentUses, 0)
	return &left
}

// InviteStats summarises the invites of a community.
type InviteStats struct {
	Total     int
	Active    int
	TotalUses int
}

func SummariseInvites(invites []Invite) InviteStats {
	var s InviteStats
	for _, inv := range invites {
		s.Total++
		if inv.Active {
			s.Active++
		}
		s.TotalUses += inv.CurrentUses
	}
	return s
}

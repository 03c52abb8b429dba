package store

import (
	"context"
	"errors"
	"time"

	"github.com/ziberlive/colive/internal/membership/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrConflict is returned when a guarded update finds the row no longer
	// in the state it expected, e.g. a bed taken by a concurrent approval.
	ErrConflict = errors.New("store: conflict")
)

// Store is the root data access interface. Repositories are reached through
// it so that a transaction scoped Store offers exactly the same surface.
type Store interface {
	Users() Users
	Communities() Communities
	Locations() Locations
	Invites() Invites
	Members() Members

	ApplyMigrations() error

	// Tx starts a read/write transaction. The caller MUST Commit or Rollback.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when fn returns nil and
	// rolling back otherwise. Inside fn only tx may be used.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error
	Ping(ctx context.Context) error
}

// Tx is a transaction scoped Store.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// CreateUser inserts a user; ErrAlreadyExists when the email is taken.
	CreateUser(ctx context.Context, u domain.User) error

	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail matches case-insensitively.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// IsEmpty reports whether no user exists yet (bootstrap check).
	IsEmpty(ctx context.Context) (bool, error)
}

type Communities interface {
	CreateCommunity(ctx context.Context, c domain.Community) error
	GetCommunity(ctx context.Context, id string) (domain.Community, error)
}

type Locations interface {
	// CreateLocation inserts a location; ErrAlreadyExists on a duplicate name
	// within the community.
	CreateLocation(ctx context.Context, l domain.Location) error

	GetLocation(ctx context.Context, id string) (domain.Location, error)

	// ListLocations returns every location of a community ordered by name.
	ListLocations(ctx context.Context, communityID string) ([]domain.Location, error)

	// ListAvailableBeds returns unoccupied bed locations ordered by name.
	ListAvailableBeds(ctx context.Context, communityID string) ([]domain.Location, error)

	// OccupyLocation marks a free location as held by memberID. It returns
	// ErrConflict when the location is already occupied.
	OccupyLocation(ctx context.Context, locationID, memberID string, at time.Time) error

	// VacateLocation frees a location held by memberID. ErrConflict when the
	// member does not hold it.
	VacateLocation(ctx context.Context, locationID, memberID string, at time.Time) error
}

type Invites interface {
	// CreateInvite inserts an invite; ErrAlreadyExists on a code collision.
	CreateInvite(ctx context.Context, inv domain.Invite) error

	GetInviteByID(ctx context.Context, id string) (domain.Invite, error)

	// GetInviteByCode looks up an invite by its exact code.
	GetInviteByCode(ctx context.Context, code string) (domain.Invite, error)

	// ListInvites returns the unarchived invites of a community, newest first.
	ListInvites(ctx context.Context, communityID string) ([]domain.Invite, error)

	// SetInviteActive flips the active flag.
	SetInviteActive(ctx context.Context, id string, active bool, at time.Time) error

	// ConsumeInvite increments the use count when uses remain. ErrConflict
	// when the invite is already at its limit.
	ConsumeInvite(ctx context.Context, id string, at time.Time) error

	// ArchiveStaleInvites hides invites that expired before cutoff without
	// being used or claimed by any member from ListInvites, returning how many
	// were archived. Archived invites are still found by id and code.
	ArchiveStaleInvites(ctx context.Context, cutoff, at time.Time) (int64, error)
}

// MemberQuery selects members of a community. Zero fields do not filter.
type MemberQuery struct {
	CommunityID string
	Status      domain.MemberStatus
	Search      string // matches name, email, phone or invite code
}

type Members interface {
	CreateMember(ctx context.Context, m domain.Member) error
	GetMember(ctx context.Context, id string) (domain.Member, error)
	GetMemberByUserID(ctx context.Context, userID string) (domain.Member, error)

	// ListMembers returns matches ordered by request time, newest first.
	ListMembers(ctx context.Context, q MemberQuery) ([]domain.Member, error)

	// ListDirectory returns active members ordered by loyalty points.
	ListDirectory(ctx context.Context, communityID string) ([]domain.Member, error)

	CountActiveMembers(ctx context.Context, communityID string) (int, error)

	// ApproveMember moves a pending member to active at locationID.
	// ErrConflict when the member is no longer pending or another active
	// member already holds the location.
	ApproveMember(ctx context.Context, id, locationID string, at time.Time) error

	// RejectMember moves a pending member to rejected. ErrConflict when the
	// member is no longer pending.
	RejectMember(ctx context.Context, id, reason string, at time.Time) error

	// MarkInviteConsumed records that the member's invite use was counted.
	MarkInviteConsumed(ctx context.Context, id string, at time.Time) error

	// AttachInvite binds a pending member without a community to the
	// community of an invite. ErrConflict when already bound.
	AttachInvite(ctx context.Context, id string, inv domain.Invite, at time.Time) error

	UpdateRole(ctx context.Context, id string, role domain.Role, at time.Time) error

	// UpdateStatus changes status when the member is still in from.
	// ErrConflict otherwise. Moving out also clears the location.
	UpdateStatus(ctx context.Context, id string, from, to domain.MemberStatus, at time.Time) error
}

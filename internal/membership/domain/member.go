package domain

import "time"

type MemberStatus string

const (
	StatusPending   MemberStatus = "pending"
	StatusActive    MemberStatus = "active"
	StatusInactive  MemberStatus = "inactive"
	StatusSuspended MemberStatus = "suspended"
	StatusMovedOut  MemberStatus = "moved_out"
	StatusRejected  MemberStatus = "rejected"
)

func (s MemberStatus) Valid() bool {
	switch s {
	case StatusPending, StatusActive, StatusInactive, StatusSuspended, StatusMovedOut, StatusRejected:
		return true
	}
	return false
}

// CanChangeStatus reports whether an administrator may move a member from
// one status to another outside of the approval workflow. Pending and
// rejected records only change through approval or rejection.
func CanChangeStatus(from, to MemberStatus) bool {
	if from == to {
		return false
	}
	switch from {
	case StatusActive, StatusInactive, StatusSuspended:
		return to == StatusActive || to == StatusInactive || to == StatusSuspended || to == StatusMovedOut
	case StatusMovedOut:
		return to == StatusInactive
	}
	return false
}

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
	RoleGuest  Role = "guest"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleMember || r == RoleGuest
}

// Documents holds the public URLs of uploaded files.
type Documents struct {
	PhotoURL     string
	IdentityURL  string
	CVURL        string // optional
	LaborCardURL string // optional
}

type EmergencyContact struct {
	Name         string
	Relationship string
	Phone        string
	Email        string // optional
}

// OptIns are the notification channels an applicant agreed to.
type OptIns struct {
	Email    bool
	SMS      bool
	WhatsApp bool
}

// Member is a membership application and, once approved, the membership.
type Member struct {
	ID               string
	UserID           string
	CommunityID      string // empty for applicants who deferred their invite
	Name             string
	Email            string
	Phone            string
	Documents        Documents
	EmergencyContact EmergencyContact
	OptIns           OptIns
	Status           MemberStatus
	Role             Role
	RejectionReason  string
	LocationID       string
	LoyaltyPoints    int
	InviteCode       string
	InviteConsumed   bool // the invite use was counted at join time
	RequestedAt      time.Time
	ApprovedAt       *time.Time
	RejectedAt       *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (m Member) Tier() Tier { return TierForPoints(m.LoyaltyPoints) }

// ApplicationFilter selects a slice of the approval queue.
type ApplicationFilter string

const (
	FilterPending  ApplicationFilter = "pending"
	FilterApproved ApplicationFilter = "approved"
	FilterRejected ApplicationFilter = "rejected"
	FilterAll      ApplicationFilter = "all"
)

// Statuses returns the member statuses f matches, nil for all.
func (f ApplicationFilter) Statuses() ([]MemberStatus, bool) {
	switch f {
	case FilterPending, "":
		return []MemberStatus{StatusPending}, true
	case FilterApproved:
		return []MemberStatus{StatusActive}, true
	case FilterRejected:
		return []MemberStatus{StatusRejected}, true
	case FilterAll:
		return nil, true
	}
	return nil, false
}

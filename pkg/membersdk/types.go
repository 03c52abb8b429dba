package membersdk

import (
	"net/mail"
	"strings"
	"time"

	"github.com/ziberlive/colive/pkg/jwtx"
)

// ============================================================================
// Error and Health Types
// ============================================================================

// ErrorResponse is the body of every non-validation error.
type ErrorResponse struct {
	// Error is a machine readable code, e.g. "invite_rejected".
	Error string `json:"error"`

	// ErrorDescription is a human readable description.
	ErrorDescription string `json:"error_description"`

	// Reason refines invite_rejected: not_found, disabled, expired, exhausted.
	Reason string `json:"reason,omitempty"`
}

// ValidationErrorResponse is returned when input fails field validation.
type ValidationErrorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

type HealthChecks struct {
	Database string `json:"database"`
	Signer   string `json:"signer"`
}

// JWKSResponse is the key set tokens can be verified against.
type JWKSResponse jwtx.JWKS

// ============================================================================
// Bootstrap and Login
// ============================================================================

type BootstrapRequest struct {
	CommunityName    string `json:"community_name"`
	CommunityAddress string `json:"community_address"`
	AdminName        string `json:"admin_name"`
	AdminEmail       string `json:"admin_email"`
	AdminPhone       string `json:"admin_phone"`
	AdminPassword    string `json:"admin_password"`
}

// Validate returns field errors, nil when the request is acceptable.
func (r BootstrapRequest) Validate() map[string]string {
	errs := map[string]string{}
	if strings.TrimSpace(r.CommunityName) == "" {
		errs["community_name"] = "community name is required"
	}
	if strings.TrimSpace(r.AdminName) == "" {
		errs["admin_name"] = "admin name is required"
	}
	if _, err := mail.ParseAddress(r.AdminEmail); err != nil {
		errs["admin_email"] = "admin email is not a valid address"
	}
	if len(r.AdminPassword) < 8 {
		errs["admin_password"] = "password must be at least 8 characters"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

type BootstrapResponse struct {
	CommunityID   string `json:"community_id"`
	AdminMemberID string `json:"admin_member_id"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string  `json:"access_token"`
	TokenType   string  `json:"token_type"`
	ExpiresIn   int     `json:"expires_in"`
	Scope       string  `json:"scope"`
	Member      *Member `json:"member,omitempty"`
}

// ============================================================================
// Invites
// ============================================================================

type Invite struct {
	ID            string     `json:"id"`
	Code          string     `json:"code"`
	Type          string     `json:"type"`
	MaxUses       *int       `json:"max_uses"`
	CurrentUses   int        `json:"current_uses"`
	RemainingUses *int       `json:"remaining_uses"`
	ExpiresAt     *time.Time `json:"expires_at"`
	Active        bool       `json:"active"`
	LocationID    string     `json:"location_id,omitempty"`
	JoinURL       string     `json:"join_url"`
	CreatedBy     string     `json:"created_by"`
	CreatedAt     time.Time  `json:"created_at"`
}

type CreateInviteRequest struct {
	// Code keeps a code drawn from GET /v1/invites/code; empty draws one.
	Code        string     `json:"code,omitempty"`
	Type        string     `json:"type,omitempty"`
	MaxUses     int        `json:"max_uses,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	NeverExpire bool       `json:"never_expire,omitempty"`
	LocationID  string     `json:"location_id,omitempty"`
}

type InviteStats struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	TotalUses int `json:"total_uses"`
}

type InviteListResponse struct {
	Invites []Invite    `json:"invites"`
	Stats   InviteStats `json:"stats"`
}

type SetInviteActiveRequest struct {
	Active bool `json:"active"`
}

type GenerateCodeResponse struct {
	Code    string `json:"code"`
	JoinURL string `json:"join_url"`
}

// ValidateInviteRequest carries either a typed code or a raw QR scan.
type ValidateInviteRequest struct {
	Code string `json:"code,omitempty"`
	Scan string `json:"scan,omitempty"`
}

// InviteResolution describes the community a usable invite leads to.
type InviteResolution struct {
	Code             string     `json:"code"`
	CommunityID      string     `json:"community_id"`
	CommunityName    string     `json:"community_name"`
	CommunityAddress string     `json:"community_address"`
	ActiveMembers    int        `json:"active_members"`
	Location         *Location  `json:"location,omitempty"`
	ExpiresAt        *time.Time `json:"expires_at,omitempty"`
	RemainingUses    *int       `json:"remaining_uses,omitempty"`
}

// ============================================================================
// Registration
// ============================================================================

type EmergencyContact struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship"`
	Phone        string `json:"phone"`
	Email        string `json:"email,omitempty"`
}

type OptIns struct {
	Email    bool `json:"email"`
	SMS      bool `json:"sms"`
	WhatsApp bool `json:"whatsapp"`
}

type RegistrationRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`

	PhotoURL     string `json:"photo_url"`
	IdentityURL  string `json:"identity_url"`
	CVURL        string `json:"cv_url,omitempty"`
	LaborCardURL string `json:"labor_card_url,omitempty"`

	EmergencyContact EmergencyContact `json:"emergency_contact"`
	OptIns           OptIns           `json:"opt_ins"`

	// InviteMethod is code, qr or defer. InviteCode holds the typed code
	// or the scanned payload.
	InviteMethod  string `json:"invite_method"`
	InviteCode    string `json:"invite_code,omitempty"`
	AcceptedTerms bool   `json:"accepted_terms"`
}

type ValidateStageRequest struct {
	// Stage is account, documents, emergency_contact, invite or 1..4.
	Stage        string              `json:"stage"`
	Registration RegistrationRequest `json:"registration"`
}

type ValidateStageResponse struct {
	Stage     string            `json:"stage"`
	Valid     bool              `json:"valid"`
	Errors    map[string]string `json:"errors,omitempty"`
	NextStage string            `json:"next_stage,omitempty"`
}

type ClaimInviteRequest struct {
	Code string `json:"code"`
}

// ============================================================================
// Members, Applications and Locations
// ============================================================================

type Member struct {
	ID               string           `json:"id"`
	UserID           string           `json:"user_id"`
	CommunityID      string           `json:"community_id,omitempty"`
	Name             string           `json:"name"`
	Email            string           `json:"email"`
	Phone            string           `json:"phone"`
	Status           string           `json:"status"`
	Role             string           `json:"role"`
	LocationID       string           `json:"location_id,omitempty"`
	InviteCode       string           `json:"invite_code,omitempty"`
	RejectionReason  string           `json:"rejection_reason,omitempty"`
	LoyaltyPoints    int              `json:"loyalty_points"`
	Tier             string           `json:"tier"`
	NextTier         string           `json:"next_tier,omitempty"`
	PointsToNextTier int              `json:"points_to_next_tier"`
	PhotoURL         string           `json:"photo_url,omitempty"`
	IdentityURL      string           `json:"identity_url,omitempty"`
	CVURL            string           `json:"cv_url,omitempty"`
	LaborCardURL     string           `json:"labor_card_url,omitempty"`
	EmergencyContact EmergencyContact `json:"emergency_contact"`
	OptIns           OptIns           `json:"opt_ins"`
	RequestedAt      time.Time        `json:"requested_at"`
	ApprovedAt       *time.Time       `json:"approved_at,omitempty"`
	RejectedAt       *time.Time       `json:"rejected_at,omitempty"`
}

type MemberListResponse struct {
	Members []Member `json:"members"`
}

type ApproveRequest struct {
	// LocationID may be empty to use the location pre-assigned by the invite.
	LocationID string `json:"location_id,omitempty"`
}

type RejectRequest struct {
	Reason string `json:"reason"`
}

type UpdateRoleRequest struct {
	Role string `json:"role"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type Location struct {
	ID          string `json:"id"`
	CommunityID string `json:"community_id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Occupied    bool   `json:"occupied"`
}

type CreateLocationRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type LocationListResponse struct {
	Locations []Location `json:"locations"`
}

// UploadResponse mirrors the fields clients used from the hosted uploader.
type UploadResponse struct {
	PublicID    string `json:"public_id"`
	SecureURL   string `json:"secure_url"`
	ContentType string `json:"content_type"`
	Bytes       int64  `json:"bytes"`
}

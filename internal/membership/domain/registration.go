package domain

import (
	"net/mail"
	"strconv"
	"strings"

	"github.com/ziberlive/colive/pkg/invitecode"
)

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 8

// RegistrationStage is a step of the join flow. Stages are validated in
// order and only the last one commits.
type RegistrationStage int

const (
	StageAccount RegistrationStage = iota + 1
	StageDocuments
	StageEmergencyContact
	StageInvite
)

func (s RegistrationStage) String() string {
	switch s {
	case StageAccount:
		return "account"
	case StageDocuments:
		return "documents"
	case StageEmergencyContact:
		return "emergency_contact"
	case StageInvite:
		return "invite"
	}
	return "unknown"
}

// ParseStage accepts either the stage name or its number.
func ParseStage(s string) (RegistrationStage, bool) {
	for st := StageAccount; st <= StageInvite; st++ {
		if s == st.String() || s == strconv.Itoa(int(st)) {
			return st, true
		}
	}
	return 0, false
}

// InviteMethod is how the applicant supplies their invite.
type InviteMethod string

const (
	InviteByCode   InviteMethod = "code"
	InviteByQR     InviteMethod = "qr"
	InviteDeferred InviteMethod = "defer"
)

// RegistrationDraft accumulates what an applicant entered across stages.
// Moving back never clears fields.
type RegistrationDraft struct {
	Stage RegistrationStage

	Name            string
	Email           string
	Phone           string
	Password        string
	ConfirmPassword string

	Documents        Documents
	EmergencyContact EmergencyContact
	OptIns           OptIns

	InviteMethod  InviteMethod
	InvitePayload string // typed code or raw QR scan
	AcceptedTerms bool
}

// NewRegistrationDraft starts at the first stage.
func NewRegistrationDraft() *RegistrationDraft {
	return &RegistrationDraft{Stage: StageAccount}
}

// Advance validates the current stage and moves to the next one. At the
// last stage it only validates.
func (d *RegistrationDraft) Advance() FieldErrors {
	if d.Stage < StageAccount {
		d.Stage = StageAccount
	}
	errs := d.ValidateStage(d.Stage)
	if len(errs) == 0 && d.Stage < StageInvite {
		d.Stage++
	}
	return errs
}

// Back returns to the previous stage, keeping entered data.
func (d *RegistrationDraft) Back() {
	if d.Stage > StageAccount {
		d.Stage--
	}
}

// Validate checks every stage, as done on final submission.
func (d *RegistrationDraft) Validate() FieldErrors {
	all := FieldErrors{}
	for st := StageAccount; st <= StageInvite; st++ {
		for k, v := range d.ValidateStage(st) {
			all.Add(k, v)
		}
	}
	return all
}

// ValidateStage returns the problems with the fields owned by stage.
func (d *RegistrationDraft) ValidateStage(stage RegistrationStage) FieldErrors {
	errs := FieldErrors{}
	switch stage {
	case StageAccount:
		if strings.TrimSpace(d.Name) == "" {
			errs.Add("name", "name is required")
		}
		if strings.TrimSpace(d.Email) == "" {
			errs.Add("email", "email is required")
		} else if _, err := mail.ParseAddress(d.Email); err != nil {
			errs.Add("email", "email is not a valid address")
		}
		if strings.TrimSpace(d.Phone) == "" {
			errs.Add("phone", "phone is required")
		}
		if len(d.Password) < MinPasswordLength {
			errs.Add("password", "password must be at least 8 characters")
		}
		if d.Password != d.ConfirmPassword {
			errs.Add("confirm_password", "passwords do not match")
		}

	case StageDocuments:
		if strings.TrimSpace(d.Documents.PhotoURL) == "" {
			errs.Add("photo_url", "a profile photo is required")
		}
		if strings.TrimSpace(d.Documents.IdentityURL) == "" {
			errs.Add("identity_url", "an identity document is required")
		}

	case StageEmergencyContact:
		ec := d.EmergencyContact
		if strings.TrimSpace(ec.Name) == "" {
			errs.Add("emergency_contact.name", "emergency contact name is required")
		}
		if strings.TrimSpace(ec.Relationship) == "" {
			errs.Add("emergency_contact.relationship", "relationship is required")
		}
		if strings.TrimSpace(ec.Phone) == "" {
			errs.Add("emergency_contact.phone", "emergency contact phone is required")
		}
		if ec.Email != "" {
			if _, err := mail.ParseAddress(ec.Email); err != nil {
				errs.Add("emergency_contact.email", "emergency contact email is not a valid address")
			}
		}

	case StageInvite:
		switch d.InviteMethod {
		case InviteByCode, InviteByQR:
			if d.InviteCode() == "" {
				errs.Add("invite_code", "an invite code is required")
			}
		case InviteDeferred:
		default:
			errs.Add("invite_method", "invite method must be code, qr or defer")
		}
		if !d.AcceptedTerms {
			errs.Add("accepted_terms", "the terms must be accepted")
		}

	default:
		errs.Add("stage", "unknown registration stage")
	}
	return errs
}

// InviteCode returns the normalised code the applicant supplied, extracting
// it from a scan when the QR method was used. Empty when deferred.
func (d *RegistrationDraft) InviteCode() string {
	switch d.InviteMethod {
	case InviteByCode:
		return invitecode.Normalize(d.InvitePayload)
	case InviteByQR:
		return invitecode.Normalize(invitecode.FromScan(d.InvitePayload))
	}
	return ""
}

package http

import (
	"github.com/ziberlive/colive/internal/membership/domain"
	"github.com/ziberlive/colive/internal/membership/service"
	"github.com/ziberlive/colive/pkg/membersdk"
)

// Domain values never leave this package untyped: every response body is a
// membersdk type built here.

func toMember(m domain.Member) membersdk.Member {
	tier := m.Tier()
	out := membersdk.Member{
		ID:               m.ID,
		UserID:           m.UserID,
		CommunityID:      m.CommunityID,
		Name:             m.Name,
		Email:            m.Email,
		Phone:            m.Phone,
		Status:           string(m.Status),
		Role:             string(m.Role),
		LocationID:       m.LocationID,
		InviteCode:       m.InviteCode,
		RejectionReason:  m.RejectionReason,
		LoyaltyPoints:    m.LoyaltyPoints,
		Tier:             string(tier),
		PointsToNextTier: domain.PointsToNextTier(m.LoyaltyPoints),
		PhotoURL:         m.Documents.PhotoURL,
		IdentityURL:      m.Documents.IdentityURL,
		CVURL:            m.Documents.CVURL,
		LaborCardURL:     m.Documents.LaborCardURL,
		EmergencyContact: membersdk.EmergencyContact{
			Name:         m.EmergencyContact.Name,
			Relationship: m.EmergencyContact.Relationship,
			Phone:        m.EmergencyContact.Phone,
			Email:        m.EmergencyContact.Email,
		},
		OptIns: membersdk.OptIns{
			Email:    m.OptIns.Email,
			SMS:      m.OptIns.SMS,
			WhatsApp: m.OptIns.WhatsApp,
		},
		RequestedAt: m.RequestedAt,
		ApprovedAt:  m.ApprovedAt,
		RejectedAt:  m.RejectedAt,
	}
	if next, ok := domain.NextTier(tier); ok {
		out.NextTier = string(next)
	}
	return out
}

func toMembers(ms []domain.Member) []membersdk.Member {
	out := make([]membersdk.Member, len(ms))
	for i, m := range ms {
		out[i] = toMember(m)
	}
	return out
}

func toLocation(l domain.Location) membersdk.Location {
	return membersdk.Location{
		ID:          l.ID,
		CommunityID: l.CommunityID,
		Name:        l.Name,
		Type:        string(l.Type),
		Occupied:    l.OccupiedBy != "",
	}
}

func toLocations(ls []domain.Location) []membersdk.Location {
	out := make([]membersdk.Location, len(ls))
	for i, l := range ls {
		out[i] = toLocation(l)
	}
	return out
}

func toInvite(i domain.Invite, joinURL string) membersdk.Invite {
	return membersdk.Invite{
		ID:            i.ID,
		Code:          i.Code,
		Type:          string(i.Type),
		MaxUses:       i.MaxUses,
		CurrentUses:   i.CurrentUses,
		RemainingUses: i.RemainingUses(),
		ExpiresAt:     i.ExpiresAt,
		Active:        i.Active,
		LocationID:    i.LocationID,
		JoinURL:       joinURL,
		CreatedBy:     i.CreatedBy,
		CreatedAt:     i.CreatedAt,
	}
}

func toResolution(r service.InviteResolution) membersdk.InviteResolution {
	out := membersdk.InviteResolution{
		Code:             r.Invite.Code,
		CommunityID:      r.Community.ID,
		CommunityName:    r.Community.Name,
		CommunityAddress: r.Community.Address,
		ActiveMembers:    r.ActiveMembers,
		ExpiresAt:        r.Invite.ExpiresAt,
		RemainingUses:    r.Invite.RemainingUses(),
	}
	if r.Location != nil {
		loc := toLocation(*r.Location)
		out.Location = &loc
	}
	return out
}

func toDraft(req membersdk.RegistrationRequest) domain.RegistrationDraft {
	return domain.RegistrationDraft{
		Name:            req.Name,
		Email:           req.Email,
		Phone:           req.Phone,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		Documents: domain.Documents{
			PhotoURL:     req.PhotoURL,
			IdentityURL:  req.IdentityURL,
			CVURL:        req.CVURL,
			LaborCardURL: req.LaborCardURL,
		},
		EmergencyContact: domain.EmergencyContact{
			Name:         req.EmergencyContact.Name,
			Relationship: req.EmergencyContact.Relationship,
			Phone:        req.EmergencyContact.Phone,
			Email:        req.EmergencyContact.Email,
		},
		OptIns: domain.OptIns{
			Email:    req.OptIns.Email,
			SMS:      req.OptIns.SMS,
			WhatsApp: req.OptIns.WhatsApp,
		},
		InviteMethod:  domain.InviteMethod(req.InviteMethod),
		InvitePayload: req.InviteCode,
		AcceptedTerms: req.AcceptedTerms,
	}
}

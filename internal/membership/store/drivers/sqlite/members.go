package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/ziberlive/colive/internal/membership/domain"
	"github.com/ziberlive/colive/internal/membership/store"
	"github.com/ziberlive/colive/internal/membership/store/drivers/sqlite/gen"
)

type membersRepo struct {
	q *gen.Queries
}

// emergencyContactRow and optInsRow are the JSON shapes stored in the
// emergency_contact and opt_ins columns.
type emergencyContactRow struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship"`
	Phone        string `json:"phone"`
	Email        string `json:"email,omitempty"`
}

type optInsRow struct {
	Email    bool `json:"email"`
	SMS      bool `json:"sms"`
	WhatsApp bool `json:"whatsapp"`
}

func (r *membersRepo) CreateMember(ctx context.Context, m domain.Member) error {
	contact, err := json.Marshal(emergencyContactRow(m.EmergencyContact))
	if err != nil {
		return err
	}
	optIns, err := json.Marshal(optInsRow(m.OptIns))
	if err != nil {
		return err
	}

	return mapWriteErr(r.q.CreateMember(ctx, gen.CreateMemberParams{
		ID:               m.ID,
		UserID:           m.UserID,
		CommunityID:      mapStringNull(m.CommunityID),
		Name:             m.Name,
		Email:            m.Email,
		Phone:            m.Phone,
		PhotoUrl:         m.Documents.PhotoURL,
		IdentityUrl:      m.Documents.IdentityURL,
		CvUrl:            mapStringNull(m.Documents.CVURL),
		LaborCardUrl:     mapStringNull(m.Documents.LaborCardURL),
		EmergencyContact: string(contact),
		OptIns:           string(optIns),
		Status:           string(m.Status),
		Role:             string(m.Role),
		LocationID:       mapStringNull(m.LocationID),
		LoyaltyPoints:    int64(m.LoyaltyPoints),
		InviteCode:       mapStringNull(m.InviteCode),
		InviteConsumed:   m.InviteConsumed,
		RequestedAt:      m.RequestedAt.UTC(),
		CreatedAt:        m.CreatedAt.UTC(),
		UpdatedAt:        m.UpdatedAt.UTC(),
	}))
}

func (r *membersRepo) GetMember(ctx context.Context, id string) (domain.Member, error) {
	row, err := r.q.GetMember(ctx, id)
	if err != nil {
		return domain.Member{}, mapNotFound(err)
	}
	return mapMember(row)
}

func (r *membersRepo) GetMemberByUserID(ctx context.Context, userID string) (domain.Member, error) {
	row, err := r.q.GetMemberByUserID(ctx, userID)
	if err != nil {
		return domain.Member{}, mapNotFound(err)
	}
	return mapMember(row)
}

func (r *membersRepo) ListMembers(ctx context.Context, q store.MemberQuery) ([]domain.Member, error) {
	rows, err := r.q.ListMembers(ctx, gen.ListMembersParams{
		CommunityID: mapStringNull(q.CommunityID),
		Status:      string(q.Status),
		Search:      escapeLike(strings.TrimSpace(q.Search)),
	})
	if err != nil {
		return nil, err
	}
	return mapMembers(rows)
}

func (r *membersRepo) ListDirectory(ctx context.Context, communityID string) ([]domain.Member, error) {
	rows, err := r.q.ListDirectory(ctx, mapStringNull(communityID))
	if err != nil {
		return nil, err
	}
	return mapMembers(rows)
}

func (r *membersRepo) CountActiveMembers(ctx context.Context, communityID string) (int, error) {
	n, err := r.q.CountActiveMembers(ctx, mapStringNull(communityID))
	return int(n), err
}

func (r *membersRepo) ApproveMember(ctx context.Context, id, locationID string, at time.Time) error {
	n, err := r.q.ApproveMember(ctx, gen.ApproveMemberParams{
		LocationID: mapStringNull(locationID),
		ApprovedAt: sql.NullTime{Time: at.UTC(), Valid: true},
		UpdatedAt:  at.UTC(),
		ID:         id,
	})
	// idx_members_active_location rejects a second active holder.
	if errors.Is(mapWriteErr(err), store.ErrAlreadyExists) {
		return errors.Join(store.ErrConflict, err)
	}
	return expectOne(n, err)
}

func (r *membersRepo) RejectMember(ctx context.Context, id, reason string, at time.Time) error {
	return expectOne(r.q.RejectMember(ctx, gen.RejectMemberParams{
		RejectionReason: mapStringNull(reason),
		RejectedAt:      sql.NullTime{Time: at.UTC(), Valid: true},
		UpdatedAt:       at.UTC(),
		ID:              id,
	}))
}

func (r *membersRepo) MarkInviteConsumed(ctx context.Context, id string, at time.Time) error {
	n, err := r.q.MarkMemberInviteConsumed(ctx, gen.MarkMemberInviteConsumedParams{
		UpdatedAt: at.UTC(),
		ID:        id,
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *membersRepo) AttachInvite(ctx context.Context, id string, inv domain.Invite, at time.Time) error {
	return expectOne(r.q.AttachMemberInvite(ctx, gen.AttachMemberInviteParams{
		CommunityID: mapStringNull(inv.CommunityID),
		LocationID:  mapStringNull(inv.LocationID),
		InviteCode:  mapStringNull(inv.Code),
		UpdatedAt:   at.UTC(),
		ID:          id,
	}))
}

func (r *membersRepo) UpdateRole(ctx context.Context, id string, role domain.Role, at time.Time) error {
	n, err := r.q.UpdateMemberRole(ctx, gen.UpdateMemberRoleParams{
		Role:      string(role),
		UpdatedAt: at.UTC(),
		ID:        id,
	})
	if err != nil {
		return mapWriteErr(err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *membersRepo) UpdateStatus(ctx context.Context, id string, from, to domain.MemberStatus, at time.Time) error {
	n, err := r.q.UpdateMemberStatus(ctx, gen.UpdateMemberStatusParams{
		Status:    string(to),
		UpdatedAt: at.UTC(),
		ID:        id,
		Status_2:  string(from),
	})
	if errors.Is(mapWriteErr(err), store.ErrAlreadyExists) {
		return errors.Join(store.ErrConflict, err)
	}
	if err := expectOne(n, err); err != nil {
		return err
	}
	if to != domain.StatusMovedOut {
		return nil
	}
	_, err = r.q.ClearMemberLocation(ctx, gen.ClearMemberLocationParams{
		UpdatedAt: at.UTC(),
		ID:        id,
	})
	return err
}

// escapeLike escapes LIKE wildcards so a search term matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func mapMember(row gen.Member) (domain.Member, error) {
	var contact emergencyContactRow
	if err := json.Unmarshal([]byte(row.EmergencyContact), &contact); err != nil {
		return domain.Member{}, err
	}
	var optIns optInsRow
	if err := json.Unmarshal([]byte(row.OptIns), &optIns); err != nil {
		return domain.Member{}, err
	}

	return domain.Member{
		ID:          row.ID,
		UserID:      row.UserID,
		CommunityID: mapNullString(row.CommunityID),
		Name:        row.Name,
		Email:       row.Email,
		Phone:       row.Phone,
		Documents: domain.Documents{
			PhotoURL:     row.PhotoUrl,
			IdentityURL:  row.IdentityUrl,
			CVURL:        mapNullString(row.CvUrl),
			LaborCardURL: mapNullString(row.LaborCardUrl),
		},
		EmergencyContact: domain.EmergencyContact(contact),
		OptIns:           domain.OptIns(optIns),
		Status:           domain.MemberStatus(row.Status),
		Role:             domain.Role(row.Role),
		RejectionReason:  mapNullString(row.RejectionReason),
		LocationID:       mapNullString(row.LocationID),
		LoyaltyPoints:    int(row.LoyaltyPoints),
		InviteCode:       mapNullString(row.InviteCode),
		InviteConsumed:   row.InviteConsumed,
		RequestedAt:      row.RequestedAt.UTC(),
		ApprovedAt:       mapNullTimePtr(row.ApprovedAt),
		RejectedAt:       mapNullTimePtr(row.RejectedAt),
		CreatedAt:        row.CreatedAt.UTC(),
		UpdatedAt:        row.UpdatedAt.UTC(),
	}, nil
}

func mapMembers(rows []gen.Member) ([]domain.Member, error) {
	out := make([]domain.Member, 0, len(rows))
	for _, row := range rows {
		m, err := mapMember(row)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

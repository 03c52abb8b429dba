package membersdk

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// Me returns the caller's membership.
func (s *Session) Me(ctx context.Context) (*Member, error) {
	var out Member
	if err := s.call(ctx, http.MethodGet, "/v1/me", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ClaimInvite attaches an invite to an application that deferred it.
func (s *Session) ClaimInvite(ctx context.Context, code string) (*Member, error) {
	var out Member
	if err := s.call(ctx, http.MethodPost, "/v1/registrations/invite", ClaimInviteRequest{Code: code}, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Directory lists active members by loyalty points (requires member:read).
func (s *Session) Directory(ctx context.Context) ([]Member, error) {
	var out MemberListResponse
	if err := s.call(ctx, http.MethodGet, "/v1/members", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Members, nil
}

// ============================================================================
// Administration (admin:read / admin:write)
// ============================================================================

// GenerateInviteCode draws a candidate code without persisting it.
func (s *Session) GenerateInviteCode(ctx context.Context) (*GenerateCodeResponse, error) {
	var out GenerateCodeResponse
	if err := s.call(ctx, http.MethodGet, "/v1/invites/code", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) CreateInvite(ctx context.Context, req CreateInviteRequest) (*Invite, error) {
	var out Invite
	if err := s.call(ctx, http.MethodPost, "/v1/invites", req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) ListInvites(ctx context.Context) (*InviteListResponse, error) {
	var out InviteListResponse
	if err := s.call(ctx, http.MethodGet, "/v1/invites", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) SetInviteActive(ctx context.Context, inviteID string, active bool) (*Invite, error) {
	var out Invite
	path := "/v1/invites/" + url.PathEscape(inviteID)
	if err := s.call(ctx, http.MethodPatch, path, SetInviteActiveRequest{Active: active}, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// InviteQR returns the PNG encoding of an invite's join link.
func (s *Session) InviteQR(ctx context.Context, code string) ([]byte, error) {
	resp, err := s.client.doHeaders(ctx, http.MethodGet, "/v1/invites/"+url.PathEscape(code)+"/qr",
		map[string]string{"Authorization": "Bearer " + s.accessToken}, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, parseErrorResponse(resp, body)
	}
	return body, nil
}

// ListApplications returns the approval queue. filter is pending, approved,
// rejected or all; query searches name, email, phone and invite code.
func (s *Session) ListApplications(ctx context.Context, filter, query string) ([]Member, error) {
	v := url.Values{}
	if filter != "" {
		v.Set("filter", filter)
	}
	if query != "" {
		v.Set("q", query)
	}
	path := "/v1/applications"
	if len(v) > 0 {
		path += "?" + v.Encode()
	}

	var out MemberListResponse
	if err := s.call(ctx, http.MethodGet, path, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Members, nil
}

func (s *Session) ApproveApplication(ctx context.Context, memberID, locationID string) (*Member, error) {
	var out Member
	path := "/v1/applications/" + url.PathEscape(memberID) + "/approve"
	if err := s.call(ctx, http.MethodPost, path, ApproveRequest{LocationID: locationID}, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) RejectApplication(ctx context.Context, memberID, reason string) (*Member, error) {
	var out Member
	path := "/v1/applications/" + url.PathEscape(memberID) + "/reject"
	if err := s.call(ctx, http.MethodPost, path, RejectRequest{Reason: reason}, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) UpdateMemberRole(ctx context.Context, memberID, role string) (*Member, error) {
	var out Member
	path := "/v1/members/" + url.PathEscape(memberID) + "/role"
	if err := s.call(ctx, http.MethodPut, path, UpdateRoleRequest{Role: role}, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) UpdateMemberStatus(ctx context.Context, memberID, status string) (*Member, error) {
	var out Member
	path := "/v1/members/" + url.PathEscape(memberID) + "/status"
	if err := s.call(ctx, http.MethodPut, path, UpdateStatusRequest{Status: status}, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) CreateLocation(ctx context.Context, req CreateLocationRequest) (*Location, error) {
	var out Location
	if err := s.call(ctx, http.MethodPost, "/v1/locations", req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) ListLocations(ctx context.Context) ([]Location, error) {
	var out LocationListResponse
	if err := s.call(ctx, http.MethodGet, "/v1/locations", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Locations, nil
}

// AvailableLocations lists unoccupied beds an application can be approved to.
func (s *Session) AvailableLocations(ctx context.Context) ([]Location, error) {
	var out LocationListResponse
	if err := s.call(ctx, http.MethodGet, "/v1/locations/available", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Locations, nil
}

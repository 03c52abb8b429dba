package http

import (
	"net/http"
	"strings"

	"github.com/ziberlive/colive/internal/membership/domain"
	"github.com/ziberlive/colive/internal/membership/service"
	"github.com/ziberlive/colive/pkg/httpx"
	"github.com/ziberlive/colive/pkg/membersdk"
)

type MembersHandler struct {
	MemberService *service.MemberService
}

// HandleDirectory lists active members of the caller's community.
//
//	@Summary		Member directory
//	@Description	Active members of the community ordered by loyalty points, highest first.
//	@Tags			Members
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	membersdk.MemberListResponse	"Active members"
//	@Failure		401	{object}	membersdk.ErrorResponse			"Missing or invalid token"
//	@Failure		403	{object}	membersdk.ErrorResponse			"Insufficient scope (requires member:read)"
//	@Router			/v1/members [get].
func (h *MembersHandler) HandleDirectory(w http.ResponseWriter, r *http.Request) {
	communityID, ok := communityFromClaims(w, r)
	if !ok {
		return
	}

	members, err := h.MemberService.Directory(r.Context(), communityID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, membersdk.MemberListResponse{Members: toMembers(members)})
}

// HandleUpdateRole changes a member's role.
//
//	@Summary		Update member role
//	@Tags			Members
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string						true	"Member ID"
//	@Param			request	body		membersdk.UpdateRoleRequest	true	"admin, member or guest"
//	@Success		200		{object}	membersdk.Member			"Updated member"
//	@Failure		400		{object}	membersdk.ErrorResponse		"Unknown role"
//	@Failure		404		{object}	membersdk.ErrorResponse		"Member not found"
//	@Router			/v1/members/{id}/role [put].
func (h *MembersHandler) HandleUpdateRole(w http.ResponseWriter, r *http.Request) {
	communityID, ok := communityFromClaims(w, r)
	if !ok {
		return
	}

	var req membersdk.UpdateRoleRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeInvalidJSON(w)
		return
	}

	role := domain.Role(strings.ToLower(strings.TrimSpace(req.Role)))
	m, err := h.MemberService.UpdateRole(r.Context(), communityID, r.PathValue("id"), role)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toMember(m))
}

// HandleUpdateStatus moves a member between lifecycle states.
//
//	@Summary		Update member status
//	@Description	Moves an approved member between active, inactive, suspended and moved_out. Moving out frees the member's bed.
//	@Tags			Members
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string							true	"Member ID"
//	@Param			request	body		membersdk.UpdateStatusRequest	true	"Target status"
//	@Success		200		{object}	membersdk.Member				"Updated member"
//	@Failure		404		{object}	membersdk.ErrorResponse			"Member not found"
//	@Failure		409		{object}	membersdk.ErrorResponse			"Transition not allowed"
//	@Router			/v1/members/{id}/status [put].
func (h *MembersHandler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	communityID, ok := communityFromClaims(w, r)
	if !ok {
		return
	}

	var req membersdk.UpdateStatusRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeInvalidJSON(w)
		return
	}

	status := domain.MemberStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	m, err := h.MemberService.UpdateStatus(r.Context(), communityID, r.PathValue("id"), status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toMember(m))
}

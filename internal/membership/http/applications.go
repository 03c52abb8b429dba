package http

import (
	"net/http"
	"strings"

	"github.com/ziberlive/colive/internal/membership/domain"
	"github.com/ziberlive/colive/internal/membership/service"
	"github.com/ziberlive/colive/pkg/httpx"
	"github.com/ziberlive/colive/pkg/membersdk"
)

type ApplicationsHandler struct {
	ApprovalService *service.ApprovalService
}

// HandleList returns the approval queue.
//
//	@Summary		List applications
//	@Description	Lists membership applications of the caller's community. filter is pending (default), approved, rejected or all.
//	@Description	q matches name, email, phone or invite code, case-insensitively.
//	@Tags			Applications
//	@Produce		json
//	@Security		BearerAuth
//	@Param			filter	query		string						false	"pending, approved, rejected or all"
//	@Param			q		query		string						false	"Search text"
//	@Success		200		{object}	membersdk.MemberListResponse	"Applications, newest first"
//	@Failure		400		{object}	membersdk.ErrorResponse			"Unknown filter"
//	@Failure		401		{object}	membersdk.ErrorResponse			"Missing or invalid token"
//	@Failure		403		{object}	membersdk.ErrorResponse			"Insufficient scope (requires admin:read)"
//	@Router			/v1/applications [get].
func (h *ApplicationsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	communityID, ok := communityFromClaims(w, r)
	if !ok {
		return
	}

	filter := domain.ApplicationFilter(strings.ToLower(strings.TrimSpace(r.URL.Query().Get("filter"))))
	if filter == "" {
		filter = domain.FilterPending
	}

	members, err := h.ApprovalService.ListApplications(r.Context(), communityID, filter, r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, membersdk.MemberListResponse{Members: toMembers(members)})
}

// HandleApprove activates a pending application on a free bed.
//
//	@Summary		Approve an application
//	@Description	Assigns an unoccupied bed of the community and activates the member. An empty location_id uses the bed pre-assigned by the invite.
//	@Tags			Applications
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string					true	"Member ID"
//	@Param			request	body		membersdk.ApproveRequest	false	"Bed to assign"
//	@Success		200		{object}	membersdk.Member		"Approved member"
//	@Failure		400		{object}	membersdk.ErrorResponse	"Location is not a free bed of the community"
//	@Failure		401		{object}	membersdk.ErrorResponse	"Missing or invalid token"
//	@Failure		403		{object}	membersdk.ErrorResponse	"Insufficient scope (requires admin:write)"
//	@Failure		404		{object}	membersdk.ErrorResponse	"Application not found"
//	@Failure		409		{object}	membersdk.ErrorResponse	"Not pending, no bed available, or bed taken concurrently"
//	@Router			/v1/applications/{id}/approve [post].
func (h *ApplicationsHandler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	communityID, ok := communityFromClaims(w, r)
	if !ok {
		return
	}

	var req membersdk.ApproveRequest
	if r.ContentLength != 0 {
		if err := httpx.DecodeJSON(w, r, &req); err != nil {
			writeInvalidJSON(w)
			return
		}
	}

	m, err := h.ApprovalService.Approve(r.Context(), communityID, r.PathValue("id"), strings.TrimSpace(req.LocationID))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toMember(m))
}

// HandleReject declines a pending application.
//
//	@Summary		Reject an application
//	@Tags			Applications
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string					true	"Member ID"
//	@Param			request	body		membersdk.RejectRequest	true	"Reason shown to the applicant"
//	@Success		200		{object}	membersdk.Member		"Rejected application"
//	@Failure		400		{object}	membersdk.ErrorResponse	"Reason missing"
//	@Failure		401		{object}	membersdk.ErrorResponse	"Missing or invalid token"
//	@Failure		403		{object}	membersdk.ErrorResponse	"Insufficient scope (requires admin:write)"
//	@Failure		404		{object}	membersdk.ErrorResponse	"Application not found"
//	@Failure		409		{object}	membersdk.ErrorResponse	"Application is not pending"
//	@Router			/v1/applications/{id}/reject [post].
func (h *ApplicationsHandler) HandleReject(w http.ResponseWriter, r *http.Request) {
	communityID, ok := communityFromClaims(w, r)
	if !ok {
		return
	}

	var req membersdk.RejectRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeInvalidJSON(w)
		return
	}

	m, err := h.ApprovalService.Reject(r.Context(), communityID, r.PathValue("id"), req.Reason)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toMember(m))
}

package http

import (
	"errors"
	"net/http"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/ziberlive/colive/internal/membership/domain"
	"github.com/ziberlive/colive/internal/membership/service"
	"github.com/ziberlive/colive/pkg/httpx"
	"github.com/ziberlive/colive/pkg/invitecode"
	"github.com/ziberlive/colive/pkg/membersdk"
)

// qrSize is the edge length in pixels of generated invite QR codes.
const qrSize = 320

type InvitesHandler struct {
	InviteService *service.InviteService
}

// HandleGenerateCode draws a candidate code.
//
//	@Summary		Generate an invite code
//	@Description	Draws a fresh 4-3-3 code without persisting it. Call again to redraw; pass the kept code to POST /v1/invites.
//	@Tags			Invites
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	membersdk.GenerateCodeResponse	"Candidate code and its join link"
//	@Failure		401	{object}	membersdk.ErrorResponse			"Missing or invalid token"
//	@Failure		403	{object}	membersdk.ErrorResponse			"Insufficient scope (requires admin:write)"
//	@Router			/v1/invites/code [get].
func (h *InvitesHandler) HandleGenerateCode(w http.ResponseWriter, r *http.Request) {
	code := h.InviteService.GenerateCode()
	httpx.WriteJSON(w, http.StatusOK, membersdk.GenerateCodeResponse{
		Code:    code,
		JoinURL: h.InviteService.JoinURL(code),
	})
}

// HandleCreate persists an invite for the caller's community.
//
//	@Summary		Create an invite
//	@Description	Creates a general, single_use or limited invite. Expiry defaults to the configured TTL unless never_expire is set.
//	@Tags			Invites
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		membersdk.CreateInviteRequest	true	"Invite settings"
//	@Success		201		{object}	membersdk.Invite				"Created invite"
//	@Failure		400		{object}	membersdk.ErrorResponse			"Invalid type, limit, expiry or location"
//	@Failure		401		{object}	membersdk.ErrorResponse			"Missing or invalid token"
//	@Failure		403		{object}	membersdk.ErrorResponse			"Insufficient scope (requires admin:write)"
//	@Failure		409		{object}	membersdk.ErrorResponse			"Chosen code already in use"
//	@Router			/v1/invites [post].
func (h *InvitesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	communityID, ok := communityFromClaims(w, r)
	if !ok {
		return
	}

	var req membersdk.CreateInviteRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeInvalidJSON(w)
		return
	}

	inv, err := h.InviteService.CreateInvite(r.Context(), service.CreateInviteRequest{
		CommunityID: communityID,
		CreatedBy:   httpx.UserIDFromContext(r.Context()),
		Code:        req.Code,
		Type:        domain.InviteType(strings.TrimSpace(req.Type)),
		MaxUses:     req.MaxUses,
		ExpiresAt:   req.ExpiresAt,
		NeverExpire: req.NeverExpire,
		LocationID:  strings.TrimSpace(req.LocationID),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toInvite(inv, h.InviteService.JoinURL(inv.Code)))
}

// HandleList returns the invites of the caller's community.
//
//	@Summary		List invites
//	@Description	Returns every invite of the community with total, active and use counts.
//	@Tags			Invites
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	membersdk.InviteListResponse	"Invites and totals"
//	@Failure		401	{object}	membersdk.ErrorResponse			"Missing or invalid token"
//	@Failure		403	{object}	membersdk.ErrorResponse			"Insufficient scope (requires admin:read)"
//	@Router			/v1/invites [get].
func (h *InvitesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	communityID, ok := communityFromClaims(w, r)
	if !ok {
		return
	}

	invites, stats, err := h.InviteService.ListInvites(r.Context(), communityID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := membersdk.InviteListResponse{
		Invites: make([]membersdk.Invite, len(invites)),
		Stats: membersdk.InviteStats{
			Total:     stats.Total,
			Active:    stats.Active,
			TotalUses: stats.TotalUses,
		},
	}
	for i, inv := range invites {
		out.Invites[i] = toInvite(inv, h.InviteService.JoinURL(inv.Code))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleSetActive enables or disables an invite.
//
//	@Summary		Enable or disable an invite
//	@Tags			Invites
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string							true	"Invite ID"
//	@Param			request	body		membersdk.SetInviteActiveRequest	true	"Desired state"
//	@Success		200		{object}	membersdk.Invite				"Updated invite"
//	@Failure		401		{object}	membersdk.ErrorResponse			"Missing or invalid token"
//	@Failure		403		{object}	membersdk.ErrorResponse			"Insufficient scope (requires admin:write)"
//	@Failure		404		{object}	membersdk.ErrorResponse			"Invite not found"
//	@Router			/v1/invites/{id} [patch].
func (h *InvitesHandler) HandleSetActive(w http.ResponseWriter, r *http.Request) {
	communityID, ok := communityFromClaims(w, r)
	if !ok {
		return
	}

	var req membersdk.SetInviteActiveRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeInvalidJSON(w)
		return
	}

	inv, err := h.InviteService.SetActive(r.Context(), communityID, r.PathValue("id"), req.Active)
	if err != nil {
		if errors.Is(err, service.ErrInviteNotFound) {
			httpx.WriteJSON(w, http.StatusNotFound, membersdk.ErrorResponse{
				Error:            membersdk.ErrorCodeNotFound,
				ErrorDescription: "Invite not found",
			})
			return
		}
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toInvite(inv, h.InviteService.JoinURL(inv.Code)))
}

// HandleQR renders the join link of an invite code as a PNG.
//
//	@Summary		Invite QR code
//	@Description	Returns a PNG QR code encoding the join link of the code.
//	@Tags			Invites
//	@Produce		png
//	@Security		BearerAuth
//	@Param			code	path		string					true	"Invite code"
//	@Success		200		{file}		binary					"PNG image"
//	@Failure		400		{object}	membersdk.ErrorResponse	"Malformed code"
//	@Failure		401		{object}	membersdk.ErrorResponse	"Missing or invalid token"
//	@Failure		403		{object}	membersdk.ErrorResponse	"Insufficient scope (requires admin:read)"
//	@Router			/v1/invites/{code}/qr [get].
func (h *InvitesHandler) HandleQR(w http.ResponseWriter, r *http.Request) {
	code := invitecode.Normalize(r.PathValue("code"))
	if !invitecode.Valid(code) {
		httpx.WriteJSON(w, http.StatusBadRequest, membersdk.ErrorResponse{
			Error:            membersdk.ErrorCodeInvalidRequest,
			ErrorDescription: "code must have the form XXXX-XXX-XXX",
		})
		return
	}

	png, err := qrcode.Encode(h.InviteService.JoinURL(code), qrcode.Medium, qrSize)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// HandleValidate checks a typed code or a scanned QR payload.
//
//	@Summary		Validate an invite
//	@Description	Resolves a code, or the code inside a scanned join link, to its community. Read only: the use count is never touched.
//	@Description	Rejections carry a reason of not_found, disabled, expired or exhausted, checked in that order.
//	@Tags			Invites
//	@Accept			json
//	@Produce		json
//	@Param			request	body		membersdk.ValidateInviteRequest	true	"Code or scan payload"
//	@Success		200		{object}	membersdk.InviteResolution		"Community the invite leads to"
//	@Failure		400		{object}	membersdk.ErrorResponse			"Neither code nor scan given"
//	@Failure		422		{object}	membersdk.ErrorResponse			"Invite rejected, see reason"
//	@Router			/v1/invites/validate [post].
func (h *InvitesHandler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	var req membersdk.ValidateInviteRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeInvalidJSON(w)
		return
	}

	var (
		res service.InviteResolution
		err error
	)
	switch {
	case strings.TrimSpace(req.Scan) != "":
		res, err = h.InviteService.ResolveScan(r.Context(), req.Scan)
	case strings.TrimSpace(req.Code) != "":
		res, err = h.InviteService.Validate(r.Context(), req.Code)
	default:
		httpx.WriteJSON(w, http.StatusBadRequest, membersdk.ErrorResponse{
			Error:            membersdk.ErrorCodeInvalidRequest,
			ErrorDescription: "either code or scan is required",
		})
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toResolution(res))
}

// HandleJoin resolves the code of a join link.
//
//	@Summary		Resolve a join link
//	@Description	Target of the links encoded in invite QR codes. Behaves like POST /v1/invites/validate.
//	@Tags			Invites
//	@Produce		json
//	@Param			code	path		string						true	"Invite code"
//	@Success		200		{object}	membersdk.InviteResolution	"Community the invite leads to"
//	@Failure		422		{object}	membersdk.ErrorResponse		"Invite rejected, see reason"
//	@Router			/join/{code} [get].
func (h *InvitesHandler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	res, err := h.InviteService.Validate(r.Context(), r.PathValue("code"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toResolution(res))
}

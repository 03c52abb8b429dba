package http

import (
	"net/http"
	"strings"

	"github.com/ziberlive/colive/internal/membership/service"
	"github.com/ziberlive/colive/pkg/httpx"
	"github.com/ziberlive/colive/pkg/membersdk"
)

type LoginHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP exchanges an email and password for an access token.
//
//	@Summary		Log in
//	@Description	Verifies the credentials and issues an access token. Scopes depend on the membership: pending applicants only get profile:read.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		membersdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	membersdk.LoginResponse	"Access token and membership"
//	@Failure		400		{object}	membersdk.ErrorResponse	"Malformed request"
//	@Failure		401		{object}	membersdk.ErrorResponse	"Invalid credentials"
//	@Failure		429		{object}	membersdk.ErrorResponse	"Too many attempts"
//	@Router			/v1/auth/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req membersdk.LoginRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeInvalidJSON(w)
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		httpx.WriteJSON(w, http.StatusBadRequest, membersdk.ErrorResponse{
			Error:            membersdk.ErrorCodeInvalidRequest,
			ErrorDescription: "email and password are required",
		})
		return
	}

	sess, err := h.AuthService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := membersdk.LoginResponse{
		AccessToken: sess.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int(sess.ExpiresIn.Seconds()),
		Scope:       strings.Join(service.ScopesFor(sess.Member), " "),
	}
	if sess.Member != nil {
		m := toMember(*sess.Member)
		resp.Member = &m
	}
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, resp)
}

type MeHandler struct {
	MemberService *service.MemberService
}

// ServeHTTP returns the caller's own membership record.
//
//	@Summary		Current membership
//	@Description	Returns the membership of the authenticated user, including its application status and loyalty tier.
//	@Tags			Members
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	membersdk.Member		"Membership"
//	@Failure		401	{object}	membersdk.ErrorResponse	"Missing or invalid token"
//	@Failure		404	{object}	membersdk.ErrorResponse	"No membership for this user"
//	@Router			/v1/me [get].
func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m, err := h.MemberService.Me(r.Context(), httpx.UserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toMember(m))
}

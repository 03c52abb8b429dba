package http

import (
	"net/http"
	"strings"

	"github.com/ziberlive/colive/internal/membership/service"
	"github.com/ziberlive/colive/pkg/httpx"
	"github.com/ziberlive/colive/pkg/membersdk"
	"github.com/ziberlive/colive/pkg/slogx"
)

type BootstrapHandler struct {
	BootstrapService *service.BootstrapService
}

// ServeHTTP handles the bootstrap endpoint for initial system setup.
//
//	@Summary		Bootstrap the membership service
//	@Description	Creates the first community and its administrator. Only available when a bootstrap token is configured and only once.
//	@Tags			Bootstrap
//	@Accept			json
//	@Produce		json
//	@Param			X-Bootstrap-Token	header		string								true	"Bootstrap token for authorization"
//	@Param			request				body		membersdk.BootstrapRequest			true	"Community and administrator"
//	@Success		201					{object}	membersdk.BootstrapResponse			"Created community and administrator membership"
//	@Failure		400					{object}	membersdk.ValidationErrorResponse	"Invalid request body or validation failed"
//	@Failure		401					{object}	membersdk.ErrorResponse				"Missing or invalid bootstrap token, or already bootstrapped"
//	@Failure		404					{object}	membersdk.ErrorResponse				"Bootstrap not enabled (no token configured)"
//	@Failure		500					{object}	membersdk.ErrorResponse				"Failed to create community or administrator"
//	@Router			/v1/bootstrap [post].
func (h *BootstrapHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	l := slogx.FromContext(r.Context())
	l.Info("Starting to bootstrap")

	// 1. Check if enabled
	if h.BootstrapService.Token == "" {
		httpx.WriteJSON(w, http.StatusNotFound, membersdk.ErrorResponse{
			Error:            membersdk.ErrorCodeNotFound,
			ErrorDescription: "Bootstrap endpoint is not enabled",
		})
		return
	}

	// 2. Require bootstrap token header
	token := r.Header.Get("X-Bootstrap-Token")
	if token == "" {
		httpx.WriteJSON(w, http.StatusUnauthorized, membersdk.ErrorResponse{
			Error:            membersdk.ErrorCodeUnauthorized,
			ErrorDescription: "Bootstrap token is required in X-Bootstrap-Token header",
		})
		return
	}

	// 3. Parse request body and validate
	var req membersdk.BootstrapRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeInvalidJSON(w)
		return
	}
	if errs := req.Validate(); errs != nil {
		writeValidation(w, errs)
		return
	}

	// 4. Perform bootstrap
	community, admin, err := h.BootstrapService.Bootstrap(r.Context(), token, service.BootstrapData{
		CommunityName:    strings.TrimSpace(req.CommunityName),
		CommunityAddress: strings.TrimSpace(req.CommunityAddress),
		AdminName:        strings.TrimSpace(req.AdminName),
		AdminEmail:       strings.TrimSpace(req.AdminEmail),
		AdminPhone:       strings.TrimSpace(req.AdminPhone),
		AdminPassword:    req.AdminPassword,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, membersdk.BootstrapResponse{
		CommunityID:   community.ID,
		AdminMemberID: admin.ID,
	})
}

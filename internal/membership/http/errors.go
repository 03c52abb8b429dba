package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/ziberlive/colive/internal/membership/domain"
	"github.com/ziberlive/colive/internal/membership/media"
	"github.com/ziberlive/colive/internal/membership/service"
	"github.com/ziberlive/colive/pkg/httpx"
	"github.com/ziberlive/colive/pkg/membersdk"
	"github.com/ziberlive/colive/pkg/slogx"
)

func writeInvalidJSON(w http.ResponseWriter) {
	httpx.WriteJSON(w, http.StatusBadRequest, membersdk.ErrorResponse{
		Error:            membersdk.ErrorCodeInvalidRequest,
		ErrorDescription: "Request body must be valid JSON",
	})
}

func writeValidation(w http.ResponseWriter, fields map[string]string) {
	httpx.WriteJSON(w, http.StatusBadRequest, membersdk.ValidationErrorResponse{
		Code:    membersdk.ErrorCodeValidation,
		Message: "validation failed for some fields",
		Details: fields,
	})
}

// writeError maps a service error onto a status and an ErrorResponse.
// Unknown errors are logged and reported as a generic server error.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		writeValidation(w, verr.Fields)
		return
	}

	if reason, ok := service.InviteRejectionReason(err); ok {
		httpx.WriteJSON(w, http.StatusUnprocessableEntity, membersdk.ErrorResponse{
			Error:            membersdk.ErrorCodeInviteRejected,
			ErrorDescription: err.Error(),
			Reason:           string(reason),
		})
		return
	}

	status, code := http.StatusInternalServerError, membersdk.ErrorCodeServerError
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		status, code = http.StatusUnauthorized, membersdk.ErrorCodeInvalidCredentials
	case errors.Is(err, service.ErrBootstrapUnauthorized),
		errors.Is(err, service.ErrBootstrapAlready):
		status, code = http.StatusUnauthorized, membersdk.ErrorCodeUnauthorized

	case errors.Is(err, service.ErrMemberNotFound),
		errors.Is(err, service.ErrCommunityNotFound):
		status, code = http.StatusNotFound, membersdk.ErrorCodeNotFound

	case errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrInviteCodeTaken),
		errors.Is(err, service.ErrLocationNameTaken),
		errors.Is(err, service.ErrLocationTaken),
		errors.Is(err, service.ErrNoAvailableLocation),
		errors.Is(err, service.ErrNotPending),
		errors.Is(err, service.ErrInviteAlreadyBound),
		errors.Is(err, service.ErrInvalidStatusChange),
		errors.Is(err, service.ErrConcurrentUpdate):
		status, code = http.StatusConflict, membersdk.ErrorCodeConflict

	case errors.Is(err, service.ErrLocationUnavailable),
		errors.Is(err, service.ErrRejectionReasonRequired),
		errors.Is(err, service.ErrInvalidFilter),
		errors.Is(err, service.ErrInvalidInviteRequest),
		errors.Is(err, service.ErrInvalidRole),
		errors.Is(err, service.ErrInvalidLocation),
		errors.Is(err, service.ErrBootstrapInvalid):
		status, code = http.StatusBadRequest, membersdk.ErrorCodeInvalidRequest

	case errors.Is(err, media.ErrUnknownPreset),
		errors.Is(err, media.ErrUnsupportedType),
		errors.Is(err, media.ErrEmpty):
		status, code = http.StatusBadRequest, membersdk.ErrorCodeInvalidRequest
	case errors.Is(err, media.ErrTooLarge):
		status, code = http.StatusRequestEntityTooLarge, membersdk.ErrorCodeInvalidRequest
	case errors.Is(err, media.ErrUnavailable):
		status, code = http.StatusServiceUnavailable, membersdk.ErrorCodeUnavailable
	}

	desc := err.Error()
	if status == http.StatusServiceUnavailable {
		// Storage errors stay in the log.
		slogx.FromContext(r.Context()).Warn("upload storage unavailable", slog.Any("error", err))
		desc = media.ErrUnavailable.Error()
	}
	if status == http.StatusInternalServerError {
		slogx.FromContext(r.Context()).Error("request failed", slog.Any("error", err))
		switch {
		case errors.Is(err, service.ErrIdentityCreation):
			desc = service.ErrIdentityCreation.Error()
		case errors.Is(err, service.ErrApplicationCreation):
			desc = service.ErrApplicationCreation.Error()
		default:
			desc = "An internal error occurred"
		}
	}
	httpx.WriteJSON(w, status, membersdk.ErrorResponse{
		Error:            code,
		ErrorDescription: desc,
	})
}

// communityFromClaims returns the community of an authenticated caller.
// Admin endpoints act on that community only.
func communityFromClaims(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims, ok := httpx.ClaimsFromContext(r.Context())
	if !ok || claims.CommunityID == "" {
		httpx.WriteJSON(w, http.StatusForbidden, membersdk.ErrorResponse{
			Error:            membersdk.ErrorCodeInsufficientScope,
			ErrorDescription: "Token is not bound to a community",
		})
		return "", false
	}
	return claims.CommunityID, true
}

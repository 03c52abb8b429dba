package http

import (
	"net/http"

	"github.com/ziberlive/colive/internal/membership/domain"
	"github.com/ziberlive/colive/internal/membership/service"
	"github.com/ziberlive/colive/pkg/httpx"
	"github.com/ziberlive/colive/pkg/membersdk"
)

type RegistrationHandler struct {
	RegistrationService *service.RegistrationService
}

// HandleValidateStage checks one stage of the join flow.
//
//	@Summary		Validate a registration stage
//	@Description	Checks the fields owned by one stage (account, documents, emergency_contact, invite) without persisting anything.
//	@Tags			Registration
//	@Accept			json
//	@Produce		json
//	@Param			request	body		membersdk.ValidateStageRequest	true	"Stage and the draft entered so far"
//	@Success		200		{object}	membersdk.ValidateStageResponse	"Field problems, empty when the stage is complete"
//	@Failure		400		{object}	membersdk.ErrorResponse			"Unknown stage"
//	@Router			/v1/registrations/validate [post].
func (h *RegistrationHandler) HandleValidateStage(w http.ResponseWriter, r *http.Request) {
	var req membersdk.ValidateStageRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeInvalidJSON(w)
		return
	}
	stage, ok := domain.ParseStage(req.Stage)
	if !ok {
		httpx.WriteJSON(w, http.StatusBadRequest, membersdk.ErrorResponse{
			Error:            membersdk.ErrorCodeInvalidRequest,
			ErrorDescription: "stage must be account, documents, emergency_contact or invite",
		})
		return
	}

	errs, err := h.RegistrationService.ValidateStage(r.Context(), toDraft(req.Registration), stage)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := membersdk.ValidateStageResponse{
		Stage: stage.String(),
		Valid: len(errs) == 0,
	}
	if !resp.Valid {
		resp.Errors = errs
	} else if stage < domain.StageInvite {
		resp.NextStage = (stage + 1).String()
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleRegister submits a completed registration.
//
//	@Summary		Submit a registration
//	@Description	Creates the account and a pending membership application in one step. Unless the invite is deferred it is re-validated and one use is counted.
//	@Description	Any failure leaves neither an account nor a consumed invite behind.
//	@Tags			Registration
//	@Accept			json
//	@Produce		json
//	@Param			request	body		membersdk.RegistrationRequest		true	"Completed registration"
//	@Success		201		{object}	membersdk.Member					"Pending application"
//	@Failure		400		{object}	membersdk.ValidationErrorResponse	"Field validation failed"
//	@Failure		409		{object}	membersdk.ErrorResponse				"Email already registered"
//	@Failure		422		{object}	membersdk.ErrorResponse				"Invite rejected, see reason"
//	@Failure		500		{object}	membersdk.ErrorResponse				"Identity or application could not be created"
//	@Router			/v1/registrations [post].
func (h *RegistrationHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req membersdk.RegistrationRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeInvalidJSON(w)
		return
	}

	m, err := h.RegistrationService.Register(r.Context(), toDraft(req))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toMember(m))
}

// HandleClaimInvite binds a deferred application to an invite.
//
//	@Summary		Claim an invite
//	@Description	Attaches a code, or a scanned join link, to the caller's application if it was submitted without an invite.
//	@Tags			Registration
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		membersdk.ClaimInviteRequest	true	"Code or scan payload"
//	@Success		200		{object}	membersdk.Member				"Application now bound to a community"
//	@Failure		401		{object}	membersdk.ErrorResponse			"Missing or invalid token"
//	@Failure		404		{object}	membersdk.ErrorResponse			"No application for this user"
//	@Failure		409		{object}	membersdk.ErrorResponse			"Application already belongs to a community"
//	@Failure		422		{object}	membersdk.ErrorResponse			"Invite rejected, see reason"
//	@Router			/v1/registrations/invite [post].
func (h *RegistrationHandler) HandleClaimInvite(w http.ResponseWriter, r *http.Request) {
	var req membersdk.ClaimInviteRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeInvalidJSON(w)
		return
	}

	m, err := h.RegistrationService.ClaimInvite(r.Context(), httpx.UserIDFromContext(r.Context()), req.Code)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toMember(m))
}

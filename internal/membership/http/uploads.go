package http

import (
	"errors"
	"net/http"

	"github.com/ziberlive/colive/internal/membership/media"
	"github.com/ziberlive/colive/pkg/httpx"
	"github.com/ziberlive/colive/pkg/membersdk"
)

// multipartOverhead is allowed on top of the file size for form framing.
const multipartOverhead = 64 << 10

type UploadHandler struct {
	Uploader *media.Uploader
}

// ServeHTTP stores an applicant document and returns its public URL.
//
//	@Summary		Upload a file
//	@Description	Stores a profile photo, identity document or receipt. The returned secure_url goes into the registration request.
//	@Tags			Uploads
//	@Accept			mpfd
//	@Produce		json
//	@Param			preset	formData	string					true	"profiles, documents or receipts"
//	@Param			file	formData	file					true	"File to store"
//	@Success		201		{object}	membersdk.UploadResponse	"Stored file"
//	@Failure		400		{object}	membersdk.ErrorResponse	"Missing file, unknown preset or unsupported type"
//	@Failure		413		{object}	membersdk.ErrorResponse	"File too large"
//	@Failure		503		{object}	membersdk.ErrorResponse	"Upload storage unavailable, retry later"
//	@Router			/v1/uploads [post].
func (h *UploadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// 1. Refuse early when no bucket is configured
	if !h.Uploader.Enabled() {
		writeError(w, r, media.ErrUnavailable)
		return
	}

	// 2. Parse the form within the size limit
	r.Body = http.MaxBytesReader(w, r.Body, h.Uploader.MaxBytes()+multipartOverhead)
	if err := r.ParseMultipartForm(multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, media.ErrTooLarge)
			return
		}
		httpx.WriteJSON(w, http.StatusBadRequest, membersdk.ErrorResponse{
			Error:            membersdk.ErrorCodeInvalidRequest,
			ErrorDescription: "Request body must be multipart/form-data",
		})
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	preset, ok := media.ParsePreset(r.FormValue("preset"))
	if !ok {
		writeError(w, r, media.ErrUnknownPreset)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, membersdk.ErrorResponse{
			Error:            membersdk.ErrorCodeInvalidRequest,
			ErrorDescription: "file is required",
		})
		return
	}
	defer file.Close()

	// 3. Store
	up, err := h.Uploader.Upload(r.Context(), preset, header.Filename, file)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, membersdk.UploadResponse{
		PublicID:    up.PublicID,
		SecureURL:   up.SecureURL,
		ContentType: up.ContentType,
		Bytes:       up.Bytes,
	})
}

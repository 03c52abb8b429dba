package http

import (
	"net/http"
	"strings"

	"github.com/ziberlive/colive/internal/membership/domain"
	"github.com/ziberlive/colive/internal/membership/service"
	"github.com/ziberlive/colive/pkg/httpx"
	"github.com/ziberlive/colive/pkg/membersdk"
)

type LocationsHandler struct {
	LocationService *service.LocationService
	ApprovalService *service.ApprovalService
}

// HandleCreate adds a location to the caller's community.
//
//	@Summary		Create a location
//	@Tags			Locations
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		membersdk.CreateLocationRequest	true	"Name and type (bed, common-area, equipment, parking)"
//	@Success		201		{object}	membersdk.Location				"Created location"
//	@Failure		400		{object}	membersdk.ErrorResponse			"Missing name or unknown type"
//	@Failure		409		{object}	membersdk.ErrorResponse			"Name already used in the community"
//	@Router			/v1/locations [post].
func (h *LocationsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	communityID, ok := communityFromClaims(w, r)
	if !ok {
		return
	}

	var req membersdk.CreateLocationRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeInvalidJSON(w)
		return
	}

	typ := domain.LocationType(strings.ToLower(strings.TrimSpace(req.Type)))
	loc, err := h.LocationService.CreateLocation(r.Context(), communityID, req.Name, typ)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toLocation(loc))
}

// HandleList returns every location of the caller's community.
//
//	@Summary		List locations
//	@Tags			Locations
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	membersdk.LocationListResponse	"Locations ordered by name"
//	@Router			/v1/locations [get].
func (h *LocationsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	communityID, ok := communityFromClaims(w, r)
	if !ok {
		return
	}

	locs, err := h.LocationService.ListLocations(r.Context(), communityID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, membersdk.LocationListResponse{Locations: toLocations(locs)})
}

// HandleAvailable returns the beds an application can be approved to.
//
//	@Summary		List available beds
//	@Tags			Locations
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	membersdk.LocationListResponse	"Unoccupied beds ordered by name"
//	@Router			/v1/locations/available [get].
func (h *LocationsHandler) HandleAvailable(w http.ResponseWriter, r *http.Request) {
	communityID, ok := communityFromClaims(w, r)
	if !ok {
		return
	}

	locs, err := h.ApprovalService.AvailableLocations(r.Context(), communityID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, membersdk.LocationListResponse{Locations: toLocations(locs)})
}

// Package handler provides HTTP handlers for the GearSwap API.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gearswap/gearswap/internal/api/models"
	"github.com/gearswap/gearswap/internal/api/response"
	"github.com/gearswap/gearswap/internal/distance"
	"github.com/gearswap/gearswap/internal/geo"
)

// DistanceHandler handles distance estimation endpoints.
type DistanceHandler struct {
	distances *distance.Service
}

// NewDistanceHandler creates a new DistanceHandler.
func NewDistanceHandler(distances *distance.Service) *DistanceHandler {
	return &DistanceHandler{distances: distances}
}

// Calculate handles POST /v1/distance:calculate - one origin/destination pair.
func (h *DistanceHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	var input models.DistanceRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	result, err := h.distances.Calculate(r.Context(), input.Origin, input.Destination)
	if err != nil {
		if errors.Is(err, geo.ErrInvalidAddress) {
			response.BadRequest(w, r, err.Error(), []models.FieldError{
				{Field: fieldForAddressError(err), Message: "address is missing, too short, or a placeholder", Code: "INVALID_ADDRESS"},
			})
			return
		}
		response.InternalError(w, r, "distance computation failed")
		return
	}

	response.JSON(w, r, http.StatusOK, models.DistanceResponse{
		Success: true,
		Result:  *result,
	})
}

// Batch handles POST /v1/distance:batch - one user location against many
// listing locations.
func (h *DistanceHandler) Batch(w http.ResponseWriter, r *http.Request) {
	var input models.BatchDistanceRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	items := make([]distance.BatchItem, len(input.Listings))
	for i, ref := range input.Listings {
		items[i] = distance.BatchItem{
			ListingID: ref.ListingID,
			Location:  ref.Location,
		}
	}

	batch, err := h.distances.CalculateBatch(r.Context(), input.UserLocation, items)
	if err != nil {
		if errors.Is(err, geo.ErrInvalidAddress) {
			response.BadRequest(w, r, err.Error(), []models.FieldError{
				{Field: "userLocation", Message: "address is missing, too short, or a placeholder", Code: "INVALID_ADDRESS"},
			})
			return
		}
		response.InternalError(w, r, "batch distance computation failed")
		return
	}

	response.JSON(w, r, http.StatusOK, models.BatchDistanceResponse{
		Success:      true,
		UserLocation: batch.UserLocation,
		Results:      batch.Results,
		Cached:       batch.Cached,
		Calculated:   batch.Calculated,
		Invalid:      batch.Invalid,
		APIUsed:      batch.APIUsed,
	})
}

// fieldForAddressError maps a validation error back to the offending field.
func fieldForAddressError(err error) string {
	if strings.HasPrefix(err.Error(), "destination") {
		return "destination"
	}
	return "origin"
}

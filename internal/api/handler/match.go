package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gearswap/gearswap/internal/api/models"
	"github.com/gearswap/gearswap/internal/api/response"
	"github.com/gearswap/gearswap/internal/listing"
	"github.com/gearswap/gearswap/internal/trade"
)

// MatchHandler handles trade match endpoints.
type MatchHandler struct {
	matches *trade.Service
	drafts  listing.DraftRepository
}

// NewMatchHandler creates a new MatchHandler.
func NewMatchHandler(matches *trade.Service, drafts listing.DraftRepository) *MatchHandler {
	return &MatchHandler{
		matches: matches,
		drafts:  drafts,
	}
}

// ComputeMatches handles POST /v1/listings/{listingId}/matches:compute.
// The path accepts either a persisted listing ID or the preview sentinel,
// which scores the caller's pending draft before it is published.
func (h *MatchHandler) ComputeMatches(w http.ResponseWriter, r *http.Request) {
	listingID := chi.URLParam(r, "listingId")
	sellerID := GetUserID(r.Context())

	var input models.MatchComputeRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	if listingID == listing.PreviewListingID && input.Draft != nil {
		draft := *input.Draft
		draft.SellerID = sellerID
		if err := h.drafts.PutDraft(r.Context(), &draft); err != nil {
			response.InternalError(w, r, "storing draft listing failed")
			return
		}
	}

	matches, err := h.matches.ComputeMatches(r.Context(), trade.MatchRequest{
		ListingID:   listingID,
		SellerID:    sellerID,
		Preferences: input.Preferences,
	})
	if err != nil {
		if errors.Is(err, listing.ErrListingNotFound) {
			response.NotFound(w, r, "listing "+listingID+" not found")
			return
		}
		response.InternalError(w, r, "match computation failed")
		return
	}

	response.JSON(w, r, http.StatusOK, models.MatchComputeResponse{
		Success: true,
		Matches: matches,
		Count:   len(matches),
	})
}

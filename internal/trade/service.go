package trade

import (
	"context"
	"errors"
	"sort"

	"github.com/rs/zerolog"

	"github.com/gearswap/gearswap/internal/listing"
	"github.com/gearswap/gearswap/internal/seller"
)

// MaxMatches caps the returned match list.
const MaxMatches = 20

// Progress milestones reported through the optional callback. Display-only;
// nothing downstream depends on these values.
const (
	progressResolved   = 10
	progressCandidates = 25
	progressSellers    = 40
	progressScored     = 60
	progressSorted     = 80
	progressDone       = 100
)

// ProgressFunc receives a monotonically increasing completion percentage.
type ProgressFunc func(percent int)

// Match is one scored candidate with its seller profile attached.
type Match struct {
	Listing *listing.Listing `json:"listing"`
	Seller  *seller.Profile  `json:"seller,omitempty"`
	Score   int              `json:"score"`
	Reasons []string         `json:"reasons"`
}

// MatchRequest identifies whose matches to compute.
type MatchRequest struct {
	// ListingID is the user's listing, or listing.PreviewListingID to
	// source it from the seller's pending draft.
	ListingID string

	// SellerID locates the pending draft in preview mode.
	SellerID string

	// Preferences are the acceptance criteria to score against. When nil,
	// the seller's persisted preferences are used; a seller with none
	// stored gets no matches.
	Preferences *listing.TradePreferences

	// Progress is an optional completion callback.
	Progress ProgressFunc
}

// ServiceConfig holds configuration for the match orchestrator.
type ServiceConfig struct {
	Listings listing.Repository
	Drafts   listing.DraftRepository
	Sellers  seller.Repository
	Logger   zerolog.Logger
}

// Service assembles the candidate pool and scores it.
type Service struct {
	listings listing.Repository
	drafts   listing.DraftRepository
	sellers  seller.Repository
	logger   zerolog.Logger
}

// NewService creates a new match orchestrator.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		listings: cfg.Listings,
		drafts:   cfg.Drafts,
		sellers:  cfg.Sellers,
		logger:   cfg.Logger,
	}
}

// ComputeMatches scores every trade-considered listing from other sellers
// against the user's listing and returns the top matches, best first, ties
// broken by ascending listing ID.
//
// A missing user listing is the only error returned; it indicates a caller
// precondition violation. Every other failure degrades to an empty match
// list so the page renders "none found" instead of an error.
func (s *Service) ComputeMatches(ctx context.Context, req MatchRequest) ([]*Match, error) {
	progress := req.Progress
	if progress == nil {
		progress = func(int) {}
	}

	userListing, err := s.resolveUserListing(ctx, req)
	if err != nil {
		if errors.Is(err, listing.ErrListingNotFound) {
			return nil, err
		}
		s.logger.Error().Err(err).
			Str("listing_id", req.ListingID).
			Msg("user listing resolution failed, returning no matches")
		return []*Match{}, nil
	}
	progress(progressResolved)

	prefs := req.Preferences
	if prefs == nil {
		prefs = s.loadStoredPreferences(ctx, userListing.SellerID)
	}
	prefs = prefs.Normalized()

	candidates, err := s.listings.ListTradeCandidates(ctx, userListing.SellerID, userListing.ID)
	if err != nil {
		s.logger.Error().Err(err).
			Str("listing_id", userListing.ID).
			Msg("listing candidate query failed, returning no matches")
		return []*Match{}, nil
	}
	progress(progressCandidates)

	profiles := s.loadSellerProfiles(ctx, candidates)
	progress(progressSellers)

	matches := make([]*Match, 0, len(candidates))
	for _, candidate := range candidates {
		compat := CalculateCompatibility(userListing, candidate, prefs)
		if compat.Score <= 0 {
			continue
		}
		matches = append(matches, &Match{
			Listing: candidate,
			Seller:  profiles[candidate.SellerID],
			Score:   compat.Score,
			Reasons: compat.Reasons,
		})
	}
	progress(progressScored)

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Listing.ID < matches[j].Listing.ID
	})
	progress(progressSorted)

	if len(matches) > MaxMatches {
		matches = matches[:MaxMatches]
	}
	progress(progressDone)

	s.logger.Debug().
		Str("listing_id", userListing.ID).
		Int("candidates", len(candidates)).
		Int("matches", len(matches)).
		Msg("computed trade matches")

	return matches, nil
}

// resolveUserListing loads the user's listing from the persisted store, or
// from the pending draft in preview mode.
func (s *Service) resolveUserListing(ctx context.Context, req MatchRequest) (*listing.Listing, error) {
	if req.ListingID == listing.PreviewListingID {
		draft, err := s.drafts.GetDraft(ctx, req.SellerID)
		if err != nil {
			if errors.Is(err, listing.ErrDraftNotFound) {
				return nil, listing.ErrListingNotFound
			}
			return nil, err
		}
		if draft.ID == "" {
			draft.ID = listing.PreviewListingID
		}
		return draft, nil
	}

	return s.listings.Get(ctx, req.ListingID)
}

// loadStoredPreferences fetches the seller's persisted preferences. Missing
// or failed lookups yield empty preferences, which score every candidate 0.
func (s *Service) loadStoredPreferences(ctx context.Context, sellerID string) *listing.TradePreferences {
	prefs, err := s.listings.GetTradePreferences(ctx, sellerID)
	if err != nil {
		if !errors.Is(err, listing.ErrPreferencesNotFound) {
			s.logger.Warn().Err(err).
				Str("seller_id", sellerID).
				Msg("trade preference lookup failed")
		}
		return &listing.TradePreferences{}
	}
	return prefs
}

// loadSellerProfiles batches the profile lookup for all candidate owners.
// Failures leave matches without seller info rather than failing the run.
func (s *Service) loadSellerProfiles(ctx context.Context, candidates []*listing.Listing) map[string]*seller.Profile {
	seen := make(map[string]struct{}, len(candidates))
	ids := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if _, ok := seen[c.SellerID]; ok {
			continue
		}
		seen[c.SellerID] = struct{}{}
		ids = append(ids, c.SellerID)
	}

	profiles, err := s.sellers.GetByIDs(ctx, ids)
	if err != nil {
		s.logger.Warn().Err(err).
			Int("sellers", len(ids)).
			Msg("seller profile lookup failed")
		return map[string]*seller.Profile{}
	}
	return profiles
}

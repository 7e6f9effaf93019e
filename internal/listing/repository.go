package listing

import (
	"context"
	"errors"
	"sync"
)

// Repository errors.
var (
	ErrListingNotFound     = errors.New("listing not found")
	ErrPreferencesNotFound = errors.New("trade preferences not found")
	ErrDraftNotFound       = errors.New("draft listing not found")
)

// Repository defines the interface for listing data persistence. The
// matching core only reads listings; writes happen elsewhere.
type Repository interface {
	// Get retrieves a listing by ID.
	Get(ctx context.Context, id string) (*Listing, error)

	// ListTradeCandidates returns all listings flagged trade_considered,
	// excluding the given seller's listings and the given listing ID.
	ListTradeCandidates(ctx context.Context, excludeSellerID, excludeListingID string) ([]*Listing, error)

	// GetTradePreferences retrieves a seller's stored trade preferences.
	GetTradePreferences(ctx context.Context, sellerID string) (*TradePreferences, error)
}

// DraftRepository stores pending, not-yet-persisted listings for preview
// matching. Drafts are keyed by seller.
type DraftRepository interface {
	// PutDraft stores or replaces the seller's pending draft.
	PutDraft(ctx context.Context, draft *Listing) error

	// GetDraft retrieves the seller's pending draft.
	GetDraft(ctx context.Context, sellerID string) (*Listing, error)

	// DeleteDraft removes the seller's pending draft.
	DeleteDraft(ctx context.Context, sellerID string) error
}

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for MVP/testing. Production should use a database-backed implementation.
type InMemoryRepository struct {
	mu       sync.RWMutex
	listings map[string]*Listing
	prefs    map[string]*TradePreferences
}

// NewInMemoryRepository creates a new in-memory listing repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		listings: make(map[string]*Listing),
		prefs:    make(map[string]*TradePreferences),
	}
}

// Get retrieves a listing by ID.
func (r *InMemoryRepository) Get(_ context.Context, id string) (*Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.listings[id]
	if !ok {
		return nil, ErrListingNotFound
	}
	return copyListing(l), nil
}

// Put stores a listing. Test and seed helper, not part of Repository.
func (r *InMemoryRepository) Put(_ context.Context, l *Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.listings[l.ID] = copyListing(l)
	return nil
}

// ListTradeCandidates returns trade-considered listings from other sellers.
func (r *InMemoryRepository) ListTradeCandidates(_ context.Context, excludeSellerID, excludeListingID string) ([]*Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Listing
	for _, l := range r.listings {
		if !l.TradeConsidered {
			continue
		}
		if l.SellerID == excludeSellerID || l.ID == excludeListingID {
			continue
		}
		out = append(out, copyListing(l))
	}
	return out, nil
}

// GetTradePreferences retrieves a seller's stored trade preferences.
func (r *InMemoryRepository) GetTradePreferences(_ context.Context, sellerID string) (*TradePreferences, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.prefs[sellerID]
	if !ok {
		return nil, ErrPreferencesNotFound
	}
	return p.Normalized(), nil
}

// SetTradePreferences stores a seller's trade preferences. Test and seed
// helper, not part of Repository.
func (r *InMemoryRepository) SetTradePreferences(_ context.Context, sellerID string, p *TradePreferences) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.prefs[sellerID] = p.Normalized()
	return nil
}

// copyListing creates a copy of a listing.
func copyListing(l *Listing) *Listing {
	if l == nil {
		return nil
	}
	listingCopy := *l
	return &listingCopy
}

// InMemoryDraftRepository is an in-memory implementation of DraftRepository.
type InMemoryDraftRepository struct {
	mu     sync.RWMutex
	drafts map[string]*Listing
}

// NewInMemoryDraftRepository creates a new in-memory draft repository.
func NewInMemoryDraftRepository() *InMemoryDraftRepository {
	return &InMemoryDraftRepository{
		drafts: make(map[string]*Listing),
	}
}

// PutDraft stores or replaces the seller's pending draft.
func (r *InMemoryDraftRepository) PutDraft(_ context.Context, draft *Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.drafts[draft.SellerID] = copyListing(draft)
	return nil
}

// GetDraft retrieves the seller's pending draft.
func (r *InMemoryDraftRepository) GetDraft(_ context.Context, sellerID string) (*Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.drafts[sellerID]
	if !ok {
		return nil, ErrDraftNotFound
	}
	return copyListing(d), nil
}

// DeleteDraft removes the seller's pending draft.
func (r *InMemoryDraftRepository) DeleteDraft(_ context.Context, sellerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.drafts, sellerID)
	return nil
}

// Interface guards.
var (
	_ DraftRepository = (*InMemoryDraftRepository)(nil)
)

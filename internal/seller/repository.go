package seller

import (
	"context"
	"errors"
	"sync"
)

// Repository errors.
var (
	ErrSellerNotFound = errors.New("seller not found")
)

// Repository defines the interface for seller profile lookups.
type Repository interface {
	// Get retrieves one seller profile by ID.
	Get(ctx context.Context, id string) (*Profile, error)

	// GetByIDs retrieves profiles for a set of sellers in one batched
	// lookup. Missing sellers are simply absent from the result map.
	GetByIDs(ctx context.Context, ids []string) (map[string]*Profile, error)
}

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for MVP/testing. Production should use a database-backed implementation.
type InMemoryRepository struct {
	mu       sync.RWMutex
	profiles map[string]*Profile
}

// NewInMemoryRepository creates a new in-memory seller repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		profiles: make(map[string]*Profile),
	}
}

// Get retrieves one seller profile by ID.
func (r *InMemoryRepository) Get(_ context.Context, id string) (*Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.profiles[id]
	if !ok {
		return nil, ErrSellerNotFound
	}
	profileCopy := *p
	return &profileCopy, nil
}

// GetByIDs retrieves profiles for a set of sellers.
func (r *InMemoryRepository) GetByIDs(_ context.Context, ids []string) (map[string]*Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]*Profile, len(ids))
	for _, id := range ids {
		if p, ok := r.profiles[id]; ok {
			profileCopy := *p
			out[id] = &profileCopy
		}
	}
	return out, nil
}

// Put stores a seller profile. Test and seed helper, not part of Repository.
func (r *InMemoryRepository) Put(_ context.Context, p *Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	profileCopy := *p
	r.profiles[p.ID] = &profileCopy
	return nil
}

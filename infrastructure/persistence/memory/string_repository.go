// Package memory provides a process-local StringRepository used for local
// development and tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"string-analyzer/domain/core/entities"
	"string-analyzer/domain/core/specifications"
	"string-analyzer/domain/core/valueobjects"
)

// StringRepository stores analyzed strings in a map guarded by a mutex.
// Entities are copied on the way in and out, so callers never share state
// with the stored records.
type StringRepository struct {
	mu    sync.RWMutex
	items map[string]*entities.AnalyzedString
}

// NewStringRepository creates an empty repository
func NewStringRepository() *StringRepository {
	return &StringRepository{
		items: make(map[string]*entities.AnalyzedString),
	}
}

// Create stores s unless a record with the same ID exists
func (r *StringRepository) Create(ctx context.Context, s *entities.AnalyzedString) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := s.ID().String()
	if _, exists := r.items[key]; exists {
		return entities.NewStringExistsError(s.ID())
	}
	r.items[key] = s.Snapshot()
	return nil
}

// GetByID returns the record with the given ID
func (r *StringRepository) GetByID(ctx context.Context, id valueobjects.StringID) (*entities.AnalyzedString, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.items[id.String()]
	if !ok {
		return nil, entities.NewStringNotFoundError(id)
	}
	return s.Snapshot(), nil
}

// List returns matching records ordered by creation time, then ID
func (r *StringRepository) List(ctx context.Context, filter specifications.Filter) ([]*entities.AnalyzedString, error) {
	r.mu.RLock()
	out := make([]*entities.AnalyzedString, 0, len(r.items))
	for _, s := range r.items {
		if filter.Matches(s) {
			out = append(out, s.Snapshot())
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt().Equal(out[j].CreatedAt()) {
			return out[i].CreatedAt().Before(out[j].CreatedAt())
		}
		return out[i].ID().String() < out[j].ID().String()
	})
	return out, nil
}

// Delete removes the record with the given ID
func (r *StringRepository) Delete(ctx context.Context, id valueobjects.StringID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id.String()]; !ok {
		return entities.NewStringNotFoundError(id)
	}
	delete(r.items, id.String())
	return nil
}

// Ping always succeeds
func (r *StringRepository) Ping(ctx context.Context) error {
	return nil
}

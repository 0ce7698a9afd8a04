package ports

import (
	"context"

	"string-analyzer/domain/core/entities"
	"string-analyzer/domain/core/specifications"
	"string-analyzer/domain/core/valueobjects"
	"string-analyzer/domain/events"
)

// StringRepository defines the interface for analyzed string persistence.
// This is a port in hexagonal architecture - the domain doesn't know about the implementation.
type StringRepository interface {
	// Create persists a new analyzed string. It fails with a conflict error
	// when a record with the same ID already exists.
	Create(ctx context.Context, s *entities.AnalyzedString) error

	// GetByID retrieves an analyzed string by its content hash
	GetByID(ctx context.Context, id valueobjects.StringID) (*entities.AnalyzedString, error)

	// List returns every record matching the filter, ordered by creation time
	List(ctx context.Context, filter specifications.Filter) ([]*entities.AnalyzedString, error)

	// Delete removes a record. It fails with a not found error when absent.
	Delete(ctx context.Context, id valueobjects.StringID) error

	// Ping checks the storage backend is reachable
	Ping(ctx context.Context) error
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// Publish sends a single event
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishBatch sends multiple events
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}

// Cache defines the interface for caching
type Cache interface {
	// Get retrieves a value from cache
	Get(ctx context.Context, key string) (interface{}, bool)

	// Version returns a token to pass to SetIfUnchanged. Take it before
	// reading the value from storage.
	Version(ctx context.Context, key string) uint64

	// SetIfUnchanged stores value for ttl seconds unless key was deleted
	// after version was taken. It reports whether value was stored.
	SetIfUnchanged(ctx context.Context, key string, value interface{}, ttl int, version uint64) (bool, error)

	// Delete removes a value from cache
	Delete(ctx context.Context, key string) error
}

// StringCacheKey is the cache key under which a single record is stored.
// Reads populate it and deletes invalidate it.
func StringCacheKey(id valueobjects.StringID) string {
	return "string:" + id.String()
}

package handlers

import (
	"context"

	"string-analyzer/application/ports"
	"string-analyzer/application/queries"
	"string-analyzer/domain/core/valueobjects"

	"go.uber.org/zap"
)

// TTLFunc reports the cache lifetime in seconds. Zero or less disables caching.
type TTLFunc func() int

// GetStringHandler handles GetStringQuery
type GetStringHandler struct {
	repo   ports.StringRepository
	cache  ports.Cache
	ttl    TTLFunc
	logger *zap.Logger
}

// NewGetStringHandler creates a new GetStringHandler. cache may be nil.
func NewGetStringHandler(repo ports.StringRepository, cache ports.Cache, ttl TTLFunc, logger *zap.Logger) *GetStringHandler {
	return &GetStringHandler{
		repo:   repo,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
	}
}

// Handle returns the stored string whose value is exactly query.Value
func (h *GetStringHandler) Handle(ctx context.Context, query queries.GetStringQuery) (*queries.StringResult, error) {
	id := valueobjects.NewStringID(query.Value)
	key := ports.StringCacheKey(id)

	var version uint64
	if h.cache != nil {
		if cached, ok := h.cache.Get(ctx, key); ok {
			if result, ok := cached.(queries.StringResult); ok {
				return &result, nil
			}
		}
		// Taken before the read so a delete that lands in between is seen
		version = h.cache.Version(ctx, key)
	}

	s, err := h.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	result := queries.NewStringResult(s)

	if ttl := h.cacheTTL(); h.cache != nil && ttl > 0 {
		stored, err := h.cache.SetIfUnchanged(ctx, key, result, ttl, version)
		if err != nil {
			h.logger.Debug("Failed to cache string", zap.String("stringID", id.String()), zap.Error(err))
		} else if !stored {
			h.logger.Debug("Skipped caching string invalidated during read", zap.String("stringID", id.String()))
		}
	}

	return &result, nil
}

func (h *GetStringHandler) cacheTTL() int {
	if h.ttl == nil {
		return 0
	}
	return h.ttl()
}

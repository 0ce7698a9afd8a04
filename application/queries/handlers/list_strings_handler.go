package handlers

import (
	"context"

	"string-analyzer/application/ports"
	"string-analyzer/application/queries"

	"go.uber.org/zap"
)

// ListStringsHandler handles ListStringsQuery
type ListStringsHandler struct {
	repo   ports.StringRepository
	logger *zap.Logger
}

// NewListStringsHandler creates a new ListStringsHandler
func NewListStringsHandler(repo ports.StringRepository, logger *zap.Logger) *ListStringsHandler {
	return &ListStringsHandler{
		repo:   repo,
		logger: logger,
	}
}

// Handle lists the stored strings matching the query filter
func (h *ListStringsHandler) Handle(ctx context.Context, query queries.ListStringsQuery) (*queries.ListStringsResult, error) {
	items, err := h.repo.List(ctx, query.Filter)
	if err != nil {
		return nil, err
	}

	result := &queries.ListStringsResult{
		Data:  queries.NewStringResults(items),
		Count: len(items),
	}
	if query.Supplied {
		applied := query.Filter
		result.FiltersApplied = &applied
	}

	h.logger.Debug("Listed strings", zap.Int("count", result.Count), zap.Bool("filtered", query.Supplied))

	return result, nil
}

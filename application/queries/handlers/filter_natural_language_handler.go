package handlers

import (
	"context"
	"errors"

	"string-analyzer/application/ports"
	"string-analyzer/application/queries"
	"string-analyzer/domain/services/nlquery"
	pkgerrors "string-analyzer/pkg/errors"

	"go.uber.org/zap"
)

// FilterByNaturalLanguageHandler handles FilterByNaturalLanguageQuery
type FilterByNaturalLanguageHandler struct {
	repo   ports.StringRepository
	logger *zap.Logger
}

// NewFilterByNaturalLanguageHandler creates a new FilterByNaturalLanguageHandler
func NewFilterByNaturalLanguageHandler(repo ports.StringRepository, logger *zap.Logger) *FilterByNaturalLanguageHandler {
	return &FilterByNaturalLanguageHandler{
		repo:   repo,
		logger: logger,
	}
}

// Handle interprets the query and lists the matching strings
func (h *FilterByNaturalLanguageHandler) Handle(
	ctx context.Context,
	query queries.FilterByNaturalLanguageQuery,
) (*queries.FilterByNaturalLanguageResult, error) {
	filter, err := nlquery.Parse(query.Query)
	if err != nil {
		h.logger.Debug("Natural language query rejected", zap.String("query", query.Query), zap.Error(err))
		if errors.Is(err, nlquery.ErrConflictingFilters) {
			return nil, pkgerrors.NewUnprocessableError("Query parsed but resulted in conflicting filters").
				WithDetails(map[string]interface{}{"reason": errors.Unwrap(err).Error()}).
				WithCause(err)
		}
		return nil, pkgerrors.NewValidationError("Unable to parse natural language query: " + err.Error()).WithCause(err)
	}

	items, err := h.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &queries.FilterByNaturalLanguageResult{
		Data:  queries.NewStringResults(items),
		Count: len(items),
		InterpretedQuery: queries.InterpretedQuery{
			Original:      query.Query,
			ParsedFilters: filter,
		},
	}, nil
}

package queries

import (
	"strings"

	"string-analyzer/domain/core/specifications"
	pkgerrors "string-analyzer/pkg/errors"
)

// FilterByNaturalLanguageQuery lists stored strings matching a plain
// English description such as "palindromic strings longer than 5 characters"
type FilterByNaturalLanguageQuery struct {
	Query string
}

// Validate validates the FilterByNaturalLanguageQuery
func (q FilterByNaturalLanguageQuery) Validate() error {
	if strings.TrimSpace(q.Query) == "" {
		return pkgerrors.NewValidationError("Unable to parse natural language query: query is empty")
	}
	return nil
}

// InterpretedQuery echoes the query together with the filter it produced
type InterpretedQuery struct {
	Original      string                `json:"original"`
	ParsedFilters specifications.Filter `json:"parsed_filters"`
}

// FilterByNaturalLanguageResult represents the result of a natural language filter
type FilterByNaturalLanguageResult struct {
	Data             []StringResult   `json:"data"`
	Count            int              `json:"count"`
	InterpretedQuery InterpretedQuery `json:"interpreted_query"`
}

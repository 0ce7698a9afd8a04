package queries

import (
	"string-analyzer/domain/core/entities"
	"string-analyzer/domain/core/specifications"
	pkgerrors "string-analyzer/pkg/errors"
)

// ListStringsQuery lists stored strings matching Filter. Supplied reports
// whether the caller passed any filter parameter at all.
type ListStringsQuery struct {
	Filter   specifications.Filter
	Supplied bool
}

// Validate validates the ListStringsQuery
func (q ListStringsQuery) Validate() error {
	if err := q.Filter.Validate(); err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}
	return nil
}

// ListStringsResult represents the result of listing strings
type ListStringsResult struct {
	Data           []StringResult         `json:"data"`
	Count          int                    `json:"count"`
	FiltersApplied *specifications.Filter `json:"filters_applied"`
}

// NewStringResults converts entities into their wire representation
func NewStringResults(items []*entities.AnalyzedString) []StringResult {
	out := make([]StringResult, 0, len(items))
	for _, s := range items {
		out = append(out, NewStringResult(s))
	}
	return out
}

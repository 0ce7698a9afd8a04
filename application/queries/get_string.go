package queries

import (
	"string-analyzer/domain/core/entities"
	"string-analyzer/domain/core/valueobjects"
	pkgerrors "string-analyzer/pkg/errors"
	"string-analyzer/pkg/utils"
)

// GetStringQuery looks up a stored string by its exact value
type GetStringQuery struct {
	Value string
}

// Validate validates the GetStringQuery
func (q GetStringQuery) Validate() error {
	if q.Value == "" {
		return pkgerrors.NewValidationError("string value is required")
	}
	return nil
}

// StringResult is the wire representation of a stored string
type StringResult struct {
	ID         string                  `json:"id"`
	Value      string                  `json:"value"`
	Properties valueobjects.Properties `json:"properties"`
	CreatedAt  string                  `json:"created_at"`
}

// NewStringResult converts an entity into its wire representation
func NewStringResult(s *entities.AnalyzedString) StringResult {
	return StringResult{
		ID:         s.ID().String(),
		Value:      s.Value(),
		Properties: s.Properties(),
		CreatedAt:  utils.FormatRFC3339(s.CreatedAt()),
	}
}

// Package specifications holds the predicates used to select analyzed strings.
package specifications

import (
	"strings"
	"unicode/utf8"

	"string-analyzer/domain/core/entities"
)

// Filter selects analyzed strings by their properties. A nil field is not
// applied; a zero Filter matches everything.
type Filter struct {
	IsPalindrome      *bool   `json:"is_palindrome,omitempty"`
	MinLength         *int    `json:"min_length,omitempty"`
	MaxLength         *int    `json:"max_length,omitempty"`
	WordCount         *int    `json:"word_count,omitempty"`
	ContainsCharacter *string `json:"contains_character,omitempty"`
}

// FilterError describes why a filter cannot be applied
type FilterError struct {
	Field  string
	Reason string
}

func (e *FilterError) Error() string {
	return e.Field + " " + e.Reason
}

// Validate checks the filter is internally consistent
func (f Filter) Validate() error {
	if f.MinLength != nil && *f.MinLength < 0 {
		return &FilterError{Field: "min_length", Reason: "must be non-negative"}
	}
	if f.MaxLength != nil && *f.MaxLength < 0 {
		return &FilterError{Field: "max_length", Reason: "must be non-negative"}
	}
	if f.MinLength != nil && f.MaxLength != nil && *f.MinLength > *f.MaxLength {
		return &FilterError{Field: "min_length", Reason: "cannot be greater than max_length"}
	}
	if f.WordCount != nil && *f.WordCount < 0 {
		return &FilterError{Field: "word_count", Reason: "must be non-negative"}
	}
	if f.ContainsCharacter != nil && utf8.RuneCountInString(*f.ContainsCharacter) != 1 {
		return &FilterError{Field: "contains_character", Reason: "must be a single character"}
	}
	return nil
}

// IsEmpty reports whether no predicate is set
func (f Filter) IsEmpty() bool {
	return f.IsPalindrome == nil &&
		f.MinLength == nil &&
		f.MaxLength == nil &&
		f.WordCount == nil &&
		f.ContainsCharacter == nil
}

// Matches evaluates the filter against a single string
func (f Filter) Matches(s *entities.AnalyzedString) bool {
	props := s.Properties()

	if f.IsPalindrome != nil && props.IsPalindrome != *f.IsPalindrome {
		return false
	}
	if f.MinLength != nil && props.Length < *f.MinLength {
		return false
	}
	if f.MaxLength != nil && props.Length > *f.MaxLength {
		return false
	}
	if f.WordCount != nil && props.WordCount != *f.WordCount {
		return false
	}
	if f.ContainsCharacter != nil && !strings.Contains(s.Value(), *f.ContainsCharacter) {
		return false
	}
	return true
}

// Apply returns the strings that match the filter, preserving order
func (f Filter) Apply(items []*entities.AnalyzedString) []*entities.AnalyzedString {
	matched := make([]*entities.AnalyzedString, 0, len(items))
	for _, item := range items {
		if f.Matches(item) {
			matched = append(matched, item)
		}
	}
	return matched
}

// Bool returns a pointer to v
func Bool(v bool) *bool { return &v }

// Int returns a pointer to v
func Int(v int) *int { return &v }

// String returns a pointer to v
func String(v string) *string { return &v }

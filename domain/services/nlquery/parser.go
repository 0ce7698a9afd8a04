// Package nlquery maps a fixed set of English phrases onto string filters.
//
// It is a pattern table, not a grammar: every rule that matches contributes
// its predicate, and the combined filter is validated at the end. Queries are
// matched case-insensitively, so a letter extracted by "the letter X" is
// always lower case.
package nlquery

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"string-analyzer/domain/core/specifications"
)

var (
	// ErrEmptyQuery is returned for a blank query
	ErrEmptyQuery = errors.New("query cannot be empty")

	// ErrNoFilters is returned when no rule matched
	ErrNoFilters = errors.New("could not extract any valid filters from the query")

	// ErrConflictingFilters matches any ConflictError via errors.Is
	ErrConflictingFilters = errors.New("query parsed but resulted in conflicting filters")
)

// ConflictError is returned when the query was understood but the
// predicates it produced cannot hold together.
type ConflictError struct {
	Filter specifications.Filter
	Cause  error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: %v", ErrConflictingFilters, e.Cause)
}

func (e *ConflictError) Unwrap() error { return e.Cause }

// Is reports ErrConflictingFilters as a match
func (e *ConflictError) Is(target error) bool { return target == ErrConflictingFilters }

type rule struct {
	pattern *regexp.Regexp
	apply   func(f *specifications.Filter, m []string) bool
}

var numberWords = map[string]int{
	"zero": 0, "one": 1, "single": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
}

const numberAlt = `(\d+|zero|one|single|two|three|four|five|six|seven|eight|nine|ten)`

var rules = []rule{
	{
		pattern: regexp.MustCompile(`palindrom`),
		apply: func(f *specifications.Filter, _ []string) bool {
			f.IsPalindrome = specifications.Bool(true)
			return true
		},
	},
	{
		// "more than 2 words" is a bound, not an exact count
		pattern: regexp.MustCompile(`(\b(?:than|least|most) )?\b` + numberAlt + ` words?\b`),
		apply: func(f *specifications.Filter, m []string) bool {
			n, ok := parseNumber(m[2])
			if !ok || m[1] != "" {
				return false
			}
			f.WordCount = specifications.Int(n)
			return true
		},
	},
	{
		pattern: regexp.MustCompile(`\b(?:longer|more) than (\d+)\b( words?\b)?`),
		apply: func(f *specifications.Filter, m []string) bool {
			n, ok := parseNumber(m[1])
			if !ok || m[2] != "" {
				return false
			}
			f.MinLength = specifications.Int(n + 1)
			return true
		},
	},
	{
		pattern: regexp.MustCompile(`\b(?:shorter|less|fewer) than (\d+)\b( words?\b)?`),
		apply: func(f *specifications.Filter, m []string) bool {
			n, ok := parseNumber(m[1])
			if !ok || m[2] != "" {
				return false
			}
			f.MaxLength = specifications.Int(n - 1)
			return true
		},
	},
	{
		pattern: regexp.MustCompile(`\bat least (\d+) (?:characters?|chars?|letters?)\b`),
		apply: func(f *specifications.Filter, m []string) bool {
			n, ok := parseNumber(m[1])
			if !ok {
				return false
			}
			f.MinLength = specifications.Int(n)
			return true
		},
	},
	{
		pattern: regexp.MustCompile(`\bat most (\d+) (?:characters?|chars?|letters?)\b`),
		apply: func(f *specifications.Filter, m []string) bool {
			n, ok := parseNumber(m[1])
			if !ok {
				return false
			}
			f.MaxLength = specifications.Int(n)
			return true
		},
	},
	{
		pattern: regexp.MustCompile(`\b(?:containing|contains|contain|with|has|having) the (?:letter|character) (\S)`),
		apply: func(f *specifications.Filter, m []string) bool {
			f.ContainsCharacter = specifications.String(m[1])
			return true
		},
	},
	{
		pattern: regexp.MustCompile(`\bthe first vowel\b`),
		apply: func(f *specifications.Filter, _ []string) bool {
			f.ContainsCharacter = specifications.String("a")
			return true
		},
	},
}

// Parse interprets query and returns the filter it describes
func Parse(query string) (specifications.Filter, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return specifications.Filter{}, ErrEmptyQuery
	}

	var filter specifications.Filter
	matched := false
	for _, r := range rules {
		m := r.pattern.FindStringSubmatch(q)
		if m == nil {
			continue
		}
		if r.apply(&filter, m) {
			matched = true
		}
	}

	if !matched {
		return specifications.Filter{}, ErrNoFilters
	}

	if err := filter.Validate(); err != nil {
		return filter, &ConflictError{Filter: filter, Cause: err}
	}

	return filter, nil
}

func parseNumber(s string) (int, bool) {
	if n, ok := numberWords[s]; ok {
		return n, true
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

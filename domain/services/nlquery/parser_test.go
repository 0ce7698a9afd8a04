package nlquery

import (
	"errors"
	"testing"

	"string-analyzer/domain/core/specifications"

	"github.com/google/go-cmp/cmp"
)

func TestParse(t *testing.T) {
	b := specifications.Bool
	i := specifications.Int
	s := specifications.String

	tests := []struct {
		query string
		want  specifications.Filter
	}{
		{"all single word palindromic strings", specifications.Filter{IsPalindrome: b(true), WordCount: i(1)}},
		{"strings longer than 10 characters", specifications.Filter{MinLength: i(11)}},
		{"palindromic strings that contain the first vowel", specifications.Filter{IsPalindrome: b(true), ContainsCharacter: s("a")}},
		{"strings containing the letter z", specifications.Filter{ContainsCharacter: s("z")}},
		{"Strings Containing The Letter Q", specifications.Filter{ContainsCharacter: s("q")}},
		{"strings with the letter x that are palindromes", specifications.Filter{IsPalindrome: b(true), ContainsCharacter: s("x")}},
		{"one word strings", specifications.Filter{WordCount: i(1)}},
		{"two words", specifications.Filter{WordCount: i(2)}},
		{"three words", specifications.Filter{WordCount: i(3)}},
		{"strings of 4 words", specifications.Filter{WordCount: i(4)}},
		{"shorter than 5 characters", specifications.Filter{MaxLength: i(4)}},
		{"strings with less than 8 characters", specifications.Filter{MaxLength: i(7)}},
		{"more than 3 and fewer than 9 characters", specifications.Filter{MinLength: i(4), MaxLength: i(8)}},
		{"at least 3 characters", specifications.Filter{MinLength: i(3)}},
		{"at most 12 chars", specifications.Filter{MaxLength: i(12)}},
		{"  palindrome  ", specifications.Filter{IsPalindrome: b(true)}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, err := Parse(tt.query)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.query, err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse(%q) mismatch (-want +got):\n%s", tt.query, diff)
			}
		})
	}
}

func TestParseWordBoundsAreNotExactCounts(t *testing.T) {
	_, err := Parse("more than 2 words")
	if !errors.Is(err, ErrNoFilters) {
		t.Fatalf("expected ErrNoFilters, got %v", err)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		wantErr error
	}{
		{"empty", "", ErrEmptyQuery},
		{"blank", "   ", ErrEmptyQuery},
		{"nothing recognised", "show me something nice", ErrNoFilters},
		{"dangling letter phrase", "containing the letter", ErrNoFilters},
		{"min above max", "longer than 10 and shorter than 5", ErrConflictingFilters},
		{"negative max", "shorter than 0 characters", ErrConflictingFilters},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.query)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Parse(%q) error = %v, want %v", tt.query, err, tt.wantErr)
			}
		})
	}
}

func TestConflictErrorCarriesFilter(t *testing.T) {
	_, err := Parse("longer than 10 and shorter than 5")

	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected *ConflictError, got %T", err)
	}
	want := specifications.Filter{MinLength: specifications.Int(11), MaxLength: specifications.Int(4)}
	if diff := cmp.Diff(want, conflict.Filter); diff != "" {
		t.Errorf("conflict filter mismatch (-want +got):\n%s", diff)
	}
}

package valueobjects

import (
	"strings"
	"unicode"
)

// Properties holds everything derived from a value at analysis time
type Properties struct {
	Length                int            `json:"length"`
	IsPalindrome          bool           `json:"is_palindrome"`
	UniqueCharacters      int            `json:"unique_characters"`
	WordCount             int            `json:"word_count"`
	SHA256Hash            string         `json:"sha256_hash"`
	CharacterFrequencyMap map[string]int `json:"character_frequency_map"`
}

// Analyze computes the properties of value in a single pass over its runes.
// Lengths and counts are in Unicode code points, not bytes.
func Analyze(value string) Properties {
	freq := make(map[string]int)
	cleaned := make([]rune, 0, len(value))
	length := 0

	for _, r := range value {
		length++
		freq[string(r)]++
		if keepForPalindrome(r) {
			cleaned = append(cleaned, unicode.ToLower(r))
		}
	}

	return Properties{
		Length:                length,
		IsPalindrome:          isPalindrome(cleaned),
		UniqueCharacters:      len(freq),
		WordCount:             len(strings.Fields(value)),
		SHA256Hash:            NewStringID(value).String(),
		CharacterFrequencyMap: freq,
	}
}

// IsPalindrome reports whether value reads the same in both directions,
// ignoring case and anything that is not a letter or digit.
func IsPalindrome(value string) bool {
	cleaned := make([]rune, 0, len(value))
	for _, r := range value {
		if keepForPalindrome(r) {
			cleaned = append(cleaned, unicode.ToLower(r))
		}
	}
	return isPalindrome(cleaned)
}

func keepForPalindrome(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r)
}

func isPalindrome(runes []rune) bool {
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		if runes[i] != runes[j] {
			return false
		}
	}
	return true
}

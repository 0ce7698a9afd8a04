package valueobjects

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyze(t *testing.T) {
	t.Run("computes every property", func(t *testing.T) {
		props := Analyze("hello world")

		assert.Equal(t, 11, props.Length)
		assert.False(t, props.IsPalindrome)
		assert.Equal(t, 8, props.UniqueCharacters)
		assert.Equal(t, 2, props.WordCount)
		assert.Equal(t, "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9", props.SHA256Hash)
		assert.Equal(t, map[string]int{
			"h": 1, "e": 1, "l": 3, "o": 2, " ": 1, "w": 1, "r": 1, "d": 1,
		}, props.CharacterFrequencyMap)
	})

	t.Run("counts code points rather than bytes", func(t *testing.T) {
		props := Analyze("héé")

		assert.Equal(t, 3, props.Length)
		assert.Equal(t, 2, props.UniqueCharacters)
		assert.Equal(t, 2, props.CharacterFrequencyMap["é"])
	})

	t.Run("unique characters are case sensitive", func(t *testing.T) {
		props := Analyze("Aa")

		assert.Equal(t, 2, props.UniqueCharacters)
		assert.True(t, props.IsPalindrome)
	})

	t.Run("word count splits on any whitespace run", func(t *testing.T) {
		assert.Equal(t, 3, Analyze("  one\ttwo\n\nthree  ").WordCount)
		assert.Equal(t, 0, Analyze("   ").WordCount)
	})
}

func TestIsPalindrome(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"racecar", true},
		{"Racecar", true},
		{"A man, a plan, a canal: Panama", true},
		{"No 'x' in Nixon", true},
		{"12321", true},
		{"½a", false},
		{"Ⅻ x Ⅻ", true},
		{"hello", false},
		{"ab", false},
		{"!!!", true},
		{"a", true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, IsPalindrome(tt.value))
			assert.Equal(t, tt.want, Analyze(tt.value).IsPalindrome)
		})
	}
}

func TestStringID(t *testing.T) {
	t.Run("is deterministic", func(t *testing.T) {
		a := NewStringID("hello")
		b := NewStringID("hello")

		assert.True(t, a.Equals(b))
		assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", a.String())
	})

	t.Run("differs for different values", func(t *testing.T) {
		assert.False(t, NewStringID("hello").Equals(NewStringID("Hello")))
	})

	t.Run("round trips through its hash", func(t *testing.T) {
		id := NewStringID("round trip")
		parsed, err := StringIDFromHash(id.String())
		require.NoError(t, err)
		assert.True(t, id.Equals(parsed))
	})

	t.Run("rejects malformed hashes", func(t *testing.T) {
		_, err := StringIDFromHash("abc")
		assert.Error(t, err)

		_, err = StringIDFromHash("zz24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824")
		assert.Error(t, err)
	})

	t.Run("zero value", func(t *testing.T) {
		assert.True(t, StringID{}.IsZero())
		assert.False(t, NewStringID("").IsZero())
	})
}

package valueobjects

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// StringID identifies an analyzed string. It is the lowercase hex SHA-256
// digest of the value, so equal values always share an ID.
type StringID struct {
	value string
}

// NewStringID derives the ID of a value
func NewStringID(value string) StringID {
	sum := sha256.Sum256([]byte(value))
	return StringID{value: hex.EncodeToString(sum[:])}
}

// StringIDFromHash wraps an already computed digest, e.g. one read back from storage
func StringIDFromHash(hash string) (StringID, error) {
	if len(hash) != sha256.Size*2 {
		return StringID{}, errors.New("string ID must be a 64 character hex digest")
	}
	if _, err := hex.DecodeString(hash); err != nil {
		return StringID{}, errors.New("string ID must be hex encoded")
	}
	return StringID{value: hash}, nil
}

// String returns the hex digest
func (id StringID) String() string {
	return id.value
}

// Equals checks if two StringIDs are equal
func (id StringID) Equals(other StringID) bool {
	return id.value == other.value
}

// IsZero checks if the StringID is the zero value
func (id StringID) IsZero() bool {
	return id.value == ""
}

// MarshalJSON implements json.Marshaler
func (id StringID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + id.value + `"`), nil
}

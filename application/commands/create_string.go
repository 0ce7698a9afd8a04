package commands

import (
	"unicode/utf8"

	pkgerrors "string-analyzer/pkg/errors"
)

// CreateStringCommand asks for a string to be analyzed and stored
type CreateStringCommand struct {
	Value string `json:"value"`
}

// Validate validates the command. Blank values are rejected by the entity
// itself so that the same rule applies to every entry point.
func (cmd CreateStringCommand) Validate() error {
	if !utf8.ValidString(cmd.Value) {
		return pkgerrors.NewUnprocessableError("string value must be valid UTF-8")
	}
	return nil
}

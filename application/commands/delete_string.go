package commands

import pkgerrors "string-analyzer/pkg/errors"

// DeleteStringCommand removes the record stored for Value
type DeleteStringCommand struct {
	Value string `json:"value"`
}

// Validate validates the command
func (cmd DeleteStringCommand) Validate() error {
	if cmd.Value == "" {
		return pkgerrors.NewValidationError("string value is required")
	}
	return nil
}

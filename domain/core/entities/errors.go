package entities

import (
	"string-analyzer/domain/core/valueobjects"
	pkgerrors "string-analyzer/pkg/errors"
)

// NewStringNotFoundError is returned by repositories when no record has the given ID
func NewStringNotFoundError(id valueobjects.StringID) *pkgerrors.AppError {
	return pkgerrors.NewNotFoundError("String does not exist in the system").
		WithCode("STRING_NOT_FOUND").
		WithDetails(map[string]interface{}{"id": id.String()})
}

// NewStringExistsError is returned by repositories when a record with the same ID is already stored
func NewStringExistsError(id valueobjects.StringID) *pkgerrors.AppError {
	return pkgerrors.NewConflictError("String already exists in the system").
		WithCode("STRING_EXISTS").
		WithDetails(map[string]interface{}{"id": id.String()})
}

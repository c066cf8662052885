package config

import (
	"errors"
	"fmt"

	"github.com/dshills/lineindex/internal/config/loader"
)

// Errors returned by configuration operations.
var (
	// ErrValidationFailed indicates a setting fails validation.
	ErrValidationFailed = errors.New("validation failed")

	// ErrUnknownSetting indicates a key that no section defines.
	ErrUnknownSetting = errors.New("unknown setting")
)

// ParseError represents an error while parsing a configuration file.
type ParseError = loader.ParseError

// ValidationError describes a validation failure for a setting.
type ValidationError struct {
	// Path is the setting path that failed validation.
	Path string
	// Message describes the validation error.
	Message string
	// Value is the invalid value.
	Value any
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (value: %v)", e.Path, e.Message, e.Value)
}

// Is matches ErrValidationFailed.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

package engine

import "errors"

// Errors returned by engine operations.
var (
	// ErrRangeInvalid indicates a character position or range outside the
	// document, or a negative length.
	ErrRangeInvalid = errors.New("invalid range")

	// ErrClosed indicates an operation on an engine after Close.
	ErrClosed = errors.New("engine is closed")

	// ErrMarkerInvalid indicates a marker number outside [0, 31] or an
	// unknown marker symbol.
	ErrMarkerInvalid = errors.New("invalid marker")
)

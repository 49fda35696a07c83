package models

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by the storage layer and the HTTP handlers.
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
)

// Invalidf wraps ErrValidation with a field-level explanation.
func Invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

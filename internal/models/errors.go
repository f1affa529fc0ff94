package models

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is matched by every structural validation failure
	ErrValidation = errors.New("validation failed")

	// ErrIncompatibleUnits is returned when amounts of different unit
	// categories would have to be converted into each other
	ErrIncompatibleUnits = fmt.Errorf("%w: incompatible units", ErrValidation)
)

// ValidationError describes a value that violates a structural invariant
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Reason
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

package domain

import (
	"errors"
	"strings"
)

var (
	ErrValidation       = errors.New("validation failed")
	ErrInvalidField     = errors.New("invalid field")
	ErrAssetPersistence = errors.New("failed to upload ticket design")
)

// MissingFieldError lists the required fields that were absent or unusable.
type MissingFieldError struct {
	Fields []string
}

func (e *MissingFieldError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

func (e *MissingFieldError) Is(target error) bool {
	return target == ErrValidation
}

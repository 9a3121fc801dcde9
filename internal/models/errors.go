package models

import "github.com/myrjola/ikigai/internal/errors"

var (
	// ErrNotFound is returned by every store when the requested record does not exist.
	ErrNotFound = errors.NewSentinel("not found")
	// ErrConflict is returned by every store when a unique constraint would be violated.
	ErrConflict = errors.NewSentinel("conflict")
	// ErrInvalidResult is returned when an AI generated result lacks its headline field.
	ErrInvalidResult = errors.NewSentinel("invalid result")
)

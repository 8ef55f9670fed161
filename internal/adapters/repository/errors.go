package repository

import (
	"errors"
	"fmt"
)

// Sentinel kinds for relay store errors.
var (
	ErrValidation = errors.New("missing or invalid attendees data")
	ErrNotFound   = errors.New("data not found")
)

// NotFoundError reports a missing key together with the keys that do exist.
type NotFoundError struct {
	Key       string
	Available []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: key %q", ErrNotFound, e.Key)
}

// Unwrap lets errors.Is(err, ErrNotFound) match.
func (e *NotFoundError) Unwrap() error { return ErrNotFound }

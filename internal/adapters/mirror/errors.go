package mirror

import "errors"

// Sentinel kinds for mirror errors.
var (
	ErrWrite    = errors.New("mirror write failed")
	ErrEmptyKey = errors.New("mirror: record has no key")
)

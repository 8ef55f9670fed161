package api

import (
	"errors"
	"fmt"

	repository "github.com/okian/eventmatch/internal/adapters/repository"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrNotFound     = errors.New("not found")
	ErrInternal     = errors.New("internal error")
	ErrBodyTooLarge = errors.New("request body too large")
)

// Error tags an underlying error with the operation that failed and a kind
// used to pick the HTTP status.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// Wrap tags err with op and infers the kind from the store error taxonomy.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Kind: kindOf(err), Err: err}
}

// WrapKind tags err with op and an explicit kind.
func WrapKind(op string, kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Kind: kind, Err: err}
}

func kindOf(err error) error {
	var tagged *Error
	switch {
	case errors.As(err, &tagged):
		return tagged.Kind
	case errors.Is(err, repository.ErrValidation):
		return ErrBadRequest
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	default:
		return ErrInternal
	}
}

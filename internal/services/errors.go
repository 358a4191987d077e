package services

import (
	"database/sql"
	"errors"
)

// ErrNotFound is returned when a looked-up record does not exist. It is
// distinct from store failures, which are returned wrapped.
var ErrNotFound = errors.New("not found")

// ValidationError carries a message meant for the admin user; no write was
// attempted.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func invalid(msg string) error { return &ValidationError{Msg: msg} }

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

package hosting

import "errors"

var (
	// ErrNotFound is returned when a user, service or checkout session cannot
	// be resolved.
	ErrNotFound = errors.New("not found")
	// ErrValidation is returned for malformed or incomplete input before any
	// state is touched.
	ErrValidation = errors.New("validation failed")
	// ErrForbidden is returned when a caller tries to act on a resource owned
	// by someone else.
	ErrForbidden = errors.New("forbidden")
)

package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a uniqueness rule was violated, e.g. a
	// duplicate tax record for the same year and period.
	ErrAlreadyExists = errors.New("already exists")
	// ErrConflict indicates the entity changed or disappeared under us,
	// e.g. a delete that affected zero rows.
	ErrConflict = errors.New("conflict")
	// ErrInvalid indicates malformed input rejected before any write.
	ErrInvalid = errors.New("invalid input")
	// ErrUnauthenticated indicates the request carried no actor id.
	ErrUnauthenticated = errors.New("unauthenticated")
)

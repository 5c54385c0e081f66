package datastore

import "errors"

// Sentinel errors for the expected failure cases of the data-access layer.
// Unexpected store failures are returned wrapped, with these reserved for
// outcomes the handlers branch on.
var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyRated indicates a (book, user) rating pair already exists.
	// This is a soft outcome, not a failure: the existing rating stands.
	ErrAlreadyRated = errors.New("already rated")

	// ErrNotOwner indicates the acting user is not the book's author.
	ErrNotOwner = errors.New("not the book owner")

	// ErrInvalidStar indicates a star value outside the 0..5 range.
	ErrInvalidStar = errors.New("star must be between 0 and 5")
)

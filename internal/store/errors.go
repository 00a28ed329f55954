package store

import "errors"

var (
	// ErrNotFound is returned when a record id or username does not resolve.
	ErrNotFound = errors.New("store: not found")

	// ErrUsernameTaken is returned when a user insert hits the unique
	// username constraint.
	ErrUsernameTaken = errors.New("store: username already taken")
)

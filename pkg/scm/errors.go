package scm

import "errors"

var (
	// ErrNotFound means the row does not exist or lies outside the
	// caller's scope. The two cases are deliberately indistinguishable on
	// reads so an id probe cannot confirm existence.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput means the payload is malformed, for example an
	// unknown column, a wrongly typed value, or ambiguous ownership.
	ErrInvalidInput = errors.New("invalid input")
)

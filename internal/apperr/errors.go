// Package apperr defines sentinel errors shared across packages.
package apperr

import "errors"

var (
	ErrAlreadyExists   = errors.New("already exists")
	ErrInvalidArgument = errors.New("invalid argument")
)

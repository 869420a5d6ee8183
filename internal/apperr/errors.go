// Package apperr holds sentinel errors shared across packages.
package apperr

import "errors"

var (
	ErrNotFound    = errors.New("not found")
	ErrBusy        = errors.New("sync already running")
	ErrInvalidPath = errors.New("invalid path")
	ErrBadStatus   = errors.New("unexpected response status")
)

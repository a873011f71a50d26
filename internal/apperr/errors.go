// Package apperr holds the error kinds shared across layers.
// Callers wrap them with fmt.Errorf and classify with errors.Is.
package apperr

import "errors"

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
	ErrFetch      = errors.New("lead source unavailable")
	ErrStorage    = errors.New("storage failure")

	// ErrGenerationUnavailable never leaves the summary package.
	ErrGenerationUnavailable = errors.New("generation unavailable")
)

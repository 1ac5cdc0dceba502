// Package domain provides shared domain-level sentinel errors.
package domain

import "errors"

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrValidation indicates the caller supplied invalid input.
// Wrap it with the offending field: fmt.Errorf("%w: title is required", ErrValidation).
var ErrValidation = errors.New("validation failed")

// ErrMalformedData indicates persisted data could not be decoded.
var ErrMalformedData = errors.New("malformed data")

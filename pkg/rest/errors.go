package rest

import "errors"

// ErrInvalidState is returned when a builder is used in a call order or verb
// combination that cannot produce a valid request, or after it was consumed.
var ErrInvalidState = errors.New("invalid builder state")

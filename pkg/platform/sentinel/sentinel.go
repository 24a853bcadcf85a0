package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Registries and scopes return these
// (optionally wrapped) so the dispatcher can translate them into coded errors.
//
// - ErrNotFound: no instance, record, or named context exists for the key
// - ErrConflict: a named context was declared twice
// - ErrInvalidState: a value is in the wrong state for the requested operation
// - ErrNotComparable: a discriminator cannot be used as a map key
var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrInvalidState  = errors.New("invalid state")
	ErrNotComparable = errors.New("not comparable")
)

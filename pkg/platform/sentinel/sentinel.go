package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores, clients and the scheduler return
// these (optionally wrapped) so services and processors can decide what to do next.
//
// These describe the state of a resource, not a validation failure:
// - ErrNotFound: entity does not exist in store
// - ErrConflict: a versioned update lost the race, or a uniqueness rule was violated
// - ErrInvalidState: entity in wrong state for requested transition
// - ErrUnavailable: collaborator or resource temporarily unavailable (timeout, 5xx, open circuit)
// - ErrLockHeld: a scheduler lock is held by another node
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
	ErrLockHeld     = errors.New("lock held")
)

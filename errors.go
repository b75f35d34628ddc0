package captable

import "errors"

// The package reports all validation failures as one of three sentinel
// errors, wrapped with context. Callers discriminate with errors.Is and are
// responsible for translating them into user-facing responses. A failed
// operation performs no mutation.
var (
	// ErrNotFound reports a reference to a share class, holder, pool, grant
	// or round that does not exist in this ledger.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState reports an action that is not permitted in the
	// entity's current lifecycle state, such as exercising a draft grant or
	// pricing a round against an empty ledger.
	ErrInvalidState = errors.New("invalid state")

	// ErrInsufficientCapacity reports an operation that would exceed an
	// authorized, available or vested share limit.
	ErrInsufficientCapacity = errors.New("insufficient capacity")
)

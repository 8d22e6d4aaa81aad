package service

import "errors"

// Failures a caller is expected to branch on.  Handlers map them to HTTP
// statuses; anything else is an internal error.
var (
	ErrCapacityExceeded = errors.New("not enough seats available")
	ErrNotFound         = errors.New("not found")
	ErrUnauthorized     = errors.New("not allowed")
	ErrInvalidQuantity  = errors.New("quantity must be at least 1")
	ErrInvalidInput     = errors.New("invalid input")
)

// ErrConsistencyViolation means the seat counters may no longer match the
// live tickets and nothing could be queued to fix it.  It is always
// logged with the event, section and delta involved.
var ErrConsistencyViolation = errors.New("inventory consistency violation")

package domain

import "errors"

var (
	ErrNotFound  = errors.New("not found")
	ErrNoTicks   = errors.New("no ticks produced from input")
	ErrBadRow    = errors.New("malformed input row")
	ErrInvariant = errors.New("ledger invariant violated")
	ErrLockHeld  = errors.New("lock already held")
)

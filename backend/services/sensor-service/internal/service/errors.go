package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput marks requests rejected before touching the store.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidTimestamp is returned for a missing or unparseable reading timestamp.
	ErrInvalidTimestamp = fmt.Errorf("%w: invalid timestamp", ErrInvalidInput)
	// ErrInvalidDate is returned for a calendar date that is not YYYY-MM-DD.
	ErrInvalidDate = fmt.Errorf("%w: invalid date", ErrInvalidInput)
	// ErrStoreUnavailable wraps any reading store failure, timeouts included.
	ErrStoreUnavailable = errors.New("reading store unavailable")
	// ErrNotFound is returned when the store holds no matching reading.
	ErrNotFound = errors.New("not found")
)

func storeUnavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStoreUnavailable, op, err)
}

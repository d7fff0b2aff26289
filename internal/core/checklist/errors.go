package checklist

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a checklist or item does not exist.
	ErrNotFound = errors.New("checklist item not found")
	// ErrDuplicateID is returned when loaded data contains two items with
	// the same ID. The load is rejected as a whole.
	ErrDuplicateID = errors.New("duplicate item id")
	// ErrInvalidPatch is returned for malformed patches. These are
	// programmer errors and never reach a store.
	ErrInvalidPatch = errors.New("invalid patch")
)

// MutationError reports a persistence write that was rejected after an
// optimistic apply. By the time the caller sees it the store has already
// been rolled back; retry is the caller's decision.
type MutationError struct {
	ItemID string
	Err    error
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("mutation failed for item %s: %v", e.ItemID, e.Err)
}

func (e *MutationError) Unwrap() error {
	return e.Err
}

package orders

import "errors"

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrInvalidInput  = errors.New("invalid order input")

	// ErrInvalidTransition: the requested status change is not in the
	// transition table.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrTransitionConflict: another caller moved the order first. The
	// transition may be retried against the new state.
	ErrTransitionConflict = errors.New("concurrent status transition")

	// ErrPersistence: the order store failed after stock was already
	// reserved. Compensation has run; the whole CreateOrder is safe to
	// retry from scratch.
	ErrPersistence = errors.New("order persistence failed")
)

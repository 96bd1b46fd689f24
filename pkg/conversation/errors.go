package conversation

import "errors"

// Guard sentinels returned by Controller operations. A guarded operation
// declines to run and leaves every piece of controller state untouched; none
// of these indicate a fault that needs recovery.
var (
	// ErrBusy is returned when a generation call or a context injection is
	// already in flight. The blocked attempt is dropped, not queued.
	ErrBusy = errors.New("conversation: another call is in flight")

	// ErrLocked is returned when the current state does not allow the
	// requested action.
	ErrLocked = errors.New("conversation: action not allowed in this state")

	// ErrEmptyDraft is returned when an action requires at least one
	// non-empty draft field.
	ErrEmptyDraft = errors.New("conversation: draft is empty")
)

// ErrInvalidConfig is returned when a Config names no provider or an
// unknown one.
var ErrInvalidConfig = errors.New("conversation: invalid configuration")

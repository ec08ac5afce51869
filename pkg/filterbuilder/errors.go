package filterbuilder

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrNilSchema indicates New was called without a schema.
	ErrNilSchema = errors.New("schema is required")

	// ErrCallbackPanic indicates a host callback panicked.
	ErrCallbackPanic = errors.New("callback panicked")
)

// CallbackError wraps a failure inside a host callback.
type CallbackError struct {
	// Callback names the failing hook: "transform_filter", "on_change" or
	// "on_filter_change".
	Callback string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *CallbackError) Error() string {
	return fmt.Sprintf("callback %s: %v", e.Callback, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *CallbackError) Unwrap() error {
	return e.Err
}

package palette

import (
	"errors"
	"fmt"
)

var (
	// ErrProviderTimeout is wrapped by ProviderError when a provider misses its deadline.
	ErrProviderTimeout = errors.New("provider timed out")
	// ErrProviderPanic is wrapped by ProviderError when a provider panics.
	ErrProviderPanic = errors.New("provider panicked")
	// ErrInvalidProvider is returned when registering a provider without an id or search function.
	ErrInvalidProvider = errors.New("invalid provider")
	// ErrResultNotFound is returned when selecting a result that is not displayed.
	ErrResultNotFound = errors.New("result not found")
	// ErrDisposed is returned by controller operations after Dispose.
	ErrDisposed = errors.New("palette disposed")
)

// ProviderError records one provider's failure during a fan-out. It is
// logged and handed to the engine's error handler, never returned to callers.
type ProviderError struct {
	ProviderID string
	// Initial is true when the failure came from InitialResults.
	Initial bool
	Err     error
}

func (e *ProviderError) Error() string {
	op := "search"
	if e.Initial {
		op = "initial results"
	}
	return fmt.Sprintf("provider %s %s: %v", e.ProviderID, op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

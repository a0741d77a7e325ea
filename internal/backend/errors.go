package backend

import (
	"errors"
	"fmt"
)

// unavailableError signals a backend whose model never loaded, failed to load
// or was closed. The HTTP layer maps it to 503.
type unavailableError struct {
	backend string
	cause   error
}

func (e unavailableError) Error() string {
	if e.cause == nil {
		return "backend unavailable: " + e.backend
	}
	return "backend unavailable: " + e.backend + ": " + e.cause.Error()
}

func (e unavailableError) Unwrap() error { return e.cause }

// ErrUnavailable constructs a BackendUnavailable error.
func ErrUnavailable(backend string, cause error) error {
	return unavailableError{backend: backend, cause: cause}
}

// IsBackendUnavailable reports whether err indicates an unloaded backend.
func IsBackendUnavailable(err error) bool {
	var ue unavailableError
	return errors.As(err, &ue)
}

// generationError wraps a failure raised by the runtime while streaming.
type generationError struct {
	backend string
	cause   error
}

func (e generationError) Error() string {
	return "generation failed on " + e.backend + ": " + e.cause.Error()
}

func (e generationError) Unwrap() error { return e.cause }

// IsGenerationFailure reports whether err was raised by a runtime mid-generation.
func IsGenerationFailure(err error) bool {
	var ge generationError
	return errors.As(err, &ge)
}

// panicError carries a recovered runtime panic.
type panicError struct{ value any }

func (e panicError) Error() string { return fmt.Sprintf("runtime panic: %v", e.value) }

package manager

import "errors"

type backendNotFoundError struct{ name string }

func (e backendNotFoundError) Error() string { return "backend not found: " + e.name }

// ErrBackendNotFound returns an error for a name that is not configured.
func ErrBackendNotFound(name string) error { return backendNotFoundError{name: name} }

// IsBackendNotFound reports whether err names an unknown backend.
func IsBackendNotFound(err error) bool {
	var e backendNotFoundError
	return errors.As(err, &e)
}

// ErrClosed is returned by operations on a closed Manager.
var ErrClosed = errors.New("manager closed")

package dispatch

import (
	"errors"
	"strings"
)

var (
	// ErrPoolClosed is returned when work is submitted after Close.
	ErrPoolClosed = errors.New("dispatch: worker pool closed")
	// ErrNoBackends is returned when a dispatch names no backends.
	ErrNoBackends = errors.New("dispatch: no backends requested")
)

// AggregateError reports that every requested backend failed. The full
// result, including each backend's failure, is attached.
type AggregateError struct {
	Result DispatchResult
}

func (e *AggregateError) Error() string {
	var b strings.Builder
	b.WriteString("all backends failed")
	for _, name := range e.Result.Names() {
		r := e.Result.Results[name]
		b.WriteString("; ")
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(r.ErrorMessage())
	}
	return b.String()
}

// IsAggregateFailure reports whether err means all backends failed.
func IsAggregateFailure(err error) bool {
	var ae *AggregateError
	return errors.As(err, &ae)
}

package prompt

import (
	"errors"
	"fmt"
)

// FormattingError reports a malformed applicant record. It is raised before
// any backend is invoked.
type FormattingError struct {
	Field  string
	Reason string
}

func (e *FormattingError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func formattingErrorf(field, format string, args ...any) error {
	return &FormattingError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// IsFormattingError reports whether err (or anything it wraps) is a FormattingError.
func IsFormattingError(err error) bool {
	var fe *FormattingError
	return errors.As(err, &fe)
}

package catalog

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates a locale has no catalog file yet. Callers treat
// this as "missing", which is distinct from a corrupt file.
var ErrNotFound = errors.New("catalog not found")

// ErrEntryNotFound indicates a message id is absent from a catalog.
var ErrEntryNotFound = errors.New("entry not found")

// CorruptError indicates a catalog file exists but cannot be parsed.
// The affected locale degrades to an error status; other locales are
// unaffected.
type CorruptError struct {
	Locale string
	Path   string
	Line   int
	Reason string
	Cause  error
}

func (e *CorruptError) Error() string {
	msg := fmt.Sprintf("corrupt catalog %q", e.Locale)
	if e.Path != "" {
		msg = fmt.Sprintf("corrupt catalog %q (%s)", e.Locale, e.Path)
	}
	if e.Line > 0 {
		msg = fmt.Sprintf("%s: line %d", msg, e.Line)
	}
	if e.Reason != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Reason)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *CorruptError) Unwrap() error {
	return e.Cause
}

// IsCorrupt reports whether err wraps a CorruptError.
func IsCorrupt(err error) bool {
	var ce *CorruptError
	return errors.As(err, &ce)
}

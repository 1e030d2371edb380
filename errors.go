package i18n

import (
	"fmt"

	"github.com/pilipandr770/sekretar-sub006/catalog"
)

// Catalog error surface re-exported so callers of the facade need not
// import the catalog package to classify failures.
var (
	ErrCatalogMissing = catalog.ErrNotFound
	ErrKeyNotFound    = catalog.ErrEntryNotFound
)

// CatalogCorruptError reports an unparseable catalog file.
type CatalogCorruptError = catalog.CorruptError

// CompileError reports a failed PO to MO compilation for one locale.
type CompileError struct {
	Locale string
	Cause  error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compiling %s: %v", e.Locale, e.Cause)
}

func (e *CompileError) Unwrap() error { return e.Cause }

// ExtractError reports a failed extraction pass.
type ExtractError struct {
	Message string
	Cause   error
}

func (e *ExtractError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("extraction failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("extraction failed: %s", e.Message)
}

func (e *ExtractError) Unwrap() error { return e.Cause }

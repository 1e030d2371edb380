// Package pretranslate drafts machine translations for untranslated
// catalog entries. Drafts are always written fuzzy so a human reviews
// them before they ship.
package pretranslate

import (
	"context"
	"fmt"
)

// Request is one batch sent to a translation backend.
type Request struct {
	Texts        []string // source strings, order preserved in the reply
	Contexts     []string // optional per-text disambiguation hints
	SourceLocale string
	TargetLocale string
}

// Provider is a machine translation backend.
type Provider interface {
	Translate(ctx context.Context, req Request) ([]string, error)
}

// ProviderError wraps a backend failure with a retryability hint.
type ProviderError struct {
	Message   string
	Cause     error
	Retryable bool
}

func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ProviderError) Unwrap() error { return e.Cause }

// CountMismatchError reports a reply whose length does not match the
// request; the whole batch is discarded rather than guessed at.
type CountMismatchError struct {
	Expected int
	Got      int
}

func (e *CountMismatchError) Error() string {
	return fmt.Sprintf("translation count mismatch: expected %d, got %d", e.Expected, e.Got)
}

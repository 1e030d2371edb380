// Package validate inspects locale catalogs for consistency problems:
// missing translations, placeholder mismatches, HTML tag mismatches, and
// fuzzy entries awaiting review.
package validate

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/pilipandr770/sekretar-sub006/catalog"
)

// Kind classifies a validation issue.
type Kind string

const (
	KindMissingTranslation  Kind = "missing_translation"
	KindPlaceholderMismatch Kind = "placeholder_mismatch"
	KindHTMLTagMismatch     Kind = "html_tag_mismatch"
	KindFuzzyTranslation    Kind = "fuzzy_translation"
	KindMissingFile         Kind = "missing_file"
)

// Severity ranks an issue for reporting.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Issue is one consistency problem found in a catalog. Issues are
// generated fresh per run and never persisted here.
type Issue struct {
	Locale    string             `json:"locale"`
	MessageID string             `json:"message_id,omitempty"`
	Kind      Kind               `json:"kind"`
	Severity  Severity           `json:"severity"`
	Message   string             `json:"message"`
	Locations []catalog.Location `json:"locations,omitempty"`
}

// placeholderRe matches python-style named placeholders such as
// %(name)s and %(count)d.
var placeholderRe = regexp.MustCompile(`%\([^)]+\)[sd]`)

// tagRe matches tag-like substrings; attributes are ignored so
// <a href="x"> and <a> compare equal.
var tagRe = regexp.MustCompile(`</?([a-zA-Z][a-zA-Z0-9]*)[^<>]*>`)

// Validator runs consistency checks over stored catalogs.
type Validator struct {
	store *catalog.Store
	log   *zap.Logger
}

// NewValidator creates a Validator. A nil logger disables logging.
func NewValidator(store *catalog.Store, log *zap.Logger) *Validator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Validator{store: store, log: log.With(zap.String("module", "validate"))}
}

// Validate checks one locale. An absent catalog yields a single
// missing_file issue so "clean" and "not evaluated" stay distinguishable.
// Only a corrupt catalog returns an error, isolated to this locale.
func (v *Validator) Validate(locale string) ([]Issue, error) {
	c, err := v.store.Load(locale)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return []Issue{{
				Locale:   locale,
				Kind:     KindMissingFile,
				Severity: SeverityError,
				Message:  fmt.Sprintf("no catalog file for locale %q", locale),
			}}, nil
		}
		return nil, err
	}

	var issues []Issue
	for _, e := range c.Entries() {
		if e.Obsolete || e.ID == "" {
			continue
		}
		issues = append(issues, CheckEntry(locale, e)...)
	}
	v.log.Debug("catalog validated", zap.String("locale", locale), zap.Int("issues", len(issues)))
	return issues, nil
}

// CheckEntry runs all entry-level rules. Pure; order of returned issues
// follows rule order.
func CheckEntry(locale string, e *catalog.Entry) []Issue {
	var issues []Issue

	if e.Translation == "" {
		issues = append(issues, Issue{
			Locale:    locale,
			MessageID: e.ID,
			Kind:      KindMissingTranslation,
			Severity:  SeverityWarning,
			Message:   "translation is empty",
			Locations: e.Locations,
		})
	} else if miss := setDiff(placeholders(e.ID), placeholders(e.Translation)); miss != "" {
		issues = append(issues, Issue{
			Locale:    locale,
			MessageID: e.ID,
			Kind:      KindPlaceholderMismatch,
			Severity:  SeverityError,
			Message:   "placeholder sets differ: " + miss,
			Locations: e.Locations,
		})
	}

	if e.Translation != "" && strings.Contains(e.ID, "<") {
		if miss := setDiff(tags(e.ID), tags(e.Translation)); miss != "" {
			issues = append(issues, Issue{
				Locale:    locale,
				MessageID: e.ID,
				Kind:      KindHTMLTagMismatch,
				Severity:  SeverityError,
				Message:   "html tag sets differ: " + miss,
				Locations: e.Locations,
			})
		}
	}

	if e.Fuzzy {
		issues = append(issues, Issue{
			Locale:    locale,
			MessageID: e.ID,
			Kind:      KindFuzzyTranslation,
			Severity:  SeverityInfo,
			Message:   "translation is fuzzy and needs review",
			Locations: e.Locations,
		})
	}

	return issues
}

// placeholders extracts the set of named placeholders from s. Duplicates
// collapse: this is a set-equality check, not a multiset check.
func placeholders(s string) map[string]bool {
	out := make(map[string]bool)
	for _, m := range placeholderRe.FindAllString(s, -1) {
		out[m] = true
	}
	return out
}

// tags extracts the set of tag-like substrings from s, normalized to
// lowercase names without attributes.
func tags(s string) map[string]bool {
	out := make(map[string]bool)
	for _, m := range tagRe.FindAllStringSubmatch(s, -1) {
		name := strings.ToLower(m[1])
		if strings.HasPrefix(m[0], "</") {
			out["</"+name+">"] = true
		} else {
			out["<"+name+">"] = true
		}
	}
	return out
}

// setDiff describes the symmetric difference of two sets, or "" when they
// are equal. Deterministic for stable messages.
func setDiff(source, translation map[string]bool) string {
	var missing, extra []string
	for k := range source {
		if !translation[k] {
			missing = append(missing, k)
		}
	}
	for k := range translation {
		if !source[k] {
			extra = append(extra, k)
		}
	}
	if len(missing) == 0 && len(extra) == 0 {
		return ""
	}
	sort.Strings(missing)
	sort.Strings(extra)

	var parts []string
	if len(missing) > 0 {
		parts = append(parts, "missing "+strings.Join(missing, ", "))
	}
	if len(extra) > 0 {
		parts = append(parts, "unexpected "+strings.Join(extra, ", "))
	}
	return strings.Join(parts, "; ")
}

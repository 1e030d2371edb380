// Package catalog stores per-locale message catalogs as gettext-style PO
// source files and compiled MO artifacts.
package catalog

import "time"

// Location is a source-code reference for a message.
type Location struct {
	File string
	Line int
}

// Entry is a single translatable message within a locale catalog.
type Entry struct {
	ID          string     // Source text; unique within a catalog
	Translation string     // Empty means untranslated
	Fuzzy       bool       // Translation present but unreviewed
	Obsolete    bool       // No longer referenced by any source unit
	Context     string     // Optional disambiguation context
	Locations   []Location // Ordered source references
}

// Translated reports whether the entry carries a reviewed translation.
// Fuzzy and obsolete entries do not count.
func (e *Entry) Translated() bool {
	return e.Translation != "" && !e.Fuzzy && !e.Obsolete
}

// Catalog holds all entries for one locale. Entry order is insertion order,
// so serialization is deterministic across load/save cycles.
type Catalog struct {
	Locale string
	Header map[string]string

	headerOrder []string
	order       []string
	entries     map[string]*Entry
	revision    time.Time
}

// New creates an empty catalog for the given locale.
func New(locale string) *Catalog {
	c := &Catalog{
		Locale:   locale,
		Header:   make(map[string]string),
		entries:  make(map[string]*Entry),
		revision: time.Now().UTC(),
	}
	c.SetHeader("Content-Type", "text/plain; charset=UTF-8")
	c.SetHeader("Language", locale)
	return c
}

// Set inserts or replaces an entry. An entry with an empty ID is dropped.
// The fuzzy flag is cleared when no translation is present, keeping the
// "fuzzy implies translated" invariant without burdening callers.
func (c *Catalog) Set(e *Entry) {
	if e == nil || e.ID == "" {
		return
	}
	if e.Translation == "" {
		e.Fuzzy = false
	}
	if _, exists := c.entries[e.ID]; !exists {
		c.order = append(c.order, e.ID)
	}
	c.entries[e.ID] = e
}

// Get returns the entry for id, or nil when absent.
func (c *Catalog) Get(id string) *Entry {
	return c.entries[id]
}

// Len returns the number of entries, obsolete ones included.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Entries returns all entries in insertion order.
func (c *Catalog) Entries() []*Entry {
	out := make([]*Entry, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.entries[id])
	}
	return out
}

// SetHeader sets a header field, remembering first-set order for
// deterministic serialization.
func (c *Catalog) SetHeader(key, value string) {
	if _, exists := c.Header[key]; !exists {
		c.headerOrder = append(c.headerOrder, key)
	}
	c.Header[key] = value
}

// Revision is the last-touched timestamp carried through save cycles.
func (c *Catalog) Revision() time.Time {
	return c.revision
}

// Touch updates the revision timestamp.
func (c *Catalog) Touch() {
	c.revision = time.Now().UTC()
	c.SetHeader("PO-Revision-Date", c.revision.Format("2006-01-02 15:04-0700"))
}

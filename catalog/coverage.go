package catalog

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Status buckets a coverage percentage for dashboards.
type Status string

const (
	StatusComplete   Status = "complete"   // >= 95%
	StatusGood       Status = "good"       // >= 75%
	StatusPartial    Status = "partial"    // >= 50%
	StatusIncomplete Status = "incomplete" // below 50%
	StatusMissing    Status = "missing"    // no catalog file
	StatusError      Status = "error"      // catalog unreadable
)

// Snapshot is the coverage aggregate for one locale. Snapshots are
// recomputed on demand and supersede each other; they are never merged.
type Snapshot struct {
	Locale       string    `json:"locale"`
	Total        int       `json:"total"`
	Translated   int       `json:"translated"`
	Fuzzy        int       `json:"fuzzy"`
	Untranslated int       `json:"untranslated"`
	Percentage   float64   `json:"coverage_percentage"`
	Status       Status    `json:"status"`
	ComputedAt   time.Time `json:"computed_at"`
}

// Compute aggregates a catalog into a Snapshot. Pure over the entry set;
// obsolete entries are not counted. Fuzzy entries are excluded from the
// numerator, and an empty catalog reports 0%, not 100%.
func Compute(c *Catalog) Snapshot {
	snap := Snapshot{Locale: c.Locale, ComputedAt: time.Now().UTC()}
	for _, e := range c.Entries() {
		if e.Obsolete {
			continue
		}
		snap.Total++
		switch {
		case e.Fuzzy:
			snap.Fuzzy++
		case e.Translation != "":
			snap.Translated++
		default:
			snap.Untranslated++
		}
	}
	if snap.Total > 0 {
		snap.Percentage = float64(snap.Translated) / float64(snap.Total) * 100
	}
	snap.Status = bucket(snap.Percentage)
	return snap
}

func bucket(pct float64) Status {
	switch {
	case pct >= 95:
		return StatusComplete
	case pct >= 75:
		return StatusGood
	case pct >= 50:
		return StatusPartial
	default:
		return StatusIncomplete
	}
}

// Coverage computes the snapshot for one locale. A missing catalog yields
// StatusMissing, a corrupt or unreadable one StatusError, both with
// zeroed counts.
func (s *Store) Coverage(locale string) Snapshot {
	c, err := s.Load(locale)
	if err != nil {
		snap := Snapshot{Locale: locale, ComputedAt: time.Now().UTC(), Status: StatusError}
		if errors.Is(err, ErrNotFound) {
			snap.Status = StatusMissing
		}
		return snap
	}
	return Compute(c)
}

// CoverageAll computes snapshots for every locale independently; one
// locale failing to load never blocks the others.
func (s *Store) CoverageAll(ctx context.Context, locales []string) map[string]Snapshot {
	out := make(map[string]Snapshot, len(locales))
	var mu sync.Mutex

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for _, locale := range locales {
		locale := locale
		g.Go(func() error {
			snap := s.Coverage(locale)
			mu.Lock()
			out[locale] = snap
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// Package cache serves compiled translation lookups through an
// in-process tier, a shared distributed tier, and a secondary shared
// tier, falling back to the catalog store on a full miss.
package cache

import "context"

// Namespace prefixes every cache key in the shared tiers.
const Namespace = "i18n"

// Tier is one layer of the lookup cache. A tier's absence of a key is
// never authoritative; only the catalog store is.
type Tier interface {
	// Get returns the cached value. ok is false on a miss; err is
	// reserved for backend failures, which callers treat as a miss and
	// count separately.
	Get(ctx context.Context, locale, id string) (value string, ok bool, err error)

	// Set stores a value under the tier's TTL policy.
	Set(ctx context.Context, locale, id, value string) error

	// Invalidate removes records. Empty locale clears the whole
	// namespace; empty id clears one locale; both set clears one record.
	Invalidate(ctx context.Context, locale, id string) error

	// Size reports the number of live records, for stats.
	Size(ctx context.Context) int

	// Name identifies the tier in stats and logs.
	Name() string
}

// Stats is a point-in-time view of lookup traffic. Every lookup
// increments exactly one of Hits or Misses; tier failures increment
// Errors without aborting the lookup chain.
type Stats struct {
	Hits      int64            `json:"hits"`
	Misses    int64            `json:"misses"`
	Errors    int64            `json:"errors"`
	HitRate   float64          `json:"hit_rate"`
	TierHits  map[string]int64 `json:"tier_hits"`
	TierSizes map[string]int   `json:"tier_sizes"`
}

package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pilipandr770/sekretar-sub006/catalog"
)

// CatalogSource is the authoritative backing for cache misses.
// *catalog.Store satisfies it.
type CatalogSource interface {
	Get(locale, id string) (*catalog.Entry, error)
	Load(locale string) (*catalog.Catalog, error)
}

// MultiTier chains the in-process tier, the shared tiers, and the
// catalog store. Get always returns a value: a genuine translation, the
// fallback locale's translation, or the raw message id.
type MultiTier struct {
	memory         *MemoryTier
	remote         []Tier // distributed first, then secondary
	source         CatalogSource
	fallbackLocale string
	lookupTimeout  time.Duration
	log            *zap.Logger

	hits     atomic.Int64
	misses   atomic.Int64
	errs     atomic.Int64
	tierHits sync.Map // tier name -> *atomic.Int64
}

// Option configures a MultiTier.
type Option func(*MultiTier)

// WithDistributed sets the shared distributed tier.
func WithDistributed(t Tier) Option {
	return func(m *MultiTier) {
		m.remote = append([]Tier{t}, m.remote...)
	}
}

// WithSecondary sets the secondary shared tier, consulted after the
// distributed one.
func WithSecondary(t Tier) Option {
	return func(m *MultiTier) {
		m.remote = append(m.remote, t)
	}
}

// WithFallbackLocale sets the locale served when the requested locale
// has no translation. Default "en".
func WithFallbackLocale(locale string) Option {
	return func(m *MultiTier) {
		m.fallbackLocale = locale
	}
}

// WithLookupTimeout bounds each remote-tier round trip. A timeout counts
// as a miss and the chain proceeds. Default 150ms.
func WithLookupTimeout(d time.Duration) Option {
	return func(m *MultiTier) {
		m.lookupTimeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(m *MultiTier) {
		m.log = log
	}
}

// New creates a MultiTier over the given catalog source. Without options
// it runs with only the in-process tier.
func New(source CatalogSource, opts ...Option) *MultiTier {
	m := &MultiTier{
		memory:         NewMemoryTier(0),
		source:         source,
		fallbackLocale: "en",
		lookupTimeout:  150 * time.Millisecond,
		log:            zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = m.log.With(zap.String("module", "cache"))
	return m
}

// Get resolves one lookup. The tier chain degrades instead of failing:
// a tier error is counted and the next layer is tried.
func (m *MultiTier) Get(ctx context.Context, locale, id string) string {
	if val, ok, _ := m.memory.Get(ctx, locale, id); ok {
		m.hits.Add(1)
		m.countTierHit(m.memory.Name())
		return val
	}

	for i, tier := range m.remote {
		val, ok := m.remoteGet(ctx, tier, locale, id)
		if !ok {
			continue
		}
		m.hits.Add(1)
		m.countTierHit(tier.Name())
		// Copy the value back into every shallower layer.
		_ = m.memory.Set(ctx, locale, id, val)
		for j := 0; j < i; j++ {
			if err := m.remote[j].Set(ctx, locale, id, val); err != nil {
				m.errs.Add(1)
			}
		}
		return val
	}

	m.misses.Add(1)
	return m.loadThrough(ctx, locale, id)
}

// remoteGet bounds one remote round trip; a timed-out lookup is
// abandoned and treated as a miss.
func (m *MultiTier) remoteGet(ctx context.Context, tier Tier, locale, id string) (string, bool) {
	tctx, cancel := context.WithTimeout(ctx, m.lookupTimeout)
	defer cancel()

	val, ok, err := tier.Get(tctx, locale, id)
	if err != nil {
		m.errs.Add(1)
		return "", false
	}
	return val, ok
}

// loadThrough consults the catalog store, then the fallback locale, then
// the raw id. Genuine translations are written into all tiers; the
// raw-id fallback is not cached, so a later translation takes effect
// without invalidation.
func (m *MultiTier) loadThrough(ctx context.Context, locale, id string) string {
	if val, ok := m.sourceGet(locale, id); ok {
		m.fill(ctx, locale, id, val)
		return val
	}
	if m.fallbackLocale != "" && m.fallbackLocale != locale {
		if val, ok := m.sourceGet(m.fallbackLocale, id); ok {
			m.fill(ctx, locale, id, val)
			return val
		}
	}
	return id
}

func (m *MultiTier) sourceGet(locale, id string) (string, bool) {
	e, err := m.source.Get(locale, id)
	if err != nil {
		if !errors.Is(err, catalog.ErrNotFound) && !errors.Is(err, catalog.ErrEntryNotFound) {
			m.errs.Add(1)
			m.log.Warn("catalog read failed", zap.String("locale", locale), zap.Error(err))
		}
		return "", false
	}
	if !e.Translated() {
		return "", false
	}
	return e.Translation, true
}

func (m *MultiTier) fill(ctx context.Context, locale, id, val string) {
	_ = m.memory.Set(ctx, locale, id, val)
	for _, tier := range m.remote {
		if err := tier.Set(ctx, locale, id, val); err != nil {
			m.errs.Add(1)
		}
	}
}

// Invalidate clears records across all tiers. Both empty clears
// everything; empty id clears one locale; empty locale clears one id
// across every locale, covering fallback values copied under other
// locales' keys; both set clears one record. Best-effort on the shared
// tiers: a failing tier does not stop the rest.
func (m *MultiTier) Invalidate(ctx context.Context, locale, id string) error {
	var errs []error
	if err := m.memory.Invalidate(ctx, locale, id); err != nil {
		errs = append(errs, err)
	}
	for _, tier := range m.remote {
		if err := tier.Invalidate(ctx, locale, id); err != nil {
			m.errs.Add(1)
			m.log.Warn("tier invalidation failed",
				zap.String("tier", tier.Name()),
				zap.String("locale", locale),
				zap.Error(err),
			)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Warm preloads a locale's reviewed translations into the in-process
// tier, bounding concurrency so startup does not monopolize the store.
func (m *MultiTier) Warm(ctx context.Context, locale string) (int, error) {
	c, err := m.source.Load(locale)
	if err != nil {
		return 0, err
	}

	var warmed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, e := range c.Entries() {
		if !e.Translated() {
			continue
		}
		e := e
		g.Go(func() error {
			if err := m.memory.Set(gctx, locale, e.ID, e.Translation); err != nil {
				return err
			}
			warmed.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return int(warmed.Load()), err
	}
	return int(warmed.Load()), nil
}

// Counters snapshots the cumulative lookup counters without touching
// the remote tiers; cheap enough for a scrape path.
func (m *MultiTier) Counters() (hits, misses int64, tierHits map[string]int64) {
	tierHits = make(map[string]int64)
	m.tierHits.Range(func(k, v any) bool {
		tierHits[k.(string)] = v.(*atomic.Int64).Load()
		return true
	})
	return m.hits.Load(), m.misses.Load(), tierHits
}

// Stats snapshots lookup counters and tier sizes.
func (m *MultiTier) Stats(ctx context.Context) Stats {
	hits := m.hits.Load()
	misses := m.misses.Load()

	s := Stats{
		Hits:      hits,
		Misses:    misses,
		Errors:    m.errs.Load(),
		TierHits:  make(map[string]int64),
		TierSizes: make(map[string]int),
	}
	if total := hits + misses; total > 0 {
		s.HitRate = float64(hits) / float64(total)
	}

	m.tierHits.Range(func(k, v any) bool {
		s.TierHits[k.(string)] = v.(*atomic.Int64).Load()
		return true
	})
	s.TierSizes[m.memory.Name()] = m.memory.Size(ctx)
	for _, tier := range m.remote {
		s.TierSizes[tier.Name()] = tier.Size(ctx)
	}
	return s
}

func (m *MultiTier) countTierHit(name string) {
	v, _ := m.tierHits.LoadOrStore(name, &atomic.Int64{})
	v.(*atomic.Int64).Add(1)
}

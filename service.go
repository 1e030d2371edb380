package i18n

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/pilipandr770/sekretar-sub006/cache"
	"github.com/pilipandr770/sekretar-sub006/catalog"
	"github.com/pilipandr770/sekretar-sub006/extract"
	"github.com/pilipandr770/sekretar-sub006/metrics"
	"github.com/pilipandr770/sekretar-sub006/monitor"
	"github.com/pilipandr770/sekretar-sub006/pretranslate"
	"github.com/pilipandr770/sekretar-sub006/validate"
)

// Service ties the catalog store, lookup cache, extraction, validation,
// and monitoring together behind one API. Every collaborator is built
// by New or injected through options; nothing is process-global.
type Service struct {
	store     *catalog.Store
	lookup    *cache.MultiTier
	extractor *extract.Extractor
	validator *validate.Validator
	mon       *monitor.Monitor
	reg       *metrics.Registry
	filler    *pretranslate.Filler
	locales   []string
	fallback  string
	log       *zap.Logger

	// construction-only, consumed by New
	cacheOpts  []cache.Option
	provider   pretranslate.Provider
	fillerOpts []pretranslate.FillerOption
}

// Option configures the Service.
type Option func(*Service)

// WithLocales sets the supported locales.
func WithLocales(locales ...string) Option {
	return func(s *Service) {
		if len(locales) > 0 {
			s.locales = locales
		}
	}
}

// WithFallbackLocale sets the locale backing every other one.
func WithFallbackLocale(locale string) Option {
	return func(s *Service) {
		if locale != "" {
			s.fallback = locale
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithCacheOptions passes options through to the lookup cache, e.g.
// cache.WithDistributed for a Redis tier.
func WithCacheOptions(opts ...cache.Option) Option {
	return func(s *Service) {
		s.cacheOpts = append(s.cacheOpts, opts...)
	}
}

// WithMetrics publishes lookup and catalog metrics to the registry.
func WithMetrics(reg *metrics.Registry) Option {
	return func(s *Service) { s.reg = reg }
}

// WithMonitor replaces the default health monitor.
func WithMonitor(m *monitor.Monitor) Option {
	return func(s *Service) { s.mon = m }
}

// WithProvider enables machine pretranslation through the backend.
func WithProvider(p pretranslate.Provider, opts ...pretranslate.FillerOption) Option {
	return func(s *Service) {
		s.provider = p
		s.fillerOpts = opts
	}
}

// New creates a Service rooted at the given catalog directory.
func New(root string, opts ...Option) (*Service, error) {
	if root == "" {
		return nil, fmt.Errorf("catalog root is required")
	}

	s := &Service{
		locales:  append([]string(nil), DefaultLocales...),
		fallback: FallbackLocale,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.store = catalog.NewStore(root, s.log)
	s.extractor = extract.NewExtractor(s.store, s.log)
	s.validator = validate.NewValidator(s.store, s.log)

	cacheOpts := append([]cache.Option{
		cache.WithFallbackLocale(s.fallback),
		cache.WithLogger(s.log),
	}, s.cacheOpts...)
	s.lookup = cache.New(s.store, cacheOpts...)

	if s.mon == nil {
		s.mon = monitor.New(monitor.Config{}, s.log,
			monitor.WithCheck(&monitor.FileIntegrityCheck{Store: s.store, Locales: s.locales}),
			monitor.WithCheck(&monitor.CacheHealthCheck{Stats: s.lookup.Stats}),
			monitor.WithCheck(&monitor.CoverageCheck{Store: s.store, Locales: s.locales}),
			monitor.WithCheck(&monitor.ResourceCheck{}),
		)
	}

	if s.reg != nil {
		s.reg.SetCacheSource(func() metrics.CacheCounters {
			hits, misses, tiers := s.lookup.Counters()
			return metrics.CacheCounters{Hits: hits, Misses: misses, TierHits: tiers}
		})
		s.reg.SetAlertSource(func() metrics.AlertCounts {
			critical, warning := s.mon.ActiveAlertCounts()
			return metrics.AlertCounts{Critical: critical, Warning: warning}
		})
	}

	if s.provider != nil {
		fillerOpts := append([]pretranslate.FillerOption{
			pretranslate.WithLogger(s.log),
		}, s.fillerOpts...)
		s.filler = pretranslate.NewFiller(s.store, s.provider, fillerOpts...)
	}

	s.cacheOpts, s.provider, s.fillerOpts = nil, nil, nil
	return s, nil
}

// Locales returns the configured locales.
func (s *Service) Locales() []string {
	return append([]string(nil), s.locales...)
}

// Store exposes the catalog store for tooling.
func (s *Service) Store() *catalog.Store {
	return s.store
}

// Translate resolves a message for the locale. It never fails: missing
// translations fall back to the fallback locale and finally to the
// message key itself.
func (s *Service) Translate(ctx context.Context, locale, id string) string {
	started := time.Now()
	locale = NormalizeLocale(locale)
	val := s.lookup.Get(ctx, locale, id)

	if s.reg != nil {
		outcome := "resolved"
		if val == id {
			outcome = "raw_key"
		}
		s.reg.ObserveLookup(locale, outcome, time.Since(started))
	}
	return val
}

// UpdateTranslation sets one entry's translation as reviewed text and
// invalidates the cached value. It returns false without error when the
// catalog or the key does not exist; routine not-found is not a failure.
func (s *Service) UpdateTranslation(ctx context.Context, locale, id, translation string) (bool, error) {
	locale = NormalizeLocale(locale)

	_, err := s.store.Update(locale, false, func(c *catalog.Catalog) error {
		e := c.Get(id)
		if e == nil || e.Obsolete {
			return catalog.ErrEntryNotFound
		}
		e.Translation = translation
		e.Fuzzy = false
		return nil
	})
	switch {
	case errors.Is(err, catalog.ErrNotFound), errors.Is(err, catalog.ErrEntryNotFound):
		return false, nil
	case err != nil:
		return false, err
	}

	// Fallback text gets cached under other locales' keys at read time,
	// so a fallback-locale edit must clear the id everywhere.
	scope := locale
	if locale == s.fallback {
		scope = ""
	}
	if err := s.lookup.Invalidate(ctx, scope, id); err != nil {
		s.log.Warn("cache invalidation failed",
			zap.String("locale", locale), zap.Error(err))
	}
	return true, nil
}

// ExtractionReport summarizes one extraction and merge pass.
type ExtractionReport struct {
	ExtractedCount int                            `json:"extracted_count"`
	UpdatedLocales []string                       `json:"updated_locales"`
	Merges         map[string]extract.MergeReport `json:"merges"`
	Errors         map[string]string              `json:"errors,omitempty"`
	Timestamp      time.Time                      `json:"timestamp"`
}

// ExtractMessages scans the source units, refreshes the template
// catalog, and merges it into every locale. Locales that fail to merge
// are reported in the result, not fatal to the rest.
func (s *Service) ExtractMessages(ctx context.Context, units []extract.SourceUnit) (ExtractionReport, error) {
	report := ExtractionReport{Timestamp: time.Now().UTC()}

	tmpl, err := s.extractor.Extract(units)
	if err != nil {
		return report, &ExtractError{Message: "scanning sources", Cause: err}
	}
	if err := s.store.SaveTemplate(tmpl); err != nil {
		return report, &ExtractError{Message: "saving template", Cause: err}
	}
	report.ExtractedCount = tmpl.Len()

	merges, mergeErrs := s.extractor.MergeAll(s.locales, tmpl)
	report.Merges = merges
	for locale := range merges {
		report.UpdatedLocales = append(report.UpdatedLocales, locale)
	}
	sort.Strings(report.UpdatedLocales)
	if len(mergeErrs) > 0 {
		report.Errors = make(map[string]string, len(mergeErrs))
		for locale, err := range mergeErrs {
			report.Errors[locale] = err.Error()
		}
	}

	// Catalogs changed shape; drop every cached value.
	if err := s.lookup.Invalidate(ctx, "", ""); err != nil {
		s.log.Warn("cache invalidation failed", zap.Error(err))
	}

	s.log.Info("extraction finished",
		zap.Int("messages", report.ExtractedCount),
		zap.Strings("locales", report.UpdatedLocales),
	)
	return report, nil
}

// Compile builds the binary artifact for one locale.
func (s *Service) Compile(locale string) error {
	locale = NormalizeLocale(locale)
	if err := s.store.Compile(locale); err != nil {
		return &CompileError{Locale: locale, Cause: err}
	}
	return nil
}

// CompileAll compiles every locale, returning per-locale failures.
// An empty map means full success.
func (s *Service) CompileAll(ctx context.Context) map[string]error {
	failures := make(map[string]error)
	for _, locale := range s.locales {
		select {
		case <-ctx.Done():
			failures[locale] = ctx.Err()
			continue
		default:
		}
		if err := s.Compile(locale); err != nil {
			failures[locale] = err
		}
	}
	return failures
}

// CoverageAll reports coverage for every configured locale, publishing
// gauges when a metrics registry is attached.
func (s *Service) CoverageAll(ctx context.Context) map[string]catalog.Snapshot {
	snapshots := s.store.CoverageAll(ctx, s.locales)
	if s.reg != nil {
		for locale, snap := range snapshots {
			s.reg.SetCoverage(locale, snap.Percentage)
			po, mo := s.store.FileSizes(locale)
			s.reg.SetCatalogSizes(locale, po, mo)
		}
	}
	return snapshots
}

// Validate checks one locale's catalog for translation defects.
func (s *Service) Validate(locale string) ([]validate.Issue, error) {
	return s.validator.Validate(NormalizeLocale(locale))
}

// ValidateAll validates every configured locale; corrupt catalogs are
// reported per locale rather than failing the pass.
func (s *Service) ValidateAll(ctx context.Context) (map[string][]validate.Issue, map[string]error) {
	issues := make(map[string][]validate.Issue, len(s.locales))
	failures := make(map[string]error)
	for _, locale := range s.locales {
		select {
		case <-ctx.Done():
			failures[locale] = ctx.Err()
			continue
		default:
		}
		found, err := s.validator.Validate(locale)
		if err != nil {
			failures[locale] = err
			continue
		}
		issues[locale] = found
	}
	return issues, failures
}

// Pretranslate machine-drafts untranslated entries for the locale.
// Requires a provider wired via WithProvider.
func (s *Service) Pretranslate(ctx context.Context, locale string) (pretranslate.Report, error) {
	if s.filler == nil {
		return pretranslate.Report{}, fmt.Errorf("no translation provider configured")
	}
	return s.filler.Run(ctx, s.fallback, NormalizeLocale(locale))
}

// Warm preloads one locale's reviewed translations into the cache.
func (s *Service) Warm(ctx context.Context, locale string) (int, error) {
	return s.lookup.Warm(ctx, NormalizeLocale(locale))
}

// CacheStats returns lookup cache counters.
func (s *Service) CacheStats(ctx context.Context) cache.Stats {
	return s.lookup.Stats(ctx)
}

// Health runs due health checks and returns the aggregate report.
func (s *Service) Health(ctx context.Context) monitor.HealthReport {
	return s.mon.Health(ctx)
}

// Alerts lists alerts in the monitoring window, optionally by severity.
func (s *Service) Alerts(severity monitor.Severity) []monitor.Alert {
	return s.mon.Alerts(severity)
}

// Start begins periodic health checking.
func (s *Service) Start() error {
	return s.mon.Start()
}

// Close stops background work.
func (s *Service) Close() {
	s.mon.Stop()
}

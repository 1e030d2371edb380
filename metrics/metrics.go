// Package metrics exposes Prometheus collectors for translation lookups,
// cache behavior, and per-locale catalog state.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// CacheCounters is a point-in-time copy of the lookup cache's
// cumulative counters.
type CacheCounters struct {
	Hits     int64
	Misses   int64
	TierHits map[string]int64
}

// AlertCounts reports unresolved alerts by severity.
type AlertCounts struct {
	Critical int
	Warning  int
}

// Registry bundles the collectors on a private prometheus registry so
// two instances in one process never collide.
type Registry struct {
	reg *prometheus.Registry

	Lookups        *prometheus.CounterVec
	LookupDuration *prometheus.HistogramVec
	Coverage       *prometheus.GaugeVec
	CatalogBytes   *prometheus.GaugeVec

	// Cache and alert series read their owners' counters at scrape time
	// instead of double-counting through a second set of collectors.
	mu          sync.Mutex
	cacheSource func() CacheCounters
	alertSource func() AlertCounts

	descCacheHits    *prometheus.Desc
	descCacheMisses  *prometheus.Desc
	descTierHits     *prometheus.Desc
	descActiveAlerts *prometheus.Desc
}

// NewRegistry creates and registers all collectors.
func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		Lookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "i18n_lookups_total",
				Help: "Translation lookups by locale and resolution outcome",
			},
			[]string{"locale", "outcome"},
		),
		LookupDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "i18n_lookup_duration_seconds",
				Help:    "Time spent resolving a translation",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"locale"},
		),
		Coverage: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "i18n_coverage_percent",
				Help: "Translation coverage per locale",
			},
			[]string{"locale"},
		),
		CatalogBytes: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "i18n_catalog_file_bytes",
				Help: "Catalog file sizes per locale and kind (po, mo)",
			},
			[]string{"locale", "kind"},
		),
		descCacheHits: prometheus.NewDesc(
			"i18n_cache_hits_total",
			"Lookups served from a cache tier",
			nil, nil,
		),
		descCacheMisses: prometheus.NewDesc(
			"i18n_cache_misses_total",
			"Lookups that fell through every cache tier",
			nil, nil,
		),
		descTierHits: prometheus.NewDesc(
			"i18n_cache_tier_hits_total",
			"Cache hits by tier",
			[]string{"tier"}, nil,
		),
		descActiveAlerts: prometheus.NewDesc(
			"i18n_active_alerts",
			"Unresolved alerts by severity",
			[]string{"severity"}, nil,
		),
	}
	r.reg.MustRegister(
		r.Lookups,
		r.LookupDuration,
		r.Coverage,
		r.CatalogBytes,
		sourceCollector{r},
	)
	return r
}

// SetCacheSource wires the lookup cache's counters into the scrape.
// The function runs on every collect.
func (r *Registry) SetCacheSource(fn func() CacheCounters) {
	r.mu.Lock()
	r.cacheSource = fn
	r.mu.Unlock()
}

// SetAlertSource wires the monitor's active-alert counts into the
// scrape.
func (r *Registry) SetAlertSource(fn func() AlertCounts) {
	r.mu.Lock()
	r.alertSource = fn
	r.mu.Unlock()
}

// sourceCollector exports the source-backed series as const metrics.
type sourceCollector struct {
	r *Registry
}

func (c sourceCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.r.descCacheHits
	ch <- c.r.descCacheMisses
	ch <- c.r.descTierHits
	ch <- c.r.descActiveAlerts
}

func (c sourceCollector) Collect(ch chan<- prometheus.Metric) {
	c.r.mu.Lock()
	cacheFn, alertFn := c.r.cacheSource, c.r.alertSource
	c.r.mu.Unlock()

	if cacheFn != nil {
		cc := cacheFn()
		ch <- prometheus.MustNewConstMetric(c.r.descCacheHits, prometheus.CounterValue, float64(cc.Hits))
		ch <- prometheus.MustNewConstMetric(c.r.descCacheMisses, prometheus.CounterValue, float64(cc.Misses))
		for tier, hits := range cc.TierHits {
			ch <- prometheus.MustNewConstMetric(c.r.descTierHits, prometheus.CounterValue, float64(hits), tier)
		}
	}
	if alertFn != nil {
		ac := alertFn()
		ch <- prometheus.MustNewConstMetric(c.r.descActiveAlerts, prometheus.GaugeValue, float64(ac.Critical), "critical")
		ch <- prometheus.MustNewConstMetric(c.r.descActiveAlerts, prometheus.GaugeValue, float64(ac.Warning), "warning")
	}
}

// ObserveLookup records one lookup. Outcome is "resolved" when a
// translation was served, own locale or fallback, and "raw_key" when
// the message id itself came back.
func (r *Registry) ObserveLookup(locale, outcome string, elapsed time.Duration) {
	r.Lookups.WithLabelValues(locale, outcome).Inc()
	r.LookupDuration.WithLabelValues(locale).Observe(elapsed.Seconds())
}

// SetCoverage publishes one locale's coverage percentage.
func (r *Registry) SetCoverage(locale string, pct float64) {
	r.Coverage.WithLabelValues(locale).Set(pct)
}

// SetCatalogSizes publishes one locale's source and compiled file sizes.
func (r *Registry) SetCatalogSizes(locale string, po, mo int64) {
	r.CatalogBytes.WithLabelValues(locale, "po").Set(float64(po))
	r.CatalogBytes.WithLabelValues(locale, "mo").Set(float64(mo))
}

// Handler serves this registry's collectors.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// NewServer wraps the handler in an HTTP server with sane timeouts.
func (r *Registry) NewServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())
	return &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  15 * time.Second,
	}
}

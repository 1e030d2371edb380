package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func scrape(t *testing.T, r *Registry) string {
	t.Helper()
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	return rec.Body.String()
}

func TestRegistry_ObserveLookup(t *testing.T) {
	r := NewRegistry()
	r.ObserveLookup("de", "resolved", 2*time.Millisecond)
	r.ObserveLookup("de", "raw_key", time.Millisecond)
	r.SetCoverage("de", 87.5)
	r.SetCatalogSizes("de", 4096, 1024)

	body := scrape(t, r)
	for _, want := range []string{
		`i18n_lookups_total{locale="de",outcome="resolved"} 1`,
		`i18n_lookups_total{locale="de",outcome="raw_key"} 1`,
		`i18n_coverage_percent{locale="de"} 87.5`,
		`i18n_catalog_file_bytes{kind="po",locale="de"} 4096`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestRegistry_SourceBackedSeries(t *testing.T) {
	r := NewRegistry()

	// Before any source is attached the series stay absent.
	if body := scrape(t, r); strings.Contains(body, "i18n_cache_tier_hits_total") {
		t.Fatal("cache series exported without a source")
	}

	counters := CacheCounters{Hits: 3, Misses: 2, TierHits: map[string]int64{"memory": 3}}
	r.SetCacheSource(func() CacheCounters { return counters })
	r.SetAlertSource(func() AlertCounts { return AlertCounts{Critical: 1, Warning: 2} })

	body := scrape(t, r)
	for _, want := range []string{
		`i18n_cache_hits_total 3`,
		`i18n_cache_misses_total 2`,
		`i18n_cache_tier_hits_total{tier="memory"} 3`,
		`i18n_active_alerts{severity="critical"} 1`,
		`i18n_active_alerts{severity="warning"} 2`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}

	// The source is read on every scrape, so movement shows up without
	// any push into the registry.
	counters.Hits, counters.TierHits["memory"] = 5, 5
	if body := scrape(t, r); !strings.Contains(body, `i18n_cache_tier_hits_total{tier="memory"} 5`) {
		t.Error("scrape did not reflect updated source counters")
	}
}

func TestRegistry_IndependentInstances(t *testing.T) {
	a := NewRegistry()
	b := NewRegistry()
	a.SetCacheSource(func() CacheCounters { return CacheCounters{Misses: 1} })

	rec := httptest.NewRecorder()
	b.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if strings.Contains(rec.Body.String(), "i18n_cache_misses_total 1") {
		t.Fatal("registries share state")
	}
}

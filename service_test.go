package i18n

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pilipandr770/sekretar-sub006/extract"
	"github.com/pilipandr770/sekretar-sub006/metrics"
	"github.com/pilipandr770/sekretar-sub006/monitor"
	"github.com/pilipandr770/sekretar-sub006/validate"
)

const webHandlerSource = `package web

func labels() []string {
	return []string{"Save", "Cancel", "Delete account"}
}
`

func newTestService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	svc, err := New(t.TempDir(), opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(svc.Close)
	return svc
}

func extractFixture(t *testing.T, svc *Service) ExtractionReport {
	t.Helper()
	report, err := svc.ExtractMessages(context.Background(), []extract.SourceUnit{
		{Name: "web/handlers.go", Format: extract.FormatGo, Content: []byte(webHandlerSource)},
	})
	if err != nil {
		t.Fatalf("ExtractMessages: %v", err)
	}
	return report
}

func TestService_ExtractThenTranslate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	report := extractFixture(t, svc)
	if report.ExtractedCount != 3 {
		t.Fatalf("ExtractedCount = %d, want 3", report.ExtractedCount)
	}
	if len(report.UpdatedLocales) != 3 {
		t.Fatalf("UpdatedLocales = %v, want en, de, uk", report.UpdatedLocales)
	}
	if len(report.Errors) != 0 {
		t.Fatalf("merge errors: %v", report.Errors)
	}

	// No translation yet: the key itself comes back.
	if got := svc.Translate(ctx, "de", "Save"); got != "Save" {
		t.Fatalf("Translate = %q, want raw key", got)
	}

	ok, err := svc.UpdateTranslation(ctx, "de", "Save", "Speichern")
	if err != nil {
		t.Fatalf("UpdateTranslation: %v", err)
	}
	if !ok {
		t.Fatal("UpdateTranslation returned false for an extracted entry")
	}

	// The stale cached value was invalidated.
	if got := svc.Translate(ctx, "de", "Save"); got != "Speichern" {
		t.Fatalf("Translate = %q, want Speichern", got)
	}

	// Locale variants normalize onto the same catalog.
	if got := svc.Translate(ctx, "de-DE", "Save"); got != "Speichern" {
		t.Fatalf("Translate(de-DE) = %q, want Speichern", got)
	}
}

func TestService_UpdateTranslationNotFound(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	// No catalog yet: routine not-found, not an error.
	ok, err := svc.UpdateTranslation(ctx, "de", "Save", "Speichern")
	if err != nil {
		t.Fatalf("UpdateTranslation: %v", err)
	}
	if ok {
		t.Fatal("UpdateTranslation returned true for a missing catalog")
	}

	extractFixture(t, svc)

	// Catalog exists but the key does not.
	ok, err = svc.UpdateTranslation(ctx, "de", "Unknown key", "egal")
	if err != nil {
		t.Fatalf("UpdateTranslation: %v", err)
	}
	if ok {
		t.Fatal("UpdateTranslation returned true for an unknown key")
	}
}

func TestService_FallbackLocale(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	extractFixture(t, svc)

	if _, err := svc.UpdateTranslation(ctx, "en", "Cancel", "Cancel changes"); err != nil {
		t.Fatalf("UpdateTranslation: %v", err)
	}

	// uk has no translation; the en catalog backs it.
	if got := svc.Translate(ctx, "uk", "Cancel"); got != "Cancel changes" {
		t.Fatalf("Translate = %q, want fallback value", got)
	}
}

func TestService_FallbackUpdateRefreshesDependentLocales(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	extractFixture(t, svc)

	if _, err := svc.UpdateTranslation(ctx, "en", "Save", "Save it"); err != nil {
		t.Fatalf("UpdateTranslation: %v", err)
	}

	// This read caches the en value under de's key.
	if got := svc.Translate(ctx, "de", "Save"); got != "Save it" {
		t.Fatalf("Translate(de) = %q, want fallback value", got)
	}

	if _, err := svc.UpdateTranslation(ctx, "en", "Save", "Save changes"); err != nil {
		t.Fatalf("UpdateTranslation: %v", err)
	}

	if got := svc.Translate(ctx, "en", "Save"); got != "Save changes" {
		t.Fatalf("Translate(en) = %q, want Save changes", got)
	}
	// The de copy of the old en text must not outlive the edit.
	if got := svc.Translate(ctx, "de", "Save"); got != "Save changes" {
		t.Fatalf("Translate(de) = %q, want Save changes", got)
	}
}

func TestService_CompileAll(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	extractFixture(t, svc)

	if failures := svc.CompileAll(ctx); len(failures) != 0 {
		t.Fatalf("CompileAll failures: %v", failures)
	}
	for _, locale := range svc.Locales() {
		po, mo := svc.Store().FileSizes(locale)
		if po == 0 || mo == 0 {
			t.Fatalf("locale %s: po=%d mo=%d, want both non-zero", locale, po, mo)
		}
	}
}

func TestService_CompileMissingLocale(t *testing.T) {
	svc := newTestService(t)

	err := svc.Compile("de")
	var compileErr *CompileError
	if !errors.As(err, &compileErr) {
		t.Fatalf("err = %v, want CompileError", err)
	}
	if compileErr.Locale != "de" {
		t.Fatalf("Locale = %q, want de", compileErr.Locale)
	}
}

func TestService_CoverageAndValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	extractFixture(t, svc)

	if _, err := svc.UpdateTranslation(ctx, "de", "Save", "Speichern"); err != nil {
		t.Fatalf("UpdateTranslation: %v", err)
	}

	snapshots := svc.CoverageAll(ctx)
	if len(snapshots) != 3 {
		t.Fatalf("snapshots = %d, want 3", len(snapshots))
	}
	de := snapshots["de"]
	if de.Translated != 1 || de.Total != 3 {
		t.Fatalf("de coverage = %d/%d, want 1/3", de.Translated, de.Total)
	}

	issues, err := svc.Validate("de")
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	missing := 0
	for _, issue := range issues {
		if issue.Kind == validate.KindMissingTranslation {
			missing++
		}
	}
	if missing != 2 {
		t.Fatalf("missing translations = %d, want 2", missing)
	}

	all, failures := svc.ValidateAll(ctx)
	if len(failures) != 0 {
		t.Fatalf("ValidateAll failures: %v", failures)
	}
	if len(all) != 3 {
		t.Fatalf("ValidateAll locales = %d, want 3", len(all))
	}
}

func TestService_HealthReflectsCatalogState(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	extractFixture(t, svc)
	if failures := svc.CompileAll(ctx); len(failures) != 0 {
		t.Fatalf("CompileAll failures: %v", failures)
	}

	report := svc.Health(ctx)
	if len(report.Checks) == 0 {
		t.Fatal("health report has no checks")
	}
	// Nothing is translated yet, so coverage must have flagged locales.
	if report.OverallStatus == monitor.StatusHealthy {
		t.Fatalf("status = %s, want degraded", report.OverallStatus)
	}
	if len(svc.Alerts("")) == 0 {
		t.Fatal("no alerts for empty catalogs")
	}
}

func TestService_PretranslateRequiresProvider(t *testing.T) {
	svc := newTestService(t)
	if _, err := svc.Pretranslate(context.Background(), "de"); err == nil {
		t.Fatal("expected error without provider")
	}
}

func TestService_CacheStats(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	extractFixture(t, svc)

	svc.Translate(ctx, "de", "Save")
	svc.Translate(ctx, "de", "Save")

	stats := svc.CacheStats(ctx)
	if stats.Hits+stats.Misses < 2 {
		t.Fatalf("stats = %+v, want at least two lookups", stats)
	}
}

func TestService_MetricsExposeCacheActivity(t *testing.T) {
	reg := metrics.NewRegistry()
	svc := newTestService(t, WithMetrics(reg))
	ctx := context.Background()
	extractFixture(t, svc)

	if _, err := svc.UpdateTranslation(ctx, "de", "Save", "Speichern"); err != nil {
		t.Fatalf("UpdateTranslation: %v", err)
	}
	svc.Translate(ctx, "de", "Save") // store
	svc.Translate(ctx, "de", "Save") // memory tier
	svc.Health(ctx)                  // raises coverage alerts

	rec := httptest.NewRecorder()
	reg.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()

	for _, want := range []string{
		`i18n_cache_tier_hits_total{tier="memory"} 1`,
		`i18n_cache_misses_total 1`,
		`i18n_lookups_total{locale="de",outcome="resolved"} 2`,
		`i18n_active_alerts{severity="critical"}`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

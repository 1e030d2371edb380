package monitor

import (
	"testing"
	"time"
)

func TestAlertLog_PrunesExpired(t *testing.T) {
	l := newAlertLog(time.Hour)
	l.append(&Alert{Severity: SeverityWarning, Title: "old"})
	l.alerts[0].Timestamp = time.Now().Add(-2 * time.Hour)
	l.append(&Alert{Severity: SeverityWarning, Title: "fresh"})

	alerts := l.list("")
	if len(alerts) != 1 {
		t.Fatalf("alerts = %d, want 1", len(alerts))
	}
	if alerts[0].Title != "fresh" {
		t.Fatalf("kept %q, want fresh", alerts[0].Title)
	}
}

func TestAlertLog_ActiveMatchesScope(t *testing.T) {
	l := newAlertLog(0)
	l.append(&Alert{Severity: SeverityCritical, MetricName: "coverage", Locale: "de"})

	if l.active("coverage", "de") == nil {
		t.Fatal("active alert not found")
	}
	if l.active("coverage", "uk") != nil {
		t.Fatal("matched wrong locale")
	}
	if l.active("cache_health", "de") != nil {
		t.Fatal("matched wrong metric")
	}

	l.resolveWhere(func(a *Alert) bool { return a.Locale == "de" })
	if l.active("coverage", "de") != nil {
		t.Fatal("resolved alert still reported active")
	}
}

func TestAlertLog_ListFiltersBySeverity(t *testing.T) {
	l := newAlertLog(0)
	l.append(&Alert{Severity: SeverityCritical, Title: "disk full"})
	l.append(&Alert{Severity: SeverityWarning, Title: "low hit rate"})
	l.append(&Alert{Severity: SeverityWarning, Title: "coverage dip"})

	if got := len(l.list(SeverityWarning)); got != 2 {
		t.Fatalf("warning alerts = %d, want 2", got)
	}
	if got := len(l.list(SeverityCritical)); got != 1 {
		t.Fatalf("critical alerts = %d, want 1", got)
	}
	if got := len(l.list("")); got != 3 {
		t.Fatalf("all alerts = %d, want 3", got)
	}
}

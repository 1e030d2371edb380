// Package monitor runs periodic health checks over the catalog store and
// lookup cache, raising and retiring alerts and dispatching them to
// registered handlers.
package monitor

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Severity ranks an alert.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// Alert is one raised condition. Alerts live in a rolling window and are
// explicitly resolvable.
type Alert struct {
	ID          string     `json:"id"`
	Severity    Severity   `json:"severity"`
	Title       string     `json:"title"`
	Message     string     `json:"message"`
	Timestamp   time.Time  `json:"timestamp"`
	Locale      string     `json:"locale,omitempty"`
	MetricName  string     `json:"metric_name,omitempty"`
	MetricValue float64    `json:"metric_value,omitempty"`
	Threshold   float64    `json:"threshold,omitempty"`
	Resolved    bool       `json:"resolved"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
}

// Handler receives every new alert. Handler failures are logged and
// swallowed: one bad handler must not block the others or the check.
type Handler interface {
	Handle(alert Alert) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(alert Alert) error

func (f HandlerFunc) Handle(alert Alert) error { return f(alert) }

// LogHandler writes alerts to the structured log; the default handler
// when no notifier is wired.
type LogHandler struct {
	Log *zap.Logger
}

func (h *LogHandler) Handle(alert Alert) error {
	h.Log.Warn("alert raised",
		zap.String("id", alert.ID),
		zap.String("severity", string(alert.Severity)),
		zap.String("title", alert.Title),
		zap.String("locale", alert.Locale),
		zap.Float64("value", alert.MetricValue),
	)
	return nil
}

// alertLog is the rolling in-memory alert window.
type alertLog struct {
	mu        sync.RWMutex
	alerts    []*Alert
	retention time.Duration
}

func newAlertLog(retention time.Duration) *alertLog {
	if retention <= 0 {
		retention = 24 * time.Hour
	}
	return &alertLog{retention: retention}
}

// append stamps and stores a new alert, pruning expired ones.
func (l *alertLog) append(a *Alert) {
	a.ID = uuid.NewString()
	a.Timestamp = time.Now().UTC()

	l.mu.Lock()
	defer l.mu.Unlock()
	l.pruneLocked()
	l.alerts = append(l.alerts, a)
}

func (l *alertLog) pruneLocked() {
	cutoff := time.Now().Add(-l.retention)
	kept := l.alerts[:0]
	for _, a := range l.alerts {
		if a.Timestamp.After(cutoff) {
			kept = append(kept, a)
		}
	}
	l.alerts = kept
}

// active returns an unresolved alert matching the metric scope, if any.
// Used to suppress duplicates while a condition persists.
func (l *alertLog) active(metric, locale string) *Alert {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, a := range l.alerts {
		if !a.Resolved && a.MetricName == metric && a.Locale == locale {
			return a
		}
	}
	return nil
}

// resolveWhere marks matching unresolved alerts resolved.
func (l *alertLog) resolveWhere(match func(*Alert) bool) int {
	now := time.Now().UTC()
	n := 0

	l.mu.Lock()
	defer l.mu.Unlock()
	for _, a := range l.alerts {
		if !a.Resolved && match(a) {
			a.Resolved = true
			a.ResolvedAt = &now
			n++
		}
	}
	return n
}

// list returns alerts in the window, optionally filtered by severity.
func (l *alertLog) list(severity Severity) []Alert {
	l.mu.Lock()
	l.pruneLocked()
	alerts := make([]Alert, 0, len(l.alerts))
	for _, a := range l.alerts {
		if severity == "" || a.Severity == severity {
			alerts = append(alerts, *a)
		}
	}
	l.mu.Unlock()
	return alerts
}

// counts returns (active, activeCritical, activeWarning).
func (l *alertLog) counts() (active, critical, warning int) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, a := range l.alerts {
		if a.Resolved {
			continue
		}
		active++
		switch a.Severity {
		case SeverityCritical:
			critical++
		case SeverityWarning:
			warning++
		}
	}
	return active, critical, warning
}

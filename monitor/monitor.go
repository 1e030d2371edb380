package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// HealthStatus is the overall verdict exposed to operators.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusWarning   HealthStatus = "warning"
	StatusCritical  HealthStatus = "critical"
	StatusUnhealthy HealthStatus = "unhealthy"
)

// AlertsSummary counts active alerts for the health report.
type AlertsSummary struct {
	Active   int `json:"active"`
	Critical int `json:"critical"`
	Warning  int `json:"warning"`
}

// HealthReport is the operator-facing aggregate: worst-of across checks
// and active alerts.
type HealthReport struct {
	OverallStatus HealthStatus  `json:"overall_status"`
	Checks        []CheckResult `json:"checks"`
	Alerts        AlertsSummary `json:"alerts_summary"`
	GeneratedAt   time.Time     `json:"generated_at"`
}

// Config tunes the monitor.
type Config struct {
	Interval  time.Duration // check interval and suppression window; default 300s
	Retention time.Duration // alert window; default 24h
}

// Monitor owns the periodic check loop, the alert log, and handler
// fan-out. It is constructed explicitly and injected where needed; there
// is no ambient singleton.
type Monitor struct {
	interval time.Duration
	checks   []Check
	handlers []Handler
	alerts   *alertLog
	log      *zap.Logger

	mu          sync.Mutex
	lastRun     time.Time
	lastResults []CheckResult

	cron *cron.Cron
}

// MonitorOption configures a Monitor.
type MonitorOption func(*Monitor)

// WithCheck registers a health check.
func WithCheck(c Check) MonitorOption {
	return func(m *Monitor) {
		m.checks = append(m.checks, c)
	}
}

// WithHandler registers an alert handler.
func WithHandler(h Handler) MonitorOption {
	return func(m *Monitor) {
		m.handlers = append(m.handlers, h)
	}
}

// New creates a Monitor. A nil logger disables logging; without handlers
// a LogHandler is installed.
func New(cfg Config, log *zap.Logger, opts ...MonitorOption) *Monitor {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 300 * time.Second
	}
	m := &Monitor{
		interval: cfg.Interval,
		alerts:   newAlertLog(cfg.Retention),
		log:      log.With(zap.String("module", "monitor")),
	}
	for _, opt := range opts {
		opt(m)
	}
	if len(m.handlers) == 0 {
		m.handlers = append(m.handlers, &LogHandler{Log: m.log})
	}
	return m
}

// RunChecks executes every check once. Re-running inside the interval is
// suppressed (the cached report is returned and ran is false) so nothing
// can cause an alert storm by polling health.
func (m *Monitor) RunChecks(ctx context.Context) (HealthReport, bool) {
	m.mu.Lock()
	if !m.lastRun.IsZero() && time.Since(m.lastRun) < m.interval {
		report := m.buildReportLocked()
		m.mu.Unlock()
		return report, false
	}
	m.lastRun = time.Now()
	checks := m.checks
	m.mu.Unlock()

	results := make([]CheckResult, 0, len(checks))
	for _, check := range checks {
		results = append(results, check.Run(ctx))
	}
	for _, res := range results {
		m.applyResult(res)
	}

	m.mu.Lock()
	m.lastResults = results
	report := m.buildReportLocked()
	m.mu.Unlock()

	m.log.Info("health checks ran",
		zap.String("overall", string(report.OverallStatus)),
		zap.Int("checks", len(results)),
	)
	return report, true
}

// Health returns the current report, running the checks when due.
func (m *Monitor) Health(ctx context.Context) HealthReport {
	report, _ := m.RunChecks(ctx)
	return report
}

// Alerts lists alerts in the retention window, optionally filtered by
// severity. Empty severity returns everything.
func (m *Monitor) Alerts(severity Severity) []Alert {
	return m.alerts.list(severity)
}

// ActiveAlertCounts returns unresolved alert totals by severity, for
// gauge export.
func (m *Monitor) ActiveAlertCounts() (critical, warning int) {
	_, critical, warning = m.alerts.counts()
	return critical, warning
}

// Resolve marks one alert resolved by id; the operator-initiated leg of
// the alert state machine.
func (m *Monitor) Resolve(id string) bool {
	return m.alerts.resolveWhere(func(a *Alert) bool { return a.ID == id }) > 0
}

// Raise records an externally detected alert and fans it out; used for
// catastrophic conditions noticed outside the check loop.
func (m *Monitor) Raise(a Alert) Alert {
	m.dispatch(&a)
	return a
}

// Start schedules the periodic loop. Stop waits for a running check to
// finish before returning.
func (m *Monitor) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cron != nil {
		return fmt.Errorf("monitor already started")
	}
	c := cron.New()
	_, err := c.AddFunc(fmt.Sprintf("@every %s", m.interval), func() {
		m.RunChecks(context.Background())
	})
	if err != nil {
		return fmt.Errorf("scheduling checks: %w", err)
	}
	c.Start()
	m.cron = c
	m.log.Info("monitor started", zap.Duration("interval", m.interval))
	return nil
}

// Stop halts the schedule, letting the in-flight check complete. The
// wait happens outside the mutex so a check taking m.mu cannot deadlock
// against it.
func (m *Monitor) Stop() {
	m.mu.Lock()
	c := m.cron
	m.cron = nil
	m.mu.Unlock()
	if c == nil {
		return
	}
	<-c.Stop().Done()
	m.log.Info("monitor stopped")
}

// applyResult turns one check result into alert transitions: raise for
// failing scopes, retire alerts whose condition cleared.
func (m *Monitor) applyResult(res CheckResult) {
	severity := SeverityWarning
	if res.Status == CheckFail {
		severity = SeverityCritical
	}

	failing := make(map[string]bool, len(res.FailingLocales))
	if res.Status != CheckPass {
		if len(res.FailingLocales) > 0 {
			for _, locale := range res.FailingLocales {
				failing[locale] = true
				m.raise(res, locale, severity)
			}
		} else {
			m.raise(res, "", severity)
		}
	}

	m.alerts.resolveWhere(func(a *Alert) bool {
		if a.MetricName != res.Name {
			return false
		}
		if res.Status == CheckPass {
			return true
		}
		return a.Locale != "" && !failing[a.Locale]
	})
}

// raise creates an alert unless the same condition is already active.
func (m *Monitor) raise(res CheckResult, locale string, severity Severity) {
	if existing := m.alerts.active(res.Name, locale); existing != nil {
		if existing.Severity == severity {
			return
		}
		// Severity changed: retire the old alert and raise anew.
		m.alerts.resolveWhere(func(a *Alert) bool { return a.ID == existing.ID })
	}

	title := fmt.Sprintf("%s check %sed", res.Name, res.Status)
	message := res.Detail
	value := res.Value
	if locale != "" {
		message = fmt.Sprintf("locale %s: %s", locale, res.Detail)
		if v, ok := res.LocaleValues[locale]; ok {
			value = v
		}
	}

	m.dispatch(&Alert{
		Severity:    severity,
		Title:       title,
		Message:     message,
		Locale:      locale,
		MetricName:  res.Name,
		MetricValue: value,
		Threshold:   res.Threshold,
	})
}

// dispatch appends the alert and synchronously invokes every handler.
// A handler failure or panic is caught and logged, never propagated.
func (m *Monitor) dispatch(a *Alert) {
	m.alerts.append(a)
	for _, h := range m.handlers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					m.log.Error("alert handler panicked", zap.Any("panic", r))
				}
			}()
			if err := h.Handle(*a); err != nil {
				m.log.Error("alert handler failed", zap.String("alert", a.ID), zap.Error(err))
			}
		}()
	}
}

// buildReportLocked computes worst-of status. Callers hold m.mu.
func (m *Monitor) buildReportLocked() HealthReport {
	report := HealthReport{
		OverallStatus: StatusHealthy,
		Checks:        append([]CheckResult(nil), m.lastResults...),
		GeneratedAt:   time.Now().UTC(),
	}

	failed := false
	for _, res := range m.lastResults {
		if res.Status == CheckFail {
			failed = true
		}
	}

	active, critical, warning := m.alerts.counts()
	report.Alerts = AlertsSummary{Active: active, Critical: critical, Warning: warning}

	switch {
	case failed:
		report.OverallStatus = StatusUnhealthy
	case critical > 0:
		report.OverallStatus = StatusCritical
	case warning > 0:
		report.OverallStatus = StatusWarning
	}
	return report
}

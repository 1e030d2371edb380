package monitor

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/pilipandr770/sekretar-sub006/cache"
	"github.com/pilipandr770/sekretar-sub006/catalog"
)

// CheckStatus is one check's verdict.
type CheckStatus string

const (
	CheckPass CheckStatus = "pass"
	CheckWarn CheckStatus = "warn"
	CheckFail CheckStatus = "fail"
)

// CheckResult reports one check run, with enough locale detail that an
// operator can act without reading logs.
type CheckResult struct {
	Name           string      `json:"name"`
	Status         CheckStatus `json:"status"`
	Detail         string      `json:"detail,omitempty"`
	FailingLocales []string    `json:"failing_locales,omitempty"`
	CheckedAt      time.Time   `json:"checked_at"`

	// Value holds the measured number for scalar checks; LocaleValues
	// holds per-locale measurements. Threshold is the boundary the
	// check compared against, set only when the status is not pass.
	Value        float64            `json:"value,omitempty"`
	Threshold    float64            `json:"threshold,omitempty"`
	LocaleValues map[string]float64 `json:"locale_values,omitempty"`
}

// Check is one independent pass/warn/fail health inspection.
type Check interface {
	Name() string
	Run(ctx context.Context) CheckResult
}

// FileIntegrityCheck verifies every supported locale has a non-empty
// source catalog and a non-empty compiled artifact.
type FileIntegrityCheck struct {
	Store   *catalog.Store
	Locales []string
}

func (c *FileIntegrityCheck) Name() string { return "file_integrity" }

func (c *FileIntegrityCheck) Run(_ context.Context) CheckResult {
	res := CheckResult{Name: c.Name(), Status: CheckPass, CheckedAt: time.Now().UTC()}
	for _, locale := range c.Locales {
		po, mo := c.Store.FileSizes(locale)
		if po == 0 || mo == 0 {
			res.FailingLocales = append(res.FailingLocales, locale)
		}
	}
	if len(res.FailingLocales) > 0 {
		sort.Strings(res.FailingLocales)
		res.Status = CheckFail
		res.Detail = fmt.Sprintf("%d locale(s) missing catalog or artifact", len(res.FailingLocales))
	}
	return res
}

// CacheHealthCheck compares the lookup hit rate against thresholds.
// Defaults: warn below 50%, fail below 20%.
type CacheHealthCheck struct {
	Stats    func(ctx context.Context) cache.Stats
	WarnRate float64
	FailRate float64
}

func (c *CacheHealthCheck) Name() string { return "cache_health" }

func (c *CacheHealthCheck) Run(ctx context.Context) CheckResult {
	warn, fail := c.WarnRate, c.FailRate
	if warn == 0 {
		warn = 0.5
	}
	if fail == 0 {
		fail = 0.2
	}

	res := CheckResult{Name: c.Name(), Status: CheckPass, CheckedAt: time.Now().UTC()}
	stats := c.Stats(ctx)
	if stats.Hits+stats.Misses == 0 {
		res.Detail = "no lookup traffic yet"
		return res
	}

	res.Detail = fmt.Sprintf("hit rate %.1f%%", stats.HitRate*100)
	res.Value = stats.HitRate
	switch {
	case stats.HitRate < fail:
		res.Status = CheckFail
		res.Threshold = fail
	case stats.HitRate < warn:
		res.Status = CheckWarn
		res.Threshold = warn
	}
	return res
}

// CoverageCheck flags locales below coverage thresholds.
// Defaults: warn below 80%, fail below 60%.
type CoverageCheck struct {
	Store    *catalog.Store
	Locales  []string
	WarnPct  float64
	FailPct  float64
	snapshot func(ctx context.Context) map[string]catalog.Snapshot
}

func (c *CoverageCheck) Name() string { return "coverage" }

func (c *CoverageCheck) Run(ctx context.Context) CheckResult {
	warn, fail := c.WarnPct, c.FailPct
	if warn == 0 {
		warn = 80
	}
	if fail == 0 {
		fail = 60
	}

	snapshots := c.snapshots(ctx)
	res := CheckResult{Name: c.Name(), Status: CheckPass, CheckedAt: time.Now().UTC()}

	res.LocaleValues = make(map[string]float64, len(c.Locales))
	var warned []string
	for _, locale := range c.Locales {
		snap := snapshots[locale]
		res.LocaleValues[locale] = snap.Percentage
		switch {
		case snap.Status == catalog.StatusError || snap.Status == catalog.StatusMissing:
			res.FailingLocales = append(res.FailingLocales, locale)
		case snap.Percentage < fail:
			res.FailingLocales = append(res.FailingLocales, locale)
		case snap.Percentage < warn:
			warned = append(warned, locale)
		}
	}

	switch {
	case len(res.FailingLocales) > 0:
		sort.Strings(res.FailingLocales)
		res.Status = CheckFail
		res.Threshold = fail
		res.Detail = fmt.Sprintf("%d locale(s) below %.0f%% coverage", len(res.FailingLocales), fail)
	case len(warned) > 0:
		sort.Strings(warned)
		res.Status = CheckWarn
		res.Threshold = warn
		res.Detail = fmt.Sprintf("%d locale(s) below %.0f%% coverage", len(warned), warn)
		res.FailingLocales = warned
	}
	return res
}

func (c *CoverageCheck) snapshots(ctx context.Context) map[string]catalog.Snapshot {
	if c.snapshot != nil {
		return c.snapshot(ctx)
	}
	return c.Store.CoverageAll(ctx, c.Locales)
}

// ResourceCheck compares process-host memory and disk usage against
// percentage thresholds. Defaults: warn at 80%, fail at 90%.
type ResourceCheck struct {
	DiskPath string // path whose filesystem is measured; default "/"
	WarnPct  float64
	FailPct  float64
}

func (c *ResourceCheck) Name() string { return "resources" }

func (c *ResourceCheck) Run(ctx context.Context) CheckResult {
	warn, fail := c.WarnPct, c.FailPct
	if warn == 0 {
		warn = 80
	}
	if fail == 0 {
		fail = 90
	}
	path := c.DiskPath
	if path == "" {
		path = "/"
	}

	res := CheckResult{Name: c.Name(), Status: CheckPass, CheckedAt: time.Now().UTC()}

	var memPct, diskPct float64
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		memPct = vm.UsedPercent
	}
	if du, err := disk.UsageWithContext(ctx, path); err == nil {
		diskPct = du.UsedPercent
	}

	res.Detail = fmt.Sprintf("memory %.1f%%, disk %.1f%%", memPct, diskPct)
	worst := memPct
	if diskPct > worst {
		worst = diskPct
	}
	res.Value = worst
	switch {
	case worst >= fail:
		res.Status = CheckFail
		res.Threshold = fail
	case worst >= warn:
		res.Status = CheckWarn
		res.Threshold = warn
	}
	return res
}

package pretranslate

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pilipandr770/sekretar-sub006/catalog"
)

// DefaultBatchSize caps the texts in one backend request.
const DefaultBatchSize = 25

// Report summarizes one pretranslation run.
type Report struct {
	Locale   string    `json:"locale"`
	Filled   int       `json:"filled"`
	Skipped  int       `json:"skipped"`
	Batches  int       `json:"batches"`
	Duration float64   `json:"duration_seconds"`
	RanAt    time.Time `json:"ran_at"`
}

// Filler drafts translations for every untranslated entry of a locale.
type Filler struct {
	store     *catalog.Store
	provider  Provider
	limiter   *RateLimiter
	retry     RetryConfig
	batchSize int
	log       *zap.Logger
}

// FillerOption configures a Filler.
type FillerOption func(*Filler)

// WithBatchSize overrides the per-request batch size.
func WithBatchSize(n int) FillerOption {
	return func(f *Filler) {
		if n > 0 {
			f.batchSize = n
		}
	}
}

// WithRateLimit throttles backend calls.
func WithRateLimit(cfg RateLimitConfig) FillerOption {
	return func(f *Filler) { f.limiter = NewRateLimiter(cfg) }
}

// WithRetry overrides the backoff settings.
func WithRetry(cfg RetryConfig) FillerOption {
	return func(f *Filler) { f.retry = cfg }
}

// WithLogger attaches a logger.
func WithLogger(log *zap.Logger) FillerOption {
	return func(f *Filler) {
		if log != nil {
			f.log = log
		}
	}
}

// NewFiller creates a Filler over the store and backend.
func NewFiller(store *catalog.Store, provider Provider, opts ...FillerOption) *Filler {
	f := &Filler{
		store:     store,
		provider:  provider,
		retry:     DefaultRetryConfig(),
		batchSize: DefaultBatchSize,
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.log = f.log.With(zap.String("module", "pretranslate"))
	return f
}

// Run drafts translations for every untranslated, non-obsolete entry of
// the locale. Drafts are written fuzzy; entries that already carry any
// translation, fuzzy or not, are left alone.
func (f *Filler) Run(ctx context.Context, sourceLocale, locale string) (Report, error) {
	started := time.Now()
	report := Report{Locale: locale, RanAt: started.UTC()}

	cat, err := f.store.Load(locale)
	if err != nil {
		return report, fmt.Errorf("loading %s: %w", locale, err)
	}

	var pending []*catalog.Entry
	for _, e := range cat.Entries() {
		if e.Obsolete {
			continue
		}
		if e.Translation != "" {
			report.Skipped++
			continue
		}
		pending = append(pending, e)
	}
	if len(pending) == 0 {
		f.log.Info("nothing to pretranslate", zap.String("locale", locale))
		return report, nil
	}

	drafts := make(map[string]string, len(pending))
	for start := 0; start < len(pending); start += f.batchSize {
		end := start + f.batchSize
		if end > len(pending) {
			end = len(pending)
		}
		batch := pending[start:end]

		if f.limiter != nil {
			if err := f.limiter.Wait(ctx); err != nil {
				return report, fmt.Errorf("rate limit wait: %w", err)
			}
		}

		req := Request{
			Texts:        make([]string, len(batch)),
			Contexts:     make([]string, len(batch)),
			SourceLocale: sourceLocale,
			TargetLocale: locale,
		}
		for i, e := range batch {
			req.Texts[i] = e.ID
			req.Contexts[i] = e.Context
		}

		translations, err := withRetry(ctx, f.retry, func() ([]string, error) {
			return f.provider.Translate(ctx, req)
		})
		if err != nil {
			return report, fmt.Errorf("translating batch %d: %w", report.Batches+1, err)
		}
		report.Batches++

		for i, e := range batch {
			if translations[i] == "" {
				continue
			}
			drafts[e.ID] = translations[i]
		}
	}

	if len(drafts) > 0 {
		_, err = f.store.Update(locale, false, func(c *catalog.Catalog) error {
			for id, text := range drafts {
				e := c.Get(id)
				if e == nil || e.Obsolete || e.Translation != "" {
					continue
				}
				e.Translation = text
				e.Fuzzy = true
				report.Filled++
			}
			return nil
		})
		if err != nil {
			return report, fmt.Errorf("saving drafts for %s: %w", locale, err)
		}
	}

	report.Duration = time.Since(started).Seconds()
	f.log.Info("pretranslation finished",
		zap.String("locale", locale),
		zap.Int("filled", report.Filled),
		zap.Int("batches", report.Batches),
	)
	return report, nil
}

package extract

import (
	"go.uber.org/zap"

	"github.com/pilipandr770/sekretar-sub006/catalog"
)

// MergeReport summarizes one template-into-locale merge.
type MergeReport struct {
	Locale           string `json:"locale"`
	Added            int    `json:"added"`
	UpdatedLocations int    `json:"updated_locations"`
	Obsoleted        int    `json:"obsoleted"`
}

// Merge folds a template catalog into a locale's catalog under the
// locale's writer lock. Existing translations and fuzzy flags survive,
// locations are refreshed from the template, new messages arrive empty,
// and messages the template no longer carries are marked obsolete but
// never deleted. A missing locale catalog is created on first merge.
func (x *Extractor) Merge(locale string, tmpl *catalog.Catalog) (MergeReport, error) {
	report := MergeReport{Locale: locale}

	_, err := x.store.Update(locale, true, func(c *catalog.Catalog) error {
		inTemplate := make(map[string]bool, tmpl.Len())
		for _, te := range tmpl.Entries() {
			inTemplate[te.ID] = true
			existing := c.Get(te.ID)
			if existing == nil {
				c.Set(&catalog.Entry{
					ID:        te.ID,
					Context:   te.Context,
					Locations: te.Locations,
				})
				report.Added++
				continue
			}
			existing.Locations = te.Locations
			existing.Obsolete = false
			report.UpdatedLocations++
		}

		for _, e := range c.Entries() {
			if !inTemplate[e.ID] && !e.Obsolete {
				e.Obsolete = true
				report.Obsoleted++
			}
		}
		return nil
	})
	if err != nil {
		return MergeReport{Locale: locale}, err
	}

	x.log.Info("template merged",
		zap.String("locale", locale),
		zap.Int("added", report.Added),
		zap.Int("obsoleted", report.Obsoleted),
	)
	return report, nil
}

// MergeAll merges the template into every locale. Extraction is
// per-locale, not all-or-nothing: a corrupt catalog fails only its own
// locale and the rest proceed.
func (x *Extractor) MergeAll(locales []string, tmpl *catalog.Catalog) (map[string]MergeReport, map[string]error) {
	reports := make(map[string]MergeReport, len(locales))
	failures := make(map[string]error)
	for _, locale := range locales {
		report, err := x.Merge(locale, tmpl)
		if err != nil {
			x.log.Warn("merge failed", zap.String("locale", locale), zap.Error(err))
			failures[locale] = err
			continue
		}
		reports[locale] = report
	}
	return reports, failures
}

// Package extract scans source units for translatable literals, builds a
// template catalog, and merges it into per-locale catalogs.
package extract

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/pilipandr770/sekretar-sub006/catalog"
)

// Format identifies how a source unit is scanned.
type Format string

const (
	FormatHTML Format = "html"
	FormatGo   Format = "go"
)

// SourceUnit is a collaborator-supplied scan target.
type SourceUnit struct {
	Name    string // path used in location references
	Format  Format
	Content []byte
}

// Literal is one translatable string found in a source unit.
type Literal struct {
	Text     string
	Context  string
	Location catalog.Location
}

// Scanner extracts literals from one source format.
type Scanner interface {
	Scan(unit SourceUnit) ([]Literal, error)
	Format() Format
}

// ScanError indicates a source unit could not be scanned.
type ScanError struct {
	Unit   string
	Format Format
	Cause  error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("scanning %s (%s): %v", e.Unit, e.Format, e.Cause)
}

func (e *ScanError) Unwrap() error {
	return e.Cause
}

// Extractor builds template catalogs and merges them into locale catalogs.
type Extractor struct {
	store    *catalog.Store
	scanners map[Format]Scanner
	log      *zap.Logger
}

// ExtractorOption configures the Extractor.
type ExtractorOption func(*Extractor)

// WithScanner registers an additional or replacement scanner.
func WithScanner(s Scanner) ExtractorOption {
	return func(x *Extractor) {
		x.scanners[s.Format()] = s
	}
}

// NewExtractor creates an Extractor with the HTML and Go scanners
// registered. A nil logger disables logging.
func NewExtractor(store *catalog.Store, log *zap.Logger, opts ...ExtractorOption) *Extractor {
	if log == nil {
		log = zap.NewNop()
	}
	x := &Extractor{
		store: store,
		scanners: map[Format]Scanner{
			FormatHTML: NewHTMLScanner(),
			FormatGo:   NewGoScanner(),
		},
		log: log.With(zap.String("module", "extract")),
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// Extract scans all units and builds a template catalog: one entry per
// distinct literal, first occurrence's context retained, every
// occurrence's location appended.
func (x *Extractor) Extract(units []SourceUnit) (*catalog.Catalog, error) {
	tmpl := catalog.New("")
	for _, unit := range units {
		scanner, ok := x.scanners[unit.Format]
		if !ok {
			return nil, &ScanError{Unit: unit.Name, Format: unit.Format,
				Cause: fmt.Errorf("no scanner registered")}
		}
		literals, err := scanner.Scan(unit)
		if err != nil {
			return nil, err
		}
		for _, lit := range literals {
			if existing := tmpl.Get(lit.Text); existing != nil {
				existing.Locations = append(existing.Locations, lit.Location)
				continue
			}
			tmpl.Set(&catalog.Entry{
				ID:        lit.Text,
				Context:   lit.Context,
				Locations: []catalog.Location{lit.Location},
			})
		}
	}
	x.log.Info("template extracted",
		zap.Int("units", len(units)),
		zap.Int("messages", tmpl.Len()),
	)
	return tmpl, nil
}

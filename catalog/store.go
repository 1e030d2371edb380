package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// Store owns the on-disk catalog layout:
//
//	<root>/<locale>/LC_MESSAGES/messages.po   source catalog
//	<root>/<locale>/LC_MESSAGES/messages.mo   compiled artifact
//	<root>/messages.pot                       shared template
//
// No other component writes these files. Writers to the same locale are
// serialized by a per-locale mutex held across load-mutate-save.
type Store struct {
	root string
	log  *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewStore creates a store rooted at dir. A nil logger disables logging.
func NewStore(dir string, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		root:  dir,
		log:   log.With(zap.String("module", "catalog")),
		locks: make(map[string]*sync.Mutex),
	}
}

// Root returns the store's root directory.
func (s *Store) Root() string {
	return s.root
}

// POPath returns the source catalog path for a locale.
func (s *Store) POPath(locale string) string {
	return filepath.Join(s.root, locale, "LC_MESSAGES", "messages.po")
}

// MOPath returns the compiled artifact path for a locale.
func (s *Store) MOPath(locale string) string {
	return filepath.Join(s.root, locale, "LC_MESSAGES", "messages.mo")
}

// TemplatePath returns the shared template catalog path.
func (s *Store) TemplatePath() string {
	return filepath.Join(s.root, "messages.pot")
}

func (s *Store) lockFor(locale string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[locale]
	if !ok {
		l = &sync.Mutex{}
		s.locks[locale] = l
	}
	return l
}

// Load reads a locale's source catalog. Returns ErrNotFound when the file
// does not exist and a CorruptError when it cannot be parsed; a corrupt
// file is never partially applied.
func (s *Store) Load(locale string) (*Catalog, error) {
	return s.loadPath(s.POPath(locale), locale)
}

// LoadTemplate reads the shared template catalog.
func (s *Store) LoadTemplate() (*Catalog, error) {
	return s.loadPath(s.TemplatePath(), "")
}

func (s *Store) loadPath(path, locale string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	defer f.Close()

	c, err := Parse(f, locale)
	if err != nil {
		var ce *CorruptError
		if errors.As(err, &ce) {
			ce.Path = path
		}
		return nil, err
	}
	return c, nil
}

// Save replaces a locale's source catalog as a whole file, using a temp
// file plus rename so readers never observe a partial write.
func (s *Store) Save(locale string, c *Catalog) error {
	lock := s.lockFor(locale)
	lock.Lock()
	defer lock.Unlock()
	return s.writePO(s.POPath(locale), c)
}

// SaveTemplate replaces the shared template catalog.
func (s *Store) SaveTemplate(c *Catalog) error {
	lock := s.lockFor("")
	lock.Lock()
	defer lock.Unlock()
	return s.writePO(s.TemplatePath(), c)
}

func (s *Store) writePO(path string, c *Catalog) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating catalog dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".messages-*.po")
	if err != nil {
		return fmt.Errorf("creating temp catalog: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := c.WritePO(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("writing catalog: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp catalog: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing catalog: %w", err)
	}
	s.log.Debug("catalog saved", zap.String("path", path), zap.Int("entries", c.Len()))
	return nil
}

// Update runs fn under the locale's writer lock with the freshly loaded
// catalog, then saves the result. When createMissing is true an absent
// catalog starts empty instead of failing with ErrNotFound. Corrupt
// catalogs fail without touching the file.
func (s *Store) Update(locale string, createMissing bool, fn func(*Catalog) error) (*Catalog, error) {
	lock := s.lockFor(locale)
	lock.Lock()
	defer lock.Unlock()

	c, err := s.loadPath(s.POPath(locale), locale)
	if err != nil {
		if !errors.Is(err, ErrNotFound) || !createMissing {
			return nil, err
		}
		c = New(locale)
	}

	if err := fn(c); err != nil {
		return nil, err
	}
	c.Touch()
	if err := s.writePO(s.POPath(locale), c); err != nil {
		return nil, err
	}
	return c, nil
}

// Get returns one entry from a locale's catalog. Returns ErrEntryNotFound
// when the id is absent, including for obsolete entries.
func (s *Store) Get(locale, id string) (*Entry, error) {
	c, err := s.Load(locale)
	if err != nil {
		return nil, err
	}
	e := c.Get(id)
	if e == nil || e.Obsolete {
		return nil, fmt.Errorf("%s/%s: %w", locale, id, ErrEntryNotFound)
	}
	return e, nil
}

// Compile writes a locale's compiled artifact from its source catalog.
func (s *Store) Compile(locale string) error {
	lock := s.lockFor(locale)
	lock.Lock()
	defer lock.Unlock()

	c, err := s.loadPath(s.POPath(locale), locale)
	if err != nil {
		return err
	}

	path := s.MOPath(locale)
	tmp, err := os.CreateTemp(filepath.Dir(path), ".messages-*.mo")
	if err != nil {
		return fmt.Errorf("creating temp artifact: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := c.WriteMO(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("writing artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp artifact: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing artifact: %w", err)
	}
	s.log.Info("catalog compiled", zap.String("locale", locale))
	return nil
}

// FileSizes returns the source and compiled file sizes for a locale.
// A missing file reports size zero.
func (s *Store) FileSizes(locale string) (po, mo int64) {
	if fi, err := os.Stat(s.POPath(locale)); err == nil {
		po = fi.Size()
	}
	if fi, err := os.Stat(s.MOPath(locale)); err == nil {
		mo = fi.Size()
	}
	return po, mo
}

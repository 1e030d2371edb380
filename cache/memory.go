package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// memoryEntry holds a cached value with its write timestamp.
type memoryEntry struct {
	value     string
	timestamp time.Time
}

// MemoryTier is the in-process cache layer: a concurrent map with no
// network I/O, shared by every request-handling goroutine. Entries live
// for the process lifetime unless a TTL is configured.
type MemoryTier struct {
	kb    *KeyBuilder
	ttl   time.Duration
	mu    sync.RWMutex
	cache map[string]memoryEntry
}

// NewMemoryTier creates an in-process tier. ttl <= 0 disables expiry.
func NewMemoryTier(ttl time.Duration) *MemoryTier {
	if ttl < 0 {
		ttl = 0
	}
	return &MemoryTier{
		kb:    NewKeyBuilder(Namespace),
		ttl:   ttl,
		cache: make(map[string]memoryEntry),
	}
}

// Name returns "memory".
func (t *MemoryTier) Name() string { return "memory" }

// Get retrieves a value. Expired entries are removed lazily.
func (t *MemoryTier) Get(_ context.Context, locale, id string) (string, bool, error) {
	key := t.kb.Build(locale, id)

	t.mu.RLock()
	entry, ok := t.cache[key]
	t.mu.RUnlock()

	if !ok {
		return "", false, nil
	}
	if t.ttl > 0 && time.Since(entry.timestamp) > t.ttl {
		t.mu.Lock()
		delete(t.cache, key)
		t.mu.Unlock()
		return "", false, nil
	}
	return entry.value, true, nil
}

// Set stores a value.
func (t *MemoryTier) Set(_ context.Context, locale, id, value string) error {
	key := t.kb.Build(locale, id)
	t.mu.Lock()
	t.cache[key] = memoryEntry{value: value, timestamp: time.Now()}
	t.mu.Unlock()
	return nil
}

// Invalidate clears records by scope. The map has no scan primitive, so
// the pattern scopes walk the keys: prefix match for locale-wide and
// namespace-wide, suffix match for one id across every locale.
func (t *MemoryTier) Invalidate(_ context.Context, locale, id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch {
	case locale == "" && id == "":
		t.cache = make(map[string]memoryEntry)
	case locale == "":
		suffix := t.kb.KeySuffix(id)
		for key := range t.cache {
			if strings.HasSuffix(key, suffix) {
				delete(t.cache, key)
			}
		}
	case id == "":
		prefix := t.kb.LocalePrefix(locale)
		for key := range t.cache {
			if strings.HasPrefix(key, prefix) {
				delete(t.cache, key)
			}
		}
	default:
		delete(t.cache, t.kb.Build(locale, id))
	}
	return nil
}

// Size returns the number of entries, expired ones included.
func (t *MemoryTier) Size(_ context.Context) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.cache)
}

var _ Tier = (*MemoryTier)(nil)

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultTTL bounds staleness in the shared tiers.
const DefaultTTL = time.Hour

// RedisTier is a shared cache layer backed by Redis. Both the distributed
// tier and the secondary tier use this type, pointed at different
// endpoints. Invalidation is best-effort: staleness is bounded by TTL,
// not by invalidation guarantees.
type RedisTier struct {
	name   string
	client redis.Cmdable
	kb     *KeyBuilder
	ttl    time.Duration
	log    *zap.Logger
}

// RedisConfig configures one Redis-backed tier.
type RedisConfig struct {
	Name string        // tier name for stats ("distributed", "secondary")
	URL  string        // connection URL, e.g. "redis://localhost:6379/0"
	TTL  time.Duration // zero means DefaultTTL
}

// NewRedisTier connects a Redis-backed tier and verifies the connection
// with a short ping.
func NewRedisTier(cfg RedisConfig, log *zap.Logger) (*RedisTier, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	return NewRedisTierFromClient(cfg.Name, client, cfg.TTL, log), nil
}

// NewRedisTierFromClient wraps an existing client; used by tests with a
// mock client.
func NewRedisTierFromClient(name string, client redis.Cmdable, ttl time.Duration, log *zap.Logger) *RedisTier {
	if name == "" {
		name = "distributed"
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisTier{
		name:   name,
		client: client,
		kb:     NewKeyBuilder(Namespace),
		ttl:    ttl,
		log:    log.With(zap.String("module", "cache"), zap.String("tier", name)),
	}
}

// Name returns the configured tier name.
func (t *RedisTier) Name() string { return t.name }

// Get retrieves a value. Backend failures are returned as errors so the
// caller can count them and keep walking the tier chain.
func (t *RedisTier) Get(ctx context.Context, locale, id string) (string, bool, error) {
	val, err := t.client.Get(ctx, t.kb.Build(locale, id)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		t.log.Warn("tier get failed", zap.String("locale", locale), zap.Error(err))
		return "", false, err
	}
	return val, true, nil
}

// Set stores a value under the tier TTL.
func (t *RedisTier) Set(ctx context.Context, locale, id, value string) error {
	if err := t.client.Set(ctx, t.kb.Build(locale, id), value, t.ttl).Err(); err != nil {
		t.log.Warn("tier set failed", zap.String("locale", locale), zap.Error(err))
		return err
	}
	return nil
}

// Invalidate clears records by scope. Pattern scopes use the backend's
// native SCAN primitive and delete in batches.
func (t *RedisTier) Invalidate(ctx context.Context, locale, id string) error {
	if locale != "" && id != "" {
		return t.client.Del(ctx, t.kb.Build(locale, id)).Err()
	}
	return t.deletePattern(ctx, t.kb.Pattern(locale, id))
}

func (t *RedisTier) deletePattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, next, err := t.client.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return fmt.Errorf("scanning %q: %w", pattern, err)
		}
		if len(keys) > 0 {
			if err := t.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("deleting %d keys: %w", len(keys), err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// Size counts namespace keys with a bounded SCAN; stats only.
func (t *RedisTier) Size(ctx context.Context) int {
	var cursor uint64
	total := 0
	for {
		keys, next, err := t.client.Scan(ctx, cursor, t.kb.NamespacePrefix()+"*", 500).Result()
		if err != nil {
			return total
		}
		total += len(keys)
		cursor = next
		if cursor == 0 {
			return total
		}
	}
}

var _ Tier = (*RedisTier)(nil)

package access

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

const (
	cacheVersionKey = "access:version"
	// BumpChannel carries version bumps between instances.
	BumpChannel = "access.bump"
)

// Cache stores resolved capability sets in Redis under versioned keys.
// Invalidate bumps the version so every previously cached set is abandoned at once.
type Cache struct {
	client  *redis.Client
	ttl     time.Duration
	logger  *slog.Logger
	lookups *prometheus.CounterVec
}

// NewCache instantiates the cache helper. A nil registerer leaves the lookup counter unregistered.
func NewCache(client *redis.Client, ttl time.Duration, logger *slog.Logger, reg prometheus.Registerer) *Cache {
	lookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wofr_access_cache_lookups_total",
		Help: "Capability cache lookups by result.",
	}, []string{"result"})
	if reg != nil {
		if err := reg.Register(lookups); err != nil {
			var already prometheus.AlreadyRegisteredError
			if errors.As(err, &already) {
				lookups = already.ExistingCollector.(*prometheus.CounterVec)
			}
		}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{client: client, ttl: ttl, logger: logger, lookups: lookups}
}

// Version returns the current cache version, initialising when missing.
func (c *Cache) Version(ctx context.Context) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, cacheVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		if err := c.client.SetNX(ctx, cacheVersionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return c.client.Get(ctx, cacheVersionKey).Int64()
	}
	if err != nil {
		return 0, err
	}
	return ver, nil
}

// BuildKey composes the cache key with the current version.
func (c *Cache) BuildKey(ctx context.Context, parts ...string) (string, error) {
	joined := strings.Join(parts, ":")
	if c == nil || c.client == nil {
		return joined, nil
	}
	ver, err := c.Version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:%d", joined, ver), nil
}

// versionedKey returns the key for parts under the current version, or "" when the
// cache is disabled or the version cannot be read.
func (c *Cache) versionedKey(ctx context.Context, parts ...string) string {
	if c == nil || c.client == nil {
		return ""
	}
	key, err := c.BuildKey(ctx, parts...)
	if err != nil {
		c.logger.Warn("access cache version", slog.Any("error", err))
		return ""
	}
	return key
}

// fetchAt loads the value cached under key or populates it using the loader. An
// empty key bypasses Redis. Redis failures are logged and the loader result is
// returned uncached.
func (c *Cache) fetchAt(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) error {
	if loader == nil {
		return errors.New("access cache: loader required")
	}
	if key == "" || c == nil || c.client == nil {
		return loadInto(ctx, loader, dest, nil)
	}
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		if err := json.Unmarshal(payload, dest); err == nil {
			c.lookups.WithLabelValues("hit").Inc()
			return nil
		}
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("access cache get", slog.String("key", key), slog.Any("error", err))
	}
	c.lookups.WithLabelValues("miss").Inc()
	return loadInto(ctx, loader, dest, func(raw []byte) {
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			c.logger.Warn("access cache set", slog.String("key", key), slog.Any("error", err))
		}
	})
}

func loadInto(ctx context.Context, loader func(context.Context) (any, error), dest any, store func([]byte)) error {
	value, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if store != nil {
		store(raw)
	}
	return json.Unmarshal(raw, dest)
}

// Invalidate bumps the version and publishes it. Failures are logged; cached sets
// then expire through their TTL.
func (c *Cache) Invalidate(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	ver, err := c.client.Incr(ctx, cacheVersionKey).Result()
	if err != nil {
		c.logger.Error("access cache bump", slog.Any("error", err))
		return
	}
	if err := c.client.Publish(ctx, BumpChannel, strconv.FormatInt(ver, 10)).Err(); err != nil {
		c.logger.Warn("access cache publish", slog.Any("error", err))
	}
}

// ListenForInvalidation subscribes to version bumps from other instances until ctx ends.
func (c *Cache) ListenForInvalidation(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	pubsub := c.client.Subscribe(ctx, BumpChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return fmt.Errorf("access cache subscribe: %w", err)
	}
	go func() {
		defer func() { _ = pubsub.Close() }()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				ver, err := strconv.ParseInt(msg.Payload, 10, 64)
				if err != nil {
					continue
				}
				current, err := c.client.Get(ctx, cacheVersionKey).Int64()
				if err == nil && current >= ver {
					continue
				}
				if err := c.client.Set(ctx, cacheVersionKey, ver, 0).Err(); err != nil {
					c.logger.Warn("access cache adopt version", slog.Any("error", err))
				}
			}
		}
	}()
	return nil
}

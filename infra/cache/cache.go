// Package cache stores rendered API responses. The dataset never changes
// while the process runs, so entries only expire through their TTL.
package cache

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kilianp07/bikedash/core/model"
	"github.com/kilianp07/bikedash/infra/logger"
)

// Cache is a byte-oriented response cache.
type Cache interface {
	// Get returns the cached value and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Config holds the Redis connection settings.
type Config struct {
	Enabled    bool   `json:"enabled"`
	Addr       string `json:"addr"`
	Password   string `json:"password"`
	DB         int    `json:"db"`
	TTLSeconds int    `json:"ttl_seconds"`
	Prefix     string `json:"prefix"`
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.Addr == "" {
		c.Addr = "localhost:6379"
	}
	if c.TTLSeconds <= 0 {
		c.TTLSeconds = 300
	}
	if c.Prefix == "" {
		c.Prefix = "bikedash"
	}
}

// NopCache never stores anything.
type NopCache struct{}

func (NopCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (NopCache) Set(context.Context, string, []byte) error          { return nil }

// RedisCache stores entries in Redis with a fixed TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache creates a cache on an existing client.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// New returns a RedisCache when caching is enabled and Redis answers a
// ping, a NopCache otherwise.
func New(ctx context.Context, cfg Config) Cache {
	if !cfg.Enabled {
		return NopCache{}
	}
	cfg.SetDefaults()
	log := logger.New("redis-cache")
	client := redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Errorf("redis ping %s: %v", cfg.Addr, err)
		_ = client.Close()
		return NopCache{}
	}
	log.Infof("caching responses in redis %s", cfg.Addr)
	return NewRedisCache(client, time.Duration(cfg.TTLSeconds)*time.Second)
}

// Get returns the stored value. A missing key is not an error.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get %s from redis: %w", key, err)
	}
	return data, true, nil
}

// Set stores value under key with the cache TTL.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte) error {
	if err := c.client.Set(ctx, key, value, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set %s in redis: %w", key, err)
	}
	return nil
}

// Close releases the client.
func (c *RedisCache) Close() error { return c.client.Close() }

// Key builds a deterministic key for a query. Selections are sorted so that
// equivalent criteria share an entry.
func Key(prefix, endpoint string, c model.FilterCriteria, extra ...string) string {
	seasons := make([]int, len(c.Seasons))
	for i, s := range c.Seasons {
		seasons[i] = int(s)
	}
	weathers := make([]int, len(c.Weathers))
	for i, w := range c.Weathers {
		weathers[i] = int(w)
	}
	parts := []string{
		prefix, endpoint,
		c.Range.Start.Format(model.DateLayout),
		c.Range.End.Format(model.DateLayout),
		"s" + joinInts(seasons),
		"w" + joinInts(weathers),
	}
	parts = append(parts, extra...)
	return strings.Join(parts, ":")
}

func joinInts(v []int) string {
	sort.Ints(v)
	out := make([]string, 0, len(v))
	for i, n := range v {
		if i > 0 && v[i-1] == n {
			continue
		}
		out = append(out, strconv.Itoa(n))
	}
	return strings.Join(out, ",")
}

package utils

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ErrCacheMiss is returned when a key is not cached.
var ErrCacheMiss = errors.New("key not found in cache")

// Cache stores JSON values with an expiry.
type Cache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) error
	SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error
}

// RedisCache wraps a redis client
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects to redisURL and pings it.
func NewRedisCache(ctx context.Context, redisURL string) (*RedisCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return &RedisCache{client: client}, nil
}

func (r *RedisCache) GetJSON(ctx context.Context, key string, dest interface{}) error {
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(val), dest)
}

func (r *RedisCache) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, expiration).Err()
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}

// CachedGeocoder remembers successful lookups. Cache failures are logged and the
// lookup falls through to the provider.
type CachedGeocoder struct {
	next   Geocoder
	cache  Cache
	ttl    time.Duration
	logger zerolog.Logger
}

func NewCachedGeocoder(next Geocoder, cache Cache, ttl time.Duration, logger zerolog.Logger) *CachedGeocoder {
	return &CachedGeocoder{next: next, cache: cache, ttl: ttl, logger: logger}
}

func (c *CachedGeocoder) Geocode(ctx context.Context, address string) ([]GeoResult, error) {
	key := "geocode:" + strings.ToLower(strings.Join(strings.Fields(address), " "))

	var cached []GeoResult
	err := c.cache.GetJSON(ctx, key, &cached)
	switch {
	case err == nil && len(cached) > 0:
		return cached, nil
	case err != nil && !errors.Is(err, ErrCacheMiss):
		c.logger.Warn().Err(err).Str("key", key).Msg("geocode cache read failed")
	}

	results, err := c.next.Geocode(ctx, address)
	if err != nil || len(results) == 0 {
		return results, err
	}

	if err := c.cache.SetJSON(ctx, key, results, c.ttl); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("geocode cache write failed")
	}
	return results, nil
}

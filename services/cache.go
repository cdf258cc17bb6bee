package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"iris-prediction/config"
)

// CacheService wraps an optional Redis client. With no client every call is
// a no-op miss, so callers never branch on whether Redis is configured.
type CacheService struct {
	client *redis.Client
}

// NewCacheService connects to cfg.URL, pinging up to cfg.ConnectAttempts
// times. An empty URL yields a disabled service and no error.
func NewCacheService(ctx context.Context, cfg config.RedisConfig, logger *slog.Logger) (*CacheService, error) {
	if cfg.URL == "" {
		return &CacheService{}, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return &CacheService{}, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)

	attempts := max(cfg.ConnectAttempts, 1)
	var lastErr error
	for i := 0; i < attempts; i++ {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		lastErr = client.Ping(pingCtx).Err()
		cancel()
		if lastErr == nil {
			return &CacheService{client: client}, nil
		}
		logger.Warn("redis ping failed", "attempt", i+1, "of", attempts, "error", lastErr)
		if i < attempts-1 {
			select {
			case <-ctx.Done():
				client.Close()
				return &CacheService{}, ctx.Err()
			case <-time.After(2 * time.Second):
			}
		}
	}

	client.Close()
	return &CacheService{}, fmt.Errorf("redis ping failed after %d attempts: %w", attempts, lastErr)
}

// NewCacheServiceWithClient wraps an existing client.
func NewCacheServiceWithClient(client *redis.Client) *CacheService {
	return &CacheService{client: client}
}

func (s *CacheService) Available() bool {
	return s != nil && s.client != nil
}

// Get decodes the JSON value stored at key into dest. It reports false on a
// miss or when the cache is disabled.
func (s *CacheService) Get(ctx context.Context, key string, dest any) (bool, error) {
	if !s.Available() {
		return false, nil
	}
	val, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(val, dest); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return true, nil
}

func (s *CacheService) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if !s.Available() {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, data, ttl).Err()
}

func (s *CacheService) Delete(ctx context.Context, key string) error {
	if !s.Available() {
		return nil
	}
	return s.client.Del(ctx, key).Err()
}

// Generation returns the counter stored at key, 0 when it is unset or the
// cache is disabled.
func (s *CacheService) Generation(ctx context.Context, key string) (int64, error) {
	if !s.Available() {
		return 0, nil
	}
	n, err := s.client.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

// Bump increments the counter stored at key.
func (s *CacheService) Bump(ctx context.Context, key string) (int64, error) {
	if !s.Available() {
		return 0, nil
	}
	return s.client.Incr(ctx, key).Result()
}

func (s *CacheService) Publish(ctx context.Context, channel string, message any) error {
	if !s.Available() {
		return nil
	}
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}
	return s.client.Publish(ctx, channel, data).Err()
}

// Subscribe returns nil when the cache is disabled.
func (s *CacheService) Subscribe(ctx context.Context, channel string) *redis.PubSub {
	if !s.Available() {
		return nil
	}
	return s.client.Subscribe(ctx, channel)
}

func (s *CacheService) Close() error {
	if !s.Available() {
		return nil
	}
	return s.client.Close()
}

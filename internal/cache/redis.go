package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/AdaSouls/Cardano-Backend/internal/metrics"
)

const connectedProbeTimeout = 500 * time.Millisecond

// RedisStore is a Store backed by a Redis database. The client is constructed
// explicitly and injected wherever caching is needed; there is no package
// state.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisStore parses the URL and builds the client without touching the
// network. Call Connect to verify reachability; an unreachable backend only
// costs cache efficiency, never correctness.
func NewRedisStore(url string, ttl time.Duration, logger *slog.Logger) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	return &RedisStore{
		client: redis.NewClient(opts),
		ttl:    ttl,
		logger: logger.With("component", "redis-cache"),
	}, nil
}

// Connect pings the backend once so startup logs reflect cache availability.
func (s *RedisStore) Connect(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) GetJSON(ctx context.Context, key string, dest any) bool {
	raw, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		metrics.CacheOpsTotal.WithLabelValues("get", "miss").Inc()
		return false
	}
	if err != nil {
		s.logger.Warn("cache read degraded to miss", "key", key, "error", err)
		metrics.CacheOpsTotal.WithLabelValues("get", "error").Inc()
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		s.logger.Warn("cache entry is not valid JSON, treating as miss", "key", key, "error", err)
		metrics.CacheOpsTotal.WithLabelValues("get", "decode_error").Inc()
		return false
	}
	metrics.CacheOpsTotal.WithLabelValues("get", "hit").Inc()
	return true
}

func (s *RedisStore) SetJSON(ctx context.Context, key string, val any) bool {
	raw, err := json.Marshal(val)
	if err != nil {
		s.logger.Warn("cache write skipped, value not serializable", "key", key, "error", err)
		metrics.CacheOpsTotal.WithLabelValues("set", "encode_error").Inc()
		return false
	}
	if err := s.client.Set(ctx, key, raw, s.ttl).Err(); err != nil {
		s.logger.Warn("cache write degraded to no-op", "key", key, "error", err)
		metrics.CacheOpsTotal.WithLabelValues("set", "error").Inc()
		return false
	}
	metrics.CacheOpsTotal.WithLabelValues("set", "ok").Inc()
	return true
}

func (s *RedisStore) Delete(ctx context.Context, key string) bool {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		s.logger.Warn("cache delete degraded to no-op", "key", key, "error", err)
		metrics.CacheOpsTotal.WithLabelValues("del", "error").Inc()
		return false
	}
	metrics.CacheOpsTotal.WithLabelValues("del", "ok").Inc()
	return true
}

func (s *RedisStore) FlushAll(ctx context.Context) bool {
	if err := s.client.FlushDB(ctx).Err(); err != nil {
		s.logger.Warn("cache flush degraded to no-op", "error", err)
		metrics.CacheOpsTotal.WithLabelValues("flush", "error").Inc()
		return false
	}
	metrics.CacheOpsTotal.WithLabelValues("flush", "ok").Inc()
	return true
}

func (s *RedisStore) Connected(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, connectedProbeTimeout)
	defer cancel()
	return s.client.Ping(ctx).Err() == nil
}

var _ Store = (*RedisStore)(nil)

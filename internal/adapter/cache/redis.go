package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/niksmo/storefront/pkg/querycache"
	"github.com/niksmo/storefront/pkg/retry"
)

const (
	DefaultKeyPrefix = "storefront:query:"

	scanCount = 100
)

var _ querycache.Backend = (*Redis)(nil)

var ErrCacheMiss = querycache.ErrCacheMiss

type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

// Redis is a query cache backend shared between processes.
type Redis struct {
	client    redisClient
	keyPrefix string
}

type RedisOpt func(*Redis)

func WithKeyPrefix(prefix string) RedisOpt {
	return func(r *Redis) {
		r.keyPrefix = prefix
	}
}

func withClient(cl redisClient) RedisOpt {
	return func(r *Redis) {
		r.client = cl
	}
}

// NewRedis accepts a redis URL or a plain "host:port" address.
func NewRedis(addr string, opts ...RedisOpt) *Redis {
	r := &Redis{keyPrefix: DefaultKeyPrefix}
	for _, opt := range opts {
		opt(r)
	}
	if r.client != nil {
		return r
	}

	redisOpts, err := redis.ParseURL(addr)
	if err != nil {
		redisOpts = &redis.Options{
			Addr:         addr,
			MinIdleConns: 1,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			PoolSize:     10,
		}
	}
	r.client = redis.NewClient(redisOpts)
	return r
}

// Ping waits for the server to answer, retrying with backoff.
func (r *Redis) Ping(ctx context.Context, attempts int) error {
	const op = "Redis.Ping"
	log := slog.With("op", op)

	cfg := retry.RetryConfig{
		MaxAttempts: attempts,
		Backoff:     retry.ExponentialBackoff(100*time.Millisecond, 5*time.Second),
	}

	var attempt int
	err := retry.Do(ctx, cfg, func() error {
		attempt++
		err := r.client.Ping(ctx).Err()
		if err != nil {
			log.Warn("ping failed", "attempt", attempt, "err", err)
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("%s: redis is unavailable: %w", op, err)
	}
	log.Info("redis is available")
	return nil
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	const op = "Redis.Get"

	b, err := r.client.Get(ctx, r.keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, querycache.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return b, nil
}

func (r *Redis) Set(
	ctx context.Context, key string, value []byte, ttl time.Duration,
) error {
	const op = "Redis.Set"

	if ttl < 0 {
		ttl = 0
	}
	if err := r.client.Set(ctx, r.keyPrefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, keys ...string) error {
	const op = "Redis.Delete"

	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = r.keyPrefix + k
	}
	if err := r.client.Del(ctx, prefixed...).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (r *Redis) DeletePrefix(ctx context.Context, prefix string) error {
	const op = "Redis.DeletePrefix"

	match := escapeGlob(r.keyPrefix+prefix) + "*"
	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, match, scanCount).Result()
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if len(keys) != 0 {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("%s: %w", op, err)
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

func (r *Redis) Close() {
	const op = "Redis.Close"
	log := slog.With("op", op)

	log.Info("closing redis client...")
	if err := r.client.Close(); err != nil {
		log.Error("failed to close", "err", err)
		return
	}
	log.Info("redis client is closed")
}

func escapeGlob(s string) string {
	var sb strings.Builder
	for _, c := range s {
		switch c {
		case '*', '?', '[', ']', '\\':
			sb.WriteByte('\\')
		}
		sb.WriteRune(c)
	}
	return sb.String()
}

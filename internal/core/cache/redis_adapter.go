package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Option customizes a RedisAdapter.
type Option func(*adapterOptions)

type adapterOptions struct {
	prefix  string
	timeout time.Duration
}

// WithPrefix namespaces every key under prefix.
func WithPrefix(prefix string) Option {
	return func(o *adapterOptions) {
		o.prefix = prefix
	}
}

// WithTimeout bounds dialing and every command. A lookup must never wait on
// a slow cache longer than d.
func WithTimeout(d time.Duration) Option {
	return func(o *adapterOptions) {
		o.timeout = d
	}
}

// RedisAdapter implements the Cache interface using Redis.
type RedisAdapter struct {
	client  *redis.Client
	prefix  string
	timeout time.Duration
}

// NewRedisAdapter creates a new Redis cache adapter.
// The redisURL should be in the format: redis://[:password@]host[:port][/database]
func NewRedisAdapter(redisURL string, opts ...Option) (*RedisAdapter, error) {
	clientOpts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	var o adapterOptions
	for _, opt := range opts {
		opt(&o)
	}

	if o.timeout > 0 {
		clientOpts.DialTimeout = o.timeout
		clientOpts.ReadTimeout = o.timeout
		clientOpts.WriteTimeout = o.timeout
		clientOpts.ContextTimeoutEnabled = true
	}

	return &RedisAdapter{
		client:  redis.NewClient(clientOpts),
		prefix:  o.prefix,
		timeout: o.timeout,
	}, nil
}

// Get returns the value stored under key, or ErrCacheMiss.
func (r *RedisAdapter) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	val, err := r.client.Get(ctx, r.key(key)).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, fmt.Errorf("%w: %s", ErrCacheMiss, key)
	case err != nil:
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return val, nil
}

// Set stores value under key for ttl.
func (r *RedisAdapter) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	if err := r.client.Set(ctx, r.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (r *RedisAdapter) Delete(ctx context.Context, key string) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// Ping checks if Redis is reachable. It backs the /health cache check.
func (r *RedisAdapter) Ping(ctx context.Context) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (r *RedisAdapter) Close() error {
	return r.client.Close()
}

func (r *RedisAdapter) key(k string) string {
	return r.prefix + k
}

func (r *RedisAdapter) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.timeout)
}

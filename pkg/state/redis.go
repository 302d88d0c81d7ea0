package state

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a Store backed by Redis. Consume uses GETDEL, so a state is
// accepted at most once across all instances sharing the server.
type Redis struct {
	client redis.UniversalClient
	opts   *options
}

// NewRedis creates a Redis-backed store.
// The client is closed by Close only when the store was built by New.
func NewRedis(client redis.UniversalClient, opts ...Option) *Redis {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return &Redis{client: client, opts: o}
}

func (r *Redis) Issue(ctx context.Context) (string, error) {
	s := r.opts.generate()

	ok, err := r.client.SetNX(ctx, r.key(s), 1, r.opts.ttl).Result()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrCollision
	}

	return s, nil
}

func (r *Redis) Consume(ctx context.Context, s string) error {
	if s == "" {
		return ErrEmptyState
	}

	if err := r.client.GetDel(ctx, r.key(s)).Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		return err
	}

	return nil
}

func (r *Redis) Close() error {
	if r.opts.ownedClient {
		return r.client.Close()
	}
	return nil
}

func (r *Redis) key(s string) string {
	return r.opts.prefix + ":" + s
}

// OpenRedis connects to Redis at url (redis:// or rediss://), retrying the
// initial ping with a linear backoff.
func OpenRedis(ctx context.Context, url string) (redis.UniversalClient, error) {
	if url == "" {
		return nil, ErrEmptyConnectionURL
	}
	if !strings.HasPrefix(url, "redis://") && !strings.HasPrefix(url, "rediss://") {
		return nil, ErrFailedToParseURL
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Join(ErrFailedToParseURL, err)
	}
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second
	opts.DialTimeout = 5 * time.Second

	return connect(ctx, opts, 3, time.Second)
}

func connect(ctx context.Context, opts *redis.Options, attempts int, interval time.Duration) (redis.UniversalClient, error) {
	var lastErr error
	for i := range max(attempts, 1) {
		client := redis.NewClient(opts)

		lastErr = client.Ping(ctx).Err()
		if lastErr == nil {
			return client, nil
		}
		_ = client.Close()

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrConnectionFailed, ctx.Err())
		case <-time.After(time.Duration(i+1) * interval):
		}
	}

	return nil, errors.Join(ErrConnectionFailed, lastErr)
}

var _ Store = (*Redis)(nil)

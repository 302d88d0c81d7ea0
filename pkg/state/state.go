package state

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Sentinel errors for state operations.
var (
	// ErrNotFound is returned when a state is unknown, expired or already consumed.
	ErrNotFound = errors.New("state: not found")

	// ErrEmptyState is returned when Consume is called with an empty value.
	ErrEmptyState = errors.New("state: empty value")

	// ErrCollision is returned when a generated state already exists.
	ErrCollision = errors.New("state: generated value already issued")

	// ErrClosed is returned when the store has been closed.
	ErrClosed = errors.New("state: store closed")

	ErrEmptyConnectionURL = errors.New("state: empty redis connection URL")
	ErrFailedToParseURL   = errors.New("state: failed to parse redis connection URL")
	ErrConnectionFailed   = errors.New("state: failed to establish redis connection")
)

// DefaultTTL is how long an issued state stays valid.
const DefaultTTL = 10 * time.Minute

// Store issues and consumes one-time OAuth state values.
type Store interface {
	// Issue creates a new state value valid for the store's TTL.
	Issue(ctx context.Context) (string, error)

	// Consume validates and invalidates state. A state can be consumed once.
	// Returns ErrNotFound for unknown, expired or already consumed values.
	Consume(ctx context.Context, state string) error

	// Close releases resources held by the store.
	Close() error
}

// Config selects and configures a Store.
type Config struct {
	RedisURL string        `env:"REDIS_URL"`
	Prefix   string        `env:"STATE_PREFIX" envDefault:"oauth_state"`
	TTL      time.Duration `env:"STATE_TTL" envDefault:"10m"`
}

// New returns a Redis store when cfg.RedisURL is set, an in-memory store otherwise.
func New(ctx context.Context, cfg Config) (Store, error) {
	if cfg.RedisURL == "" {
		return NewMemory(WithTTL(cfg.TTL)), nil
	}

	client, err := OpenRedis(ctx, cfg.RedisURL)
	if err != nil {
		return nil, err
	}

	return NewRedis(client, WithTTL(cfg.TTL), WithPrefix(cfg.Prefix), withOwnedClient()), nil
}

// Option configures a Store.
type Option func(*options)

type options struct {
	ttl         time.Duration
	prefix      string
	generate    func() string
	now         func() time.Time
	ownedClient bool
}

func defaultOptions() *options {
	return &options{
		ttl:      DefaultTTL,
		prefix:   "oauth_state",
		generate: uuid.NewString,
		now:      time.Now,
	}
}

// WithTTL sets how long issued states stay valid. Non-positive values are ignored.
// Default: 10 minutes.
func WithTTL(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.ttl = d
		}
	}
}

// WithPrefix sets the Redis key prefix.
// Default: "oauth_state".
func WithPrefix(prefix string) Option {
	return func(o *options) {
		if prefix != "" {
			o.prefix = prefix
		}
	}
}

// WithGenerator replaces the state generator (default: random UUIDv4).
func WithGenerator(fn func() string) Option {
	return func(o *options) {
		if fn != nil {
			o.generate = fn
		}
	}
}

// WithClock replaces the clock used by the in-memory store.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func withOwnedClient() Option {
	return func(o *options) {
		o.ownedClient = true
	}
}

package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
)

var (
	ErrInvalidLevel  = errors.New("logger: invalid level")
	ErrInvalidFormat = errors.New("logger: invalid format")
)

// Config holds logger configuration.
type Config struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"` // json or text
	Sentry SentryConfig
}

// SentryConfig holds Sentry integration configuration.
type SentryConfig struct {
	DSN         string `env:"SENTRY_DSN"`
	Environment string `env:"SENTRY_ENVIRONMENT" envDefault:"production"`
	// MinLevel is the lowest level stored as a Sentry log entry.
	// Errors always create Sentry events.
	MinLevel slog.Level `env:"SENTRY_MIN_LEVEL" envDefault:"WARN"`
}

// New creates a logger writing to stdout.
// See NewWithWriter.
func New(cfg Config, extractors ...ContextExtractor) (*slog.Logger, error) {
	return NewWithWriter(os.Stdout, cfg, extractors...)
}

// NewWithWriter creates a logger writing to w in the configured format.
// When a Sentry DSN is set, records are also sent to Sentry. A failing
// Sentry init is reported on w and logging continues without it.
func NewWithWriter(w io.Writer, cfg Config, extractors ...ContextExtractor) (*slog.Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: level}
	var out slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "", "json":
		out = slog.NewJSONHandler(w, opts)
	case "text":
		out = slog.NewTextHandler(w, opts)
	default:
		return nil, errors.Join(ErrInvalidFormat, fmt.Errorf("unknown format %q", cfg.Format))
	}

	if cfg.Sentry.DSN == "" {
		return slog.New(NewLogHandlerDecorator(out, extractors...)), nil
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.Sentry.DSN,
		Environment: cfg.Sentry.Environment,
		EnableLogs:  true,
	}); err != nil {
		slog.New(out).Error("failed to initialize Sentry", slog.String("error", err.Error()))
		return slog.New(NewLogHandlerDecorator(out, extractors...)), nil
	}

	return slog.New(NewLogHandlerDecorator(fanout{out, newSentryHandler(cfg.Sentry)}, extractors...)), nil
}

// Flush waits for buffered Sentry events, up to the context deadline.
// It is a no-op when Sentry was never initialized.
func Flush(ctx context.Context) error {
	if sentry.CurrentHub().Client() == nil {
		return nil
	}
	timeout := 2 * time.Second
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	if !sentry.Flush(timeout) {
		return errors.New("logger: sentry flush timed out")
	}
	return nil
}

// NewNope creates a no-op logger that discards all output.
func NewNope() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func newSentryHandler(cfg SentryConfig) slog.Handler {
	logLevel := []slog.Level{slog.LevelWarn, slog.LevelError}
	if cfg.MinLevel >= slog.LevelError {
		logLevel = []slog.Level{slog.LevelError}
	} else if cfg.MinLevel <= slog.LevelInfo {
		logLevel = []slog.Level{slog.LevelInfo, slog.LevelWarn, slog.LevelError}
	}

	return sentryslog.Option{
		EventLevel: []slog.Level{slog.LevelError},
		LogLevel:   logLevel,
	}.NewSentryHandler(context.Background())
}

func parseLevel(s string) (slog.Level, error) {
	if s == "" {
		return slog.LevelInfo, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, errors.Join(ErrInvalidLevel, err)
	}
	return level, nil
}

// Package logger provides structured logging with context extraction and Sentry integration.
//
// Loggers are plain *slog.Logger values. Two things are layered on top of the
// standard handlers: context extractors, which add request-scoped attributes
// (request IDs, provider names) to every record, and an optional fan-out to
// Sentry for warnings and errors.
//
// # Basic Usage
//
//	log, err := logger.New(logger.Config{Level: "debug", Format: "text"},
//		logger.StringExtractor("request_id", middleware.GetReqID),
//	)
//	if err != nil {
//		return err
//	}
//	log.InfoContext(ctx, "callback received", slog.String("provider", "unias"))
//
// Config carries env tags for caarlos0/env (LOG_LEVEL, LOG_FORMAT,
// SENTRY_DSN, SENTRY_ENVIRONMENT, SENTRY_MIN_LEVEL).
//
// # Sentry Integration
//
// When SentryConfig.DSN is set, errors create Sentry events and records at or
// above MinLevel are stored as Sentry logs. An empty DSN, or a failing Sentry
// init, leaves stdout-only logging in place. Call Flush on shutdown.
//
// # Handler Decoration
//
// LogHandlerDecorator wraps any slog.Handler:
//
//	h := logger.NewLogHandlerDecorator(slog.NewJSONHandler(os.Stderr, nil), extractors...)
//	log := slog.New(h)
//
// NewNope returns a logger that discards everything, for tests and defaults.
package logger

// Command unias-login runs a minimal web login against Unias and prints the
// resulting account info as JSON.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/caarlos0/env/v11"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/liginc/unias-go/internal/login"
	"github.com/liginc/unias-go/internal/server"
	"github.com/liginc/unias-go/pkg/logger"
	"github.com/liginc/unias-go/pkg/oauth"
	"github.com/liginc/unias-go/pkg/state"
)

type config struct {
	Unias  oauth.UniasConfig
	Log    logger.Config
	State  state.Config
	Server server.Config
}

func main() {
	if err := run(); err != nil {
		slog.Error("unias-login failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		return err
	}

	log, err := logger.New(cfg.Log, logger.StringExtractor("request_id", middleware.GetReqID))
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	provider, err := oauth.NewUniasProvider(cfg.Unias)
	if err != nil {
		return err
	}

	states, err := state.New(ctx, cfg.State)
	if err != nil {
		return err
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, server.RequestLogger(log), middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	login.New(provider, states, log).Routes(r)

	return server.Run(ctx, cfg.Server, r, log,
		func(context.Context) error { return states.Close() },
		logger.Flush,
	)
}

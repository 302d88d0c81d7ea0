package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/require"

	"github.com/liginc/unias-go/internal/server"
	"github.com/liginc/unias-go/pkg/logger"
)

func TestRun_ShutdownHooks(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())

	var called []string
	hookErr := errors.New("close failed")
	done := make(chan error, 1)
	go func() {
		done <- server.Run(ctx, server.Config{Addr: "127.0.0.1:0", ShutdownTimeout: time.Second},
			http.NotFoundHandler(), logger.NewNope(),
			func(context.Context) error { called = append(called, "first"); return nil },
			func(context.Context) error { called = append(called, "second"); return hookErr },
		)
	}()

	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, hookErr)
		require.Equal(t, []string{"first", "second"}, called)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestRun_ListenError(t *testing.T) {
	t.Parallel()

	err := server.Run(context.Background(), server.Config{Addr: "256.0.0.1:bad"}, http.NotFoundHandler(), nil)
	require.Error(t, err)
}

func TestRequestLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log, err := logger.NewWithWriter(&buf, logger.Config{},
		logger.StringExtractor("request_id", middleware.GetReqID))
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, server.RequestLogger(log))
	r.Get("/teapot", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/teapot", nil))
	require.Equal(t, http.StatusTeapot, rec.Code)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "request", line["msg"])
	require.Equal(t, "/teapot", line["path"])
	require.EqualValues(t, http.StatusTeapot, line["status"])
	require.NotEmpty(t, line["request_id"])
}

package app

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuntimeServesWithEmbeddedBackends(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("BCRYPT_COST", "4")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	rt, err := NewRuntime(context.Background(), cfg, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	defer rt.Close()

	rec := httptest.NewRecorder()
	rt.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	body := `{"email":"a@x.com","password":"correct-horse"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/signup", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	rt.Server.Handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestRuntimeRunStopsOnCancel(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("APP_ADDR", "127.0.0.1:0")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	rt, err := NewRuntime(context.Background(), cfg, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	defer rt.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- rt.Run(ctx, time.Second) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRuntimeRejectsUnreachableRedis(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("REDIS_ADDR", "127.0.0.1:1")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	_, err = NewRuntime(context.Background(), cfg, slog.New(slog.DiscardHandler))
	assert.Error(t, err)
}

func TestRuntimeRejectsUnknownOTelExporter(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("OTEL_METRICS_EXPORTER", "zipkin")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	_, err = NewRuntime(context.Background(), cfg, slog.New(slog.DiscardHandler))
	assert.ErrorContains(t, err, "unknown metrics exporter")
}

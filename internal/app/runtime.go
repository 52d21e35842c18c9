package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/MrEthical07/tokenguard"
	"github.com/MrEthical07/tokenguard/internal/httpapi"
	"github.com/MrEthical07/tokenguard/internal/platform/cache"
	"github.com/MrEthical07/tokenguard/internal/platform/db"
	"github.com/MrEthical07/tokenguard/internal/platform/telemetry"
	"github.com/MrEthical07/tokenguard/store/memstore"
	"github.com/MrEthical07/tokenguard/store/pgstore"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

// Runtime owns the engine, its backends and the HTTP server.
type Runtime struct {
	Engine *tokenguard.Engine
	Server *http.Server

	logger   *slog.Logger
	cleanups []func()
}

// NewRuntime connects the backends selected by cfg and builds the server.
// Close releases everything NewRuntime opened.
func NewRuntime(ctx context.Context, cfg *Config, logger *slog.Logger) (_ *Runtime, err error) {
	rt := &Runtime{logger: logger}
	defer func() {
		if err != nil {
			rt.Close()
		}
	}()

	rdb, err := rt.openRedis(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := rt.openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	engine, err := tokenguard.New().
		WithConfig(cfg.EngineConfig()).
		WithRedis(rdb).
		WithPrincipalStore(store).
		WithLogger(logger).
		WithCapabilities(cfg.Capabilities...).
		Build()
	if err != nil {
		return nil, fmt.Errorf("app: build engine: %w", err)
	}
	rt.Engine = engine

	if err := rt.startTelemetry(cfg); err != nil {
		return nil, err
	}

	var metrics *httpapi.Metrics
	if cfg.MetricsEnabled {
		if metrics, err = httpapi.NewMetrics(engine); err != nil {
			return nil, fmt.Errorf("app: metrics: %w", err)
		}
	}

	rt.Server = &http.Server{
		Addr: cfg.AppAddr,
		Handler: httpapi.NewRouter(httpapi.RouterParams{
			Engine:         engine,
			Logger:         logger,
			Metrics:        metrics,
			RequestTimeout: cfg.AppRequestTimeout,
			AuthRateLimit:  cfg.RateLimitPerMin,
			Production:     cfg.IsProduction(),
		}),
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}
	return rt, nil
}

func (rt *Runtime) openRedis(ctx context.Context, cfg *Config) (redis.UniversalClient, error) {
	if cfg.RedisAddr == "" {
		client, cleanup, err := cache.NewEmbedded(ctx)
		if err != nil {
			return nil, err
		}
		rt.cleanups = append(rt.cleanups, cleanup)
		rt.logger.Warn("REDIS_ADDR not set, using embedded miniredis; revocations are lost on restart")
		return client, nil
	}

	client, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		return nil, err
	}
	rt.cleanups = append(rt.cleanups, func() {
		if err := client.Close(); err != nil {
			rt.logger.Warn("redis close", slog.Any("error", err))
		}
	})
	return client, nil
}

func (rt *Runtime) openStore(ctx context.Context, cfg *Config) (tokenguard.PrincipalStore, error) {
	if cfg.PGDSN == "" {
		store := memstore.New()
		store.AddRole(cfg.DefaultRole, cfg.DefaultRoleCapabilities...)
		rt.logger.Warn("PG_DSN not set, principals are kept in memory")
		return store, nil
	}

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		return nil, err
	}
	rt.cleanups = append(rt.cleanups, pool.Close)

	store := pgstore.New(pool)
	if err := store.Migrate(ctx); err != nil {
		return nil, err
	}
	if _, err := store.FindRoleByName(ctx, cfg.DefaultRole); errors.Is(err, tokenguard.ErrRoleNotFound) {
		if _, err := store.UpsertRole(ctx, cfg.DefaultRole, cfg.DefaultRoleCapabilities...); err != nil {
			return nil, err
		}
		rt.logger.Info("seeded default role", slog.String("role", cfg.DefaultRole))
	} else if err != nil {
		return nil, err
	}
	return store, nil
}

func (rt *Runtime) startTelemetry(cfg *Config) error {
	reader, err := telemetry.NewReader(cfg.OTelMetricsExporter, os.Stdout, cfg.OTelMetricsInterval)
	if err != nil || reader == nil {
		return err
	}
	stop, err := telemetry.Start(reader, rt.Engine)
	if err != nil {
		return err
	}
	rt.cleanups = append(rt.cleanups, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := stop(ctx); err != nil {
			rt.logger.Warn("otel shutdown", slog.Any("error", err))
		}
	})
	rt.logger.Info("otel metrics enabled", slog.String("exporter", cfg.OTelMetricsExporter))
	return nil
}

// Run serves until ctx is canceled, then shuts the server down within
// shutdownTimeout.
func (rt *Runtime) Run(ctx context.Context, shutdownTimeout time.Duration) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rt.logger.Info("starting http server", slog.String("addr", rt.Server.Addr))
		if err := rt.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("app: http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		rt.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return rt.Server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Close releases backends in reverse order of opening.
func (rt *Runtime) Close() {
	for i := len(rt.cleanups) - 1; i >= 0; i-- {
		rt.cleanups[i]()
	}
	rt.cleanups = nil
}

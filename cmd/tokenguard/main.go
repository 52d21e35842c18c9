// Command tokenguard serves signup, login, refresh, logout and bearer
// validation over HTTP.
//
// Configuration is read from the environment; see internal/app.Config. With
// REDIS_ADDR and PG_DSN unset the server runs entirely in memory.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/MrEthical07/tokenguard/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	rt, err := app.NewRuntime(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup", slog.Any("error", err))
		os.Exit(1)
	}
	defer rt.Close()

	if err := rt.Run(ctx, cfg.ShutdownTimeout); err != nil {
		logger.Error("server", slog.Any("error", err))
		rt.Close()
		os.Exit(1)
	}
}

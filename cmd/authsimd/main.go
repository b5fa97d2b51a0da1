// authsimd serves the simulated authentication backend over real HTTP,
// for frontends that point at a dev server instead of intercepting
// their own client.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ddelgadillo/authsim"
	fiberadapter "github.com/ddelgadillo/authsim/adapters/fiber"
	"github.com/ddelgadillo/authsim/adapters/jsonfile"
	pgxadapter "github.com/ddelgadillo/authsim/adapters/pgx"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	cfg := mustLoadConfig(configPath)

	log := setupLogger(cfg.LogLevel)
	slog.SetDefault(log)
	log.Info("starting authsimd", "addr", cfg.Addr, "store", cfg.Store)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, cleanup, err := openStore(ctx, cfg)
	if err != nil {
		log.Error("store setup failed", "err", err)
		os.Exit(1)
	}
	defer cleanup()

	app := fiber.New()
	if cfg.Latency > 0 {
		app.Use(latency(cfg.Latency))
	}

	_, err = authsim.New(authsim.Config{
		Store:    store,
		BasePath: cfg.BasePath,
		Logger:   log,
		HTTP:     fiberadapter.New(app),
	})
	if err != nil {
		log.Error("backend setup failed", "err", err)
		os.Exit(1)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(cfg.Addr)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("listen failed", "err", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		log.Info("shutting down")
		if err := app.Shutdown(); err != nil {
			log.Error("shutdown failed", "err", err)
		}
	}
}

func openStore(ctx context.Context, cfg *Config) (authsim.DirectoryStore, func(), error) {
	switch cfg.Store {
	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		store := pgxadapter.New(pool)
		if err := store.Init(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return store, pool.Close, nil
	case "file":
		return jsonfile.New(cfg.StoreFile), func() {}, nil
	default:
		return authsim.NewMemoryStore(), func() {}, nil
	}
}

// latency delays every request by a fixed amount, modeling the network
// round trip the simulator's callers are expected to tolerate.
func latency(d time.Duration) fiber.Handler {
	return func(c fiber.Ctx) error {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-c.Context().Done():
			return c.Context().Err()
		}
		return c.Next()
	}
}

func setupLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

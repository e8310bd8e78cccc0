package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/ignite/engage/internal/api"
	"github.com/ignite/engage/internal/config"
	"github.com/ignite/engage/internal/pkg/logger"
	"github.com/ignite/engage/internal/templates"
	"github.com/ignite/engage/internal/tracking"
	"github.com/ignite/engage/internal/transport"
)

func main() {
	if err := run(); err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.LoadFromEnv(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := newBackend(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initializing %s backend: %w", cfg.Storage.Type, err)
	}

	store := tracking.NewStore(backend)
	store.Load(ctx)
	logger.Info("event store loaded", "backend", cfg.Storage.Type, "records", store.Len())

	renderer := templates.NewRenderer(
		templates.NewDirSource(cfg.Templates.CustomDir),
		cfg.Tracking.BaseURL,
		tracking.NewTrackingID,
	)

	send, err := transport.FromConfig(ctx, cfg)
	if err != nil {
		if !errors.Is(err, transport.ErrNoTransport) {
			return err
		}
		logger.Warn("no email transport enabled, send endpoint disabled")
	}

	engine := tracking.NewEngine(store, renderer, cfg.Tracking.BaseURL, send)

	// Periodic retention sweep, one immediate pass on boot.
	go func() {
		store.Cleanup(ctx, cfg.Tracking.RetentionDays)
		ticker := time.NewTicker(cfg.Tracking.CleanupInterval())
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				store.Cleanup(ctx, cfg.Tracking.RetentionDays)
			}
		}
	}()

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.GetHost(), cfg.Server.Port),
		Handler:      api.NewServer(cfg, engine).Router(),
		ReadTimeout:  cfg.Server.ReadTimeout(),
		WriteTimeout: cfg.Server.WriteTimeout(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr, "base_url", cfg.Tracking.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown incomplete", "error", err)
	}
	if err := store.Close(); err != nil {
		logger.Error("store close failed", "error", err)
	}
	return nil
}

func newBackend(ctx context.Context, cfg *config.Config) (tracking.Backend, error) {
	switch cfg.Storage.Type {
	case "file":
		return tracking.NewFileBackend(cfg.Storage.FilePath), nil

	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr: cfg.Storage.RedisAddr,
			DB:   cfg.Storage.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		return tracking.NewRedisBackend(client, ""), nil

	case "postgres":
		db, err := sql.Open("postgres", cfg.Storage.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := db.PingContext(ctx); err != nil {
			return nil, fmt.Errorf("postgres ping: %w", err)
		}
		backend := tracking.NewPostgresBackend(db)
		if err := backend.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("ensuring schema: %w", err)
		}
		return backend, nil

	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Storage.Type)
	}
}

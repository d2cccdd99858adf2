package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MLBB-BOSS/MLSnap/internal/app"
	"github.com/MLBB-BOSS/MLSnap/internal/config"
	"github.com/MLBB-BOSS/MLSnap/internal/handlers"
	"github.com/MLBB-BOSS/MLSnap/internal/routes"
	"github.com/MLBB-BOSS/MLSnap/internal/scheduler"
	"github.com/MLBB-BOSS/MLSnap/internal/services"
	"github.com/MLBB-BOSS/MLSnap/pkg/logger"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

func main() {
	// 0. Load Config & Initialize Logger
	cfg, err := config.LoadConfig(".env")
	if err != nil {
		logger.Init("development")
		logger.Fatal().Err(err).Msg("Failed to load config")
	}
	logger.Init(cfg.Env)
	logger.Info().Str("environment", cfg.Env).Msg("Starting MLSnap collector...")

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Database, catalog, badges, services
	a, err := app.Open(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to start collector")
	}
	defer a.Close()

	// 2. Router
	h := handlers.New(a.DB, a.Redis, a.Dispatcher, a.Reporter)
	r := routes.NewRouter(ctx, h, routes.Options{JWTSecret: cfg.JWTSecret})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	digest := services.NewDigest(a.Reporter, a.Notifier)
	g.Go(func() error {
		return scheduler.Every(gctx, "digest", cfg.DigestInterval, func(ctx context.Context) error {
			_, err := digest.Run(ctx)
			return err
		})
	})

	// 3. Graceful shutdown once a signal arrives or a worker fails
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("Shutting down server gracefully...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("Server stopped with error")
		a.Close()
		os.Exit(1)
	}
	logger.Info().Msg("Server exited gracefully")
}

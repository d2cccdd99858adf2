// Package app assembles the collector from configuration. The server and the admin CLI
// share it so both see the same schema, catalog and badge table.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/MLBB-BOSS/MLSnap/internal/bot"
	"github.com/MLBB-BOSS/MLSnap/internal/config"
	"github.com/MLBB-BOSS/MLSnap/internal/database"
	"github.com/MLBB-BOSS/MLSnap/internal/migrations"
	"github.com/MLBB-BOSS/MLSnap/internal/notify"
	"github.com/MLBB-BOSS/MLSnap/internal/seeds"
	"github.com/MLBB-BOSS/MLSnap/internal/services"
	"github.com/MLBB-BOSS/MLSnap/internal/storage"
	"github.com/MLBB-BOSS/MLSnap/pkg/logger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type App struct {
	Config   *config.Config
	DB       *gorm.DB
	Redis    *redis.Client
	Catalog  config.Catalog
	Badges   config.BadgeTable
	Location *time.Location
	Archiver *storage.R2Archiver

	Registry   *services.Registry
	Pipeline   *services.Pipeline
	Reporter   *services.Reporter
	BadgeSvc   *services.BadgeService
	Notifier   notify.Notifier
	Dispatcher *bot.Dispatcher
}

// Open validates cfg, loads the catalog and badge files, connects and migrates the
// database, seeds new catalog items and builds the services.
func Open(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	catalog, err := config.LoadCatalog(cfg.CatalogFile)
	if err != nil {
		return nil, err
	}
	badges, err := config.LoadBadges(cfg.BadgesFile)
	if err != nil {
		return nil, err
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	a := &App{Config: cfg, DB: db, Catalog: catalog, Badges: badges, Location: loc}

	if err := a.migrate(ctx); err != nil {
		a.Close()
		return nil, err
	}
	if _, err := seeds.SeedCatalog(ctx, db, catalog); err != nil {
		a.Close()
		return nil, fmt.Errorf("seed catalog: %w", err)
	}

	opts := []services.Option{services.WithTimeout(cfg.StorageTimeout)}
	if cfg.RedisAddr != "" {
		a.Redis = database.InitRedis(ctx, cfg.RedisAddr, cfg.RedisPassword)
		opts = append(opts, services.WithLimiter(database.NewRedisLimiter(a.Redis, cfg.SubmitRateLimit, cfg.SubmitRateWindow)))
	}
	if cfg.ArchiveEnabled() {
		a.Archiver, err = storage.NewR2Archiver(ctx, cfg)
		if err != nil {
			a.Close()
			return nil, err
		}
		opts = append(opts, services.WithArchiver(a.Archiver))
		logger.Info().Str("bucket", cfg.R2BucketName).Msg("Screenshot archive enabled")
	}

	a.Registry = services.NewRegistry(db, cfg.StorageTimeout)
	a.Pipeline = services.NewPipeline(db, badges, opts...)
	a.Reporter = services.NewReporter(db, loc, cfg.StorageTimeout)
	a.BadgeSvc = services.NewBadgeService(db, badges, cfg.StorageTimeout)
	a.Notifier = notify.New(cfg.NotifyWebhookURL)
	a.Dispatcher = bot.NewDispatcher(a.Registry, a.Pipeline, a.Reporter, catalog, badges, a.Notifier)
	return a, nil
}

func (a *App) migrate(ctx context.Context) error {
	if err := database.Migrate(a.DB.WithContext(ctx)); err != nil {
		return err
	}
	if _, err := migrations.NewMigrator(a.DB).Run(ctx); err != nil {
		return err
	}
	return nil
}

// Close releases the database and Redis connections.
func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close Redis")
		}
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		sqlDB.Close()
	}
}

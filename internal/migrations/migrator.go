package migrations

import (
	"context"
	"fmt"
	"time"

	"github.com/MLBB-BOSS/MLSnap/pkg/logger"
	"gorm.io/gorm"
)

// Migration represents a database migration that AutoMigrate cannot express
type Migration struct {
	ID        string // Unique identifier (e.g., "001_split_legacy_badges")
	Name      string // Human-readable name
	Up        func(db *gorm.DB) error
	DependsOn []string // IDs of migrations this depends on
}

// MigrationRecord tracks which migrations have been applied
type MigrationRecord struct {
	ID        string    `gorm:"primaryKey;type:text"`
	Name      string    `gorm:"type:text"`
	AppliedAt time.Time `gorm:"autoCreateTime"`
}

func (MigrationRecord) TableName() string {
	return "schema_migrations"
}

// Migrator handles database migrations
type Migrator struct {
	db         *gorm.DB
	migrations []Migration
}

func NewMigrator(db *gorm.DB) *Migrator {
	return &Migrator{
		db:         db,
		migrations: GetMigrations(),
	}
}

// Run executes all pending migrations in order and returns how many were applied.
// Each migration and its record commit together.
func (m *Migrator) Run(ctx context.Context) (int, error) {
	db := m.db.WithContext(ctx)
	if err := db.AutoMigrate(&MigrationRecord{}); err != nil {
		return 0, fmt.Errorf("failed to create migrations table: %w", err)
	}

	var applied []MigrationRecord
	if err := db.Find(&applied).Error; err != nil {
		return 0, fmt.Errorf("failed to fetch applied migrations: %w", err)
	}

	appliedMap := make(map[string]bool)
	for _, r := range applied {
		appliedMap[r.ID] = true
	}

	count := 0
	for _, migration := range m.migrations {
		if appliedMap[migration.ID] {
			continue
		}

		for _, dep := range migration.DependsOn {
			if !appliedMap[dep] {
				return count, fmt.Errorf("migration %s depends on %s which is not applied", migration.ID, dep)
			}
		}

		logger.Info().Str("migration", migration.ID).Str("name", migration.Name).Msg("Running migration")

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := migration.Up(tx); err != nil {
				return err
			}
			return tx.Create(&MigrationRecord{ID: migration.ID, Name: migration.Name}).Error
		})
		if err != nil {
			logger.Error().Err(err).Str("migration", migration.ID).Msg("Migration failed")
			return count, fmt.Errorf("migration %s failed: %w", migration.ID, err)
		}

		appliedMap[migration.ID] = true
		count++
		logger.Info().Str("migration", migration.ID).Msg("Migration completed")
	}

	return count, nil
}

// GetMigrations returns all registered migrations in order
func GetMigrations() []Migration {
	return []Migration{
		Migration001SplitLegacyBadges(),
		Migration002AddReportIndexes(),
	}
}

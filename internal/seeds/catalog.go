package seeds

import (
	"context"
	"fmt"

	"github.com/MLBB-BOSS/MLSnap/internal/config"
	"github.com/MLBB-BOSS/MLSnap/internal/models"
	"github.com/MLBB-BOSS/MLSnap/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeedCatalog inserts catalog items that are not stored yet, matched by name.
// Existing rows are never renamed, moved or removed, so it is safe on every start.
func SeedCatalog(ctx context.Context, db *gorm.DB, catalog config.Catalog) (int, error) {
	var existing []string
	if err := db.WithContext(ctx).Model(&models.Item{}).Pluck("name", &existing).Error; err != nil {
		return 0, fmt.Errorf("load items: %w", err)
	}
	known := make(map[string]bool, len(existing))
	for _, name := range existing {
		known[name] = true
	}

	var missing []models.Item
	catalog.Each(func(category, name string) {
		if !known[name] {
			missing = append(missing, models.Item{Name: name, Category: category})
		}
	})

	added := 0
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range missing {
			// A concurrent seeder may have inserted the same name meanwhile.
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&missing[i])
			if res.Error != nil {
				return fmt.Errorf("insert item %q: %w", missing[i].Name, res.Error)
			}
			added += int(res.RowsAffected)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if added > 0 {
		logger.Info().Int("added", added).Int("catalog_size", catalog.Len()).Msg("Catalog items seeded")
	} else {
		logger.Info().Int("catalog_size", catalog.Len()).Msg("Catalog already up to date")
	}
	return added, nil
}

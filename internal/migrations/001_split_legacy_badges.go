package migrations

import (
	"strings"
	"time"

	"github.com/MLBB-BOSS/MLSnap/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LegacyBadgeSeparator joined badge names in the old users.badges column.
const LegacyBadgeSeparator = ", "

// Migration001SplitLegacyBadges copies the comma-joined users.badges column of older
// deployments into user_badges, keeping the original order. The legacy column is left
// in place and no longer read.
func Migration001SplitLegacyBadges() Migration {
	return Migration{
		ID:   "001_split_legacy_badges",
		Name: "Move legacy users.badges strings into user_badges",
		Up: func(db *gorm.DB) error {
			if !db.Migrator().HasColumn("users", "badges") {
				return nil
			}

			var rows []struct {
				UserID string
				Badges string
			}
			err := db.Table("users").
				Select("user_id, badges").
				Where("badges IS NOT NULL AND badges <> ''").
				Scan(&rows).Error
			if err != nil {
				return err
			}

			now := time.Now()
			for _, row := range rows {
				for i, name := range SplitLegacyBadges(row.Badges) {
					badge := models.UserBadge{UserID: row.UserID, Badge: name, Position: i, AwardedAt: now}
					if err := db.Omit(clause.Associations).Clauses(clause.OnConflict{DoNothing: true}).Create(&badge).Error; err != nil {
						return err
					}
				}
			}
			return nil
		},
	}
}

// SplitLegacyBadges parses a legacy badge string, dropping blanks and repeats.
func SplitLegacyBadges(s string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, part := range strings.Split(s, strings.TrimSpace(LegacyBadgeSeparator)) {
		name := strings.TrimSpace(part)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

package migrations

import (
	"gorm.io/gorm"
)

// Migration002AddReportIndexes adds composite indexes for the progress queries:
// 1. Histogram and per-user totals (user_id, created_at)
// 2. Per-item breakdown and remaining items (user_id, item_id)
func Migration002AddReportIndexes() Migration {
	return Migration{
		ID:   "002_add_report_indexes",
		Name: "Add composite indexes for progress reports",
		Up: func(db *gorm.DB) error {
			idx1 := `
				CREATE INDEX IF NOT EXISTS idx_contributions_user_created
				ON contributions (user_id, created_at)
			`
			if err := db.Exec(idx1).Error; err != nil {
				return err
			}

			idx2 := `
				CREATE INDEX IF NOT EXISTS idx_contributions_user_item
				ON contributions (user_id, item_id)
			`
			return db.Exec(idx2).Error
		},
	}
}

package migrations

import (
	"context"
	"testing"
	"time"

	"github.com/MLBB-BOSS/MLSnap/internal/models"
	"github.com/MLBB-BOSS/MLSnap/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitLegacyBadges(t *testing.T) {
	assert.Equal(t, []string{"Starter", "Active"}, SplitLegacyBadges("Starter, Active"))
	assert.Equal(t, []string{"Starter"}, SplitLegacyBadges("Starter,Starter, "))
	assert.Nil(t, SplitLegacyBadges(""))
}

func TestMigratorMovesLegacyBadges(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()

	require.NoError(t, db.Exec("ALTER TABLE users ADD COLUMN badges text").Error)
	now := time.Now()
	insert := "INSERT INTO users (user_id, display_name, created_at, updated_at, badges) VALUES (?, ?, ?, ?, ?)"
	require.NoError(t, db.Exec(insert, "1", "Old Timer", now, now, "Starter, Active").Error)
	require.NoError(t, db.Exec(insert, "2", "Newcomer", now, now, "").Error)
	require.NoError(t, db.Create(&models.UserBadge{UserID: "1", Badge: "Starter", Position: 0}).Error)

	applied, err := NewMigrator(db).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, applied)

	var badges []models.UserBadge
	require.NoError(t, db.Order("position").Find(&badges, "user_id = ?", "1").Error)
	require.Len(t, badges, 2)
	assert.Equal(t, "Starter", badges[0].Badge)
	assert.Equal(t, "Active", badges[1].Badge)
	assert.Equal(t, 1, badges[1].Position)

	var none int64
	require.NoError(t, db.Model(&models.UserBadge{}).Where("user_id = ?", "2").Count(&none).Error)
	assert.Zero(t, none)

	// Already applied migrations are skipped
	applied, err = NewMigrator(db).Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, applied)
}

func TestMigratorWithoutLegacyColumn(t *testing.T) {
	db := testutil.NewDB(t)

	applied, err := NewMigrator(db).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, applied)

	var records int64
	require.NoError(t, db.Model(&MigrationRecord{}).Count(&records).Error)
	assert.Equal(t, int64(2), records)
}

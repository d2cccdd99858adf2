package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/MLBB-BOSS/MLSnap/internal/bot"
	"github.com/MLBB-BOSS/MLSnap/internal/config"
	"github.com/MLBB-BOSS/MLSnap/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Env:            "test",
		DatabaseURL:    "sqlite://" + filepath.Join(t.TempDir(), "mlsnap.db"),
		CatalogFile:    "../../config/catalog.yaml",
		BadgesFile:     "../../config/badges.yaml",
		StorageTimeout: time.Second,
		Timezone:       "UTC",
	}
}

func TestOpenIsRepeatable(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	a, err := Open(ctx, cfg)
	require.NoError(t, err)
	var items int64
	require.NoError(t, a.DB.Model(&models.Item{}).Count(&items).Error)
	assert.Equal(t, int64(a.Catalog.Len()), items)

	replies, err := a.Dispatcher.Handle(ctx, bot.Event{Kind: bot.EventSelectItem, UserID: "1", ItemName: "Alucard"})
	require.NoError(t, err)
	assert.Empty(t, replies[0].ErrorCode)
	a.Close()

	// A second start sees the same items and keeps the session
	a, err = Open(ctx, cfg)
	require.NoError(t, err)
	defer a.Close()
	require.NoError(t, a.DB.Model(&models.Item{}).Count(&items).Error)
	assert.Equal(t, int64(a.Catalog.Len()), items)

	replies, err = a.Dispatcher.Handle(ctx, bot.Event{Kind: bot.EventSubmitImage, UserID: "1", Image: []byte("\x89PNGabc")})
	require.NoError(t, err)
	assert.Empty(t, replies[0].ErrorCode)
	assert.Nil(t, a.Archiver)
	assert.Nil(t, a.Redis)
}

func TestOpenFailsFast(t *testing.T) {
	ctx := context.Background()

	cfg := testConfig(t)
	cfg.DatabaseURL = ""
	_, err := Open(ctx, cfg)
	assert.ErrorIs(t, err, config.ErrMissingDatabaseURL)

	cfg = testConfig(t)
	cfg.CatalogFile = "missing.yaml"
	_, err = Open(ctx, cfg)
	assert.Error(t, err)

	cfg = testConfig(t)
	cfg.BadgesFile = "missing.yaml"
	_, err = Open(ctx, cfg)
	assert.Error(t, err)
}

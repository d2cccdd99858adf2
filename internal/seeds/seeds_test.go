package seeds

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/MLBB-BOSS/MLSnap/internal/config"
	"github.com/MLBB-BOSS/MLSnap/internal/models"
	"github.com/MLBB-BOSS/MLSnap/internal/services"
	"github.com/MLBB-BOSS/MLSnap/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCatalog(t *testing.T, categories ...config.Category) config.Catalog {
	t.Helper()
	catalog, err := config.NewCatalog(categories)
	require.NoError(t, err)
	return catalog
}

func TestSeedCatalogIsIdempotent(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	catalog := mustCatalog(t,
		config.Category{Name: "Fighter", Items: []string{"Alucard", "Balmond"}},
		config.Category{Name: "Mage", Items: []string{"Nana"}},
	)

	added, err := SeedCatalog(ctx, db, catalog)
	require.NoError(t, err)
	assert.Equal(t, 3, added)

	var before []models.Item
	require.NoError(t, db.Order("id").Find(&before).Error)

	added, err = SeedCatalog(ctx, db, catalog)
	require.NoError(t, err)
	assert.Zero(t, added)

	var after []models.Item
	require.NoError(t, db.Order("id").Find(&after).Error)
	require.Len(t, after, len(before))
	for i := range before {
		assert.Equal(t, before[i].ID, after[i].ID)
		assert.Equal(t, before[i].Name, after[i].Name)
	}
}

func TestSeedCatalogAddsOnlyNewItems(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()

	_, err := SeedCatalog(ctx, db, mustCatalog(t,
		config.Category{Name: "Fighter", Items: []string{"Alucard"}},
	))
	require.NoError(t, err)

	var alucard models.Item
	require.NoError(t, db.Where("name = ?", "Alucard").First(&alucard).Error)

	added, err := SeedCatalog(ctx, db, mustCatalog(t,
		config.Category{Name: "Fighter", Items: []string{"Alucard", "Zilong"}},
		config.Category{Name: "Support", Items: []string{"Rafaela"}},
	))
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	var again models.Item
	require.NoError(t, db.Where("name = ?", "Alucard").First(&again).Error)
	assert.Equal(t, alucard.ID, again.ID)

	var count int64
	require.NoError(t, db.Model(&models.Item{}).Count(&count).Error)
	assert.Equal(t, int64(3), count)
}

func TestImportUsers(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	registry := services.NewRegistry(db, time.Second)

	_, err := registry.GetOrCreateUser(ctx, "7", "Original")
	require.NoError(t, err)

	input := strings.Join([]string{
		"user_id,display_name",
		"7,Changed",
		"",
		"8, Miya Fan",
		"9,\"Doe, Jane\"",
	}, "\n")

	n, err := ImportUsers(ctx, registry, strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	user, err := registry.FindUser(ctx, "7")
	require.NoError(t, err)
	assert.Equal(t, "Original", user.DisplayName)

	user, err = registry.FindUser(ctx, "9")
	require.NoError(t, err)
	assert.Equal(t, "Doe, Jane", user.DisplayName)
}

func TestImportUsersRejectsShortRows(t *testing.T) {
	db := testutil.NewDB(t)
	registry := services.NewRegistry(db, time.Second)

	n, err := ImportUsers(context.Background(), registry, strings.NewReader("1,One\n2\n"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
	assert.Equal(t, 1, n)
}

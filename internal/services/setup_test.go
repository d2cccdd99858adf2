package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/MLBB-BOSS/MLSnap/internal/config"
	"github.com/MLBB-BOSS/MLSnap/internal/models"
	"github.com/MLBB-BOSS/MLSnap/internal/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db       *gorm.DB
	registry *Registry
	pipeline *Pipeline
	reporter *Reporter
	badges   *BadgeService
	clock    *testClock
}

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.now = c.now.Add(time.Second)
	return c.now
}

func testBadgeTable(t *testing.T) config.BadgeTable {
	t.Helper()
	table, err := config.NewBadgeTable([]config.BadgeTier{
		{Threshold: 5, Name: "Starter"},
		{Threshold: 10, Name: "Active"},
		{Threshold: 20, Name: "Expert"},
	})
	require.NoError(t, err)
	return table
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)

	items := []models.Item{
		{Name: "Alucard", Category: "Fighter"},
		{Name: "Balmond", Category: "Fighter"},
		{Name: "Zilong", Category: "Fighter"},
		{Name: "Nana", Category: "Mage"},
	}
	require.NoError(t, db.Create(&items).Error)

	clock := &testClock{now: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)}
	table := testBadgeTable(t)
	return &fixture{
		db:       db,
		registry: NewRegistry(db, time.Second),
		pipeline: NewPipeline(db, table, WithTimeout(time.Second), WithClock(clock.Now)),
		reporter: NewReporter(db, time.UTC, time.Second),
		badges:   NewBadgeService(db, table, time.Second),
		clock:    clock,
	}
}

func pngBytes(tag string) []byte {
	return []byte("\x89PNG" + tag)
}

// contribute selects item and submits n distinct images for the user.
func (f *fixture) contribute(t *testing.T, userID, item string, n int) {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < n; i++ {
		_, err := f.pipeline.SelectItem(ctx, userID, item)
		require.NoError(t, err)
		_, err = f.pipeline.SubmitImage(ctx, userID, pngBytes(fmt.Sprintf("%s-%s-%d", userID, item, i)))
		require.NoError(t, err)
	}
}

func (f *fixture) count(t *testing.T, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Count(&n).Error)
	return n
}

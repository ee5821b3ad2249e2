package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"IotMonitor.api/internal/models"
)

func newTestSQLite(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "iot.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close(context.Background()) })
	return repo
}

func TestSQLiteRepository_InsertAndFind(t *testing.T) {
	repo := newTestSQLite(t)
	ctx := context.Background()

	base := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	repo.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	doc := models.Document{
		"timestamp": "2023-01-01T00:00:00Z",
		"measures":  map[string]any{"temp": 21.5},
		"firmware":  "1.2.0",
	}
	require.NoError(t, repo.InsertMeasurement(ctx, doc))
	require.NoError(t, repo.InsertMeasurement(ctx, doc))
	require.NoError(t, repo.InsertMeasurement(ctx, models.Document{"timestamp": "later", "measures": map[string]any{}}))

	records, err := repo.FindMeasurements(ctx, models.HistoryQuery{Limit: 10})
	require.NoError(t, err)
	require.Len(t, records, 3)

	// newest first, duplicates kept
	assert.Equal(t, "later", records[0].Document["timestamp"])
	assert.Equal(t, "1.2.0", records[1].Document["firmware"])
	assert.Equal(t, "1.2.0", records[2].Document["firmware"])
	assert.NotEqual(t, records[1].ID, records[2].ID)
	assert.Equal(t, base.Add(3*time.Minute), records[0].Time)
}

func TestSQLiteRepository_FindRangeAndLimit(t *testing.T) {
	repo := newTestSQLite(t)
	ctx := context.Background()

	base := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		at := base.Add(time.Duration(i) * time.Hour)
		repo.now = func() time.Time { return at }
		require.NoError(t, repo.InsertMeasurement(ctx, models.Document{"timestamp": at.Format(time.RFC3339), "measures": map[string]any{"i": float64(i)}}))
	}

	records, err := repo.FindMeasurements(ctx, models.HistoryQuery{
		From:  base.Add(time.Hour),
		To:    base.Add(3 * time.Hour),
		Limit: 2,
	})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, base.Add(3*time.Hour), records[0].Time)
	assert.Equal(t, base.Add(2*time.Hour), records[1].Time)
}

package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/narumiruna/powerflow/internal/collector"
	"github.com/narumiruna/powerflow/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) store.Repository {
	t.Helper()

	repo, err := store.NewRepository(store.Config{
		DBPath: filepath.Join(t.TempDir(), "powerflow.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	return repo
}

func sampleReading(ts time.Time, watts float64) *collector.PowerReading {
	return &collector.PowerReading{
		Timestamp:         ts,
		WattsActual:       watts,
		WattsNegotiated:   96,
		Voltage:           12.3,
		Amperage:          watts / 12.3,
		CurrentCapacity:   4200,
		MaxCapacity:       5100,
		BatteryPercent:    82,
		IsCharging:        watts > 0,
		ExternalConnected: watts > 0,
		ChargerName:       "96W USB-C Power Adapter",
	}
}

func TestNewRepositoryInvalidConfig(t *testing.T) {
	_, err := store.NewRepository(store.Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store_invalid_db_path")
}

func TestInsertAndHistory(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		id, err := repo.Insert(ctx, sampleReading(base.Add(time.Duration(i)*time.Minute), float64(10+i)))
		require.NoError(t, err)
		assert.Positive(t, id)
	}

	readings, err := repo.History(ctx, 3)
	require.NoError(t, err)
	require.Len(t, readings, 3)

	// Newest first
	assert.InDelta(t, 14.0, readings[0].WattsActual, 0.001)
	assert.InDelta(t, 13.0, readings[1].WattsActual, 0.001)
	assert.True(t, readings[0].Timestamp.After(readings[1].Timestamp))

	assert.Equal(t, "96W USB-C Power Adapter", readings[0].ChargerName)
	assert.Empty(t, readings[0].ChargerManufacturer)
	assert.True(t, readings[0].IsCharging)
	assert.Equal(t, 82, readings[0].BatteryPercent)
}

func TestHistoryNoLimit(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		_, err := repo.Insert(ctx, sampleReading(base.Add(time.Duration(i)*time.Minute), 10))
		require.NoError(t, err)
	}

	readings, err := repo.History(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, readings, 4)
}

func TestStatistics(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	for i, watts := range []float64{10, 20, 30} {
		_, err := repo.Insert(ctx, sampleReading(base.Add(time.Duration(i)*time.Minute), watts))
		require.NoError(t, err)
	}

	stats, err := repo.Statistics(ctx, 0)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Count)
	assert.InDelta(t, 20.0, stats.AvgWatts, 0.001)
	assert.InDelta(t, 10.0, stats.MinWatts, 0.001)
	assert.InDelta(t, 30.0, stats.MaxWatts, 0.001)
	assert.InDelta(t, 82.0, stats.AvgBattery, 0.001)
	assert.NotEmpty(t, stats.Earliest)
	assert.NotEmpty(t, stats.Latest)
	assert.Less(t, stats.Earliest, stats.Latest)
}

func TestStatisticsEmpty(t *testing.T) {
	repo := newTestRepository(t)

	stats, err := repo.Statistics(context.Background(), 100)
	require.NoError(t, err)
	assert.Zero(t, stats.Count)
	assert.Zero(t, stats.AvgWatts)
	assert.Empty(t, stats.Earliest)
}

func TestCleanup(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	old := time.Now().UTC().AddDate(0, 0, -10)
	recent := time.Now().UTC()

	_, err := repo.Insert(ctx, sampleReading(old, 10))
	require.NoError(t, err)
	_, err = repo.Insert(ctx, sampleReading(recent, 20))
	require.NoError(t, err)

	deleted, err := repo.Cleanup(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	readings, err := repo.History(ctx, 0)
	require.NoError(t, err)
	require.Len(t, readings, 1)
	assert.InDelta(t, 20.0, readings[0].WattsActual, 0.001)
}

func TestCleanupInvalidDays(t *testing.T) {
	repo := newTestRepository(t)

	_, err := repo.Cleanup(context.Background(), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store_invalid_range")
}

func TestClear(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := repo.Insert(ctx, sampleReading(time.Now().UTC(), 10))
		require.NoError(t, err)
	}

	deleted, err := repo.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)

	readings, err := repo.History(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, readings)
}

func TestHealthTrend(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	today := time.Now().UTC().Truncate(24 * time.Hour).Add(10 * time.Hour)
	yesterday := today.AddDate(0, 0, -1)

	for _, ts := range []time.Time{yesterday, yesterday.Add(time.Hour), today} {
		_, err := repo.Insert(ctx, sampleReading(ts, 10))
		require.NoError(t, err)
	}

	trend, err := repo.HealthTrend(ctx, 7)
	require.NoError(t, err)
	require.Len(t, trend, 2)

	// Oldest day first
	assert.Less(t, trend[0].Date, trend[1].Date)
	assert.Equal(t, 2, trend[0].Count)
	assert.Equal(t, 1, trend[1].Count)
	assert.InDelta(t, 5100.0, trend[0].AvgMaxCapacity, 0.001)
}

func TestHealthTrendInvalidDays(t *testing.T) {
	repo := newTestRepository(t)

	_, err := repo.HealthTrend(context.Background(), -1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store_invalid_range")
}

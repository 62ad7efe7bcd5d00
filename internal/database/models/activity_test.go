package models_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/vigilo-bot/vigilo/internal/database"
	"github.com/vigilo-bot/vigilo/internal/database/types"
	"github.com/vigilo-bot/vigilo/internal/setup/config"
	"github.com/vigilo-bot/vigilo/internal/tracker"
	"go.uber.org/zap"
)

// setupTestDB starts a disposable Postgres container, runs the migrations
// against it and returns a connected client.
func setupTestDB(t *testing.T) database.Client {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping container-backed store test in short mode")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("vigilo_test"),
		postgres.WithUsername("vigilo"),
		postgres.WithPassword("vigilo"),
		postgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = testcontainers.TerminateContainer(pgContainer)
	})

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)

	port, err := pgContainer.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	db, err := database.NewConnection(ctx, &config.PostgreSQL{
		Host:         host,
		Port:         port.Int(),
		User:         "vigilo",
		Password:     "vigilo",
		DBName:       "vigilo_test",
		MaxOpenConns: 4,
		MaxIdleConns: 4,
		MaxLifetime:  5,
		MaxIdleTime:  5,
	}, zap.NewNop(), true)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// assertRecord compares a stored row against the expected transition state,
// normalizing the date columns to UTC midnight.
func assertRecord(t *testing.T, expected *types.UserActivity, got *types.UserActivity) {
	t.Helper()

	assert.True(t, tracker.Day(got.LastActiveDate).Equal(tracker.Day(expected.LastActiveDate)),
		"last_active_date: got %v, want %v", got.LastActiveDate, expected.LastActiveDate)
	assert.True(t, tracker.Day(got.WeekStart).Equal(tracker.Day(expected.WeekStart)),
		"week_start: got %v, want %v", got.WeekStart, expected.WeekStart)
	assert.Equal(t, expected.OfflineStreak, got.OfflineStreak, "offline_streak")
	assert.Equal(t, expected.OnlineDays, got.OnlineDays, "online_days")
	assert.Equal(t, expected.OfflineDays, got.OfflineDays, "offline_days")
	assert.Equal(t, expected.TotalOnline, got.TotalOnline, "total_online")
	assert.Equal(t, expected.TotalOffline, got.TotalOffline, "total_offline")
}

func TestUpsertTransitions(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	const (
		guildID = uint64(100)
		userID  = uint64(7)
	)

	first := day(2025, time.March, 10) // a Monday

	require.NoError(t, db.Model().Activity().Upsert(ctx, guildID, userID, first))

	got, err := db.Model().Activity().Get(ctx, guildID, userID)
	require.NoError(t, err)

	model := &types.UserActivity{
		GuildID:        guildID,
		UserID:         userID,
		LastActiveDate: first,
		OnlineDays:     1,
		WeekStart:      tracker.WeekStartOf(first),
		TotalOnline:    1,
	}
	assertRecord(t, model, got)

	// Each subsequent write is cross-checked against the pure transition
	// mirror, so the SQL and the Go model can never drift apart silently.
	steps := []struct {
		name  string
		event time.Time
	}{
		{name: "same day repeat is a no-op", event: day(2025, time.March, 10)},
		{name: "backward dated event is a no-op", event: day(2025, time.March, 8)},
		{name: "consecutive day clears the streak", event: day(2025, time.March, 11)},
		{name: "gap adds exactly one and counts offline days", event: day(2025, time.March, 14)},
		{name: "next week resets the week bucket", event: day(2025, time.March, 19)},
	}

	for _, step := range steps {
		t.Run(step.name, func(t *testing.T) {
			require.NoError(t, db.Model().Activity().Upsert(ctx, guildID, userID, step.event))
			tracker.Advance(model, step.event)

			got, err := db.Model().Activity().Get(ctx, guildID, userID)
			require.NoError(t, err)
			assertRecord(t, model, got)
		})
	}
}

func TestGetInactiveAsOf(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	const guildID = uint64(200)

	asOf := day(2025, time.March, 20)

	// First writes insert with a zero streak baseline, so the scan's current
	// streak is exactly the elapsed days.
	seed := map[uint64]time.Time{
		1: asOf.AddDate(0, 0, -15), // over the threshold
		2: asOf.AddDate(0, 0, -10), // under the threshold, excluded
		3: asOf.AddDate(0, 0, -15), // tied with user 1
		4: asOf.AddDate(0, 0, -12), // exactly on the boundary, included
	}
	for userID, date := range seed {
		require.NoError(t, db.Model().Activity().Upsert(ctx, guildID, userID, date))
	}

	entries, err := db.Model().Activity().GetInactiveAsOf(ctx, guildID, 12, asOf)
	require.NoError(t, err)

	// Descending streak with ascending user id breaking the 15-day tie.
	require.Len(t, entries, 3)
	assert.Equal(t, types.InactiveEntry{UserID: 1, Streak: 15}, entries[0])
	assert.Equal(t, types.InactiveEntry{UserID: 3, Streak: 15}, entries[1])
	assert.Equal(t, types.InactiveEntry{UserID: 4, Streak: 12}, entries[2])
}

func TestPurgeOlderThan(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	today := day(2025, time.March, 20)
	stale := today.AddDate(0, 0, -30)
	fresh := today.AddDate(0, 0, -5)
	cutoff := today.AddDate(0, 0, -10)

	require.NoError(t, db.Model().Activity().Upsert(ctx, 1, 10, stale))
	require.NoError(t, db.Model().Activity().Upsert(ctx, 1, 11, fresh))
	require.NoError(t, db.Model().Activity().Upsert(ctx, 2, 10, stale))

	// Guild-scoped purge leaves the other guild untouched.
	purged, err := db.Model().Activity().PurgeOlderThan(ctx, 1, cutoff)
	require.NoError(t, err)
	assert.Equal(t, 1, purged)

	_, err = db.Model().Activity().Get(ctx, 1, 10)
	assert.ErrorIs(t, err, types.ErrActivityNotFound)

	_, err = db.Model().Activity().Get(ctx, 2, 10)
	require.NoError(t, err)

	// Global purge sweeps the remaining stale row across all guilds.
	purged, err = db.Model().Activity().PurgeOlderThan(ctx, 0, cutoff)
	require.NoError(t, err)
	assert.Equal(t, 1, purged)

	_, err = db.Model().Activity().Get(ctx, 2, 10)
	assert.ErrorIs(t, err, types.ErrActivityNotFound)

	_, err = db.Model().Activity().Get(ctx, 1, 11)
	require.NoError(t, err)
}

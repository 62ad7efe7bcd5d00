package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/vigilo-bot/vigilo/internal/database/dbretry"
	"github.com/vigilo-bot/vigilo/internal/database/types"
	"github.com/vigilo-bot/vigilo/internal/tracker"
	"go.uber.org/zap"
)

// ActivityModel handles database operations for the per-user activity ledger.
type ActivityModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewActivity creates a repository with database access for storing and
// querying user activity records.
func NewActivity(db *bun.DB, logger *zap.Logger) *ActivityModel {
	return &ActivityModel{
		db:     db,
		logger: logger.Named("db_activity"),
	}
}

// Upsert credits a user with activity on the given calendar day in a single
// round trip. Repeated writes for the same day are no-ops, and the stored
// date never moves backward; the conditional update enforces both. The streak
// baseline clears on a consecutive-day write and otherwise grows by exactly
// one regardless of the gap length. Week counters reset when the Monday
// bucket rolls over; lifetime counters only grow.
func (m *ActivityModel) Upsert(ctx context.Context, guildID, userID uint64, date time.Time) error {
	day := tracker.Day(date)

	activity := &types.UserActivity{
		GuildID:        guildID,
		UserID:         userID,
		LastActiveDate: day,
		OfflineStreak:  0,
		OnlineDays:     1,
		OfflineDays:    0,
		WeekStart:      tracker.WeekStartOf(day),
		TotalOnline:    1,
		TotalOffline:   0,
	}

	err := dbretry.NoResult(ctx, func(ctx context.Context) error {
		_, err := m.db.NewInsert().
			Model(activity).
			On("CONFLICT (guild_id, user_id) DO UPDATE").
			Set("last_active_date = EXCLUDED.last_active_date").
			Set(`offline_streak = CASE
				WHEN user_activity.last_active_date = EXCLUDED.last_active_date - 1 THEN 0
				ELSE user_activity.offline_streak + 1
			END`).
			Set(`online_days = CASE
				WHEN user_activity.week_start = EXCLUDED.week_start THEN user_activity.online_days + 1
				ELSE 1
			END`).
			Set(`offline_days = CASE
				WHEN user_activity.week_start = EXCLUDED.week_start
					THEN user_activity.offline_days + (EXCLUDED.last_active_date - user_activity.last_active_date) - 1
				ELSE 0
			END`).
			Set("week_start = EXCLUDED.week_start").
			Set("total_online = user_activity.total_online + 1").
			Set(`total_offline = user_activity.total_offline
				+ (EXCLUDED.last_active_date - user_activity.last_active_date) - 1`).
			Where("user_activity.last_active_date < EXCLUDED.last_active_date").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to upsert activity: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	m.logger.Debug("Upserted activity",
		zap.Uint64("guildID", guildID),
		zap.Uint64("userID", userID),
		zap.Time("date", day))

	return nil
}

// Get retrieves the activity record for a (guild, user) pair. Returns
// types.ErrActivityNotFound when the user has never been recorded.
func (m *ActivityModel) Get(ctx context.Context, guildID, userID uint64) (*types.UserActivity, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (*types.UserActivity, error) {
		var activity types.UserActivity

		err := m.db.NewSelect().
			Model(&activity).
			Where("guild_id = ?", guildID).
			Where("user_id = ?", userID).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, types.ErrActivityNotFound
			}

			return nil, fmt.Errorf("failed to get activity: %w", err)
		}

		return &activity, nil
	})
}

// GetActiveOn returns the set of users credited with activity in the guild
// on the given calendar day.
func (m *ActivityModel) GetActiveOn(ctx context.Context, guildID uint64, date time.Time) (map[uint64]struct{}, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (map[uint64]struct{}, error) {
		var userIDs []uint64

		err := m.db.NewSelect().
			Model((*types.UserActivity)(nil)).
			Column("user_id").
			Where("guild_id = ?", guildID).
			Where("last_active_date = ?", tracker.Day(date)).
			Scan(ctx, &userIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to get active users: %w", err)
		}

		active := make(map[uint64]struct{}, len(userIDs))
		for _, id := range userIDs {
			active[id] = struct{}{}
		}

		return active, nil
	})
}

// GetInactiveAsOf returns users whose last activity is at least thresholdDays
// before asOf, together with their current streak computed as of asOf.
// Ordered by streak descending, then ascending user id for determinism.
func (m *ActivityModel) GetInactiveAsOf(
	ctx context.Context, guildID uint64, thresholdDays int, asOf time.Time,
) ([]types.InactiveEntry, error) {
	day := tracker.Day(asOf)

	return dbretry.Operation(ctx, func(ctx context.Context) ([]types.InactiveEntry, error) {
		var entries []types.InactiveEntry

		err := m.db.NewSelect().
			TableExpr("user_activity").
			ColumnExpr("user_id").
			ColumnExpr("offline_streak + (?::date - last_active_date) AS current_streak", day).
			Where("guild_id = ?", guildID).
			Where("last_active_date <= ?::date - ?", day, thresholdDays).
			OrderExpr("current_streak DESC, user_id ASC").
			Scan(ctx, &entries)
		if err != nil {
			return nil, fmt.Errorf("failed to get inactive users: %w", err)
		}

		return entries, nil
	})
}

// PurgeOlderThan deletes activity rows whose last active date is strictly
// before the cutoff. A zero guildID purges across all guilds. Returns the
// number of rows removed.
func (m *ActivityModel) PurgeOlderThan(ctx context.Context, guildID uint64, cutoff time.Time) (int, error) {
	count, err := dbretry.Operation(ctx, func(ctx context.Context) (int, error) {
		query := m.db.NewDelete().
			Model((*types.UserActivity)(nil)).
			Where("last_active_date < ?", tracker.Day(cutoff))

		if guildID != 0 {
			query = query.Where("guild_id = ?", guildID)
		}

		res, err := query.Exec(ctx)
		if err != nil {
			return 0, fmt.Errorf("failed to purge activity: %w", err)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to count purged rows: %w", err)
		}

		return int(affected), nil
	})
	if err != nil {
		return 0, err
	}

	m.logger.Info("Purged stale activity rows",
		zap.Uint64("guildID", guildID),
		zap.Time("cutoff", tracker.Day(cutoff)),
		zap.Int("count", count))

	return count, nil
}

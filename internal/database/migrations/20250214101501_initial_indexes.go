package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		// Backs the daily inactivity scan, which filters on a date cutoff
		// per guild.
		_, err := db.NewRaw(`
			CREATE INDEX IF NOT EXISTS idx_user_activity_guild_last_active
			ON user_activity (guild_id, last_active_date);
		`).Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create user activity indexes: %w", err)
		}

		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		_, err := db.NewRaw(`
			DROP INDEX IF EXISTS idx_user_activity_guild_last_active;
		`).Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to drop user activity indexes: %w", err)
		}

		return nil
	})
}

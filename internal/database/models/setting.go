package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/vigilo-bot/vigilo/internal/database/dbretry"
	"github.com/vigilo-bot/vigilo/internal/database/types"
	"github.com/vigilo-bot/vigilo/internal/setup/config"
	"go.uber.org/zap"
)

// ErrSettingsNotFound is returned when a guild has never been configured.
// Callers surface this as a "not configured" result, not a failure.
var ErrSettingsNotFound = errors.New("guild settings not found")

// SettingModel handles database operations for per-guild alert settings.
type SettingModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewSetting creates a repository with database access for guild settings.
func NewSetting(db *bun.DB, logger *zap.Logger) *SettingModel {
	return &SettingModel{
		db:     db,
		logger: logger.Named("db_setting"),
	}
}

// Get retrieves the settings row for a guild.
func (m *SettingModel) Get(ctx context.Context, guildID uint64) (*types.GuildSettings, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (*types.GuildSettings, error) {
		var settings types.GuildSettings

		err := m.db.NewSelect().
			Model(&settings).
			Where("guild_id = ?", guildID).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, ErrSettingsNotFound
			}

			return nil, fmt.Errorf("failed to get guild settings: %w", err)
		}

		return &settings, nil
	})
}

// GetConfigured returns every guild with a report channel set. These are the
// guilds the daily scan visits; unconfigured guilds are skipped entirely.
func (m *SettingModel) GetConfigured(ctx context.Context) ([]*types.GuildSettings, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) ([]*types.GuildSettings, error) {
		var settings []*types.GuildSettings

		err := m.db.NewSelect().
			Model(&settings).
			Where("report_channel_id IS NOT NULL").
			Order("guild_id ASC").
			Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get configured guilds: %w", err)
		}

		return settings, nil
	})
}

// UpsertChannel sets the alert channel for a guild, creating the settings row
// with defaults when absent and leaving unrelated fields untouched otherwise.
func (m *SettingModel) UpsertChannel(ctx context.Context, guildID, channelID uint64) error {
	return m.upsertField(ctx, guildID, channelID, nil, "report_channel_id")
}

// UpsertRoles replaces the ping role set wholesale; the last call wins and
// previous roles are not merged in.
func (m *SettingModel) UpsertRoles(ctx context.Context, guildID uint64, roleIDs []uint64) error {
	if len(roleIDs) == 0 {
		return types.ErrNoRolesSelected
	}

	return m.upsertField(ctx, guildID, 0, roleIDs, "role_ids")
}

// UpsertThreshold sets the alert threshold for a guild after validating it.
func (m *SettingModel) UpsertThreshold(ctx context.Context, guildID uint64, days int) error {
	if err := types.ValidateThreshold(days); err != nil {
		return err
	}

	settings := m.defaultRow(guildID)
	settings.AlertThreshold = days

	return m.upsert(ctx, settings, "alert_threshold")
}

// upsertField performs a single-column upsert for the channel or role fields.
func (m *SettingModel) upsertField(
	ctx context.Context, guildID, channelID uint64, roleIDs []uint64, column string,
) error {
	settings := m.defaultRow(guildID)
	settings.ReportChannelID = channelID

	if roleIDs != nil {
		settings.RoleIDs = roleIDs
	}

	return m.upsert(ctx, settings, column)
}

// upsert inserts the row if the guild is new, otherwise updates only the
// named column so concurrent configuration commands can't clobber each other.
func (m *SettingModel) upsert(ctx context.Context, settings *types.GuildSettings, column string) error {
	err := dbretry.NoResult(ctx, func(ctx context.Context) error {
		_, err := m.db.NewInsert().
			Model(settings).
			On("CONFLICT (guild_id) DO UPDATE").
			Set(fmt.Sprintf("%s = EXCLUDED.%s", column, column)).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to upsert guild settings: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	m.logger.Debug("Updated guild settings",
		zap.Uint64("guildID", settings.GuildID),
		zap.String("column", column))

	return nil
}

// defaultRow builds the insert image for a guild seen for the first time.
func (m *SettingModel) defaultRow(guildID uint64) *types.GuildSettings {
	return &types.GuildSettings{
		GuildID:        guildID,
		RoleIDs:        []uint64{},
		AlertThreshold: config.DefaultAlertThreshold,
		Timezone:       "UTC",
	}
}

// Package settings implements the guild configuration commands and the
// explicit activity purge.
package settings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/vigilo-bot/vigilo/internal/bot/constants"
	"github.com/vigilo-bot/vigilo/internal/bot/views"
	"github.com/vigilo-bot/vigilo/internal/database"
	"github.com/vigilo-bot/vigilo/internal/database/models"
	"github.com/vigilo-bot/vigilo/internal/database/types"
	"github.com/vigilo-bot/vigilo/internal/setup/config"
	"github.com/vigilo-bot/vigilo/internal/tracker"
	"go.uber.org/zap"
)

// Handler processes the configuration slash commands.
type Handler struct {
	db     database.Client
	logger *zap.Logger
}

// New creates a settings handler.
func New(db database.Client, logger *zap.Logger) *Handler {
	return &Handler{
		db:     db,
		logger: logger.Named("settings"),
	}
}

// HandleChannelSet stores the alert channel for the guild.
func (h *Handler) HandleChannelSet(ctx context.Context, event *events.ApplicationCommandInteractionCreate) {
	if !h.requireManageGuild(event) {
		return
	}

	guildID := uint64(*event.GuildID())
	channel := event.SlashCommandInteractionData().Channel("channel")

	if channel.Type != discord.ChannelTypeGuildText {
		h.respond(event, views.ErrorEmbed("The alert channel must be a text channel."))
		return
	}

	if err := h.db.Model().Setting().UpsertChannel(ctx, guildID, uint64(channel.ID)); err != nil {
		h.storeError(event, "save the alert channel", err)
		return
	}

	h.respond(event, views.SuccessEmbed(fmt.Sprintf("Inactivity alerts will be posted in <#%d>.", channel.ID)))
}

// HandleRoleSet replaces the guild's alert roles with the given set.
func (h *Handler) HandleRoleSet(ctx context.Context, event *events.ApplicationCommandInteractionCreate) {
	if !h.requireManageGuild(event) {
		return
	}

	guildID := uint64(*event.GuildID())
	data := event.SlashCommandInteractionData()

	seen := make(map[uint64]struct{}, constants.MaxAlertRoles)
	roleIDs := make([]uint64, 0, constants.MaxAlertRoles)

	for i := 1; i <= constants.MaxAlertRoles; i++ {
		id, ok := data.OptSnowflake(fmt.Sprintf("role%d", i))
		if !ok {
			continue
		}

		if _, dup := seen[uint64(id)]; dup {
			continue
		}

		seen[uint64(id)] = struct{}{}
		roleIDs = append(roleIDs, uint64(id))
	}

	if err := h.db.Model().Setting().UpsertRoles(ctx, guildID, roleIDs); err != nil {
		if errors.Is(err, types.ErrNoRolesSelected) {
			h.respond(event, views.ErrorEmbed("Select at least one role to ping."))
			return
		}

		h.storeError(event, "save the alert roles", err)

		return
	}

	h.respond(event, views.SuccessEmbed(fmt.Sprintf("Alerts will ping %s.", roleMentions(roleIDs))))
}

// HandleThresholdSet stores the inactivity threshold for the guild.
func (h *Handler) HandleThresholdSet(ctx context.Context, event *events.ApplicationCommandInteractionCreate) {
	if !h.requireManageGuild(event) {
		return
	}

	guildID := uint64(*event.GuildID())
	days := event.SlashCommandInteractionData().Int("days")

	if err := h.db.Model().Setting().UpsertThreshold(ctx, guildID, days); err != nil {
		if errors.Is(err, types.ErrThresholdOutOfRange) {
			h.respond(event, views.ErrorEmbed(fmt.Sprintf(
				"The threshold must be between %d and %d days.",
				types.MinAlertThreshold, types.MaxAlertThreshold)))

			return
		}

		h.storeError(event, "save the threshold", err)

		return
	}

	h.respond(event, views.SuccessEmbed(fmt.Sprintf(
		"Members offline for **%d** days or more will be reported.", days)))
}

// HandleCheckSettings shows the guild's current configuration. A guild with
// nothing configured gets the setup walkthrough instead of an error.
func (h *Handler) HandleCheckSettings(ctx context.Context, event *events.ApplicationCommandInteractionCreate) {
	guildID := uint64(*event.GuildID())

	settings, err := h.db.Model().Setting().Get(ctx, guildID)
	if err != nil && !errors.Is(err, models.ErrSettingsNotFound) {
		h.storeError(event, "load the settings", err)
		return
	}

	embed := views.NewEmbed("Activity Settings", views.InfoEmbedColor)

	switch {
	case settings == nil:
		embed.SetDescription("This server has no activity tracking configured yet.")
	case !settings.Configured():
		embed.SetDescription("Tracking is recording activity, but alerts are incomplete.")
	default:
		embed.SetDescription("Daily inactivity alerts are active.")
	}

	embed.AddField("Alert Channel", channelField(settings), true)
	embed.AddField("Alert Roles", rolesField(settings), true)
	embed.AddField("Threshold", thresholdField(settings), true)
	embed.AddField("Setup", strings.Join([]string{
		"`/channelset` — where alerts are posted",
		"`/roleset` — who gets pinged",
		"`/thresholdset` — how many offline days trigger an alert",
	}, "\n"), false)

	h.respond(event, embed.Build())
}

// HandlePurgeActivity deletes the guild's activity rows older than the given
// number of days.
func (h *Handler) HandlePurgeActivity(ctx context.Context, event *events.ApplicationCommandInteractionCreate) {
	if !h.requireManageGuild(event) {
		return
	}

	guildID := uint64(*event.GuildID())
	days := event.SlashCommandInteractionData().Int("days")
	cutoff := tracker.Day(time.Now()).AddDate(0, 0, -days)

	purged, err := h.db.Model().Activity().PurgeOlderThan(ctx, guildID, cutoff)
	if err != nil {
		h.storeError(event, "purge activity records", err)
		return
	}

	h.respond(event, views.SuccessEmbed(fmt.Sprintf(
		"Removed **%d** activity records last active before %s.",
		purged, cutoff.Format("2006-01-02"))))
}

// requireManageGuild rejects callers without the Manage Server permission.
func (h *Handler) requireManageGuild(event *events.ApplicationCommandInteractionCreate) bool {
	if event.Member().Permissions.Has(discord.PermissionManageGuild) {
		return true
	}

	h.respond(event, views.ErrorEmbed("You need the **Manage Server** permission to use this command."))

	return false
}

func (h *Handler) respond(event *events.ApplicationCommandInteractionCreate, embed discord.Embed) {
	if err := event.CreateMessage(discord.NewMessageCreateBuilder().
		SetEmbeds(embed).
		Build()); err != nil {
		h.logger.Error("Failed to respond to command",
			zap.String("command", event.SlashCommandInteractionData().CommandName()),
			zap.Error(err))
	}
}

// storeError logs the database failure and shows the user a generic message;
// the detail stays in the logs.
func (h *Handler) storeError(event *events.ApplicationCommandInteractionCreate, action string, err error) {
	h.logger.Error("Settings command failed",
		zap.String("command", event.SlashCommandInteractionData().CommandName()),
		zap.Error(err))
	h.respond(event, views.ErrorEmbed(fmt.Sprintf("Could not %s. Please try again later.", action)))
}

func channelField(settings *types.GuildSettings) string {
	if settings == nil || settings.ReportChannelID == 0 {
		return "Not set"
	}

	return fmt.Sprintf("<#%d>", settings.ReportChannelID)
}

func rolesField(settings *types.GuildSettings) string {
	if settings == nil || len(settings.RoleIDs) == 0 {
		return "Not set"
	}

	return roleMentions(settings.RoleIDs)
}

func thresholdField(settings *types.GuildSettings) string {
	if settings == nil {
		return fmt.Sprintf("%d days (default)", config.DefaultAlertThreshold)
	}

	return fmt.Sprintf("%d days", settings.AlertThreshold)
}

func roleMentions(roleIDs []uint64) string {
	mentions := make([]string, len(roleIDs))
	for i, id := range roleIDs {
		mentions[i] = fmt.Sprintf("<@&%d>", id)
	}

	return strings.Join(mentions, " ")
}

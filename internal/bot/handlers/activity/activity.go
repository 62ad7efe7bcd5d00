// Package activity implements the member listing and personal stats commands.
package activity

import (
	"context"
	"fmt"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/vigilo-bot/vigilo/internal/bot/pagination"
	"github.com/vigilo-bot/vigilo/internal/bot/views"
	"github.com/vigilo-bot/vigilo/internal/tracker"
	"go.uber.org/zap"
)

// Handler processes the read-only activity commands.
type Handler struct {
	engine *tracker.Engine
	pages  *pagination.Manager
	logger *zap.Logger
}

// New creates an activity handler.
func New(engine *tracker.Engine, pages *pagination.Manager, logger *zap.Logger) *Handler {
	return &Handler{
		engine: engine,
		pages:  pages,
		logger: logger.Named("activity"),
	}
}

// HandleListInactive posts the paginated listing of members without activity
// today.
func (h *Handler) HandleListInactive(ctx context.Context, event *events.ApplicationCommandInteractionCreate) {
	h.handleListing(ctx, event, "Inactive Today", h.engine.InactiveToday)
}

// HandleListActive posts the paginated listing of members with activity today.
func (h *Handler) HandleListActive(ctx context.Context, event *events.ApplicationCommandInteractionCreate) {
	h.handleListing(ctx, event, "Active Today", h.engine.ActiveToday)
}

func (h *Handler) handleListing(
	ctx context.Context,
	event *events.ApplicationCommandInteractionCreate,
	title string,
	query func(ctx context.Context, guildID uint64, today time.Time) ([]tracker.Member, error),
) {
	// Chunked member caches can make this slow on large guilds, so the
	// response is deferred before any work happens.
	if err := event.DeferCreateMessage(false); err != nil {
		h.logger.Error("Failed to defer listing response", zap.Error(err))
		return
	}

	guildID := uint64(*event.GuildID())

	members, err := query(ctx, guildID, time.Now())
	if err != nil {
		h.logger.Error("Failed to build member listing",
			zap.Uint64("guildID", guildID),
			zap.String("listing", title),
			zap.Error(err))
		h.updateWithEmbed(event, views.ErrorEmbed("Could not load the member listing. Please try again later."), nil)

		return
	}

	lines := make([]string, len(members))
	for i, member := range members {
		lines[i] = fmt.Sprintf("• %s (<@%d>)", member.DisplayName, member.UserID)
	}

	session := pagination.NewSession(event.User().ID, title, lines)

	msg := h.updateWithEmbed(event, session.Embed(0), session.Components(0, false))
	if msg != nil {
		h.pages.Track(msg.ID, session)
	}
}

// HandleMyStats shows the caller's own counters.
func (h *Handler) HandleMyStats(ctx context.Context, event *events.ApplicationCommandInteractionCreate) {
	guildID := uint64(*event.GuildID())
	userID := uint64(event.User().ID)

	counters, err := h.engine.MemberCounters(ctx, guildID, userID, time.Now())
	if err != nil {
		h.logger.Error("Failed to load member counters",
			zap.Uint64("guildID", guildID),
			zap.Uint64("userID", userID),
			zap.Error(err))
		h.respond(event, views.ErrorEmbed("Could not load your stats. Please try again later."))

		return
	}

	if counters.NeverActive {
		h.respond(event, views.NewEmbed("Your Activity", views.InfoEmbedColor).
			SetDescription("No activity recorded for you yet. Send a message and check back tomorrow.").
			Build())

		return
	}

	today := "No"
	if counters.ActiveToday {
		today = "Yes"
	}

	h.respond(event, views.NewEmbed("Your Activity", views.InfoEmbedColor).
		AddField("Active Today", today, true).
		AddField("Current Offline Streak", fmt.Sprintf("%d days", counters.CurrentStreak), true).
		AddField("Last Active", counters.LastActiveDate.Format("2006-01-02"), true).
		AddField("This Week", fmt.Sprintf("%d online / %d offline", counters.WeekOnline, counters.WeekOffline), true).
		AddField("All Time", fmt.Sprintf("%d online / %d offline", counters.TotalOnline, counters.TotalOffline), true).
		Build())
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

// updateWithEmbed edits the deferred response and returns the resulting
// message so pagination can key off its ID.
func (h *Handler) updateWithEmbed(
	event *events.ApplicationCommandInteractionCreate,
	embed discord.Embed,
	components discord.ContainerComponent,
) *discord.Message {
	builder := discord.NewMessageUpdateBuilder().SetEmbeds(embed)
	if components != nil {
		builder.SetContainerComponents(components)
	}

	msg, err := event.Client().Rest().UpdateInteractionResponse(event.ApplicationID(), event.Token(), builder.Build())
	if err != nil {
		h.logger.Error("Failed to edit deferred response", zap.Error(err))
		return nil
	}

	return msg
}

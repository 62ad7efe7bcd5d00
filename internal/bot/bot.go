// Package bot wires the Discord gateway client to the command handlers and
// the message recorder.
package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/disgoorg/disgo"
	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/cache"
	"github.com/disgoorg/disgo/discord"
	disgoevents "github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/gateway"
	"github.com/disgoorg/json"
	"go.uber.org/zap"

	"github.com/vigilo-bot/vigilo/internal/bot/constants"
	"github.com/vigilo-bot/vigilo/internal/bot/events"
	"github.com/vigilo-bot/vigilo/internal/bot/handlers/activity"
	"github.com/vigilo-bot/vigilo/internal/bot/handlers/settings"
	"github.com/vigilo-bot/vigilo/internal/bot/members"
	"github.com/vigilo-bot/vigilo/internal/bot/pagination"
	"github.com/vigilo-bot/vigilo/internal/bot/views"
	"github.com/vigilo-bot/vigilo/internal/database"
	"github.com/vigilo-bot/vigilo/internal/database/types"
	"github.com/vigilo-bot/vigilo/internal/tracker"
)

// commandHandler processes one slash command.
type commandHandler func(ctx context.Context, event *disgoevents.ApplicationCommandInteractionCreate)

// Bot owns the gateway client and routes its events to the handlers.
type Bot struct {
	db       database.Client
	client   bot.Client
	logger   *zap.Logger
	recorder *events.Recorder
	pages    *pagination.Manager
	commands map[string]commandHandler
}

// New builds the bot: gateway client with member chunking, the recorder, the
// query engine over the member cache and the command handlers.
func New(token string, db database.Client, logger *zap.Logger) (*Bot, error) {
	b := &Bot{
		db:       db,
		logger:   logger.Named("bot"),
		recorder: events.NewRecorder(db, logger),
		pages:    pagination.NewManager(logger),
	}

	client, err := disgo.New(token,
		bot.WithGatewayConfigOpts(
			gateway.WithIntents(
				gateway.IntentGuilds,
				gateway.IntentGuildMessages,
				gateway.IntentGuildMembers,
			),
		),
		bot.WithCacheConfigOpts(
			cache.WithCaches(cache.FlagGuilds|cache.FlagMembers),
		),
		// Listings diff the full member list against the store, so every
		// guild gets chunked into the cache on connect.
		bot.WithMemberChunkingFilter(bot.MemberChunkingFilterAll),
		bot.WithEventListeners(&disgoevents.ListenerAdapter{
			OnGuildMessageCreate:            b.recorder.OnGuildMessage,
			OnApplicationCommandInteraction: b.handleApplicationCommandInteraction,
			OnComponentInteraction:          b.handleComponentInteraction,
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord client: %w", err)
	}

	b.client = client

	engine := tracker.NewEngine(db.Model().Activity(), members.NewCacheSource(client), logger)
	settingsHandler := settings.New(db, logger)
	activityHandler := activity.New(engine, b.pages, logger)

	b.commands = map[string]commandHandler{
		constants.ChannelSetCommandName:    settingsHandler.HandleChannelSet,
		constants.RoleSetCommandName:       settingsHandler.HandleRoleSet,
		constants.ThresholdSetCommandName:  settingsHandler.HandleThresholdSet,
		constants.CheckSettingsCommandName: settingsHandler.HandleCheckSettings,
		constants.PurgeActivityCommandName: settingsHandler.HandlePurgeActivity,
		constants.ListInactiveCommandName:  activityHandler.HandleListInactive,
		constants.ListActiveCommandName:    activityHandler.HandleListActive,
		constants.MyStatsCommandName:       activityHandler.HandleMyStats,
	}

	return b, nil
}

// Start registers the slash commands globally and opens the gateway.
func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("Registering commands")

	if _, err := b.client.Rest().SetGlobalCommands(b.client.ApplicationID(), commandDefinitions()); err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}

	b.logger.Info("Starting bot")

	return b.client.OpenGateway(ctx)
}

// Close gracefully shuts down the gateway connection.
func (b *Bot) Close() {
	b.logger.Info("Closing bot")
	b.client.Close(context.Background())
}

// handleApplicationCommandInteraction routes slash commands to their handler
// in a goroutine so slow listings never block the gateway loop.
func (b *Bot) handleApplicationCommandInteraction(event *disgoevents.ApplicationCommandInteractionCreate) {
	if event.GuildID() == nil {
		b.respondError(event, "Activity tracking only works inside a server.")
		return
	}

	name := event.SlashCommandInteractionData().CommandName()

	handler, ok := b.commands[name]
	if !ok {
		b.respondError(event, "This command is not available.")
		return
	}

	go func() {
		start := time.Now()

		defer func() {
			if r := recover(); r != nil {
				b.logger.Error("Panic in command handler",
					zap.String("command", name),
					zap.Any("panic", r))
			}

			b.logger.Debug("Command handled",
				zap.String("command", name),
				zap.Duration("duration", time.Since(start)))
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		handler(ctx, event)
	}()
}

// handleComponentInteraction forwards pagination button presses.
func (b *Bot) handleComponentInteraction(event *disgoevents.ComponentInteractionCreate) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				b.logger.Error("Panic in component handler", zap.Any("panic", r))
			}
		}()

		if !b.pages.Handle(event) {
			b.logger.Debug("Ignoring unknown component interaction",
				zap.String("customID", event.Data.CustomID()))
		}
	}()
}

func (b *Bot) respondError(event *disgoevents.ApplicationCommandInteractionCreate, text string) {
	if err := event.CreateMessage(discord.NewMessageCreateBuilder().
		SetEmbeds(views.ErrorEmbed(text)).
		SetEphemeral(true).
		Build()); err != nil {
		b.logger.Error("Failed to send command error", zap.Error(err))
	}
}

// commandDefinitions returns the global slash command set, validated at the
// option level so handlers mostly see in-range values.
func commandDefinitions() []discord.ApplicationCommandCreate {
	roleOptions := make([]discord.ApplicationCommandOption, 0, constants.MaxAlertRoles)

	for i := 1; i <= constants.MaxAlertRoles; i++ {
		roleOptions = append(roleOptions, discord.ApplicationCommandOptionRole{
			Name:        fmt.Sprintf("role%d", i),
			Description: fmt.Sprintf("Role to ping (#%d)", i),
			Required:    i == 1,
		})
	}

	return []discord.ApplicationCommandCreate{
		discord.SlashCommandCreate{
			Name:        constants.ChannelSetCommandName,
			Description: "Set the channel where daily inactivity alerts are posted",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionChannel{
					Name:         "channel",
					Description:  "Text channel for alerts",
					Required:     true,
					ChannelTypes: []discord.ChannelType{discord.ChannelTypeGuildText},
				},
			},
		},
		discord.SlashCommandCreate{
			Name:        constants.RoleSetCommandName,
			Description: "Choose the roles pinged by inactivity alerts",
			Options:     roleOptions,
		},
		discord.SlashCommandCreate{
			Name:        constants.ThresholdSetCommandName,
			Description: "Set how many offline days put a member on the alert",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionInt{
					Name:        "days",
					Description: "Offline days before a member is reported",
					Required:    true,
					MinValue:    json.Ptr(types.MinAlertThreshold),
					MaxValue:    json.Ptr(types.MaxAlertThreshold),
				},
			},
		},
		discord.SlashCommandCreate{
			Name:        constants.CheckSettingsCommandName,
			Description: "Show the current activity tracking configuration",
		},
		discord.SlashCommandCreate{
			Name:        constants.ListInactiveCommandName,
			Description: "List members with no recorded activity today",
		},
		discord.SlashCommandCreate{
			Name:        constants.ListActiveCommandName,
			Description: "List members with recorded activity today",
		},
		discord.SlashCommandCreate{
			Name:        constants.MyStatsCommandName,
			Description: "Show your own activity counters",
		},
		discord.SlashCommandCreate{
			Name:        constants.PurgeActivityCommandName,
			Description: "Delete activity records older than a number of days",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionInt{
					Name:        "days",
					Description: "Remove records last active before this many days ago",
					Required:    true,
					MinValue:    json.Ptr(constants.MinPurgeDays),
					MaxValue:    json.Ptr(constants.MaxPurgeDays),
				},
			},
		},
	}
}

// Package alert implements the daily inactivity scan: once per UTC day it
// visits every configured guild, finds members over the alert threshold and
// posts a ranked report to the guild's alert channel.
package alert

import (
	"context"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sourcegraph/conc/pool"
	"github.com/vigilo-bot/vigilo/internal/database"
	"github.com/vigilo-bot/vigilo/internal/database/types"
	"github.com/vigilo-bot/vigilo/internal/setup"
	"github.com/vigilo-bot/vigilo/internal/tracker"
	"github.com/vigilo-bot/vigilo/internal/worker/core"
	"go.uber.org/zap"
)

// Worker runs the daily inactivity report scan.
type Worker struct {
	db              database.Client
	rest            rest.Rest
	reporter        *core.StatusReporter
	gate            DayGate
	logger          *zap.Logger
	pollInterval    time.Duration
	reportSize      int
	scanConcurrency int
}

// New creates a new alert worker.
func New(app *setup.App, logger *zap.Logger) *Worker {
	return &Worker{
		db:              app.DB,
		rest:            rest.New(rest.NewClient(app.Config.Bot.Discord.Token)),
		reporter:        core.NewStatusReporter(app.StatusClient, "alert", logger),
		logger:          logger,
		pollInterval:    time.Duration(app.Config.Worker.AlertPollInterval) * time.Minute,
		reportSize:      app.Config.Worker.ReportSize,
		scanConcurrency: app.Config.Worker.ScanConcurrency,
	}
}

// Start begins the alert worker's main loop. It polls on a short interval
// and lets the day gate decide when the single daily scan fires.
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info("Alert worker started", zap.String("workerID", w.reporter.GetWorkerID()))
	w.reporter.Start(ctx)

	defer w.reporter.Stop()

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		if w.gate.ShouldRun(time.Now()) {
			w.runScan(ctx, tracker.Day(time.Now()))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// runScan visits every configured guild once. Guild failures are contained
// to their own iteration so one bad guild never blocks the rest.
func (w *Worker) runScan(ctx context.Context, today time.Time) {
	w.reporter.SetHealthy(true)
	w.reporter.UpdateStatus("Scanning guilds")

	guilds, err := w.db.Model().Setting().GetConfigured(ctx)
	if err != nil {
		w.logger.Error("Failed to load configured guilds", zap.Error(err))
		w.reporter.SetHealthy(false)

		return
	}

	scans := pool.New().WithMaxGoroutines(w.scanConcurrency)

	for _, settings := range guilds {
		scans.Go(func() {
			w.scanGuild(ctx, settings, today)
		})
	}

	scans.Wait()

	w.reporter.UpdateStatus("Completed")
	w.logger.Info("Daily inactivity scan completed",
		zap.Time("day", today),
		zap.Int("guilds", len(guilds)))
}

// scanGuild computes the inactivity report for one guild and posts it.
// An empty report, an unreachable guild and a deleted channel are all
// silent skips, not errors.
func (w *Worker) scanGuild(ctx context.Context, settings *types.GuildSettings, today time.Time) {
	guildID := snowflake.ID(settings.GuildID)

	entries, err := w.db.Model().Activity().GetInactiveAsOf(ctx, settings.GuildID, settings.AlertThreshold, today)
	if err != nil {
		w.logger.Error("Failed to scan guild for inactive members",
			zap.Uint64("guildID", settings.GuildID),
			zap.Error(err))
		w.reporter.SetHealthy(false)

		return
	}

	if len(entries) == 0 {
		return
	}

	if _, err := w.rest.GetGuild(guildID, false); err != nil {
		w.logger.Debug("Skipping unreachable guild",
			zap.Uint64("guildID", settings.GuildID),
			zap.Error(err))

		return
	}

	// Resolve the top entries to current members; anyone who left the guild
	// is dropped from the listing silently.
	resolved := make([]Entry, 0, w.reportSize)

	for _, entry := range entries {
		if len(resolved) == w.reportSize {
			break
		}

		if _, err := w.rest.GetMember(guildID, snowflake.ID(entry.UserID)); err != nil {
			continue
		}

		resolved = append(resolved, Entry{UserID: entry.UserID, Streak: entry.Streak})
	}

	embed := BuildReport(resolved, len(entries), settings.AlertThreshold, w.reportSize, today)

	_, err = w.rest.CreateMessage(snowflake.ID(settings.ReportChannelID), discord.NewMessageCreateBuilder().
		SetContent(FormatPing(settings.RoleIDs)).
		SetEmbeds(embed).
		SetAllowedMentions(&discord.AllowedMentions{
			Parse: []discord.AllowedMentionType{
				discord.AllowedMentionTypeRoles,
				discord.AllowedMentionTypeEveryone,
			},
		}).
		Build())
	if err != nil {
		// Usually a deleted channel or missing permission; the guild keeps
		// its settings and the scan moves on.
		w.logger.Warn("Failed to deliver inactivity report",
			zap.Uint64("guildID", settings.GuildID),
			zap.Uint64("channelID", settings.ReportChannelID),
			zap.Error(err))

		return
	}

	w.logger.Info("Delivered inactivity report",
		zap.Uint64("guildID", settings.GuildID),
		zap.Int("listed", len(resolved)),
		zap.Int("total", len(entries)))
}

// Package maintenance implements periodic cleanup of stale activity rows.
package maintenance

import (
	"context"
	"time"

	"github.com/vigilo-bot/vigilo/internal/database"
	"github.com/vigilo-bot/vigilo/internal/setup"
	"github.com/vigilo-bot/vigilo/internal/tracker"
	"github.com/vigilo-bot/vigilo/internal/worker/core"
	"go.uber.org/zap"
)

// PurgeInterval is how often the retention purge runs.
const PurgeInterval = 24 * time.Hour

// Worker removes activity rows whose last active date is beyond the
// configured retention window.
type Worker struct {
	db            database.Client
	reporter      *core.StatusReporter
	logger        *zap.Logger
	retentionDays int
}

// New creates a new maintenance worker.
func New(app *setup.App, logger *zap.Logger) *Worker {
	return &Worker{
		db:            app.DB,
		reporter:      core.NewStatusReporter(app.StatusClient, "maintenance", logger),
		logger:        logger,
		retentionDays: app.Config.Worker.RetentionDays,
	}
}

// Start begins the maintenance worker's main loop. A purge runs immediately
// on startup and then once per interval.
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info("Maintenance worker started", zap.String("workerID", w.reporter.GetWorkerID()))
	w.reporter.Start(ctx)

	defer w.reporter.Stop()

	ticker := time.NewTicker(PurgeInterval)
	defer ticker.Stop()

	for {
		w.purge(ctx)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// purge deletes rows last active before the retention cutoff across all
// guilds. Failures are logged and retried on the next interval.
func (w *Worker) purge(ctx context.Context) {
	w.reporter.SetHealthy(true)
	w.reporter.UpdateStatus("Purging stale activity")

	cutoff := tracker.Day(time.Now()).AddDate(0, 0, -w.retentionDays)

	purged, err := w.db.Model().Activity().PurgeOlderThan(ctx, 0, cutoff)
	if err != nil {
		w.logger.Error("Failed to purge stale activity rows", zap.Error(err))
		w.reporter.SetHealthy(false)

		return
	}

	w.reporter.UpdateStatus("Completed")

	if purged > 0 {
		w.logger.Info("Purged stale activity rows",
			zap.Int("rows", purged),
			zap.Time("cutoff", cutoff))
	}
}

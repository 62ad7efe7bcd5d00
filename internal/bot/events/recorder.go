// Package events records qualifying guild messages into the activity store.
package events

import (
	"context"

	"github.com/disgoorg/disgo/events"
	"github.com/vigilo-bot/vigilo/internal/database"
	"github.com/vigilo-bot/vigilo/internal/tracker"
	"go.uber.org/zap"
)

// Recorder turns guild message events into daily activity upserts.
type Recorder struct {
	db     database.Client
	logger *zap.Logger
}

// NewRecorder creates a message recorder.
func NewRecorder(db database.Client, logger *zap.Logger) *Recorder {
	return &Recorder{
		db:     db,
		logger: logger.Named("recorder"),
	}
}

// OnGuildMessage records the author's activity for the message's UTC day.
// Bots, webhooks and system messages never count as activity. A failed write
// is logged and dropped; the next message from the member retries naturally.
func (r *Recorder) OnGuildMessage(event *events.GuildMessageCreate) {
	message := event.Message

	if message.Author.Bot || message.Author.System || message.WebhookID != nil {
		return
	}

	day := tracker.Day(message.CreatedAt)

	err := r.db.Model().Activity().Upsert(context.Background(), uint64(event.GuildID), uint64(message.Author.ID), day)
	if err != nil {
		r.logger.Error("Failed to record message activity",
			zap.Uint64("guildID", uint64(event.GuildID)),
			zap.Uint64("userID", uint64(message.Author.ID)),
			zap.Error(err))
	}
}

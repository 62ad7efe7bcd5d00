// Package views builds the embeds shared by the command handlers and the
// daily report worker.
package views

import (
	"time"

	"github.com/disgoorg/disgo/discord"
)

// Embed colors used across the bot.
const (
	DefaultEmbedColor = 0x5865F2
	ErrorEmbedColor   = 0xED4245
	SuccessEmbedColor = 0x57F287
	InfoEmbedColor    = 0x3498DB
)

const embedFooter = "Activity Tracker • Real messages only"

// NewEmbed returns an embed builder with the bot's shared visual language
// applied: decorated title, timestamp and footer.
func NewEmbed(title string, color int) *discord.EmbedBuilder {
	return discord.NewEmbedBuilder().
		SetTitle("✦ " + title + " ✦").
		SetColor(color).
		SetTimestamp(time.Now().UTC()).
		SetFooterText(embedFooter)
}

// ErrorEmbed builds the standard user-visible failure embed.
func ErrorEmbed(text string) discord.Embed {
	return NewEmbed("Error", ErrorEmbedColor).
		SetDescription("❌ " + text).
		Build()
}

// SuccessEmbed builds the standard confirmation embed.
func SuccessEmbed(text string) discord.Embed {
	return NewEmbed("Success", SuccessEmbedColor).
		SetDescription("✅ " + text).
		Build()
}

package alert

import (
	"fmt"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/vigilo-bot/vigilo/internal/bot/views"
)

// Entry is one resolved line of an inactivity report.
type Entry struct {
	UserID uint64
	Streak int
}

// FormatPing renders the role mentions for a report, falling back to a
// guild-wide mention when no roles are configured.
func FormatPing(roleIDs []uint64) string {
	if len(roleIDs) == 0 {
		return "@here"
	}

	mentions := make([]string, len(roleIDs))
	for i, id := range roleIDs {
		mentions[i] = fmt.Sprintf("<@&%d>", id)
	}

	return strings.Join(mentions, " ")
}

// FormatLines renders up to limit report entries and returns how many were
// truncated away.
func FormatLines(entries []Entry, limit int) ([]string, int) {
	shown := entries
	if len(shown) > limit {
		shown = shown[:limit]
	}

	lines := make([]string, len(shown))
	for i, entry := range shown {
		lines[i] = fmt.Sprintf("• <@%d> — **%d** days", entry.UserID, entry.Streak)
	}

	return lines, len(entries) - len(shown)
}

// BuildReport assembles the daily report embed for one guild. Total is the
// full count of members over the threshold, including any truncated from the
// listing.
func BuildReport(entries []Entry, total, threshold, limit int, today time.Time) discord.Embed {
	lines, _ := FormatLines(entries, limit)
	more := total - len(lines)

	body := strings.Join(lines, "\n")
	if body == "" {
		body = "None"
	}

	builder := views.NewEmbed("Long-term Inactive Members", views.ErrorEmbedColor).
		SetDescription(fmt.Sprintf("**%d+ consecutive days** offline • %s",
			threshold, today.Format("2006-01-02"))).
		AddField(fmt.Sprintf("Members (%d total)", total), body, false)

	if more > 0 {
		builder.AddField("Note", fmt.Sprintf("...and %d more", more), false)
	}

	return builder.Build()
}

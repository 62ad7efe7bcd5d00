package alert

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatPing(t *testing.T) {
	tests := []struct {
		name     string
		roleIDs  []uint64
		expected string
	}{
		{
			name:     "no roles falls back to here mention",
			roleIDs:  nil,
			expected: "@here",
		},
		{
			name:     "single role",
			roleIDs:  []uint64{42},
			expected: "<@&42>",
		},
		{
			name:     "multiple roles keep their order",
			roleIDs:  []uint64{42, 7, 300},
			expected: "<@&42> <@&7> <@&300>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatPing(tt.roleIDs))
		})
	}
}

func TestFormatLines(t *testing.T) {
	entries := []Entry{
		{UserID: 1, Streak: 30},
		{UserID: 2, Streak: 20},
		{UserID: 3, Streak: 15},
	}

	t.Run("under the limit renders everything", func(t *testing.T) {
		lines, more := FormatLines(entries, 12)
		require.Len(t, lines, 3)
		assert.Equal(t, "• <@1> — **30** days", lines[0])
		assert.Zero(t, more)
	})

	t.Run("over the limit truncates and counts the rest", func(t *testing.T) {
		lines, more := FormatLines(entries, 2)
		require.Len(t, lines, 2)
		assert.Equal(t, "• <@2> — **20** days", lines[1])
		assert.Equal(t, 1, more)
	})

	t.Run("empty input renders nothing", func(t *testing.T) {
		lines, more := FormatLines(nil, 12)
		assert.Empty(t, lines)
		assert.Zero(t, more)
	})
}

func TestBuildReport(t *testing.T) {
	today := time.Date(2025, time.March, 14, 0, 0, 0, 0, time.UTC)

	t.Run("includes threshold, date and total", func(t *testing.T) {
		embed := BuildReport([]Entry{{UserID: 1, Streak: 15}}, 1, 12, 12, today)

		assert.Contains(t, embed.Description, "12+ consecutive days")
		assert.Contains(t, embed.Description, "2025-03-14")
		require.Len(t, embed.Fields, 1)
		assert.Equal(t, "Members (1 total)", embed.Fields[0].Name)
		assert.Contains(t, embed.Fields[0].Value, "<@1>")
		assert.Contains(t, embed.Fields[0].Value, "**15** days")
	})

	t.Run("truncation adds a note field", func(t *testing.T) {
		entries := make([]Entry, 15)
		for i := range entries {
			entries[i] = Entry{UserID: uint64(i + 1), Streak: 30 - i}
		}

		embed := BuildReport(entries, 15, 12, 12, today)

		require.Len(t, embed.Fields, 2)
		assert.Equal(t, "Members (15 total)", embed.Fields[0].Name)
		assert.Equal(t, "Note", embed.Fields[1].Name)
		assert.Equal(t, "...and 3 more", embed.Fields[1].Value)
	})

	t.Run("no resolvable entries still renders a body", func(t *testing.T) {
		embed := BuildReport(nil, 3, 12, 12, today)

		require.Len(t, embed.Fields, 2)
		assert.Equal(t, "None", embed.Fields[0].Value)
		assert.Equal(t, "...and 3 more", embed.Fields[1].Value)
	})
}

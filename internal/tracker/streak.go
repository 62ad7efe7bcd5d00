// Package tracker implements the read side of the activity ledger: streak
// arithmetic and the queries behind the listing commands and the daily scan.
//
// The persisted offline_streak is only a baseline accumulated at write time.
// Every displayed streak is recomputed here as baseline plus the days elapsed
// since the last recorded activity, so values stay accurate between writes
// without continuous background updates.
package tracker

import (
	"time"

	"github.com/vigilo-bot/vigilo/internal/database/types"
)

// Day truncates t to its UTC calendar day. All ledger dates use the UTC day
// boundary regardless of the guild's informational timezone setting.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// WeekStartOf returns the UTC Monday of the week containing t. Week counters
// bucket by this date.
func WeekStartOf(t time.Time) time.Time {
	day := Day(t)

	// time.Weekday puts Sunday at 0; shift so Monday is the bucket key
	offset := (int(day.Weekday()) + 6) % 7

	return day.AddDate(0, 0, -offset)
}

// DaysBetween returns the number of whole calendar days from one date to
// another. Negative when to precedes from.
func DaysBetween(from, to time.Time) int {
	return int(Day(to).Sub(Day(from)) / (24 * time.Hour))
}

// CurrentStreak returns the streak to display for a record as of today:
// the persisted baseline plus the days elapsed since the last active date.
func CurrentStreak(record *types.UserActivity, today time.Time) int {
	return record.OfflineStreak + DaysBetween(record.LastActiveDate, today)
}

// Advance applies a day of activity to a record in place, mirroring the
// store's conditional upsert transition exactly: a same-day or backward-dated
// event is a no-op (returns false), a consecutive-day event clears the streak
// baseline, and any larger gap adds exactly one regardless of the gap length.
// Week counters reset when the Monday bucket rolls over; lifetime counters
// only grow. The authoritative transition happens in SQL in a single round
// trip; this mirror is the executable form of that transition, used by the
// tests to cross-check the store.
func Advance(record *types.UserActivity, eventDate time.Time) bool {
	day := Day(eventDate)
	last := Day(record.LastActiveDate)

	if !day.After(last) {
		return false
	}

	gap := DaysBetween(last, day)

	if gap == 1 {
		record.OfflineStreak = 0
	} else {
		record.OfflineStreak++
	}

	week := WeekStartOf(day)
	if week.Equal(Day(record.WeekStart)) {
		record.OnlineDays++
		record.OfflineDays += gap - 1
	} else {
		record.OnlineDays = 1
		record.OfflineDays = 0
	}

	record.WeekStart = week
	record.TotalOnline++
	record.TotalOffline += gap - 1
	record.LastActiveDate = day

	return true
}

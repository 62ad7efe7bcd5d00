package types

import (
	"errors"
	"time"

	"github.com/uptrace/bun"
)

// ErrActivityNotFound is returned when a (guild, user) pair has never been
// recorded. Callers treat this as the distinct "never active" case rather
// than an empty streak.
var ErrActivityNotFound = errors.New("no activity recorded for user")

// UserActivity is the per-(guild, user) activity ledger row. LastActiveDate
// is day-granular (UTC midnight) and only ever moves forward. OfflineStreak
// is the streak baseline accumulated as of the last write, not a live value;
// the displayed streak is always recomputed at read time on top of it.
type UserActivity struct {
	bun.BaseModel `bun:"table:user_activity"`

	GuildID        uint64    `bun:"guild_id,pk"`
	UserID         uint64    `bun:"user_id,pk"`
	LastActiveDate time.Time `bun:"last_active_date,notnull,type:date"`
	OfflineStreak  int       `bun:"offline_streak,notnull,default:0"`

	// Rolling counters. Week counters bucket by the UTC Monday in WeekStart
	// and reset when the bucket rolls over; lifetime counters only grow.
	OnlineDays   int       `bun:"online_days,notnull,default:0"`
	OfflineDays  int       `bun:"offline_days,notnull,default:0"`
	WeekStart    time.Time `bun:"week_start,nullzero,type:date"`
	TotalOnline  int       `bun:"total_online,notnull,default:0"`
	TotalOffline int       `bun:"total_offline,notnull,default:0"`
}

// InactiveEntry is one row of the inactivity scan: a user together with
// their current streak computed as of the scan date.
type InactiveEntry struct {
	UserID uint64 `bun:"user_id"`
	Streak int    `bun:"current_streak"`
}

package tracker

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/vigilo-bot/vigilo/internal/database/types"
	"go.uber.org/zap"
)

// ActivityReader is the slice of the activity store the engine reads from.
type ActivityReader interface {
	Get(ctx context.Context, guildID, userID uint64) (*types.UserActivity, error)
	GetActiveOn(ctx context.Context, guildID uint64, date time.Time) (map[uint64]struct{}, error)
}

// Member is a guild member as seen by the listing queries.
type Member struct {
	UserID      uint64
	DisplayName string
}

// MemberSource resolves the current non-bot members of a guild. The bot
// backs this with its gateway member cache.
type MemberSource interface {
	GuildMembers(guildID uint64) []Member
}

// Counters is the per-user view returned to the stats command.
type Counters struct {
	NeverActive    bool
	ActiveToday    bool
	CurrentStreak  int
	LastActiveDate time.Time
	WeekOnline     int
	WeekOffline    int
	TotalOnline    int
	TotalOffline   int
}

// Engine answers the read-only activity queries used by the listing commands
// and the daily scan.
type Engine struct {
	store   ActivityReader
	members MemberSource
	logger  *zap.Logger
}

// NewEngine creates a query engine over the given store and member source.
func NewEngine(store ActivityReader, members MemberSource, logger *zap.Logger) *Engine {
	return &Engine{
		store:   store,
		members: members,
		logger:  logger.Named("tracker"),
	}
}

// InactiveToday returns the guild members without qualifying activity today,
// sorted case-insensitively by display name. Members who were never recorded
// at all count as inactive.
func (e *Engine) InactiveToday(ctx context.Context, guildID uint64, today time.Time) ([]Member, error) {
	return e.membersByActivity(ctx, guildID, today, false)
}

// ActiveToday returns the guild members with qualifying activity today,
// sorted case-insensitively by display name.
func (e *Engine) ActiveToday(ctx context.Context, guildID uint64, today time.Time) ([]Member, error) {
	return e.membersByActivity(ctx, guildID, today, true)
}

func (e *Engine) membersByActivity(
	ctx context.Context, guildID uint64, today time.Time, wantActive bool,
) ([]Member, error) {
	active, err := e.store.GetActiveOn(ctx, guildID, Day(today))
	if err != nil {
		return nil, fmt.Errorf("failed to load active set: %w", err)
	}

	var matched []Member

	for _, member := range e.members.GuildMembers(guildID) {
		if _, isActive := active[member.UserID]; isActive == wantActive {
			matched = append(matched, member)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return strings.ToLower(matched[i].DisplayName) < strings.ToLower(matched[j].DisplayName)
	})

	return matched, nil
}

// MemberCounters returns the today/week/lifetime counters for one member.
// A member who was never recorded gets a distinct NeverActive view instead
// of an error.
func (e *Engine) MemberCounters(
	ctx context.Context, guildID, userID uint64, today time.Time,
) (*Counters, error) {
	record, err := e.store.Get(ctx, guildID, userID)
	if err != nil {
		if errors.Is(err, types.ErrActivityNotFound) {
			return &Counters{NeverActive: true}, nil
		}

		return nil, fmt.Errorf("failed to load activity record: %w", err)
	}

	counters := &Counters{
		ActiveToday:    Day(today).Equal(Day(record.LastActiveDate)),
		CurrentStreak:  CurrentStreak(record, today),
		LastActiveDate: Day(record.LastActiveDate),
		TotalOnline:    record.TotalOnline,
		TotalOffline:   record.TotalOffline,
	}

	// Week counters are only meaningful inside the stored bucket; after a
	// rollover they read as zero until the next write resets them.
	if WeekStartOf(today).Equal(Day(record.WeekStart)) {
		counters.WeekOnline = record.OnlineDays
		counters.WeekOffline = record.OfflineDays
	}

	return counters, nil
}

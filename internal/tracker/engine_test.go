package tracker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vigilo-bot/vigilo/internal/database/types"
	"go.uber.org/zap"
)

type fakeStore struct {
	records map[uint64]*types.UserActivity
	active  map[uint64]struct{}
}

func (s *fakeStore) Get(_ context.Context, _, userID uint64) (*types.UserActivity, error) {
	record, ok := s.records[userID]
	if !ok {
		return nil, types.ErrActivityNotFound
	}

	return record, nil
}

func (s *fakeStore) GetActiveOn(_ context.Context, _ uint64, _ time.Time) (map[uint64]struct{}, error) {
	return s.active, nil
}

type fakeMembers struct {
	members []Member
}

func (m *fakeMembers) GuildMembers(_ uint64) []Member {
	return m.members
}

func newTestEngine(store *fakeStore, members *fakeMembers) *Engine {
	return NewEngine(store, members, zap.NewNop())
}

func TestInactiveToday(t *testing.T) {
	today := date(2025, time.March, 14)

	store := &fakeStore{
		active: map[uint64]struct{}{1: {}},
	}
	members := &fakeMembers{members: []Member{
		{UserID: 1, DisplayName: "Active Alice"},
		{UserID: 2, DisplayName: "zoe"},
		{UserID: 3, DisplayName: "Bob"},
		{UserID: 4, DisplayName: "anna"},
	}}

	engine := newTestEngine(store, members)

	inactive, err := engine.InactiveToday(context.Background(), 100, today)
	require.NoError(t, err)

	// The active member is excluded and the rest sort case-insensitively by
	// display name; user 4 was never recorded and still shows up.
	require.Len(t, inactive, 3)
	assert.Equal(t, uint64(4), inactive[0].UserID)
	assert.Equal(t, uint64(3), inactive[1].UserID)
	assert.Equal(t, uint64(2), inactive[2].UserID)
}

func TestActiveToday(t *testing.T) {
	today := date(2025, time.March, 14)

	store := &fakeStore{
		active: map[uint64]struct{}{1: {}, 2: {}, 99: {}},
	}
	members := &fakeMembers{members: []Member{
		{UserID: 1, DisplayName: "beta"},
		{UserID: 2, DisplayName: "Alpha"},
		{UserID: 3, DisplayName: "gamma"},
	}}

	engine := newTestEngine(store, members)

	active, err := engine.ActiveToday(context.Background(), 100, today)
	require.NoError(t, err)

	// User 99 is in the active set but no longer a member, so it is dropped
	require.Len(t, active, 2)
	assert.Equal(t, uint64(2), active[0].UserID)
	assert.Equal(t, uint64(1), active[1].UserID)
}

func TestMemberCounters(t *testing.T) {
	today := date(2025, time.March, 14) // a Friday; week bucket starts March 10

	tests := []struct {
		name     string
		record   *types.UserActivity
		expected Counters
	}{
		{
			name:     "never recorded member",
			record:   nil,
			expected: Counters{NeverActive: true},
		},
		{
			name: "active today within the current week",
			record: &types.UserActivity{
				LastActiveDate: date(2025, time.March, 14),
				OfflineStreak:  0,
				OnlineDays:     4,
				OfflineDays:    1,
				WeekStart:      date(2025, time.March, 10),
				TotalOnline:    40,
				TotalOffline:   8,
			},
			expected: Counters{
				ActiveToday:    true,
				CurrentStreak:  0,
				LastActiveDate: date(2025, time.March, 14),
				WeekOnline:     4,
				WeekOffline:    1,
				TotalOnline:    40,
				TotalOffline:   8,
			},
		},
		{
			name: "streak re-derives the elapsed gap",
			record: &types.UserActivity{
				LastActiveDate: date(2025, time.March, 10),
				OfflineStreak:  3,
				OnlineDays:     1,
				WeekStart:      date(2025, time.March, 10),
				TotalOnline:    10,
			},
			expected: Counters{
				CurrentStreak:  7,
				LastActiveDate: date(2025, time.March, 10),
				WeekOnline:     1,
				TotalOnline:    10,
			},
		},
		{
			name: "stale week bucket reads as zero",
			record: &types.UserActivity{
				LastActiveDate: date(2025, time.March, 2),
				OfflineStreak:  1,
				OnlineDays:     6,
				OfflineDays:    1,
				WeekStart:      date(2025, time.February, 24),
				TotalOnline:    30,
				TotalOffline:   2,
			},
			expected: Counters{
				CurrentStreak:  13,
				LastActiveDate: date(2025, time.March, 2),
				TotalOnline:    30,
				TotalOffline:   2,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{records: map[uint64]*types.UserActivity{}}
			if tt.record != nil {
				store.records[7] = tt.record
			}

			engine := newTestEngine(store, &fakeMembers{})

			counters, err := engine.MemberCounters(context.Background(), 100, 7, today)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, *counters)
		})
	}
}

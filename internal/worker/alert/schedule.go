package alert

import (
	"sync"
	"time"

	"github.com/vigilo-bot/vigilo/internal/tracker"
)

// DayGate debounces the daily scan to one run per UTC calendar day. It gates
// on the date itself rather than an hour-equality check, so a drifting poll
// interval can neither double-fire nor skip a day while the process is up.
// State is in-memory; after a restart the first poll of the day fires again,
// which is within the at-least-once delivery the report tolerates.
type DayGate struct {
	mu      sync.Mutex
	lastRun time.Time
}

// ShouldRun reports whether a scan should fire for now's calendar day and
// marks the day as consumed when it does.
func (g *DayGate) ShouldRun(now time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	today := tracker.Day(now)
	if today.Equal(g.lastRun) {
		return false
	}

	g.lastRun = today

	return true
}

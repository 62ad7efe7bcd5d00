package alert

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDayGate(t *testing.T) {
	var gate DayGate

	day := time.Date(2025, time.March, 14, 0, 5, 0, 0, time.UTC)

	assert.True(t, gate.ShouldRun(day), "first poll of the day fires")
	assert.False(t, gate.ShouldRun(day.Add(time.Hour)), "same day never fires twice")
	assert.False(t, gate.ShouldRun(day.Add(23*time.Hour)), "still the same UTC day")

	assert.True(t, gate.ShouldRun(day.AddDate(0, 0, 1)), "next day fires again")
	assert.False(t, gate.ShouldRun(day.AddDate(0, 0, 1).Add(time.Minute)))
}

func TestDayGateMissedDays(t *testing.T) {
	var gate DayGate

	assert.True(t, gate.ShouldRun(time.Date(2025, time.March, 14, 12, 0, 0, 0, time.UTC)))

	// A two day outage does not replay the missed day; only the current day
	// fires once.
	later := time.Date(2025, time.March, 17, 3, 0, 0, 0, time.UTC)
	assert.True(t, gate.ShouldRun(later))
	assert.False(t, gate.ShouldRun(later.Add(time.Hour)))
}

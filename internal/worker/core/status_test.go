package core_test

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/rueidis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vigilo-bot/vigilo/internal/worker/core"
	"go.uber.org/zap"
)

func setupTest(t *testing.T) *core.Monitor {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  []string{mr.Addr()},
		DisableCache: true,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})

	return core.NewMonitor(client, zap.NewNop())
}

func TestReportStatus(t *testing.T) {
	t.Parallel()

	monitor := setupTest(t)
	ctx := t.Context()

	err := monitor.ReportStatus(ctx, core.Status{
		WorkerID:    "worker-1",
		WorkerType:  "alert",
		CurrentTask: "Scanning guilds",
		IsHealthy:   true,
	})
	require.NoError(t, err)

	statuses, err := monitor.GetAllStatuses(ctx)
	require.NoError(t, err)
	require.Len(t, statuses, 1)

	assert.Equal(t, "worker-1", statuses[0].WorkerID)
	assert.Equal(t, "alert", statuses[0].WorkerType)
	assert.Equal(t, "Scanning guilds", statuses[0].CurrentTask)
	assert.True(t, statuses[0].IsHealthy)
	assert.False(t, statuses[0].LastSeen.IsZero())
}

func TestGetAllStatusesEmpty(t *testing.T) {
	t.Parallel()

	monitor := setupTest(t)

	statuses, err := monitor.GetAllStatuses(t.Context())
	require.NoError(t, err)
	assert.Empty(t, statuses)
}

func TestReportStatusOverwritesSameWorker(t *testing.T) {
	t.Parallel()

	monitor := setupTest(t)
	ctx := t.Context()

	require.NoError(t, monitor.ReportStatus(ctx, core.Status{
		WorkerID:    "worker-1",
		WorkerType:  "maintenance",
		CurrentTask: "Starting",
		IsHealthy:   true,
	}))
	require.NoError(t, monitor.ReportStatus(ctx, core.Status{
		WorkerID:    "worker-1",
		WorkerType:  "maintenance",
		CurrentTask: "Purging",
		IsHealthy:   true,
	}))

	statuses, err := monitor.GetAllStatuses(ctx)
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.Equal(t, "Purging", statuses[0].CurrentTask)
}

package tasks

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookcatalog/internal/database/maintenance"
)

func newTestClient(t *testing.T, pruner LinkPruner) *Client {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Workers = 1

	client, err := NewClient(filepath.Join(t.TempDir(), "catalog-tasks.db"), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	client.Register(NewPruneDanglingLinksQueue(pruner, nil))
	return client
}

func TestNewClient_CreatesQueueDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queue.db")

	client, err := NewClient(path, DefaultConfig(), nil)
	require.NoError(t, err)

	_, err = os.Stat(path)
	assert.NoError(t, err)
	assert.NoError(t, client.Close())
}

func TestClient_StopBeforeStart(t *testing.T) {
	client := newTestClient(t, &fakePruner{})

	assert.True(t, client.Stop(context.Background()))
}

func TestClient_EnqueueStaysPendingUntilStarted(t *testing.T) {
	client := newTestClient(t, &fakePruner{})

	id, err := client.Enqueue(PruneDanglingLinksTask{Trigger: "admin"})
	require.NoError(t, err)

	status, err := client.Status(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, backlite.TaskStatusPending, status)
}

func TestClient_EnqueuedPruneSucceeds(t *testing.T) {
	pruner := &fakePruner{report: maintenance.Report{BookCategories: 3}}
	client := newTestClient(t, pruner)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	client.Start(ctx)
	// A second Start is ignored.
	client.Start(ctx)

	id, err := client.Enqueue(PruneDanglingLinksTask{Trigger: "cron"})
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		status, err := client.Status(ctx, id)
		return err == nil && status == backlite.TaskStatusSuccess
	}, 5*time.Second, 25*time.Millisecond)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()
	assert.True(t, client.Stop(stopCtx))
}

func TestClient_StatusOfUnknownTask(t *testing.T) {
	client := newTestClient(t, &fakePruner{})

	status, err := client.Status(context.Background(), "no-such-task")

	require.NoError(t, err)
	assert.Equal(t, backlite.TaskStatusNotFound, status)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 5*time.Minute, cfg.TaskTimeout)
	assert.Equal(t, 24*time.Hour, cfg.RetentionDuration)
}

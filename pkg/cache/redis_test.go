package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/dukex/salesflow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupRedis(t *testing.T) *RedisStore {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping Redis container test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	endpoint, err := container.PortEndpoint(ctx, "6379/tcp", "")
	require.NoError(t, err)

	client, err := NewRedisClient(ctx, fmt.Sprintf("redis://%s/0", endpoint))
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = client.Close()
	})

	return NewRedisStore(client, time.Minute)
}

func TestRedisStore(t *testing.T) {
	store := setupRedis(t)
	ctx := t.Context()

	_, found, err := store.Get(ctx, 7, models.TriggerContactCreated)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Set(ctx, 7, models.TriggerContactCreated, 0, []*models.Workflow{activeWorkflow(1, 7)}))
	require.NoError(t, store.Set(ctx, 8, models.TriggerContactCreated, 0, []*models.Workflow{activeWorkflow(2, 8)}))

	workflows, found, err := store.Get(ctx, 7, models.TriggerContactCreated)
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, workflows, 1)
	assert.Equal(t, models.TriggerContactCreated, workflows[0].Trigger)
	require.Len(t, workflows[0].Actions, 1)
	assert.Equal(t, models.ActionKindChangeLeadStatus, workflows[0].Actions[0].Kind)
	assert.JSONEq(t, `{"NewLeadStatus":"Open"}`, workflows[0].Actions[0].ParametersJSON)

	require.NoError(t, store.InvalidateTenant(ctx, 7))

	_, found, err = store.Get(ctx, 7, models.TriggerContactCreated)
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = store.Get(ctx, 8, models.TriggerContactCreated)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestRedisStore_StaleGenerationIsDropped(t *testing.T) {
	store := setupRedis(t)
	ctx := t.Context()

	generation, err := store.Generation(ctx, 7)
	require.NoError(t, err)
	assert.Zero(t, generation)

	require.NoError(t, store.InvalidateTenant(ctx, 7))
	require.NoError(t, store.Set(ctx, 7, models.TriggerContactCreated, generation, []*models.Workflow{activeWorkflow(1, 7)}))

	_, found, err := store.Get(ctx, 7, models.TriggerContactCreated)
	require.NoError(t, err)
	assert.False(t, found)

	current, err := store.Generation(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), current)

	require.NoError(t, store.Set(ctx, 7, models.TriggerContactCreated, current, []*models.Workflow{activeWorkflow(1, 7)}))

	_, found, err = store.Get(ctx, 7, models.TriggerContactCreated)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestRedisStore_TTLIsSetOnce(t *testing.T) {
	store := setupRedis(t)
	ctx := t.Context()

	require.NoError(t, store.Set(ctx, 7, models.TriggerContactCreated, 0, []*models.Workflow{activeWorkflow(1, 7)}))

	first, err := store.client.PTTL(ctx, redisKey(7)).Result()
	require.NoError(t, err)
	require.Positive(t, first)

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, store.Set(ctx, 7, models.TriggerTaskCreated, 0, []*models.Workflow{}))

	second, err := store.client.PTTL(ctx, redisKey(7)).Result()
	require.NoError(t, err)
	assert.Less(t, second, first)
}

func TestNewRedisClient_InvalidURL(t *testing.T) {
	_, err := NewRedisClient(t.Context(), "not-a-url")
	require.Error(t, err)
}

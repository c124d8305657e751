package cmd

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dukex/salesflow/pkg/cache"
	"github.com/dukex/salesflow/pkg/config"
	"github.com/dukex/salesflow/pkg/events"
	"github.com/dukex/salesflow/pkg/models"
	"github.com/dukex/salesflow/pkg/persistence/file"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestParsePersistenceProvider(t *testing.T) {
	tests := []struct {
		url      string
		provider string
		location string
	}{
		{url: "file://./data", provider: "file", location: "./data"},
		{url: "/var/lib/salesflow", provider: "file", location: "/var/lib/salesflow"},
		{url: "postgres://u:p@db/salesflow", provider: "postgres", location: "u:p@db/salesflow"},
		{url: "mysql://db", provider: "mysql", location: "db"},
	}

	for _, tt := range tests {
		provider, location := parsePersistenceProvider(tt.url)
		assert.Equal(t, tt.provider, provider, tt.url)
		assert.Equal(t, tt.location, location, tt.url)
	}
}

func TestNewPersistence(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")

	p, err := NewPersistence(t.Context(), testLogger(), "file://"+dir)
	require.NoError(t, err)
	assert.IsType(t, &file.Persistence{}, p)

	_, err = NewPersistence(t.Context(), testLogger(), "mysql://db")
	require.Error(t, err)
}

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry(testLogger(), file.NewPersistence(t.TempDir()))

	assert.Equal(t, []models.ActionKind{
		models.ActionKindCreateTask,
		models.ActionKindChangeLeadStatus,
		models.ActionKindChangeLifeCycleStage,
	}, reg.Kinds())

	_, ok := reg.Executor(models.ActionKindSendEmail)
	assert.False(t, ok)
}

func TestNewEventBus(t *testing.T) {
	cfg := config.Default()

	bus, err := NewEventBus(cfg, testLogger())
	require.NoError(t, err)
	require.NoError(t, bus.Handle(events.ContactCreatedEvent, nil))
	require.NoError(t, bus.Close())

	cfg.EventBus = config.EventBusKafka
	_, err = NewEventBus(cfg, testLogger())
	require.Error(t, err)

	cfg.EventBus = "nats"
	_, err = NewEventBus(cfg, testLogger())
	require.Error(t, err)
}

func TestWithCache(t *testing.T) {
	base := file.NewPersistence(t.TempDir())

	p, closer, err := WithCache(t.Context(), config.CacheConfig{Provider: config.CacheNone}, base, testLogger())
	require.NoError(t, err)
	assert.Same(t, base, p)
	require.NoError(t, closer.Close())

	p, closer, err = WithCache(t.Context(), config.CacheConfig{Provider: config.CacheMemory, TTL: 10 * time.Second}, base, testLogger())
	require.NoError(t, err)
	assert.IsType(t, &cache.WorkflowRepository{}, p.WorkflowRepository())
	require.NoError(t, closer.Close())

	_, _, err = WithCache(t.Context(), config.CacheConfig{Provider: "memcached"}, base, testLogger())
	require.Error(t, err)
}

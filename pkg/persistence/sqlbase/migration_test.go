package sqlbase

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMigrationManager_PendingVersionsAreOrdered(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	manager := NewMigrationManager(logger, nil, map[int]string{
		3: "SELECT 3",
		1: "SELECT 1",
		2: "SELECT 2",
		5: "SELECT 5",
	})

	assert.Equal(t, 5, manager.LatestVersion())
	assert.Equal(t, []int{1, 2, 3, 5}, manager.PendingVersions(0))
	assert.Equal(t, []int{3, 5}, manager.PendingVersions(2))
	assert.Empty(t, manager.PendingVersions(5))
}

func TestMigrationManager_EmptyMigrations(t *testing.T) {
	manager := NewMigrationManager(slog.Default(), nil, nil)

	assert.Equal(t, 0, manager.LatestVersion())
	assert.Empty(t, manager.PendingVersions(0))
}

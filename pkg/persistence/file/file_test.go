package file

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/dukex/salesflow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPersistence(t *testing.T) {
	// Test with regular path
	persistence := NewPersistence("/tmp/test")
	assert.Equal(t, "/tmp/test", persistence.root)

	// Test with file:// prefix
	persistence = NewPersistence("file:///tmp/test")
	assert.Equal(t, "/tmp/test", persistence.root)
}

func TestPersistence_Close(t *testing.T) {
	persistence := NewPersistence("./test-data")
	err := persistence.Close(t.Context())
	assert.NoError(t, err)
}

func TestPersistence_SaveWorkflow_UpdatesTimestamp(t *testing.T) {
	root := t.TempDir()
	repo := NewPersistence(root).WorkflowRepository()

	workflow := &models.Workflow{Name: "Welcome", Trigger: models.TriggerContactCreated, TenantID: 1}
	require.NoError(t, repo.Save(t.Context(), workflow))

	created := workflow.CreatedAt
	updated := workflow.UpdatedAt

	time.Sleep(10 * time.Millisecond)

	workflow.Name = "Welcome back"
	require.NoError(t, repo.Save(t.Context(), workflow))

	assert.Equal(t, created, workflow.CreatedAt)
	assert.True(t, workflow.UpdatedAt.After(updated))
	assert.FileExists(t, filepath.Join(root, workflowsCollection, "1.json"))
}

func TestPersistence_Workflows_NoDirectory(t *testing.T) {
	repo := NewPersistence(filepath.Join(t.TempDir(), "missing")).WorkflowRepository()

	workflows, err := repo.List(t.Context())
	require.NoError(t, err)
	assert.Empty(t, workflows)
}

package services

import (
	"errors"
	"testing"

	"github.com/dukex/salesflow/pkg/models"
	"github.com/dukex/salesflow/pkg/persistence/file"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type kindChecker map[models.ActionKind]bool

func (k kindChecker) ValidateParameters(kind models.ActionKind, raw string) (bool, error) {
	registered, ok := k[kind]
	if !ok || !registered {
		return false, nil
	}

	if raw == "" {
		return true, errors.New("parameters payload is empty")
	}

	return true, nil
}

func newWorkflow() *models.Workflow {
	return &models.Workflow{
		Name:     "Welcome",
		Trigger:  models.TriggerContactCreated,
		IsActive: true,
		TenantID: 7,
		Actions: []*models.WorkflowAction{
			{Kind: models.ActionKindChangeLeadStatus, ParametersJSON: `{"NewLeadStatus":"Open"}`},
			{Kind: models.ActionKindSendEmail},
		},
	}
}

func TestNewWorkflow(t *testing.T) {
	persistence := file.NewPersistence(t.TempDir())
	service := NewWorkflow(persistence, nil)

	assert.NotNil(t, service)
	assert.Equal(t, persistence, service.persistence)
}

func TestWorkflow_CreateAndFetch(t *testing.T) {
	persistence := file.NewPersistence(t.TempDir())
	service := NewWorkflow(persistence, kindChecker{models.ActionKindChangeLeadStatus: true})

	created, err := service.Create(t.Context(), newWorkflow())
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	fetched, err := service.FetchByID(t.Context(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Welcome", fetched.Name)
	require.Len(t, fetched.Actions, 2)
	assert.Equal(t, models.ActionKindSendEmail, fetched.Actions[1].Kind)

	listed, err := service.List(t.Context(), 7)
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	listed, err = service.List(t.Context(), 8)
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestWorkflow_Validate(t *testing.T) {
	service := NewWorkflow(file.NewPersistence(t.TempDir()), kindChecker{models.ActionKindChangeLeadStatus: true})

	assert.ErrorIs(t, service.Validate(nil), ErrWorkflowNil)

	unnamed := newWorkflow()
	unnamed.Name = " "
	assert.ErrorIs(t, service.Validate(unnamed), ErrWorkflowNameRequired)

	noTenant := newWorkflow()
	noTenant.TenantID = 0
	err := service.Validate(noTenant)
	assert.ErrorIs(t, err, ErrInvalidRequest)
	assert.True(t, IsValidationError(err))

	badParameters := newWorkflow()
	badParameters.Actions[0].ParametersJSON = ""
	err = service.Validate(badParameters)
	assert.ErrorIs(t, err, ErrInvalidParameters)
	assert.Contains(t, err.Error(), "ChangeLeadStatus")
}

func TestWorkflow_UpdateSetActiveDelete(t *testing.T) {
	persistence := file.NewPersistence(t.TempDir())
	service := NewWorkflow(persistence, nil)

	created, err := service.Create(t.Context(), newWorkflow())
	require.NoError(t, err)

	replacement := newWorkflow()
	replacement.Name = "Renamed"
	replacement.Actions = replacement.Actions[:1]

	updated, err := service.Update(t.Context(), created.ID, replacement)
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.True(t, created.CreatedAt.Equal(updated.CreatedAt))

	deactivated, err := service.SetActive(t.Context(), created.ID, false)
	require.NoError(t, err)
	assert.False(t, deactivated.IsActive)

	fetched, err := service.FetchByID(t.Context(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", fetched.Name)
	assert.False(t, fetched.IsActive)
	assert.Len(t, fetched.Actions, 1)

	require.NoError(t, service.Delete(t.Context(), created.ID))

	_, err = service.FetchByID(t.Context(), created.ID)
	assert.True(t, IsNotFound(err))

	err = service.Delete(t.Context(), created.ID)
	assert.True(t, IsNotFound(err))

	_, err = service.Update(t.Context(), created.ID, newWorkflow())
	assert.True(t, IsNotFound(err))
}

func TestWorkflow_ImportKeepsIdentifiers(t *testing.T) {
	persistence := file.NewPersistence(t.TempDir())
	service := NewWorkflow(persistence, nil)

	workflow := newWorkflow()
	workflow.ID = 30
	workflow.Actions[0].ID = 300

	imported, err := service.Import(t.Context(), workflow)
	require.NoError(t, err)
	assert.Equal(t, int64(30), imported.ID)

	fetched, err := service.FetchByID(t.Context(), 30)
	require.NoError(t, err)
	assert.Equal(t, int64(300), fetched.Actions[0].ID)

	created, err := service.Create(t.Context(), newWorkflow())
	require.NoError(t, err)
	assert.Greater(t, created.ID, int64(30))
}

package main

import (
	"bytes"
	"testing"

	"github.com/dukex/salesflow/pkg/models"
	"github.com/dukex/salesflow/pkg/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const workflowFile = `
workflows:
  - name: Welcome new contacts
    trigger: ContactCreated
    is_active: true
    tenant_id: 7
    actions:
      - kind: CreateTask
        parameters_json: '{"Title":"Say hello","AssignedTo":"ContactOwner"}'
      - kind: ChangeLeadStatus
        parameters_json: '{"NewLeadStatus":"Open"}'
  - id: 40
    name: Promote on completed task
    trigger: TaskCompleted
    tenant_id: 7
    actions:
      - kind: ChangeLifeCycleStage
        parameters_json: '{"NewStageId":3}'
`

func TestImportWorkflows(t *testing.T) {
	env := newTestEnv(t)

	imported, err := importWorkflows(t.Context(), env.workflows, []byte(workflowFile))
	require.NoError(t, err)
	require.Len(t, imported, 2)

	assert.NotZero(t, imported[0].ID)
	assert.Equal(t, int64(40), imported[1].ID)

	active, err := env.persistence.WorkflowRepository().FindActive(t.Context(), 7, models.TriggerContactCreated)
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.Len(t, active[0].Actions, 2)
	assert.Equal(t, models.ActionKindCreateTask, active[0].Actions[0].Kind)
	assert.Equal(t, models.ActionKindChangeLeadStatus, active[0].Actions[1].Kind)

	stored, err := env.workflows.FetchByID(t.Context(), 40)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)
	assert.Equal(t, models.TriggerTaskCompleted, stored.Trigger)

	// Importing again replaces the workflow with the explicit id.
	_, err = importWorkflows(t.Context(), env.workflows, []byte(`
workflows:
  - id: 40
    name: Promote on completed task
    trigger: TaskCompleted
    is_active: true
    tenant_id: 7
    actions: []
`))
	require.NoError(t, err)

	stored, err = env.workflows.FetchByID(t.Context(), 40)
	require.NoError(t, err)
	assert.True(t, stored.IsActive)
	assert.Empty(t, stored.Actions)
}

func TestImportWorkflows_Invalid(t *testing.T) {
	env := newTestEnv(t)

	_, err := importWorkflows(t.Context(), env.workflows, []byte(`workflows: [`))
	require.Error(t, err)

	_, err = importWorkflows(t.Context(), env.workflows, []byte(`
workflows:
  - name: Unknown trigger
    trigger: ContactDeleted
    tenant_id: 7
`))
	require.Error(t, err)

	imported, err := importWorkflows(t.Context(), env.workflows, []byte(`
workflows:
  - name: Good
    trigger: TaskCreated
    tenant_id: 7
  - name: Bad parameters
    trigger: TaskCreated
    tenant_id: 7
    actions:
      - kind: ChangeLeadStatus
        parameters_json: '{"NewLeadStatus":"Nope"}'
`))
	require.ErrorIs(t, err, services.ErrInvalidParameters)
	assert.Len(t, imported, 1)
}

func TestRenderWorkflows(t *testing.T) {
	var out bytes.Buffer

	renderWorkflows(&out, []*models.Workflow{
		{ID: 3, Name: "Welcome", TenantID: 7, Trigger: models.TriggerContactCreated, IsActive: true,
			Actions: []*models.WorkflowAction{{Kind: models.ActionKindCreateTask}}},
	})

	assert.Contains(t, out.String(), "Welcome")
	assert.Contains(t, out.String(), "ContactCreated")
	assert.Contains(t, out.String(), "true")
}

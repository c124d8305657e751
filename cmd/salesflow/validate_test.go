package main

import (
	"bytes"
	"testing"

	"github.com/dukex/salesflow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateWorkflows(t *testing.T) {
	env := newTestEnv(t)

	t.Run("all actions valid", func(t *testing.T) {
		var out bytes.Buffer

		err := validateWorkflows(&out, env.registry, []*models.Workflow{
			{
				ID:       1,
				TenantID: 7,
				Trigger:  models.TriggerContactCreated,
				Actions: []*models.WorkflowAction{
					{ID: 10, Kind: models.ActionKindChangeLeadStatus, ParametersJSON: `{"NewLeadStatus":"Open"}`},
					{ID: 11, Kind: models.ActionKindSendEmail, ParametersJSON: `{"Template":"welcome"}`},
				},
			},
		})
		require.NoError(t, err)

		assert.Contains(t, out.String(), "ChangeLeadStatus")
		assert.Contains(t, out.String(), "no executor")
	})

	t.Run("invalid parameters are counted", func(t *testing.T) {
		var out bytes.Buffer

		err := validateWorkflows(&out, env.registry, []*models.Workflow{
			{
				ID:       2,
				TenantID: 7,
				Trigger:  models.TriggerTaskCompleted,
				Actions: []*models.WorkflowAction{
					{ID: 20, Kind: models.ActionKindChangeLeadStatus, ParametersJSON: `{"NewLeadStatus":"Nope"}`},
					{ID: 21, Kind: models.ActionKindCreateTask, ParametersJSON: `not json`},
					{ID: 22, Kind: models.ActionKindChangeLifeCycleStage, ParametersJSON: `{"NewStageId":3}`},
				},
			},
		})
		require.ErrorIs(t, err, ErrInvalidActions)
		assert.Contains(t, err.Error(), ": 2")
		assert.Contains(t, out.String(), "20")
		assert.Contains(t, out.String(), "21")
	})

	t.Run("no workflows", func(t *testing.T) {
		var out bytes.Buffer

		require.NoError(t, validateWorkflows(&out, env.registry, nil))
		assert.Contains(t, out.String(), "INVALID")
	})
}

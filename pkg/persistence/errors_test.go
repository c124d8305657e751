package persistence_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/dukex/salesflow/pkg/persistence"
	"github.com/stretchr/testify/assert"
)

func TestStandardizedErrors(t *testing.T) {
	t.Parallel()

	t.Run("error checking functions work correctly", func(t *testing.T) {
		workflowErr := persistence.NewWorkflowError("GetByID", 123, persistence.ErrWorkflowNotFound)
		contactErr := persistence.NewContactError("GetByID", 42, persistence.ErrContactNotFound)
		taskErr := persistence.NewTaskError("GetByID", 9, persistence.ErrTaskNotFound)

		assert.True(t, persistence.IsWorkflowNotFound(workflowErr))
		assert.True(t, persistence.IsContactNotFound(contactErr))
		assert.True(t, persistence.IsTaskNotFound(taskErr))
		assert.False(t, persistence.IsContactNotFound(taskErr))

		assert.True(t, errors.Is(workflowErr, persistence.ErrWorkflowNotFound))
		assert.True(t, persistence.IsContactNotFound(fmt.Errorf("load: %w", contactErr)))
	})

	t.Run("workflow error contains context", func(t *testing.T) {
		err := persistence.NewWorkflowError("Delete", 123, persistence.ErrWorkflowNotFound)

		assert.Contains(t, err.Error(), "Delete")
		assert.Contains(t, err.Error(), "123")
		assert.Contains(t, err.Error(), "workflow not found")
	})

	t.Run("record error contains context", func(t *testing.T) {
		err := persistence.NewContactError("Update", 42, persistence.ErrContactNotFound)

		assert.Equal(t, "Update operation failed for contact 42: contact not found", err.Error())
	})
}

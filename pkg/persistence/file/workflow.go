package file

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dukex/salesflow/pkg/models"
	"github.com/dukex/salesflow/pkg/persistence"
)

// WorkflowRepository handles workflow-related file operations. Actions are embedded in
// their workflow document.
type WorkflowRepository struct {
	persistence *Persistence
}

// FindActive returns the active workflows of a tenant for a trigger, ordered by ID.
func (wr *WorkflowRepository) FindActive(ctx context.Context, tenantID int64, trigger models.Trigger) ([]*models.Workflow, error) {
	all, err := wr.List(ctx)
	if err != nil {
		return nil, err
	}

	workflows := make([]*models.Workflow, 0)

	for _, workflow := range all {
		if workflow.Matches(trigger, tenantID) {
			workflows = append(workflows, workflow)
		}
	}

	return workflows, nil
}

// GetByID returns a workflow by its ID.
func (wr *WorkflowRepository) GetByID(_ context.Context, id int64) (*models.Workflow, error) {
	var workflow models.Workflow

	found, err := wr.persistence.readRecord(workflowsCollection, id, &workflow)
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, persistence.NewWorkflowError("GetByID", id, persistence.ErrWorkflowNotFound)
	}

	sortActions(&workflow)

	return &workflow, nil
}

// ListByTenant returns every workflow of a tenant, active or not.
func (wr *WorkflowRepository) ListByTenant(ctx context.Context, tenantID int64) ([]*models.Workflow, error) {
	all, err := wr.List(ctx)
	if err != nil {
		return nil, err
	}

	workflows := make([]*models.Workflow, 0)

	for _, workflow := range all {
		if workflow.TenantID == tenantID {
			workflows = append(workflows, workflow)
		}
	}

	return workflows, nil
}

// List returns all workflows ordered by ID.
func (wr *WorkflowRepository) List(ctx context.Context) ([]*models.Workflow, error) {
	ids, err := wr.persistence.listIDs(workflowsCollection)
	if err != nil {
		return nil, err
	}

	workflows := make([]*models.Workflow, 0, len(ids))

	for _, id := range ids {
		workflow, err := wr.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load workflow %d: %w", id, err)
		}

		workflows = append(workflows, workflow)
	}

	return workflows, nil
}

// Save saves a workflow to the file system, assigning identifiers to new workflows and actions.
// Action positions follow the slice order.
func (wr *WorkflowRepository) Save(_ context.Context, workflow *models.Workflow) error {
	var err error

	if workflow.ID == 0 {
		workflow.ID, err = wr.persistence.nextID(workflowsCollection)
		if err != nil {
			return fmt.Errorf("failed to generate workflow ID: %w", err)
		}
	}

	for i, action := range workflow.Actions {
		if action.ID == 0 {
			action.ID, err = wr.persistence.nextID(actionsCollection)
			if err != nil {
				return fmt.Errorf("failed to generate action ID: %w", err)
			}
		}

		action.WorkflowID = workflow.ID
		action.Position = i
	}

	now := time.Now().UTC()
	if workflow.CreatedAt.IsZero() {
		workflow.CreatedAt = now
	}

	workflow.UpdatedAt = now

	wr.persistence.mu.Lock()
	defer wr.persistence.mu.Unlock()

	wr.persistence.observeIDLocked(workflowsCollection, workflow.ID)

	for _, action := range workflow.Actions {
		wr.persistence.observeIDLocked(actionsCollection, action.ID)
	}

	return wr.persistence.writeRecord(workflowsCollection, workflow.ID, workflow)
}

// Delete removes a workflow and, with it, its embedded actions.
func (wr *WorkflowRepository) Delete(_ context.Context, id int64) error {
	wr.persistence.mu.Lock()
	defer wr.persistence.mu.Unlock()

	return wr.persistence.removeRecord(workflowsCollection, id)
}

func (wr *WorkflowRepository) highestActionID() (int64, error) {
	workflows, err := wr.List(context.Background())
	if err != nil {
		return 0, err
	}

	var highest int64

	for _, workflow := range workflows {
		for _, action := range workflow.Actions {
			if action.ID > highest {
				highest = action.ID
			}
		}
	}

	return highest, nil
}

func sortActions(workflow *models.Workflow) {
	sort.SliceStable(workflow.Actions, func(i, j int) bool {
		a, b := workflow.Actions[i], workflow.Actions[j]
		if a.Position != b.Position {
			return a.Position < b.Position
		}

		return a.ID < b.ID
	})
}

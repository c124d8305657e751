package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dukex/salesflow/pkg/models"
	"github.com/dukex/salesflow/pkg/persistence"
	"github.com/go-playground/validator/v10"
)

// ParameterChecker validates the parameters payload of an action kind. The boolean reports
// whether the kind has an executor at all.
type ParameterChecker interface {
	ValidateParameters(kind models.ActionKind, raw string) (bool, error)
}

// Workflow manages workflow definitions on behalf of tenant administrators and operators.
type Workflow struct {
	persistence persistence.Persistence
	checker     ParameterChecker
	validate    *validator.Validate
}

// NewWorkflow creates a new workflow service. checker may be nil, in which case action
// parameters are not validated on write.
func NewWorkflow(persistence persistence.Persistence, checker ParameterChecker) *Workflow {
	return &Workflow{
		persistence: persistence,
		checker:     checker,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

// HealthCheck checks the health of the persistence layer.
func (w *Workflow) HealthCheck(ctx context.Context) (string, bool) {
	if w.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := w.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// FetchByID retrieves a workflow by its ID.
func (w *Workflow) FetchByID(ctx context.Context, id int64) (*models.Workflow, error) {
	return w.persistence.WorkflowRepository().GetByID(ctx, id)
}

// List returns the workflows of a tenant, or of every tenant when tenantID is zero.
func (w *Workflow) List(ctx context.Context, tenantID int64) ([]*models.Workflow, error) {
	if tenantID == 0 {
		return w.persistence.WorkflowRepository().List(ctx)
	}

	return w.persistence.WorkflowRepository().ListByTenant(ctx, tenantID)
}

// Create validates and stores a new workflow.
func (w *Workflow) Create(ctx context.Context, workflow *models.Workflow) (*models.Workflow, error) {
	if err := w.Validate(workflow); err != nil {
		return nil, err
	}

	workflow.ID = 0
	for _, action := range workflow.Actions {
		action.ID = 0
	}

	err := w.persistence.WorkflowRepository().Save(ctx, workflow)
	if err != nil {
		return nil, fmt.Errorf("failed to create workflow: %w", err)
	}

	return workflow, nil
}

// Import stores a workflow keeping its identifiers, replacing any existing definition
// with the same ID.
func (w *Workflow) Import(ctx context.Context, workflow *models.Workflow) (*models.Workflow, error) {
	if err := w.Validate(workflow); err != nil {
		return nil, err
	}

	if workflow.ID != 0 {
		existing, err := w.persistence.WorkflowRepository().GetByID(ctx, workflow.ID)
		if err != nil && !persistence.IsWorkflowNotFound(err) {
			return nil, err
		}

		if existing != nil {
			workflow.CreatedAt = existing.CreatedAt
		}
	}

	err := w.persistence.WorkflowRepository().Save(ctx, workflow)
	if err != nil {
		return nil, fmt.Errorf("failed to import workflow: %w", err)
	}

	return workflow, nil
}

// Update replaces an existing workflow and its actions.
func (w *Workflow) Update(ctx context.Context, workflowID int64, workflow *models.Workflow) (*models.Workflow, error) {
	existing, err := w.persistence.WorkflowRepository().GetByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	if err := w.Validate(workflow); err != nil {
		return nil, err
	}

	workflow.ID = workflowID
	workflow.CreatedAt = existing.CreatedAt

	err = w.persistence.WorkflowRepository().Save(ctx, workflow)
	if err != nil {
		return nil, fmt.Errorf("failed to update workflow: %w", err)
	}

	return workflow, nil
}

// SetActive turns a workflow on or off without touching its actions.
func (w *Workflow) SetActive(ctx context.Context, workflowID int64, active bool) (*models.Workflow, error) {
	workflow, err := w.persistence.WorkflowRepository().GetByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	if workflow.IsActive == active {
		return workflow, nil
	}

	workflow.IsActive = active

	err = w.persistence.WorkflowRepository().Save(ctx, workflow)
	if err != nil {
		return nil, fmt.Errorf("failed to update workflow: %w", err)
	}

	return workflow, nil
}

// Delete removes a workflow by its ID.
func (w *Workflow) Delete(ctx context.Context, workflowID int64) error {
	_, err := w.persistence.WorkflowRepository().GetByID(ctx, workflowID)
	if err != nil {
		return err
	}

	err = w.persistence.WorkflowRepository().Delete(ctx, workflowID)
	if err != nil {
		return fmt.Errorf("failed to delete workflow: %w", err)
	}

	return nil
}

// Validate checks the workflow structure and, when a checker is configured, the parameters
// of every action with a registered executor. Actions of kinds without an executor are
// accepted; the engine skips them at run time.
func (w *Workflow) Validate(workflow *models.Workflow) error {
	if workflow == nil {
		return ErrWorkflowNil
	}

	if strings.TrimSpace(workflow.Name) == "" {
		return ErrWorkflowNameRequired
	}

	err := w.validate.Struct(workflow)
	if err != nil {
		return NewValidationError("Validate", "INVALID_WORKFLOW", describeValidation(err), ErrInvalidRequest)
	}

	if w.checker == nil {
		return nil
	}

	var problems []string

	for i, action := range workflow.Actions {
		_, err := w.checker.ValidateParameters(action.Kind, action.ParametersJSON)
		if err != nil {
			problems = append(problems, fmt.Sprintf("action %d (%s): %v", i, action.Kind, err))
		}
	}

	if len(problems) > 0 {
		return NewValidationError("Validate", "INVALID_PARAMETERS", strings.Join(problems, "; "), ErrInvalidParameters)
	}

	return nil
}

// IsNotFound reports whether err means the workflow does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrWorkflowNotFound)
}

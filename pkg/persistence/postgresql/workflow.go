package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/salesflow/pkg/models"
	"github.com/dukex/salesflow/pkg/persistence"
	"github.com/lib/pq"
)

const workflowColumns = `
			id
		  , name
		  , trigger
		  , is_active
		  , organization_id
		  , created_at
		  , updated_at`

// WorkflowRepository handles workflow-related database operations.
type WorkflowRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewWorkflowRepository creates a new workflow repository.
func NewWorkflowRepository(db *sql.DB, logger *slog.Logger) *WorkflowRepository {
	return &WorkflowRepository{db: db, logger: logger}
}

// FindActive returns the active workflows of a tenant for a trigger ordered by ID,
// each with its actions in position order.
func (r *WorkflowRepository) FindActive(ctx context.Context, tenantID int64, trigger models.Trigger) ([]*models.Workflow, error) {
	query := `SELECT` + workflowColumns + `
		FROM workflows
		WHERE organization_id = $1 AND trigger = $2 AND is_active
		ORDER BY id
	`

	return r.queryWorkflows(ctx, query, tenantID, int(trigger))
}

// GetByID returns a workflow by its ID.
func (r *WorkflowRepository) GetByID(ctx context.Context, id int64) (*models.Workflow, error) {
	query := `SELECT` + workflowColumns + `
		FROM workflows
		WHERE id = $1
	`

	workflow, err := scanWorkflow(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewWorkflowError("GetByID", id, persistence.ErrWorkflowNotFound)
		}

		return nil, fmt.Errorf("failed to scan workflow: %w", err)
	}

	err = r.loadActions(ctx, []*models.Workflow{workflow})
	if err != nil {
		return nil, err
	}

	return workflow, nil
}

// ListByTenant returns every workflow of a tenant ordered by ID.
func (r *WorkflowRepository) ListByTenant(ctx context.Context, tenantID int64) ([]*models.Workflow, error) {
	query := `SELECT` + workflowColumns + `
		FROM workflows
		WHERE organization_id = $1
		ORDER BY id
	`

	return r.queryWorkflows(ctx, query, tenantID)
}

// List returns all workflows ordered by ID.
func (r *WorkflowRepository) List(ctx context.Context) ([]*models.Workflow, error) {
	query := `SELECT` + workflowColumns + `
		FROM workflows
		ORDER BY id
	`

	return r.queryWorkflows(ctx, query)
}

// Save inserts or updates a workflow and replaces its actions. Action positions follow
// the slice order.
func (r *WorkflowRepository) Save(ctx context.Context, workflow *models.Workflow) (err error) {
	now := time.Now().UTC()

	if workflow.CreatedAt.IsZero() {
		workflow.CreatedAt = now
	}

	workflow.UpdatedAt = now

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	explicitIDs := false

	if workflow.ID == 0 {
		err = tx.QueryRowContext(ctx, `
			INSERT INTO workflows (name, trigger, is_active, organization_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id
		`,
			workflow.Name,
			int(workflow.Trigger),
			workflow.IsActive,
			workflow.TenantID,
			workflow.CreatedAt,
			workflow.UpdatedAt,
		).Scan(&workflow.ID)
	} else {
		explicitIDs = true
		_, err = tx.ExecContext(ctx, `
			INSERT INTO workflows (id, name, trigger, is_active, organization_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name,
				trigger = EXCLUDED.trigger,
				is_active = EXCLUDED.is_active,
				organization_id = EXCLUDED.organization_id,
				updated_at = EXCLUDED.updated_at
		`,
			workflow.ID,
			workflow.Name,
			int(workflow.Trigger),
			workflow.IsActive,
			workflow.TenantID,
			workflow.CreatedAt,
			workflow.UpdatedAt,
		)
	}

	if err != nil {
		return fmt.Errorf("failed to save workflow base: %w", err)
	}

	_, err = tx.ExecContext(ctx, "DELETE FROM workflow_actions WHERE workflow_id = $1", workflow.ID)
	if err != nil {
		return fmt.Errorf("failed to delete existing actions: %w", err)
	}

	explicitActionIDs := false

	for i, action := range workflow.Actions {
		action.WorkflowID = workflow.ID
		action.Position = i

		if action.ID == 0 {
			err = tx.QueryRowContext(ctx, `
				INSERT INTO workflow_actions (workflow_id, action_type, position, condition_json, parameters_json)
				VALUES ($1, $2, $3, $4, $5)
				RETURNING id
			`, action.WorkflowID, int(action.Kind), action.Position, action.ConditionJSON, action.ParametersJSON).Scan(&action.ID)
		} else {
			explicitActionIDs = true
			_, err = tx.ExecContext(ctx, `
				INSERT INTO workflow_actions (id, workflow_id, action_type, position, condition_json, parameters_json)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, action.ID, action.WorkflowID, int(action.Kind), action.Position, action.ConditionJSON, action.ParametersJSON)
		}

		if err != nil {
			return fmt.Errorf("failed to save action %d of workflow %d: %w", i, workflow.ID, err)
		}
	}

	if explicitIDs {
		if err = resyncSequence(ctx, tx, "workflows"); err != nil {
			return err
		}
	}

	if explicitActionIDs {
		if err = resyncSequence(ctx, tx, "workflow_actions"); err != nil {
			return err
		}
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Delete removes a workflow; its actions are removed by the foreign key cascade.
func (r *WorkflowRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM workflows WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete workflow: %w", err)
	}

	return nil
}

func (r *WorkflowRepository) queryWorkflows(ctx context.Context, query string, args ...any) ([]*models.Workflow, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query workflows: %w", err)
	}

	defer func(ctx context.Context, r *WorkflowRepository) {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}(ctx, r)

	workflows := make([]*models.Workflow, 0)

	for rows.Next() {
		workflow, err := scanWorkflow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workflow: %w", err)
		}

		workflows = append(workflows, workflow)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating workflows: %w", err)
	}

	err = r.loadActions(ctx, workflows)
	if err != nil {
		return nil, err
	}

	return workflows, nil
}

// loadActions fills the actions of every workflow with a single query.
func (r *WorkflowRepository) loadActions(ctx context.Context, workflows []*models.Workflow) error {
	if len(workflows) == 0 {
		return nil
	}

	byID := make(map[int64]*models.Workflow, len(workflows))
	ids := make([]int64, 0, len(workflows))

	for _, workflow := range workflows {
		workflow.Actions = make([]*models.WorkflowAction, 0)
		byID[workflow.ID] = workflow
		ids = append(ids, workflow.ID)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, workflow_id, action_type, position, condition_json, parameters_json
		FROM workflow_actions
		WHERE workflow_id = ANY($1)
		ORDER BY workflow_id, position, id
	`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to query workflow actions: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.Error("failed to close rows", "error", err)
		}
	}()

	for rows.Next() {
		var (
			action models.WorkflowAction
			kind   int
		)

		err := rows.Scan(
			&action.ID,
			&action.WorkflowID,
			&kind,
			&action.Position,
			&action.ConditionJSON,
			&action.ParametersJSON,
		)
		if err != nil {
			return fmt.Errorf("failed to scan action: %w", err)
		}

		action.Kind = models.ActionKind(kind)

		if workflow, ok := byID[action.WorkflowID]; ok {
			workflow.Actions = append(workflow.Actions, &action)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating actions: %w", err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkflow(row rowScanner) (*models.Workflow, error) {
	var (
		workflow models.Workflow
		trigger  int
	)

	err := row.Scan(
		&workflow.ID,
		&workflow.Name,
		&trigger,
		&workflow.IsActive,
		&workflow.TenantID,
		&workflow.CreatedAt,
		&workflow.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	workflow.Trigger = models.Trigger(trigger)

	return &workflow, nil
}

// Package cache caches the active workflow lookup the engine performs on every trigger.
package cache

import (
	"context"
	"log/slog"

	"github.com/dukex/salesflow/pkg/models"
	"github.com/dukex/salesflow/pkg/persistence"
)

// Store holds active workflow lists keyed by tenant and trigger.
type Store interface {
	Get(ctx context.Context, tenantID int64, trigger models.Trigger) ([]*models.Workflow, bool, error)
	// Generation returns the tenant's invalidation counter.
	Generation(ctx context.Context, tenantID int64) (uint64, error)
	// Set stores the entry only while the tenant is still at generation, so a lookup that
	// raced with an invalidation never repopulates the cache with stale definitions.
	Set(ctx context.Context, tenantID int64, trigger models.Trigger, generation uint64, workflows []*models.Workflow) error
	// InvalidateTenant drops every entry of the tenant and advances its generation.
	InvalidateTenant(ctx context.Context, tenantID int64) error
}

// WorkflowRepository serves FindActive from a Store and invalidates the affected tenants on
// every write made through it. Store failures degrade to the underlying repository.
type WorkflowRepository struct {
	next   persistence.WorkflowRepository
	store  Store
	logger *slog.Logger
}

func NewWorkflowRepository(next persistence.WorkflowRepository, store Store, logger *slog.Logger) *WorkflowRepository {
	return &WorkflowRepository{
		next:   next,
		store:  store,
		logger: logger.With("module", "workflow_cache"),
	}
}

func (r *WorkflowRepository) FindActive(ctx context.Context, tenantID int64, trigger models.Trigger) ([]*models.Workflow, error) {
	logger := r.logger.With("tenant_id", tenantID, "trigger", trigger.String())

	workflows, found, err := r.store.Get(ctx, tenantID, trigger)
	if err != nil {
		logger.WarnContext(ctx, "Failed to read workflow cache", "error", err)
	} else if found {
		return workflows, nil
	}

	generation, genErr := r.store.Generation(ctx, tenantID)
	if genErr != nil {
		logger.WarnContext(ctx, "Failed to read workflow cache generation", "error", genErr)
	}

	workflows, err = r.next.FindActive(ctx, tenantID, trigger)
	if err != nil {
		return nil, err
	}

	if genErr != nil {
		return workflows, nil
	}

	err = r.store.Set(ctx, tenantID, trigger, generation, workflows)
	if err != nil {
		logger.WarnContext(ctx, "Failed to write workflow cache", "error", err)
	}

	return workflows, nil
}

func (r *WorkflowRepository) GetByID(ctx context.Context, id int64) (*models.Workflow, error) {
	return r.next.GetByID(ctx, id)
}

func (r *WorkflowRepository) ListByTenant(ctx context.Context, tenantID int64) ([]*models.Workflow, error) {
	return r.next.ListByTenant(ctx, tenantID)
}

func (r *WorkflowRepository) List(ctx context.Context) ([]*models.Workflow, error) {
	return r.next.List(ctx)
}

// Save invalidates the workflow's tenant and, when the workflow moved, its previous tenant.
func (r *WorkflowRepository) Save(ctx context.Context, workflow *models.Workflow) error {
	tenants := []int64{workflow.TenantID}

	if workflow.ID != 0 {
		previous, err := r.next.GetByID(ctx, workflow.ID)
		if err != nil && !persistence.IsWorkflowNotFound(err) {
			return err
		}

		if previous != nil && previous.TenantID != workflow.TenantID {
			tenants = append(tenants, previous.TenantID)
		}
	}

	err := r.next.Save(ctx, workflow)
	if err != nil {
		return err
	}

	r.invalidate(ctx, tenants...)

	return nil
}

func (r *WorkflowRepository) Delete(ctx context.Context, id int64) error {
	existing, err := r.next.GetByID(ctx, id)
	if err != nil {
		if persistence.IsWorkflowNotFound(err) {
			return r.next.Delete(ctx, id)
		}

		return err
	}

	err = r.next.Delete(ctx, id)
	if err != nil {
		return err
	}

	r.invalidate(ctx, existing.TenantID)

	return nil
}

func (r *WorkflowRepository) invalidate(ctx context.Context, tenantIDs ...int64) {
	for _, tenantID := range tenantIDs {
		err := r.store.InvalidateTenant(ctx, tenantID)
		if err != nil {
			r.logger.ErrorContext(ctx, "Failed to invalidate workflow cache", "tenant_id", tenantID, "error", err)
		}
	}
}

// Persistence replaces the workflow repository of a persistence provider with a cached one.
type Persistence struct {
	persistence.Persistence

	workflows *WorkflowRepository
}

func Wrap(p persistence.Persistence, store Store, logger *slog.Logger) *Persistence {
	return &Persistence{
		Persistence: p,
		workflows:   NewWorkflowRepository(p.WorkflowRepository(), store, logger),
	}
}

func (p *Persistence) WorkflowRepository() persistence.WorkflowRepository {
	return p.workflows
}

func cloneWorkflows(workflows []*models.Workflow) []*models.Workflow {
	cloned := make([]*models.Workflow, 0, len(workflows))

	for _, workflow := range workflows {
		copied := *workflow
		copied.Actions = make([]*models.WorkflowAction, 0, len(workflow.Actions))

		for _, action := range workflow.Actions {
			a := *action
			copied.Actions = append(copied.Actions, &a)
		}

		cloned = append(cloned, &copied)
	}

	return cloned
}

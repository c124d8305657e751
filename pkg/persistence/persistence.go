// Package persistence provides the data storage abstraction layer for workflow definitions
// and the CRM records workflows act upon.
package persistence

import (
	"context"

	"github.com/dukex/salesflow/pkg/models"
)

// Persistence is the root of a storage provider.
type Persistence interface {
	WorkflowRepository() WorkflowRepository

	// Begin leases a short-lived session. Writes made through the session are applied
	// atomically on Commit and discarded on Rollback.
	Begin(ctx context.Context) (Session, error)

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

// Session scopes the mutations of a single unit of work.
type Session interface {
	Contacts() ContactRepository
	Tasks() TaskRepository
	Activities() ActivityRepository

	Commit() error
	// Rollback discards pending writes. Calling it after Commit is a no-op.
	Rollback() error
}

// WorkflowRepository stores workflow definitions. The engine only reads through FindActive.
type WorkflowRepository interface {
	// FindActive returns the active workflows of a tenant bound to trigger, with their
	// actions in persisted order.
	FindActive(ctx context.Context, tenantID int64, trigger models.Trigger) ([]*models.Workflow, error)
	GetByID(ctx context.Context, id int64) (*models.Workflow, error)
	ListByTenant(ctx context.Context, tenantID int64) ([]*models.Workflow, error)
	List(ctx context.Context) ([]*models.Workflow, error)
	Save(ctx context.Context, workflow *models.Workflow) error
	// Delete removes a workflow and its actions.
	Delete(ctx context.Context, id int64) error
}

type ContactRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Contact, error)
	Create(ctx context.Context, contact *models.Contact) error
	Update(ctx context.Context, contact *models.Contact) error
}

type TaskRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Task, error)
	Create(ctx context.Context, task *models.Task) error
	ListByContact(ctx context.Context, contactID int64) ([]*models.Task, error)
}

type ActivityRepository interface {
	Create(ctx context.Context, activity *models.Activity) error
	ListByContact(ctx context.Context, contactID int64) ([]*models.Activity, error)
}

package protocol

import (
	"context"
	"time"
)

// TaskRequest describes a task to be created on behalf of a workflow.
type TaskRequest struct {
	TenantID   int64      `validate:"required"`
	Title      string     `validate:"required,max=500"`
	TaskType   string     `validate:"max=100"`
	DueDate    *time.Time
	StatusID   int        `validate:"gte=0"`
	PriorityID int        `validate:"gte=0"`
	AssigneeID string
	ContactID  *int64
	CompanyID  *int64
}

// TaskResult is the outcome reported by a TaskCreator. A rejected request is reported
// with Success false and a Message, not as an error.
type TaskResult struct {
	Success bool
	Message string
	TaskID  int64
}

// TaskCreator creates tasks together with their audit activity.
type TaskCreator interface {
	CreateTask(ctx context.Context, request TaskRequest) (TaskResult, error)
}

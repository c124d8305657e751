package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dukex/salesflow/pkg/models"
	"github.com/dukex/salesflow/pkg/persistence"
	"github.com/dukex/salesflow/pkg/protocol"
	"github.com/go-playground/validator/v10"
)

// Task creates CRM tasks. Every task is written together with a task_created activity in
// its own session, independent from any session of the caller.
type Task struct {
	persistence persistence.Persistence
	validate    *validator.Validate
	logger      *slog.Logger
}

// NewTask creates a new task service.
func NewTask(persistence persistence.Persistence, logger *slog.Logger) *Task {
	return &Task{
		persistence: persistence,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		logger:      logger.With("module", "task_service"),
	}
}

// CreateTask validates and persists a task. Invalid requests are reported through the
// result; only storage failures are returned as errors.
func (t *Task) CreateTask(ctx context.Context, request protocol.TaskRequest) (protocol.TaskResult, error) {
	request.Title = strings.TrimSpace(request.Title)

	err := t.validate.Struct(request)
	if err != nil {
		return protocol.TaskResult{Success: false, Message: "invalid task request: " + describeValidation(err)}, nil
	}

	session, err := t.persistence.Begin(ctx)
	if err != nil {
		return protocol.TaskResult{}, fmt.Errorf("failed to begin session: %w", err)
	}

	defer func() {
		if rbErr := session.Rollback(); rbErr != nil {
			t.logger.ErrorContext(ctx, "Failed to rollback task session", "error", rbErr)
		}
	}()

	task := &models.Task{
		TenantID:   request.TenantID,
		Title:      request.Title,
		TaskType:   request.TaskType,
		DueDate:    request.DueDate,
		StatusID:   request.StatusID,
		PriorityID: request.PriorityID,
		AssigneeID: request.AssigneeID,
		ContactID:  request.ContactID,
		CompanyID:  request.CompanyID,
	}

	err = session.Tasks().Create(ctx, task)
	if err != nil {
		return protocol.TaskResult{}, fmt.Errorf("failed to create task: %w", err)
	}

	activity := &models.Activity{
		TenantID:  request.TenantID,
		Type:      models.ActivityTypeTaskCreated,
		Summary:   "Task created: " + task.Title,
		ContactID: request.ContactID,
		CompanyID: request.CompanyID,
		TaskID:    &task.ID,
	}

	err = session.Activities().Create(ctx, activity)
	if err != nil {
		return protocol.TaskResult{}, fmt.Errorf("failed to record task activity: %w", err)
	}

	err = session.Commit()
	if err != nil {
		return protocol.TaskResult{}, fmt.Errorf("failed to commit task: %w", err)
	}

	return protocol.TaskResult{Success: true, Message: "Task created", TaskID: task.ID}, nil
}

func describeValidation(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err.Error()
	}

	parts := make([]string, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		parts = append(parts, fmt.Sprintf("%s failed on '%s'", fieldErr.Field(), fieldErr.Tag()))
	}

	return strings.Join(parts, ", ")
}

// Package createtask implements the CreateTask workflow action.
package createtask

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/salesflow/pkg/actions"
	"github.com/dukex/salesflow/pkg/codec"
	"github.com/dukex/salesflow/pkg/models"
	"github.com/dukex/salesflow/pkg/persistence"
	"github.com/dukex/salesflow/pkg/protocol"
)

const SchemaVersion = 1

// AssignToContactOwner assigns the task to the owner of the contact.
const AssignToContactOwner = "ContactOwner"

// Parameters configures a CreateTask action. AssignedTo is either AssignToContactOwner or
// a literal assignee identifier; empty leaves the task unassigned.
type Parameters struct {
	Title      string `json:"Title"      validate:"required,max=500"`
	DaysDue    int    `json:"DaysDue"`
	TaskType   string `json:"TaskType"   validate:"max=100"`
	AssignedTo string `json:"AssignedTo"`
	PriorityID int    `json:"PriorityId" validate:"gte=0"`
	StatusID   int    `json:"StatusId"   validate:"gte=0"`
}

func Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"Title": map[string]any{
				"type":      "string",
				"minLength": 1,
				"maxLength": 500,
			},
			"DaysDue": map[string]any{
				"type":        "integer",
				"description": "Days from execution time until the task is due.",
			},
			"TaskType": map[string]any{
				"type": "string",
			},
			"AssignedTo": map[string]any{
				"type":        "string",
				"description": "\"ContactOwner\" or an assignee identifier.",
				"examples":    []any{AssignToContactOwner},
			},
			"PriorityId": map[string]any{
				"type":    "integer",
				"minimum": 0,
			},
			"StatusId": map[string]any{
				"type":    "integer",
				"minimum": 0,
			},
		},
		"required": []any{"Title"},
	}
}

// Option configures an Executor.
type Option func(*Executor)

// WithClock overrides the time source used to compute due dates.
func WithClock(now func() time.Time) Option {
	return func(e *Executor) {
		e.now = now
	}
}

// Executor creates a follow-up task for the contact behind the triggering entity.
type Executor struct {
	codec   *codec.Codec[Parameters]
	creator protocol.TaskCreator
	now     func() time.Time
}

func NewExecutor(creator protocol.TaskCreator, opts ...Option) *Executor {
	e := &Executor{
		codec:   codec.MustNew[Parameters](models.ActionKindCreateTask, SchemaVersion, Schema()),
		creator: creator,
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

func (e *Executor) Kind() models.ActionKind {
	return models.ActionKindCreateTask
}

func (e *Executor) ValidateParameters(raw string) error {
	return e.codec.Validate(raw)
}

func (e *Executor) Encode(params Parameters) (string, error) {
	return e.codec.Encode(params)
}

func (e *Executor) Execute(ctx context.Context, execCtx protocol.ExecutionContext, logger *slog.Logger) error {
	contact, err := actions.ResolveContact(ctx, execCtx.Subject, execCtx.Session.Contacts())

	switch {
	case errors.Is(err, actions.ErrNoSubjectContact):
		logger.WarnContext(ctx, "No contact associated with the triggering entity, skipping",
			"subject", models.SubjectKind(execCtx.Subject))

		return protocol.Skip("no contact associated with the triggering entity")
	case persistence.IsContactNotFound(err):
		logger.ErrorContext(ctx, "Contact associated with the triggering entity not found, skipping", "error", err)

		return protocol.Skip("contact not found")
	case err != nil:
		return fmt.Errorf("failed to resolve contact: %w", err)
	}

	logger = logger.With("contact_id", contact.ID)

	params, err := e.codec.Decode(execCtx.Action.ParametersJSON)
	if err != nil {
		logger.ErrorContext(ctx, "Invalid CreateTask parameters, skipping", "error", err)

		return protocol.Skip("invalid parameters")
	}

	assignee := params.AssignedTo
	if assignee == AssignToContactOwner {
		assignee = contact.OwnerID
		if assignee == "" {
			logger.WarnContext(ctx, "Contact has no owner, the task will be unassigned")
		}
	}

	dueDate := e.now().UTC().AddDate(0, 0, params.DaysDue)
	contactID := contact.ID

	request := protocol.TaskRequest{
		TenantID:   contact.TenantID,
		Title:      params.Title,
		TaskType:   params.TaskType,
		DueDate:    &dueDate,
		StatusID:   params.StatusID,
		PriorityID: params.PriorityID,
		AssigneeID: assignee,
		ContactID:  &contactID,
		CompanyID:  contact.CompanyID,
	}

	result, err := e.creator.CreateTask(ctx, request)
	if err != nil {
		return fmt.Errorf("failed to create task for contact %d: %w", contactID, err)
	}

	if !result.Success {
		logger.ErrorContext(ctx, "Task creation was rejected", "message", result.Message)

		return protocol.Skip("task creation rejected: " + result.Message)
	}

	logger.InfoContext(ctx, "Task created",
		"task_id", result.TaskID,
		"assignee_id", assignee,
		"due_date", dueDate)

	return nil
}

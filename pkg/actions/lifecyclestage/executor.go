// Package lifecyclestage implements the ChangeLifeCycleStage workflow action.
package lifecyclestage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dukex/salesflow/pkg/actions"
	"github.com/dukex/salesflow/pkg/codec"
	"github.com/dukex/salesflow/pkg/models"
	"github.com/dukex/salesflow/pkg/protocol"
)

const SchemaVersion = 1

type Parameters struct {
	NewStageID int `json:"NewStageId" validate:"required,gte=1"`
}

func Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"NewStageId": map[string]any{
				"type":        "integer",
				"minimum":     1,
				"description": "Identifier of the life cycle stage assigned to the contact.",
			},
		},
		"required": []any{"NewStageId"},
	}
}

// Executor moves the contact behind the triggering entity to another life cycle stage.
type Executor struct {
	codec *codec.Codec[Parameters]
}

func NewExecutor() *Executor {
	return &Executor{
		codec: codec.MustNew[Parameters](models.ActionKindChangeLifeCycleStage, SchemaVersion, Schema()),
	}
}

func (e *Executor) Kind() models.ActionKind {
	return models.ActionKindChangeLifeCycleStage
}

func (e *Executor) ValidateParameters(raw string) error {
	return e.codec.Validate(raw)
}

func (e *Executor) Encode(params Parameters) (string, error) {
	return e.codec.Encode(params)
}

func (e *Executor) Execute(ctx context.Context, execCtx protocol.ExecutionContext, logger *slog.Logger) error {
	contactID, ok := models.ContactIDOf(execCtx.Subject)
	if !ok {
		logger.WarnContext(ctx, "No contact associated with the triggering entity, skipping",
			"subject", models.SubjectKind(execCtx.Subject))

		return protocol.Skip("no contact associated with the triggering entity")
	}

	logger = logger.With("contact_id", contactID)

	params, err := e.codec.Decode(execCtx.Action.ParametersJSON)
	if err != nil {
		logger.ErrorContext(ctx, "Invalid ChangeLifeCycleStage parameters, skipping", "error", err)

		return protocol.Skip("invalid parameters")
	}

	contacts := execCtx.Session.Contacts()

	contact, found, err := actions.LoadContact(ctx, contacts, contactID)
	if err != nil {
		return fmt.Errorf("failed to load contact %d: %w", contactID, err)
	}

	if !found {
		logger.ErrorContext(ctx, "Contact not found, skipping")

		return protocol.Skip("contact not found")
	}

	contact.LifeCycleStageID = params.NewStageID

	err = contacts.Update(ctx, contact)
	if err != nil {
		return fmt.Errorf("failed to update life cycle stage of contact %d: %w", contactID, err)
	}

	logger.InfoContext(ctx, "Contact life cycle stage changed", "life_cycle_stage_id", params.NewStageID)

	return nil
}

// Package leadstatus implements the ChangeLeadStatus workflow action.
package leadstatus

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dukex/salesflow/pkg/actions"
	"github.com/dukex/salesflow/pkg/codec"
	"github.com/dukex/salesflow/pkg/models"
	"github.com/dukex/salesflow/pkg/protocol"
)

// SchemaVersion is the current version of the ChangeLeadStatus parameters.
const SchemaVersion = 1

// Parameters configures a ChangeLeadStatus action.
type Parameters struct {
	NewLeadStatus models.LeadStatus `json:"NewLeadStatus" validate:"required"`
}

// Schema returns the JSON schema of the ChangeLeadStatus parameters.
func Schema() map[string]any {
	names := make([]any, 0)
	for status := models.LeadStatusNew; status.IsValid(); status++ {
		names = append(names, status.String())
	}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"NewLeadStatus": map[string]any{
				"description": "Lead status assigned to the contact, by name or numeric value.",
				"oneOf": []any{
					map[string]any{"type": "string", "enum": names},
					map[string]any{"type": "integer", "minimum": 1},
				},
			},
		},
		"required": []any{"NewLeadStatus"},
	}
}

// Executor sets the lead status of the contact behind the triggering entity.
type Executor struct {
	codec *codec.Codec[Parameters]
}

func NewExecutor() *Executor {
	return &Executor{
		codec: codec.MustNew[Parameters](models.ActionKindChangeLeadStatus, SchemaVersion, Schema()),
	}
}

func (e *Executor) Kind() models.ActionKind {
	return models.ActionKindChangeLeadStatus
}

func (e *Executor) ValidateParameters(raw string) error {
	return e.codec.Validate(raw)
}

// Encode serializes parameters for storage on a workflow action.
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
		logger.ErrorContext(ctx, "Invalid ChangeLeadStatus parameters, skipping", "error", err)

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

	previous := contact.LeadStatus
	contact.LeadStatus = params.NewLeadStatus

	err = contacts.Update(ctx, contact)
	if err != nil {
		return fmt.Errorf("failed to update lead status of contact %d: %w", contactID, err)
	}

	logger.InfoContext(ctx, "Contact lead status changed",
		"previous_lead_status", previous.String(),
		"lead_status", contact.LeadStatus.String())

	return nil
}

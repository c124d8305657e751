// Package protocol defines the contracts between the workflow engine, the action
// executors and their downstream collaborators.
package protocol

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dukex/salesflow/pkg/models"
	"github.com/dukex/salesflow/pkg/persistence"
)

// ExecutionContext is everything an executor receives for a single action dispatch.
type ExecutionContext struct {
	WorkflowID int64
	TenantID   int64
	Trigger    models.Trigger
	Action     *models.WorkflowAction
	Subject    models.Subject

	// Session is leased for this action only. The engine commits it when Execute returns
	// nil and rolls it back otherwise.
	Session persistence.Session
}

// Executor performs the side effect of one action kind.
//
// Execute returns nil when the side effect was applied. "Nothing to do" outcomes (no
// resolvable contact, undecodable parameters, missing records) are logged by the executor
// and returned through Skip. Any other error is an infrastructure failure.
type Executor interface {
	Kind() models.ActionKind
	Execute(ctx context.Context, execCtx ExecutionContext, logger *slog.Logger) error
}

// ParameterValidator is implemented by executors that can check a parameters payload
// without running it.
type ParameterValidator interface {
	ValidateParameters(raw string) error
}

// ErrActionSkipped matches every error returned by Skip.
var ErrActionSkipped = errors.New("action skipped")

// SkipError reports an action that was not applied. The engine rolls back its session and
// reports it as skipped instead of failed.
type SkipError struct {
	Reason string
}

func (e *SkipError) Error() string {
	return fmt.Sprintf("%s: %s", ErrActionSkipped, e.Reason)
}

func (e *SkipError) Is(target error) bool {
	return target == ErrActionSkipped
}

// Skip reports that an action was not applied for reason.
func Skip(reason string) error {
	return &SkipError{Reason: reason}
}

// IsSkipped reports whether err was returned by Skip.
func IsSkipped(err error) bool {
	return errors.Is(err, ErrActionSkipped)
}

// Package workflow runs the tenant's active workflows when a CRM trigger fires.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/dukex/salesflow/pkg/eventbus"
	"github.com/dukex/salesflow/pkg/events"
	"github.com/dukex/salesflow/pkg/models"
	"github.com/dukex/salesflow/pkg/otelhelper"
	"github.com/dukex/salesflow/pkg/persistence"
	"github.com/dukex/salesflow/pkg/protocol"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ErrExecutorPanic wraps the value recovered from a panicking executor.
var ErrExecutorPanic = errors.New("executor panicked")

// DefinitionStore is the read side of the workflow repository the engine depends on.
type DefinitionStore interface {
	FindActive(ctx context.Context, tenantID int64, trigger models.Trigger) ([]*models.Workflow, error)
}

// SessionProvider leases persistence sessions.
type SessionProvider interface {
	Begin(ctx context.Context) (persistence.Session, error)
}

// ExecutorLookup resolves the executor of an action kind. *registry.Registry implements it.
type ExecutorLookup interface {
	Executor(kind models.ActionKind) (protocol.Executor, bool)
}

type Option func(*Engine)

func WithTracer(tracer trace.Tracer) Option {
	return func(e *Engine) {
		e.tracer = tracer
	}
}

// WithPublisher publishes a workflow.action.completed, workflow.action.skipped or
// workflow.action.failed event for every dispatched action.
func WithPublisher(publisher eventbus.EventPublisher) Option {
	return func(e *Engine) {
		e.publisher = publisher
	}
}

func WithWorkerID(workerID string) Option {
	return func(e *Engine) {
		e.workerID = workerID
	}
}

type Engine struct {
	definitions DefinitionStore
	sessions    SessionProvider
	executors   ExecutorLookup
	logger      *slog.Logger
	tracer      trace.Tracer
	publisher   eventbus.EventPublisher
	workerID    string
}

func NewEngine(definitions DefinitionStore, sessions SessionProvider, executors ExecutorLookup, logger *slog.Logger, opts ...Option) *Engine {
	e := &Engine{
		definitions: definitions,
		sessions:    sessions,
		executors:   executors,
		logger:      logger.With("module", "workflow_engine"),
		tracer:      otelhelper.NoopTracer(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// RunTriggers executes, in store order, every action of every active workflow of the
// subject's tenant bound to trigger. Each action runs in its own session and its failure
// is logged without stopping the others. Only a failing definition lookup is returned.
func (e *Engine) RunTriggers(ctx context.Context, trigger models.Trigger, subject models.Subject) error {
	logger := e.logger.With("trigger", trigger.String(), "subject", models.SubjectKind(subject))

	tenantID, ok := models.TenantOf(subject)
	if !ok {
		logger.WarnContext(ctx, "Cannot resolve tenant of the triggering entity, skipping")

		return nil
	}

	logger = logger.With("tenant_id", tenantID)

	if contactID, ok := models.ContactIDOf(subject); ok {
		logger = logger.With("contact_id", contactID)
	}

	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "workflow.run_triggers",
		attribute.String(otelhelper.TriggerKey, trigger.String()),
		attribute.Int64(otelhelper.TenantIDKey, tenantID),
		attribute.String(otelhelper.SubjectKindKey, models.SubjectKind(subject)),
	)
	defer span.End()

	workflows, err := e.definitions.FindActive(ctx, tenantID, trigger)
	if err != nil {
		otelhelper.SetError(span, err)
		logger.ErrorContext(ctx, "Failed to find active workflows", "error", err)

		return fmt.Errorf("failed to find active workflows for %s: %w", trigger, err)
	}

	if len(workflows) == 0 {
		logger.DebugContext(ctx, "No workflows match trigger")

		return nil
	}

	for _, workflow := range workflows {
		if !workflow.Matches(trigger, tenantID) {
			logger.WarnContext(ctx, "Definition store returned a workflow that does not match, skipping",
				"workflow_id", workflow.ID)

			continue
		}

		workflowLogger := logger.With("workflow_id", workflow.ID)
		workflowLogger.InfoContext(ctx, "Running workflow", "actions", len(workflow.Actions))

		for _, action := range workflow.Actions {
			e.runAction(ctx, workflowLogger, protocol.ExecutionContext{
				WorkflowID: workflow.ID,
				TenantID:   tenantID,
				Trigger:    trigger,
				Action:     action,
				Subject:    subject,
			})
		}
	}

	return nil
}

// Fire runs the triggers and logs a failed invocation instead of returning it, so event
// sources never fail the operation that raised the trigger.
func (e *Engine) Fire(ctx context.Context, trigger models.Trigger, subject models.Subject) {
	err := e.RunTriggers(ctx, trigger, subject)
	if err != nil {
		e.logger.ErrorContext(ctx, "Workflow trigger invocation failed",
			"trigger", trigger.String(),
			"error", err)
	}
}

func (e *Engine) runAction(ctx context.Context, logger *slog.Logger, execCtx protocol.ExecutionContext) {
	action := execCtx.Action
	logger = logger.With("action_id", action.ID, "action_kind", action.Kind.String())

	executor, ok := e.executors.Executor(action.Kind)
	if !ok {
		logger.WarnContext(ctx, "No executor registered for action kind, skipping")

		return
	}

	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "workflow.action",
		attribute.Int64(otelhelper.WorkflowIDKey, execCtx.WorkflowID),
		attribute.Int64(otelhelper.ActionIDKey, action.ID),
		attribute.String(otelhelper.ActionKindKey, action.Kind.String()),
	)
	defer span.End()

	started := time.Now()
	err := e.dispatch(ctx, executor, execCtx, logger)
	duration := time.Since(started)

	switch {
	case protocol.IsSkipped(err):
		logger.InfoContext(ctx, "Action skipped", "reason", skipReason(err), "duration_ms", duration.Milliseconds())
	case err != nil:
		otelhelper.SetError(span, err, attribute.Int64(otelhelper.ActionIDKey, action.ID))
		logger.ErrorContext(ctx, "Action failed", "error", err, "duration_ms", duration.Milliseconds())
	default:
		logger.InfoContext(ctx, "Action completed", "duration_ms", duration.Milliseconds())
	}

	e.publishOutcome(ctx, logger, execCtx, duration, err)
}

func skipReason(err error) string {
	var skip *protocol.SkipError
	if errors.As(err, &skip) {
		return skip.Reason
	}

	return err.Error()
}

// dispatch leases a session for one action, commits it when the executor succeeds and
// rolls it back otherwise, skips included. A panic in the executor is returned as ErrExecutorPanic.
func (e *Engine) dispatch(ctx context.Context, executor protocol.Executor, execCtx protocol.ExecutionContext, logger *slog.Logger) (err error) {
	session, err := e.sessions.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin session: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrExecutorPanic, r)
		}

		if err != nil {
			rollbackErr := session.Rollback()
			if rollbackErr != nil {
				logger.ErrorContext(ctx, "Failed to roll back session", "error", rollbackErr)
			}
		}
	}()

	execCtx.Session = session

	err = executor.Execute(ctx, execCtx, logger)
	if err != nil {
		return err
	}

	err = session.Commit()
	if err != nil {
		return fmt.Errorf("failed to commit session: %w", err)
	}

	return nil
}

func (e *Engine) publishOutcome(ctx context.Context, logger *slog.Logger, execCtx protocol.ExecutionContext, duration time.Duration, actionErr error) {
	if e.publisher == nil {
		return
	}

	outcome := events.ActionOutcome{
		WorkflowID: execCtx.WorkflowID,
		ActionID:   execCtx.Action.ID,
		ActionKind: execCtx.Action.Kind,
		Trigger:    execCtx.Trigger,
		DurationMs: duration.Milliseconds(),
	}

	if contactID, ok := models.ContactIDOf(execCtx.Subject); ok {
		outcome.ContactID = &contactID
	}

	var event eventbus.Event

	switch {
	case protocol.IsSkipped(actionErr):
		skipped := events.WorkflowActionSkipped{
			BaseEvent:     events.NewBaseEvent(events.WorkflowActionSkippedEvent, execCtx.TenantID),
			ActionOutcome: outcome,
			Reason:        skipReason(actionErr),
		}
		skipped.WorkerID = e.workerID
		event = skipped
	case actionErr != nil:
		failed := events.WorkflowActionFailed{
			BaseEvent:     events.NewBaseEvent(events.WorkflowActionFailedEvent, execCtx.TenantID),
			ActionOutcome: outcome,
			Error:         actionErr.Error(),
		}
		failed.WorkerID = e.workerID
		event = failed
	default:
		completed := events.WorkflowActionCompleted{
			BaseEvent:     events.NewBaseEvent(events.WorkflowActionCompletedEvent, execCtx.TenantID),
			ActionOutcome: outcome,
		}
		completed.WorkerID = e.workerID
		event = completed
	}

	err := e.publisher.Publish(ctx, strconv.FormatInt(execCtx.TenantID, 10), event)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to publish action outcome", "error", err, "event_type", event.GetType())
	}
}

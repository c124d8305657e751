package main

import (
	"context"
	"log/slog"

	"github.com/dukex/salesflow/pkg/eventbus"
	"github.com/dukex/salesflow/pkg/events"
	"github.com/dukex/salesflow/pkg/models"
)

// TriggerRunner is the part of the workflow engine the worker drives.
type TriggerRunner interface {
	Fire(ctx context.Context, trigger models.Trigger, subject models.Subject)
}

// WorkerManager turns CRM domain events from the bus into engine invocations.
type WorkerManager struct {
	id       string
	logger   *slog.Logger
	engine   TriggerRunner
	eventBus eventbus.EventBus
}

func NewWorkerManager(id string, engine TriggerRunner, eventBus eventbus.EventBus, logger *slog.Logger) *WorkerManager {
	return &WorkerManager{
		id:       id,
		logger:   logger.With("module", "salesflow-worker"),
		engine:   engine,
		eventBus: eventBus,
	}
}

var triggerEvents = []events.EventType{
	events.ContactCreatedEvent,
	events.ContactLeadStatusChangedEvent,
	events.TaskCreatedEvent,
	events.TaskCompletedEvent,
}

// Start subscribes to the CRM events and blocks until ctx is done.
func (w *WorkerManager) Start(ctx context.Context) error {
	w.logger.InfoContext(ctx, "Starting worker manager")

	for _, eventType := range triggerEvents {
		err := w.eventBus.Handle(eventType, w.handleTriggerEvent)
		if err != nil {
			return err
		}
	}

	err := w.eventBus.Subscribe(ctx)
	if err != nil {
		w.logger.ErrorContext(ctx, "Failed to subscribe to event bus", "error", err)

		return err
	}

	w.logger.InfoContext(ctx, "Worker started successfully")

	<-ctx.Done()

	w.logger.InfoContext(ctx, "Shutting down worker...")

	return nil
}

// handleTriggerEvent always acknowledges the event. Action failures are logged by the engine.
func (w *WorkerManager) handleTriggerEvent(ctx context.Context, event any) error {
	trigger, subject, err := events.TriggerOf(event)
	if err != nil {
		w.logger.ErrorContext(ctx, "Event does not map to a workflow trigger", "error", err)

		return nil
	}

	w.logger.DebugContext(ctx, "Processing trigger event", "trigger", trigger.String())

	w.engine.Fire(ctx, trigger, subject)

	return nil
}

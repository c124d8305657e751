// Package events defines the CRM domain events consumed by the workflow worker and the
// outcome events published by the workflow engine.
package events

import (
	"time"

	"github.com/dukex/salesflow/pkg/models"
	"github.com/google/uuid"
)

type EventType string

// Topic carries every salesflow event; consumers dispatch on the event type metadata.
const Topic = "salesflow.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	// CRM domain events raised after the originating change is committed.
	ContactCreatedEvent           EventType = "contact.created"
	ContactLeadStatusChangedEvent EventType = "contact.lead_status_changed"
	TaskCreatedEvent              EventType = "task.created"
	TaskCompletedEvent            EventType = "task.completed"

	// Workflow engine outcome events.
	WorkflowActionCompletedEvent EventType = "workflow.action.completed"
	WorkflowActionFailedEvent    EventType = "workflow.action.failed"
	WorkflowActionSkippedEvent   EventType = "workflow.action.skipped"
)

type BaseEvent struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	TenantID  int64          `json:"tenant_id"`
	WorkerID  string         `json:"worker_id,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// NewBaseEvent creates a base event with a fresh identifier and the current time.
func NewBaseEvent(eventType EventType, tenantID int64) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		TenantID:  tenantID,
		Metadata:  make(map[string]any),
	}
}

// ContactCreated is raised after a contact is inserted.
type ContactCreated struct {
	BaseEvent

	Contact models.Contact `json:"contact"`
}

func (ContactCreated) GetType() EventType {
	return ContactCreatedEvent
}

// ContactLeadStatusChanged is raised after the lead status of a contact changes. Contact
// holds the state after the change.
type ContactLeadStatusChanged struct {
	BaseEvent

	Contact            models.Contact    `json:"contact"`
	PreviousLeadStatus models.LeadStatus `json:"previous_lead_status,omitempty"`
}

func (ContactLeadStatusChanged) GetType() EventType {
	return ContactLeadStatusChangedEvent
}

type TaskCreated struct {
	BaseEvent

	Task models.Task `json:"task"`
}

func (TaskCreated) GetType() EventType {
	return TaskCreatedEvent
}

type TaskCompleted struct {
	BaseEvent

	Task models.Task `json:"task"`
}

func (TaskCompleted) GetType() EventType {
	return TaskCompletedEvent
}

// ActionOutcome identifies the action an outcome event reports on.
type ActionOutcome struct {
	WorkflowID int64             `json:"workflow_id"`
	ActionID   int64             `json:"action_id"`
	ActionKind models.ActionKind `json:"action_kind"`
	Trigger    models.Trigger    `json:"trigger"`
	ContactID  *int64            `json:"contact_id,omitempty"`
	DurationMs int64             `json:"duration_ms"`
}

type WorkflowActionCompleted struct {
	BaseEvent
	ActionOutcome
}

func (WorkflowActionCompleted) GetType() EventType {
	return WorkflowActionCompletedEvent
}

type WorkflowActionFailed struct {
	BaseEvent
	ActionOutcome

	Error string `json:"error"`
}

func (WorkflowActionFailed) GetType() EventType {
	return WorkflowActionFailedEvent
}

// WorkflowActionSkipped reports an action whose executor ran but chose not to apply it,
// for example because the triggering entity has no contact.
type WorkflowActionSkipped struct {
	BaseEvent
	ActionOutcome

	Reason string `json:"reason"`
}

func (WorkflowActionSkipped) GetType() EventType {
	return WorkflowActionSkippedEvent
}

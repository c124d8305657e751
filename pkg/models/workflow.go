// Package models defines the CRM workflow automation domain models.
package models

import "time"

// Workflow is a tenant-owned automation rule binding a trigger to an ordered list of actions.
type Workflow struct {
	ID        int64             `json:"id"         yaml:"id,omitempty"`
	Name      string            `json:"name"       yaml:"name"         validate:"required,min=1"`
	Trigger   Trigger           `json:"trigger"    yaml:"trigger"      validate:"required"`
	IsActive  bool              `json:"is_active"  yaml:"is_active"`
	TenantID  int64             `json:"tenant_id"  yaml:"tenant_id"    validate:"required"`
	Actions   []*WorkflowAction `json:"actions"    yaml:"actions"      validate:"dive"`
	CreatedAt time.Time         `json:"created_at" yaml:"-"`
	UpdatedAt time.Time         `json:"updated_at" yaml:"-"`
}

// WorkflowAction is one step of a workflow. ParametersJSON is decoded lazily by the
// executor registered for Kind; ConditionJSON is stored but never evaluated.
type WorkflowAction struct {
	ID             int64      `json:"id"                       yaml:"id,omitempty"`
	WorkflowID     int64      `json:"workflow_id"              yaml:"-"`
	Kind           ActionKind `json:"kind"                     yaml:"kind"                     validate:"required"`
	Position       int        `json:"position"                 yaml:"-"`
	ConditionJSON  string     `json:"condition_json,omitempty" yaml:"condition_json,omitempty"`
	ParametersJSON string     `json:"parameters_json"          yaml:"parameters_json"`
}

// Matches reports whether the workflow is eligible for the given trigger and tenant.
func (w *Workflow) Matches(trigger Trigger, tenantID int64) bool {
	return w.IsActive && w.Trigger == trigger && w.TenantID == tenantID
}

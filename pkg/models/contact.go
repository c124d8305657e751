package models

import "time"

// Contact holds the contact fields the workflow engine reads or mutates.
type Contact struct {
	ID               int64      `json:"id"`
	TenantID         int64      `json:"tenant_id"`
	FirstName        string     `json:"first_name,omitempty"`
	LastName         string     `json:"last_name,omitempty"`
	Email            string     `json:"email,omitempty"`
	OwnerID          string     `json:"owner_id,omitempty"`
	LeadStatus       LeadStatus `json:"lead_status,omitempty"`
	LifeCycleStageID int        `json:"life_cycle_stage_id,omitempty"`
	CompanyID        *int64     `json:"company_id,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// Task is a CRM to-do item, optionally associated with a contact and a company.
type Task struct {
	ID          int64      `json:"id"`
	TenantID    int64      `json:"tenant_id"`
	Title       string     `json:"title"`
	TaskType    string     `json:"task_type,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	StatusID    int        `json:"status_id,omitempty"`
	PriorityID  int        `json:"priority_id,omitempty"`
	AssigneeID  string     `json:"assignee_id,omitempty"`
	ContactID   *int64     `json:"contact_id,omitempty"`
	CompanyID   *int64     `json:"company_id,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ActivityType classifies audit entries on a contact timeline.
type ActivityType string

const (
	ActivityTypeTaskCreated ActivityType = "task_created"
)

// Activity is an audit record written alongside automated changes.
type Activity struct {
	ID        int64        `json:"id"`
	TenantID  int64        `json:"tenant_id"`
	Type      ActivityType `json:"type"`
	Summary   string       `json:"summary"`
	ContactID *int64       `json:"contact_id,omitempty"`
	CompanyID *int64       `json:"company_id,omitempty"`
	TaskID    *int64       `json:"task_id,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

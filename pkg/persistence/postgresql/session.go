package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/salesflow/pkg/models"
	"github.com/dukex/salesflow/pkg/persistence"
)

type session struct {
	tx     *sql.Tx
	logger *slog.Logger
}

func (s *session) Contacts() persistence.ContactRepository {
	return &contactRepository{tx: s.tx}
}

func (s *session) Tasks() persistence.TaskRepository {
	return &taskRepository{tx: s.tx, logger: s.logger}
}

func (s *session) Activities() persistence.ActivityRepository {
	return &activityRepository{tx: s.tx, logger: s.logger}
}

func (s *session) Commit() error {
	err := s.tx.Commit()
	if err != nil {
		if errors.Is(err, sql.ErrTxDone) {
			return persistence.ErrSessionClosed
		}

		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (s *session) Rollback() error {
	err := s.tx.Rollback()
	if err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	return nil
}

type contactRepository struct {
	tx *sql.Tx
}

func (r *contactRepository) GetByID(ctx context.Context, id int64) (*models.Contact, error) {
	var (
		contact    models.Contact
		leadStatus int
		companyID  sql.NullInt64
	)

	err := r.tx.QueryRowContext(ctx, `
		SELECT id, organization_id, first_name, last_name, email, owner_id,
			   lead_status, life_cycle_stage_id, company_id, created_at, updated_at
		FROM contacts
		WHERE id = $1
	`, id).Scan(
		&contact.ID,
		&contact.TenantID,
		&contact.FirstName,
		&contact.LastName,
		&contact.Email,
		&contact.OwnerID,
		&leadStatus,
		&contact.LifeCycleStageID,
		&companyID,
		&contact.CreatedAt,
		&contact.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewContactError("GetByID", id, persistence.ErrContactNotFound)
		}

		return nil, fmt.Errorf("failed to get contact: %w", err)
	}

	contact.LeadStatus = models.LeadStatus(leadStatus)
	contact.CompanyID = int64Ptr(companyID)

	return &contact, nil
}

func (r *contactRepository) Create(ctx context.Context, contact *models.Contact) error {
	now := time.Now().UTC()
	contact.CreatedAt = now
	contact.UpdatedAt = now

	args := []any{
		contact.TenantID,
		contact.FirstName,
		contact.LastName,
		contact.Email,
		contact.OwnerID,
		int(contact.LeadStatus),
		contact.LifeCycleStageID,
		nullInt64(contact.CompanyID),
		contact.CreatedAt,
		contact.UpdatedAt,
	}

	if contact.ID == 0 {
		err := r.tx.QueryRowContext(ctx, `
			INSERT INTO contacts (organization_id, first_name, last_name, email, owner_id,
				lead_status, life_cycle_stage_id, company_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING id
		`, args...).Scan(&contact.ID)
		if err != nil {
			return fmt.Errorf("failed to create contact: %w", err)
		}

		return nil
	}

	_, err := r.tx.ExecContext(ctx, `
		INSERT INTO contacts (organization_id, first_name, last_name, email, owner_id,
			lead_status, life_cycle_stage_id, company_id, created_at, updated_at, id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, append(args, contact.ID)...)
	if err != nil {
		return fmt.Errorf("failed to create contact: %w", err)
	}

	return resyncSequence(ctx, r.tx, "contacts")
}

func (r *contactRepository) Update(ctx context.Context, contact *models.Contact) error {
	contact.UpdatedAt = time.Now().UTC()

	result, err := r.tx.ExecContext(ctx, `
		UPDATE contacts SET
			organization_id = $2,
			first_name = $3,
			last_name = $4,
			email = $5,
			owner_id = $6,
			lead_status = $7,
			life_cycle_stage_id = $8,
			company_id = $9,
			updated_at = $10
		WHERE id = $1
	`,
		contact.ID,
		contact.TenantID,
		contact.FirstName,
		contact.LastName,
		contact.Email,
		contact.OwnerID,
		int(contact.LeadStatus),
		contact.LifeCycleStageID,
		nullInt64(contact.CompanyID),
		contact.UpdatedAt,
	)
	if err != nil {
		return persistence.NewContactError("Update", contact.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewContactError("Update", contact.ID, err)
	}

	if affected == 0 {
		return persistence.NewContactError("Update", contact.ID, persistence.ErrContactNotFound)
	}

	return nil
}

const taskColumns = `id, organization_id, title, task_type, due_date, status_id, priority_id,
		assignee_id, contact_id, company_id, completed_at, created_at`

type taskRepository struct {
	tx     *sql.Tx
	logger *slog.Logger
}

func (r *taskRepository) GetByID(ctx context.Context, id int64) (*models.Task, error) {
	task, err := scanTask(r.tx.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewTaskError("GetByID", id, persistence.ErrTaskNotFound)
		}

		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	return task, nil
}

func (r *taskRepository) Create(ctx context.Context, task *models.Task) error {
	task.CreatedAt = time.Now().UTC()

	var dueDate, completedAt sql.NullTime
	if task.DueDate != nil {
		dueDate = sql.NullTime{Time: *task.DueDate, Valid: true}
	}

	if task.CompletedAt != nil {
		completedAt = sql.NullTime{Time: *task.CompletedAt, Valid: true}
	}

	err := r.tx.QueryRowContext(ctx, `
		INSERT INTO tasks (organization_id, title, task_type, due_date, status_id, priority_id,
			assignee_id, contact_id, company_id, completed_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`,
		task.TenantID,
		task.Title,
		task.TaskType,
		dueDate,
		task.StatusID,
		task.PriorityID,
		task.AssigneeID,
		nullInt64(task.ContactID),
		nullInt64(task.CompanyID),
		completedAt,
		task.CreatedAt,
	).Scan(&task.ID)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	return nil
}

func (r *taskRepository) ListByContact(ctx context.Context, contactID int64) ([]*models.Task, error) {
	rows, err := r.tx.QueryContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE contact_id = $1 ORDER BY id`, contactID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	tasks := make([]*models.Task, 0)

	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}

		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}

	return tasks, nil
}

func scanTask(row rowScanner) (*models.Task, error) {
	var (
		task        models.Task
		dueDate     sql.NullTime
		contactID   sql.NullInt64
		companyID   sql.NullInt64
		completedAt sql.NullTime
	)

	err := row.Scan(
		&task.ID,
		&task.TenantID,
		&task.Title,
		&task.TaskType,
		&dueDate,
		&task.StatusID,
		&task.PriorityID,
		&task.AssigneeID,
		&contactID,
		&companyID,
		&completedAt,
		&task.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	task.DueDate = timePtr(dueDate)
	task.ContactID = int64Ptr(contactID)
	task.CompanyID = int64Ptr(companyID)
	task.CompletedAt = timePtr(completedAt)

	return &task, nil
}

type activityRepository struct {
	tx     *sql.Tx
	logger *slog.Logger
}

func (r *activityRepository) Create(ctx context.Context, activity *models.Activity) error {
	activity.CreatedAt = time.Now().UTC()

	err := r.tx.QueryRowContext(ctx, `
		INSERT INTO activities (organization_id, type, summary, contact_id, company_id, task_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`,
		activity.TenantID,
		string(activity.Type),
		activity.Summary,
		nullInt64(activity.ContactID),
		nullInt64(activity.CompanyID),
		nullInt64(activity.TaskID),
		activity.CreatedAt,
	).Scan(&activity.ID)
	if err != nil {
		return fmt.Errorf("failed to create activity: %w", err)
	}

	return nil
}

func (r *activityRepository) ListByContact(ctx context.Context, contactID int64) ([]*models.Activity, error) {
	rows, err := r.tx.QueryContext(ctx, `
		SELECT id, organization_id, type, summary, contact_id, company_id, task_id, created_at
		FROM activities
		WHERE contact_id = $1
		ORDER BY id
	`, contactID)
	if err != nil {
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	activities := make([]*models.Activity, 0)

	for rows.Next() {
		var (
			activity                 models.Activity
			activityType             string
			contact, company, taskID sql.NullInt64
		)

		err := rows.Scan(
			&activity.ID,
			&activity.TenantID,
			&activityType,
			&activity.Summary,
			&contact,
			&company,
			&taskID,
			&activity.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}

		activity.Type = models.ActivityType(activityType)
		activity.ContactID = int64Ptr(contact)
		activity.CompanyID = int64Ptr(company)
		activity.TaskID = int64Ptr(taskID)

		activities = append(activities, &activity)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activities: %w", err)
	}

	return activities, nil
}

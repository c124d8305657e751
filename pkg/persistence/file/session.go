package file

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dukex/salesflow/pkg/models"
	"github.com/dukex/salesflow/pkg/persistence"
)

type session struct {
	persistence *Persistence
	closed      bool

	contacts   map[int64]*models.Contact
	tasks      map[int64]*models.Task
	activities map[int64]*models.Activity
}

func newSession(p *Persistence) *session {
	return &session{
		persistence: p,
		contacts:    make(map[int64]*models.Contact),
		tasks:       make(map[int64]*models.Task),
		activities:  make(map[int64]*models.Activity),
	}
}

func (s *session) Contacts() persistence.ContactRepository {
	return &contactRepository{session: s}
}

func (s *session) Tasks() persistence.TaskRepository {
	return &taskRepository{session: s}
}

func (s *session) Activities() persistence.ActivityRepository {
	return &activityRepository{session: s}
}

// Commit writes every staged record while holding the persistence lock.
func (s *session) Commit() error {
	if s.closed {
		return persistence.ErrSessionClosed
	}

	s.closed = true

	s.persistence.mu.Lock()
	defer s.persistence.mu.Unlock()

	for id, contact := range s.contacts {
		if err := s.persistence.writeRecord(contactsCollection, id, contact); err != nil {
			return err
		}

		s.persistence.observeIDLocked(contactsCollection, id)
	}

	for id, task := range s.tasks {
		if err := s.persistence.writeRecord(tasksCollection, id, task); err != nil {
			return err
		}

		s.persistence.observeIDLocked(tasksCollection, id)
	}

	for id, activity := range s.activities {
		if err := s.persistence.writeRecord(activitiesCollection, id, activity); err != nil {
			return err
		}

		s.persistence.observeIDLocked(activitiesCollection, id)
	}

	return nil
}

func (s *session) Rollback() error {
	s.closed = true
	s.contacts = nil
	s.tasks = nil
	s.activities = nil

	return nil
}

func (s *session) ensureOpen() error {
	if s.closed {
		return persistence.ErrSessionClosed
	}

	return nil
}

type contactRepository struct {
	session *session
}

func (r *contactRepository) GetByID(_ context.Context, id int64) (*models.Contact, error) {
	if err := r.session.ensureOpen(); err != nil {
		return nil, err
	}

	if staged, ok := r.session.contacts[id]; ok {
		contact := *staged

		return &contact, nil
	}

	var contact models.Contact

	found, err := r.session.persistence.readRecord(contactsCollection, id, &contact)
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, persistence.NewContactError("GetByID", id, persistence.ErrContactNotFound)
	}

	return &contact, nil
}

func (r *contactRepository) Create(_ context.Context, contact *models.Contact) error {
	if err := r.session.ensureOpen(); err != nil {
		return err
	}

	if contact.ID == 0 {
		id, err := r.session.persistence.nextID(contactsCollection)
		if err != nil {
			return fmt.Errorf("failed to generate contact ID: %w", err)
		}

		contact.ID = id
	}

	now := time.Now().UTC()
	contact.CreatedAt = now
	contact.UpdatedAt = now

	staged := *contact
	r.session.contacts[contact.ID] = &staged

	return nil
}

func (r *contactRepository) Update(ctx context.Context, contact *models.Contact) error {
	existing, err := r.GetByID(ctx, contact.ID)
	if err != nil {
		return persistence.NewContactError("Update", contact.ID, err)
	}

	contact.CreatedAt = existing.CreatedAt
	contact.UpdatedAt = time.Now().UTC()

	staged := *contact
	r.session.contacts[contact.ID] = &staged

	return nil
}

type taskRepository struct {
	session *session
}

func (r *taskRepository) GetByID(_ context.Context, id int64) (*models.Task, error) {
	if err := r.session.ensureOpen(); err != nil {
		return nil, err
	}

	if staged, ok := r.session.tasks[id]; ok {
		task := *staged

		return &task, nil
	}

	var task models.Task

	found, err := r.session.persistence.readRecord(tasksCollection, id, &task)
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, persistence.NewTaskError("GetByID", id, persistence.ErrTaskNotFound)
	}

	return &task, nil
}

func (r *taskRepository) Create(_ context.Context, task *models.Task) error {
	if err := r.session.ensureOpen(); err != nil {
		return err
	}

	id, err := r.session.persistence.nextID(tasksCollection)
	if err != nil {
		return fmt.Errorf("failed to generate task ID: %w", err)
	}

	task.ID = id
	task.CreatedAt = time.Now().UTC()

	staged := *task
	r.session.tasks[id] = &staged

	return nil
}

func (r *taskRepository) ListByContact(ctx context.Context, contactID int64) ([]*models.Task, error) {
	if err := r.session.ensureOpen(); err != nil {
		return nil, err
	}

	ids, err := r.session.persistence.listIDs(tasksCollection)
	if err != nil {
		return nil, err
	}

	tasks := make([]*models.Task, 0)
	seen := make(map[int64]bool)

	for _, id := range ids {
		task, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		seen[id] = true

		if task.ContactID != nil && *task.ContactID == contactID {
			tasks = append(tasks, task)
		}
	}

	for id, staged := range r.session.tasks {
		if !seen[id] && staged.ContactID != nil && *staged.ContactID == contactID {
			task := *staged
			tasks = append(tasks, &task)
		}
	}

	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })

	return tasks, nil
}

type activityRepository struct {
	session *session
}

func (r *activityRepository) Create(_ context.Context, activity *models.Activity) error {
	if err := r.session.ensureOpen(); err != nil {
		return err
	}

	id, err := r.session.persistence.nextID(activitiesCollection)
	if err != nil {
		return fmt.Errorf("failed to generate activity ID: %w", err)
	}

	activity.ID = id
	activity.CreatedAt = time.Now().UTC()

	staged := *activity
	r.session.activities[id] = &staged

	return nil
}

func (r *activityRepository) ListByContact(_ context.Context, contactID int64) ([]*models.Activity, error) {
	if err := r.session.ensureOpen(); err != nil {
		return nil, err
	}

	ids, err := r.session.persistence.listIDs(activitiesCollection)
	if err != nil {
		return nil, err
	}

	activities := make([]*models.Activity, 0)
	seen := make(map[int64]bool)

	for _, id := range ids {
		var activity models.Activity

		found, err := r.session.persistence.readRecord(activitiesCollection, id, &activity)
		if err != nil {
			return nil, err
		}

		seen[id] = true

		if found && activity.ContactID != nil && *activity.ContactID == contactID {
			activities = append(activities, &activity)
		}
	}

	for id, staged := range r.session.activities {
		if !seen[id] && staged.ContactID != nil && *staged.ContactID == contactID {
			activity := *staged
			activities = append(activities, &activity)
		}
	}

	sort.Slice(activities, func(i, j int) bool { return activities[i].ID < activities[j].ID })

	return activities, nil
}

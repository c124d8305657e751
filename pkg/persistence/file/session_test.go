package file

import (
	"context"
	"testing"

	"github.com/dukex/salesflow/pkg/models"
	"github.com/dukex/salesflow/pkg/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_CommitPersistsContacts(t *testing.T) {
	ctx := context.Background()
	p := NewPersistence(t.TempDir())

	session, err := p.Begin(ctx)
	require.NoError(t, err)

	contact := &models.Contact{TenantID: 7, OwnerID: "U1", LeadStatus: models.LeadStatusNew}
	require.NoError(t, session.Contacts().Create(ctx, contact))
	assert.Equal(t, int64(1), contact.ID)
	require.NoError(t, session.Commit())

	reader, err := p.Begin(ctx)
	require.NoError(t, err)

	loaded, err := reader.Contacts().GetByID(ctx, contact.ID)
	require.NoError(t, err)
	assert.Equal(t, "U1", loaded.OwnerID)
	assert.Equal(t, models.LeadStatusNew, loaded.LeadStatus)
}

func TestSession_RollbackDiscardsWrites(t *testing.T) {
	ctx := context.Background()
	p := NewPersistence(t.TempDir())

	seed, err := p.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, seed.Contacts().Create(ctx, &models.Contact{ID: 42, TenantID: 7, LeadStatus: models.LeadStatusNew}))
	require.NoError(t, seed.Commit())

	session, err := p.Begin(ctx)
	require.NoError(t, err)

	contact, err := session.Contacts().GetByID(ctx, 42)
	require.NoError(t, err)

	contact.LeadStatus = models.LeadStatusOpen
	require.NoError(t, session.Contacts().Update(ctx, contact))

	staged, err := session.Contacts().GetByID(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, models.LeadStatusOpen, staged.LeadStatus)

	require.NoError(t, session.Rollback())

	reader, err := p.Begin(ctx)
	require.NoError(t, err)

	loaded, err := reader.Contacts().GetByID(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, models.LeadStatusNew, loaded.LeadStatus)
}

func TestSession_UseAfterCloseFails(t *testing.T) {
	ctx := context.Background()
	p := NewPersistence(t.TempDir())

	session, err := p.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, session.Commit())

	assert.ErrorIs(t, session.Commit(), persistence.ErrSessionClosed)
	assert.NoError(t, session.Rollback())

	_, err = session.Contacts().GetByID(ctx, 1)
	assert.ErrorIs(t, err, persistence.ErrSessionClosed)
}

func TestSession_ContactNotFound(t *testing.T) {
	ctx := context.Background()
	session, err := NewPersistence(t.TempDir()).Begin(ctx)
	require.NoError(t, err)

	_, err = session.Contacts().GetByID(ctx, 404)
	assert.True(t, persistence.IsContactNotFound(err))

	err = session.Contacts().Update(ctx, &models.Contact{ID: 404})
	assert.True(t, persistence.IsContactNotFound(err))
}

func TestSession_TasksAndActivitiesByContact(t *testing.T) {
	ctx := context.Background()
	p := NewPersistence(t.TempDir())
	contactID := int64(42)
	otherID := int64(43)

	session, err := p.Begin(ctx)
	require.NoError(t, err)

	require.NoError(t, session.Tasks().Create(ctx, &models.Task{TenantID: 7, Title: "first", ContactID: &contactID}))
	require.NoError(t, session.Tasks().Create(ctx, &models.Task{TenantID: 7, Title: "other", ContactID: &otherID}))
	require.NoError(t, session.Activities().Create(ctx, &models.Activity{TenantID: 7, Type: models.ActivityTypeTaskCreated, ContactID: &contactID}))

	staged, err := session.Tasks().ListByContact(ctx, contactID)
	require.NoError(t, err)
	require.Len(t, staged, 1)

	require.NoError(t, session.Commit())

	reader, err := p.Begin(ctx)
	require.NoError(t, err)

	tasks, err := reader.Tasks().ListByContact(ctx, contactID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "first", tasks[0].Title)

	task, err := reader.Tasks().GetByID(ctx, tasks[0].ID)
	require.NoError(t, err)
	assert.Equal(t, tasks[0].ID, task.ID)

	activities, err := reader.Activities().ListByContact(ctx, contactID)
	require.NoError(t, err)
	assert.Len(t, activities, 1)

	_, err = reader.Tasks().GetByID(ctx, 999)
	assert.True(t, persistence.IsTaskNotFound(err))
}

func TestPersistence_HealthCheck(t *testing.T) {
	ctx := context.Background()

	assert.NoError(t, NewPersistence(t.TempDir()).HealthCheck(ctx))
	assert.Error(t, NewPersistence("file:///does/not/exist").HealthCheck(ctx))
}

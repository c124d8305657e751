package leadstatus

import (
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/dukex/salesflow/pkg/mocks"
	"github.com/dukex/salesflow/pkg/models"
	"github.com/dukex/salesflow/pkg/persistence"
	"github.com/dukex/salesflow/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func execContext(session persistence.Session, subject models.Subject, params string) protocol.ExecutionContext {
	return protocol.ExecutionContext{
		WorkflowID: 1,
		TenantID:   7,
		Trigger:    models.TriggerContactCreated,
		Action:     &models.WorkflowAction{ID: 11, Kind: models.ActionKindChangeLeadStatus, ParametersJSON: params},
		Subject:    subject,
		Session:    session,
	}
}

func TestExecutor_Execute(t *testing.T) {
	tests := []struct {
		name   string
		params string
		want   models.LeadStatus
	}{
		{name: "by name", params: `{"NewLeadStatus":"Open"}`, want: models.LeadStatusOpen},
		{name: "by value", params: `{"NewLeadStatus":3}`, want: models.LeadStatusInProgress},
		{name: "versioned", params: `{"SchemaVersion":1,"NewLeadStatus":"Connected"}`, want: models.LeadStatusConnected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := mocks.NewMockSession()
			session.ContactRepo.On("GetByID", mock.Anything, int64(42)).
				Return(&models.Contact{ID: 42, TenantID: 7, LeadStatus: models.LeadStatusNew}, nil)
			session.ContactRepo.On("Update", mock.Anything, mock.MatchedBy(func(c *models.Contact) bool {
				return c.ID == 42 && c.LeadStatus == tt.want
			})).Return(nil)

			subject := models.ContactSubject{Contact: &models.Contact{ID: 42, TenantID: 7}}

			err := NewExecutor().Execute(t.Context(), execContext(session, subject, tt.params), testLogger())
			require.NoError(t, err)

			session.ContactRepo.AssertExpectations(t)
		})
	}
}

func TestExecutor_ResolvesContactThroughTask(t *testing.T) {
	contactID := int64(42)

	session := mocks.NewMockSession()
	session.ContactRepo.On("GetByID", mock.Anything, contactID).
		Return(&models.Contact{ID: contactID, TenantID: 7}, nil)
	session.ContactRepo.On("Update", mock.Anything, mock.Anything).Return(nil)

	subject := models.TaskSubject{Task: &models.Task{ID: 3, TenantID: 7, ContactID: &contactID}}

	err := NewExecutor().Execute(t.Context(), execContext(session, subject, `{"NewLeadStatus":"OpenDeal"}`), testLogger())
	require.NoError(t, err)

	session.ContactRepo.AssertExpectations(t)
}

func TestExecutor_Skips(t *testing.T) {
	contact := models.ContactSubject{Contact: &models.Contact{ID: 42, TenantID: 7}}

	tests := []struct {
		name    string
		subject models.Subject
		params  string
		setup   func(*mocks.MockSession)
	}{
		{
			name:    "task without contact",
			subject: models.TaskSubject{Task: &models.Task{ID: 3, TenantID: 7}},
			params:  `{"NewLeadStatus":"Open"}`,
		},
		{name: "malformed parameters", subject: contact, params: `{"NewLeadStatus":`},
		{name: "missing field", subject: contact, params: `{}`},
		{name: "unknown status", subject: contact, params: `{"NewLeadStatus":"Hot"}`},
		{name: "future schema version", subject: contact, params: `{"SchemaVersion":2,"NewLeadStatus":"Open"}`},
		{
			name:    "contact not found",
			subject: contact,
			params:  `{"NewLeadStatus":"Open"}`,
			setup: func(s *mocks.MockSession) {
				s.ContactRepo.On("GetByID", mock.Anything, int64(42)).
					Return(nil, persistence.NewContactError("GetByID", 42, persistence.ErrContactNotFound))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := mocks.NewMockSession()
			if tt.setup != nil {
				tt.setup(session)
			}

			err := NewExecutor().Execute(t.Context(), execContext(session, tt.subject, tt.params), testLogger())
			require.ErrorIs(t, err, protocol.ErrActionSkipped)

			session.ContactRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		})
	}
}

func TestExecutor_InfrastructureFailure(t *testing.T) {
	session := mocks.NewMockSession()
	session.ContactRepo.On("GetByID", mock.Anything, int64(42)).Return(&models.Contact{ID: 42}, nil)
	session.ContactRepo.On("Update", mock.Anything, mock.Anything).Return(errors.New("deadlock detected"))

	subject := models.ContactSubject{Contact: &models.Contact{ID: 42, TenantID: 7}}

	err := NewExecutor().Execute(t.Context(), execContext(session, subject, `{"NewLeadStatus":"Open"}`), testLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deadlock detected")
}

func TestExecutor_EncodeRoundTrip(t *testing.T) {
	executor := NewExecutor()

	raw, err := executor.Encode(Parameters{NewLeadStatus: models.LeadStatusBadTiming})
	require.NoError(t, err)
	assert.JSONEq(t, `{"SchemaVersion":1,"NewLeadStatus":"BadTiming"}`, raw)
	assert.NoError(t, executor.ValidateParameters(raw))
	assert.Equal(t, models.ActionKindChangeLeadStatus, executor.Kind())
}

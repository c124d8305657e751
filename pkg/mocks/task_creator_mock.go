package mocks

import (
	"context"

	"github.com/dukex/salesflow/pkg/protocol"
	"github.com/stretchr/testify/mock"
)

// MockTaskCreator is a mock implementation of protocol.TaskCreator interface.
type MockTaskCreator struct {
	mock.Mock
}

func (m *MockTaskCreator) CreateTask(ctx context.Context, request protocol.TaskRequest) (protocol.TaskResult, error) {
	args := m.Called(ctx, request)

	return args.Get(0).(protocol.TaskResult), args.Error(1)
}

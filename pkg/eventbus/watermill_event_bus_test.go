package eventbus

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/dukex/salesflow/pkg/channels/gochannel"
	"github.com/dukex/salesflow/pkg/events"
	"github.com/dukex/salesflow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBus(t *testing.T) EventBus {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	pub, sub, err := gochannel.CreateChannel(watermill.NewSlogLogger(logger), gochannel.Options{})
	require.NoError(t, err)

	bus := NewWatermillEventBus(pub, sub, logger)

	t.Cleanup(func() {
		_ = bus.Close()
	})

	return bus
}

func TestWatermillEventBus_PublishAndHandle(t *testing.T) {
	bus := newTestBus(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan *events.ContactCreated, 1)

	err := bus.Handle(events.ContactCreatedEvent, func(_ context.Context, event any) error {
		received <- event.(*events.ContactCreated)

		return nil
	})
	require.NoError(t, err)
	require.NoError(t, bus.Subscribe(ctx))

	// Events of unhandled types are acknowledged and dropped.
	require.NoError(t, bus.Publish(ctx, "7", events.TaskCompleted{
		BaseEvent: events.NewBaseEvent(events.TaskCompletedEvent, 7),
		Task:      models.Task{ID: 1, TenantID: 7},
	}))

	require.NoError(t, bus.Publish(ctx, "7", events.ContactCreated{
		BaseEvent: events.NewBaseEvent(events.ContactCreatedEvent, 7),
		Contact:   models.Contact{ID: 42, TenantID: 7, OwnerID: "U1"},
	}))

	select {
	case event := <-received:
		assert.Equal(t, int64(42), event.Contact.ID)
		assert.Equal(t, "U1", event.Contact.OwnerID)
		assert.Equal(t, int64(7), event.TenantID)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestWatermillEventBus_HandlerFailureRedelivers(t *testing.T) {
	bus := newTestBus(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	attempts := make(chan struct{}, 10)

	err := bus.Handle(events.TaskCreatedEvent, func(context.Context, any) error {
		attempts <- struct{}{}
		if len(attempts) < 2 {
			return errors.New("temporary failure")
		}

		return nil
	})
	require.NoError(t, err)
	require.NoError(t, bus.Subscribe(ctx))

	require.NoError(t, bus.Publish(ctx, "1", events.TaskCreated{
		BaseEvent: events.NewBaseEvent(events.TaskCreatedEvent, 1),
		Task:      models.Task{ID: 3, TenantID: 1},
	}))

	for range 2 {
		select {
		case <-attempts:
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for redelivery")
		}
	}
}

func TestNewEvent(t *testing.T) {
	for _, eventType := range []events.EventType{
		events.ContactCreatedEvent,
		events.ContactLeadStatusChangedEvent,
		events.TaskCreatedEvent,
		events.TaskCompletedEvent,
		events.WorkflowActionCompletedEvent,
		events.WorkflowActionFailedEvent,
		events.WorkflowActionSkippedEvent,
	} {
		event, ok := newEvent(eventType)
		require.True(t, ok, eventType)
		assert.Equal(t, eventType, event.(Event).GetType())
	}

	_, ok := newEvent("contact.deleted")
	assert.False(t, ok)
}

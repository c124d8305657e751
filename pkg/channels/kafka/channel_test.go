package kafka

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

func TestCreateChannel_NoBrokers(t *testing.T) {
	_, _, err := CreateChannel(watermill.NopLogger{}, nil, "salesflow")
	require.ErrorIs(t, err, ErrNoBrokers)

	_, _, err = CreateChannel(watermill.NopLogger{}, []string{""}, "salesflow")
	require.ErrorIs(t, err, ErrNoBrokers)
}

func TestCreateChannel_RoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping Kafka container test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("salesflow-test"))
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)

	pub, sub, err := CreateChannel(watermill.NopLogger{}, brokers, "salesflow-test")
	require.NoError(t, err)

	defer func() {
		_ = pub.Close()
		_ = sub.Close()
	}()

	msg := message.NewMessage(watermill.NewUUID(), []byte(`{"id":"1"}`))
	msg.Metadata.Set("event_type", "contact.created")
	require.NoError(t, pub.Publish("salesflow.test", msg))

	messages, err := sub.Subscribe(ctx, "salesflow.test")
	require.NoError(t, err)

	select {
	case received := <-messages:
		assert.JSONEq(t, `{"id":"1"}`, string(received.Payload))
		assert.Equal(t, "contact.created", received.Metadata.Get("event_type"))
		received.Ack()
	case <-ctx.Done():
		t.Fatal("timed out waiting for kafka message")
	}
}

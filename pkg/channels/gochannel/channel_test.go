package gochannel

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateChannel_PersistentReplaysToLateSubscriber(t *testing.T) {
	pub, sub, err := CreateChannel(watermill.NopLogger{}, Options{Persistent: true})
	require.NoError(t, err)

	defer func() { _ = pub.Close() }()

	require.NoError(t, pub.Publish("topic", message.NewMessage("1", []byte("hello"))))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	messages, err := sub.Subscribe(ctx, "topic")
	require.NoError(t, err)

	select {
	case msg := <-messages:
		assert.Equal(t, "hello", string(msg.Payload))
		msg.Ack()
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for message")
	}
}

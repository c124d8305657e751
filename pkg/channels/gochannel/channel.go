// Package gochannel provides the in-process event channel used by single-node deployments and tests.
package gochannel

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const defaultBufferSize = 1000

// Options tunes the in-process channel. The zero value is a non-persistent channel
// with a buffer of 1000 messages.
type Options struct {
	BufferSize int64
	// Persistent keeps published messages so late subscribers receive them.
	Persistent bool
}

// CreateChannel returns one GoChannel serving as both publisher and subscriber.
func CreateChannel(logger watermill.LoggerAdapter, opts Options) (*gochannel.GoChannel, *gochannel.GoChannel, error) {
	bufferSize := opts.BufferSize
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}

	pubSub := gochannel.NewGoChannel(
		gochannel.Config{
			OutputChannelBuffer:            bufferSize,
			Persistent:                     opts.Persistent,
			BlockPublishUntilSubscriberAck: false,
		},
		logger,
	)

	return pubSub, pubSub, nil
}

package cmd

import (
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/dukex/salesflow/pkg/channels/gochannel"
	"github.com/dukex/salesflow/pkg/channels/kafka"
	"github.com/dukex/salesflow/pkg/config"
	"github.com/dukex/salesflow/pkg/eventbus"
)

func NewEventBus(cfg config.Config, logger *slog.Logger) (eventbus.EventBus, error) {
	watermillLogger := watermill.NewSlogLogger(logger)

	switch cfg.EventBus {
	case config.EventBusKafka:
		pub, sub, err := kafka.CreateChannel(watermillLogger, cfg.KafkaBrokers, cfg.ServiceName)
		if err != nil {
			return nil, fmt.Errorf("failed to create Kafka pub/sub: %w", err)
		}

		return eventbus.NewWatermillEventBus(pub, sub, logger), nil
	case config.EventBusGoChannel:
		pub, sub, err := gochannel.CreateChannel(watermillLogger, gochannel.Options{})
		if err != nil {
			return nil, fmt.Errorf("failed to create in-process pub/sub: %w", err)
		}

		return eventbus.NewWatermillEventBus(pub, sub, logger), nil
	default:
		return nil, fmt.Errorf("unsupported event bus provider: %s", cfg.EventBus)
	}
}

package main

import (
	"github.com/dukex/salesflow/pkg/config"
	cli "github.com/urfave/cli/v3"
)

// loadConfig reads the --config file, when given, and applies every flag that was set
// explicitly or through its environment variable on top of it.
func loadConfig(command *cli.Command) (config.Config, error) {
	cfg := config.Default()

	if path := command.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return cfg, err
		}

		cfg = loaded
	}

	if command.IsSet("database-url") {
		cfg.DatabaseURL = command.String("database-url")
	}

	if command.IsSet("event-bus") {
		cfg.EventBus = command.String("event-bus")
	}

	if command.IsSet("kafka-brokers") {
		cfg.KafkaBrokers = command.StringSlice("kafka-brokers")
	}

	if command.IsSet("log-level") {
		cfg.LogLevel = command.String("log-level")
	}

	if command.IsSet("cache-provider") {
		cfg.Cache.Provider = command.String("cache-provider")
	}

	if command.IsSet("redis-url") {
		cfg.Cache.RedisURL = command.String("redis-url")
	}

	if command.IsSet("cache-ttl") {
		cfg.Cache.TTL = command.Duration("cache-ttl")
	}

	if command.IsSet("tracing-enabled") {
		cfg.TracingEnabled = command.Bool("tracing-enabled")
	}

	if command.IsSet("worker-id") {
		cfg.WorkerID = command.String("worker-id")
	}

	return cfg, cfg.Validate()
}

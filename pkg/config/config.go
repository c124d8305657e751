// Package config loads the worker configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dukex/salesflow/pkg/cache"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	EventBusKafka     = "kafka"
	EventBusGoChannel = "gochannel"

	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config is the runtime configuration shared by the salesflow commands. Command-line
// flags and environment variables override values read from a file.
type Config struct {
	DatabaseURL    string      `yaml:"database_url"    validate:"required"`
	EventBus       string      `yaml:"event_bus"       validate:"required,oneof=kafka gochannel"`
	KafkaBrokers   []string    `yaml:"kafka_brokers"   validate:"required_if=EventBus kafka,dive,hostname_port"`
	ServiceName    string      `yaml:"service_name"    validate:"required"`
	WorkerID       string      `yaml:"worker_id"`
	LogLevel       string      `yaml:"log_level"       validate:"oneof=debug info warn error"`
	TracingEnabled bool        `yaml:"tracing_enabled"`
	Cache          CacheConfig `yaml:"cache"`
}

type CacheConfig struct {
	Provider string        `yaml:"provider"  validate:"oneof=none memory redis"`
	RedisURL string        `yaml:"redis_url" validate:"required_if=Provider redis"`
	TTL      time.Duration `yaml:"ttl"       validate:"gt=0"`
}

// ErrMemoryCacheTTL is returned when the memory cache would serve entries longer than
// cache.MaxMemoryTTL.
var ErrMemoryCacheTTL = fmt.Errorf("memory cache ttl must not exceed %s", cache.MaxMemoryTTL)

func Default() Config {
	return Config{
		EventBus:    EventBusGoChannel,
		ServiceName: "salesflow",
		LogLevel:    "info",
		Cache: CacheConfig{
			Provider: CacheNone,
			TTL:      cache.MaxMemoryTTL,
		},
	}
}

// Load reads a YAML file over the defaults. Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()

	file, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	defer func() { _ = file.Close() }()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	err = decoder.Decode(&cfg)
	if err != nil {
		return cfg, fmt.Errorf("failed to parse YAML config %s: %w", path, err)
	}

	return cfg, nil
}

func (c Config) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		if c.Cache.Provider == CacheMemory && c.Cache.TTL > cache.MaxMemoryTTL {
			return fmt.Errorf("invalid configuration: Config.Cache.TTL: %w", ErrMemoryCacheTTL)
		}

		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	details := make([]string, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		details = append(details, fmt.Sprintf("%s failed on '%s'", fieldErr.Namespace(), fieldErr.Tag()))
	}

	return fmt.Errorf("invalid configuration: %s", strings.Join(details, ", "))
}

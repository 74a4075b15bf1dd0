// Package config loads service settings from environment variables, once at
// startup. Struct tags drive parsing and defaults; cross-field rules are
// checked explicitly after tag processing.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string        `envconfig:"HTTP_ADDR" default:":8080"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	LogFormat       string        `envconfig:"LOG_FORMAT" default:"json" validate:"oneof=json text"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s" validate:"gt=0"`

	// Upper bound on an uploaded table, in bytes.
	MaxUploadBytes int64 `envconfig:"MAX_UPLOAD_BYTES" default:"10485760" validate:"gt=0"`

	// Results publisher configuration. Publishing is off unless explicitly
	// enabled.
	KafkaEnabled      bool     `envconfig:"KAFKA_ENABLED" default:"false"`
	KafkaBrokers      []string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
	KafkaResultsTopic string   `envconfig:"KAFKA_RESULTS_TOPIC" default:"runoff-results"`
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
		}
		if cfg.KafkaResultsTopic == "" {
			return nil, errors.New("KAFKA_ENABLED is true but KAFKA_RESULTS_TOPIC is empty")
		}
	}

	return &cfg, nil
}

// internal/config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Transport names accepted by UNO_TRANSPORT.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Config holds the process configuration read from the environment.
type Config struct {
	Transport string `env:"UNO_TRANSPORT" envDefault:"stdio"`
	HTTPAddr  string `env:"UNO_HTTP_ADDR" envDefault:":8080"`
	LogLevel  string `env:"UNO_LOG_LEVEL" envDefault:"info"`
	HandSize  int    `env:"UNO_HAND_SIZE" envDefault:"7"`

	// RedisAddr enables the action log when set.
	RedisAddr string `env:"REDIS_ADDR"`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`
	QueueName string `env:"HISTORIAN_QUEUE_NAME" envDefault:"uno_actions"`

	HistorianBatchSize     int           `env:"HISTORIAN_BATCH_SIZE" envDefault:"20"`
	HistorianFlushInterval time.Duration `env:"HISTORIAN_FLUSH_INTERVAL" envDefault:"500ms"`
	GameInactivityTimeout  time.Duration `env:"GAME_INACTIVITY_TIMEOUT" envDefault:"10m"`
}

// Load parses the environment into a Config and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values env tags cannot express.
func (c Config) Validate() error {
	switch c.Transport {
	case TransportStdio, TransportHTTP:
	default:
		return fmt.Errorf("UNO_TRANSPORT must be %q or %q, got %q", TransportStdio, TransportHTTP, c.Transport)
	}
	if c.HandSize < 1 {
		return fmt.Errorf("UNO_HAND_SIZE must be at least 1, got %d", c.HandSize)
	}
	if c.HistorianBatchSize < 1 {
		return fmt.Errorf("HISTORIAN_BATCH_SIZE must be at least 1, got %d", c.HistorianBatchSize)
	}
	return nil
}

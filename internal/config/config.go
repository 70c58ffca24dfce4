// Package config loads server settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all server settings. Every field has a BROWSERPILOT_
// prefixed environment variable; a .env file is loaded by main before this
// runs.
type Config struct {
	Addr string `envconfig:"ADDR" default:":8080"`

	OpenAIKey   string `envconfig:"OPENAI_API_KEY"`
	OpenAIBase  string `envconfig:"OPENAI_API_BASE"`
	OpenAIModel string `envconfig:"OPENAI_MODEL"`

	StepDelay       time.Duration `envconfig:"STEP_DELAY" default:"1s"`
	SessionsPerUser int64         `envconfig:"SESSIONS_PER_USER" default:"10"`
	TasksPerUser    int64         `envconfig:"TASKS_PER_USER" default:"5"`
	ActionLogCap    int           `envconfig:"ACTION_LOG_CAP" default:"1000"`
	RequestsPerHour int           `envconfig:"REQUESTS_PER_HOUR" default:"1000"`
	RateLimitBurst  int           `envconfig:"RATE_LIMIT_BURST" default:"20"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// Load reads configuration from BROWSERPILOT_* environment variables
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("browserpilot", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}

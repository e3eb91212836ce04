// Package config defines listener configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Durations are stored as integer seconds or milliseconds so they survive
//   env and YAML layering; use the accessor methods to get time.Duration.
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// LogFile, when set, mirrors every log record to this file.
	LogFile string `koanf:"log_file"`

	// Addr configures the HTTP listen address for health and stats, e.g. ":9080".
	Addr string `koanf:"addr"`

	// Channel is the live channel (host identity) whose feed is consumed.
	Channel string `koanf:"channel"`

	// FeedURL is the websocket endpoint of the event feed bridge.
	FeedURL string `koanf:"feed_url"`

	// APIBase is the Battle Control API base URL.
	APIBase string `koanf:"api_base"`

	// APITimeoutMS bounds every Battle Control API call.
	APITimeoutMS int `koanf:"api_timeout_ms"`

	// BattleMode is forwarded on battle start; empty omits it.
	BattleMode string `koanf:"battle_mode"`

	// SlotOneName and SlotTwoName are used when a "!slots" side is blank.
	SlotOneName string `koanf:"slot_one_name"`
	SlotTwoName string `koanf:"slot_two_name"`

	// CooldownSeconds is the minimum gap between inferred transitions of the same kind.
	CooldownSeconds int `koanf:"cooldown_seconds"`

	// DedupeWindowSeconds is how long an idempotency key suppresses repeats.
	DedupeWindowSeconds int `koanf:"dedupe_window_seconds"`

	// DedupeMaxSize caps the dedupe window; 0 means unbounded.
	DedupeMaxSize int `koanf:"dedupe_max_size"`

	// BackoffBaseSeconds and BackoffMaxSeconds bound the generic reconnect backoff.
	BackoffBaseSeconds int `koanf:"backoff_base_seconds"`
	BackoffMaxSeconds  int `koanf:"backoff_max_seconds"`

	// BlockedCooldownSeconds is the fixed wait after a blocked or rate-limited failure.
	BlockedCooldownSeconds int `koanf:"blocked_cooldown_seconds"`

	// CommandQueueSize bounds the outbound command queue.
	CommandQueueSize int `koanf:"command_queue_size"`

	// MetricsNamespace and MetricsSubsystem prefix every exported metric name.
	MetricsNamespace string `koanf:"metrics_namespace"`
	MetricsSubsystem string `koanf:"metrics_subsystem"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:               "info",
		LogFormat:              "text",
		Addr:                   ":9080",
		Channel:                "zerokomodo",
		FeedURL:                "ws://127.0.0.1:21213/feed",
		APIBase:                "http://127.0.0.1:8000",
		APITimeoutMS:           5_000,
		SlotOneName:            "Performer One",
		SlotTwoName:            "Performer Two",
		CooldownSeconds:        30,
		DedupeWindowSeconds:    30,
		DedupeMaxSize:          100_000,
		BackoffBaseSeconds:     5,
		BackoffMaxSeconds:      60,
		BlockedCooldownSeconds: 300,
		CommandQueueSize:       1_024,
		MetricsNamespace:       "livebattle",
		MetricsSubsystem:       "listener",
	}
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.Channel) == "":
		return fmt.Errorf("%w: channel must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.FeedURL) == "":
		return fmt.Errorf("%w: feed_url must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.APIBase) == "":
		return fmt.Errorf("%w: api_base must not be empty", ErrInvalidConfig)
	case c.APITimeoutMS <= 0:
		return fmt.Errorf("%w: api_timeout_ms must be positive", ErrInvalidConfig)
	case c.CooldownSeconds <= 0:
		return fmt.Errorf("%w: cooldown_seconds must be positive", ErrInvalidConfig)
	case c.DedupeWindowSeconds <= 0:
		return fmt.Errorf("%w: dedupe_window_seconds must be positive", ErrInvalidConfig)
	case c.DedupeMaxSize < 0:
		return fmt.Errorf("%w: dedupe_max_size must not be negative", ErrInvalidConfig)
	case c.BackoffBaseSeconds <= 0:
		return fmt.Errorf("%w: backoff_base_seconds must be positive", ErrInvalidConfig)
	case c.BackoffMaxSeconds < c.BackoffBaseSeconds:
		return fmt.Errorf("%w: backoff_max_seconds must be >= backoff_base_seconds", ErrInvalidConfig)
	case c.BlockedCooldownSeconds <= 0:
		return fmt.Errorf("%w: blocked_cooldown_seconds must be positive", ErrInvalidConfig)
	case c.CommandQueueSize <= 0:
		return fmt.Errorf("%w: command_queue_size must be positive", ErrInvalidConfig)
	case strings.TrimSpace(c.MetricsNamespace) == "":
		return fmt.Errorf("%w: metrics_namespace must not be empty", ErrInvalidConfig)
	}
	return nil
}

// APITimeout returns the per-call control API timeout.
func (c *Config) APITimeout() time.Duration {
	return time.Duration(c.APITimeoutMS) * time.Millisecond
}

// Cooldown returns the lifecycle cooldown.
func (c *Config) Cooldown() time.Duration {
	return time.Duration(c.CooldownSeconds) * time.Second
}

// DedupeWindow returns the dedupe window length.
func (c *Config) DedupeWindow() time.Duration {
	return time.Duration(c.DedupeWindowSeconds) * time.Second
}

// BackoffBase returns the first generic reconnect wait.
func (c *Config) BackoffBase() time.Duration {
	return time.Duration(c.BackoffBaseSeconds) * time.Second
}

// BackoffMax returns the generic reconnect wait cap.
func (c *Config) BackoffMax() time.Duration {
	return time.Duration(c.BackoffMaxSeconds) * time.Second
}

// BlockedCooldown returns the fixed wait after a blocked connection.
func (c *Config) BlockedCooldown() time.Duration {
	return time.Duration(c.BlockedCooldownSeconds) * time.Second
}

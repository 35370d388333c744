// Feedpilot - Short-form Feed Engagement Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedpilot

// Package config loads Feedpilot configuration from defaults, an optional
// YAML file and environment variables (in that order of precedence, lowest
// first) using Koanf v2.
//
// Example:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    logging.Fatal().Err(err).Msg("Failed to load configuration")
//	}
//	engine := engagement.New(cfg.Engine.Engagement(), deps)
//
// Config is immutable after Load and safe for concurrent reads.
package config

import (
	"time"

	"github.com/tomtom215/feedpilot/internal/engagement"
)

// Config holds all application configuration.
type Config struct {
	Engine    EngineConfig    `koanf:"engine"`
	Scoring   ScoringConfig   `koanf:"scoring"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// EngineConfig holds the decision engine thresholds and timers.
//
// Environment Variables:
//   - LIKE_THRESHOLD / DISLIKE_THRESHOLD: auto-feedback score cut-offs (default: 2 / -1)
//   - AUTO_SKIP_THRESHOLD: score at or below which the item is skipped (default: 0)
//   - COMPLETION_PERCENT: watched percent that counts as complete (default: 85)
//   - MIN_EXPOSURE_PERCENT: watched percent required before auto-feedback (default: 15)
//   - CONFIRMATION_WINDOW: time the user has to contradict auto-feedback (default: 30s)
//   - STAY_DURATION: time on a returned-to item that latches intent (default: 5s)
//   - SCROLL_BACK_THRESHOLD: returns that latch intent immediately (default: 2)
//   - FORCE_ADVANCE_ENABLED / FORCE_ADVANCE_AFTER: hard per-item time limit (default: off)
//   - ADVANCE_RETRY_DELAYS: comma-separated delays for re-issuing an advance
type EngineConfig struct {
	LikeThreshold       float64         `koanf:"like_threshold"`
	DislikeThreshold    float64         `koanf:"dislike_threshold"`
	AutoSkipThreshold   float64         `koanf:"auto_skip_threshold"`
	CompletionPercent   float64         `koanf:"completion_percent" validate:"gt=0,lte=100"`
	MinExposurePercent  float64         `koanf:"min_exposure_percent" validate:"gte=0,lte=100"`
	ConfirmationWindow  time.Duration   `koanf:"confirmation_window" validate:"gt=0"`
	StayDuration        time.Duration   `koanf:"stay_duration" validate:"gt=0"`
	ScrollBackThreshold int             `koanf:"scroll_back_threshold" validate:"gte=1"`
	RecencyCapacity     int             `koanf:"recency_capacity" validate:"gte=1,lte=100"`
	ForceAdvanceEnabled bool            `koanf:"force_advance_enabled"`
	ForceAdvanceAfter   time.Duration   `koanf:"force_advance_after" validate:"gte=0"`
	PollInterval        time.Duration   `koanf:"poll_interval" validate:"gte=100ms"`
	ProgressInterval    time.Duration   `koanf:"progress_interval" validate:"gte=0"`
	AdvanceRetryDelays  []time.Duration `koanf:"advance_retry_delays" validate:"dive,gte=0"`
	RepeatSkipWindow    time.Duration   `koanf:"repeat_skip_window" validate:"gte=0"`
	RepeatSkipDelay     time.Duration   `koanf:"repeat_skip_delay" validate:"gte=0"`
	MetadataDelay       time.Duration   `koanf:"metadata_delay" validate:"gte=0"`
	MetadataInterval    time.Duration   `koanf:"metadata_interval" validate:"gt=0"`
	MetadataAttempts    int             `koanf:"metadata_attempts" validate:"gte=1"`
	AutoAdvance         bool            `koanf:"auto_advance"`
	AutoFeedback        bool            `koanf:"auto_feedback"`
	AdvanceOnCompletion bool            `koanf:"advance_on_completion"`
	InitialMood         string          `koanf:"initial_mood" validate:"mood"`
}

// Engagement converts the loaded settings into the engine's own config type.
func (c *EngineConfig) Engagement() engagement.Config {
	delays := make([]time.Duration, len(c.AdvanceRetryDelays))
	copy(delays, c.AdvanceRetryDelays)

	return engagement.Config{
		LikeThreshold:       c.LikeThreshold,
		DislikeThreshold:    c.DislikeThreshold,
		AutoSkipThreshold:   c.AutoSkipThreshold,
		CompletionPercent:   c.CompletionPercent,
		MinExposurePercent:  c.MinExposurePercent,
		ConfirmationWindow:  c.ConfirmationWindow,
		StayDuration:        c.StayDuration,
		ScrollBackThreshold: c.ScrollBackThreshold,
		RecencyCapacity:     c.RecencyCapacity,
		ForceAdvance: engagement.ForceAdvance{
			Enabled: c.ForceAdvanceEnabled,
			After:   c.ForceAdvanceAfter,
		},
		PollInterval:        c.PollInterval,
		ProgressInterval:    c.ProgressInterval,
		AdvanceRetryDelays:  delays,
		RepeatSkipWindow:    c.RepeatSkipWindow,
		RepeatSkipDelay:     c.RepeatSkipDelay,
		MetadataDelay:       c.MetadataDelay,
		MetadataInterval:    c.MetadataInterval,
		MetadataAttempts:    c.MetadataAttempts,
		AutoAdvance:         c.AutoAdvance,
		AutoFeedback:        c.AutoFeedback,
		AdvanceOnCompletion: c.AdvanceOnCompletion,
		InitialMood:         engagement.Mood(c.InitialMood),
	}
}

// ScoringConfig holds the remote scoring service connection settings.
//
// Environment Variables:
//   - SCORING_URL: base URL of the scoring service (default: http://127.0.0.1:5000)
//   - SCORING_TIMEOUT: per-request timeout (default: 5s)
//   - CHANNEL_STATUS_TTL: cache lifetime for channel trust/block lookups (default: 5s)
type ScoringConfig struct {
	URL              string        `koanf:"url" validate:"required,url"`
	Timeout          time.Duration `koanf:"timeout" validate:"gt=0"`
	MaxRetries       int           `koanf:"max_retries" validate:"gte=0,lte=10"`
	ChannelStatusTTL time.Duration `koanf:"channel_status_ttl" validate:"gte=0"`
	ChannelCacheSize int           `koanf:"channel_cache_size" validate:"gte=1"`
	BreakerFailures  uint32        `koanf:"breaker_failures" validate:"gte=1"`
	BreakerTimeout   time.Duration `koanf:"breaker_timeout" validate:"gt=0"`
}

// TelemetryConfig controls the in-process telemetry pipeline.
type TelemetryConfig struct {
	Topic        string        `koanf:"topic" validate:"required"`
	BufferSize   int64         `koanf:"buffer_size" validate:"gte=0"`
	CloseTimeout time.Duration `koanf:"close_timeout" validate:"gt=0"`
}

// ServerConfig holds the local HTTP/WebSocket listener settings.
type ServerConfig struct {
	Host            string        `koanf:"host" validate:"required"`
	Port            int           `koanf:"port" validate:"gte=1,lte=65535"`
	Timeout         time.Duration `koanf:"timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs" validate:"gte=1"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window" validate:"gt=0"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// Load reads configuration from all sources and validates it.
func Load() (*Config, error) {
	return LoadWithKoanf()
}

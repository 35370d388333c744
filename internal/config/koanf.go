// Feedpilot - Short-form Feed Engagement Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedpilot

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths searched for a config file, first match wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/feedpilot/config.yaml",
	"/etc/feedpilot/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			LikeThreshold:       2,
			DislikeThreshold:    -1,
			AutoSkipThreshold:   0,
			CompletionPercent:   85,
			MinExposurePercent:  15,
			ConfirmationWindow:  30 * time.Second,
			StayDuration:        5 * time.Second,
			ScrollBackThreshold: 2,
			RecencyCapacity:     5,
			ForceAdvanceEnabled: false,
			ForceAdvanceAfter:   0,
			PollInterval:        time.Second,
			ProgressInterval:    150 * time.Millisecond,
			AdvanceRetryDelays: []time.Duration{
				300 * time.Millisecond,
				800 * time.Millisecond,
				1500 * time.Millisecond,
				2500 * time.Millisecond,
			},
			RepeatSkipWindow:    10 * time.Second,
			RepeatSkipDelay:     200 * time.Millisecond,
			MetadataDelay:       500 * time.Millisecond,
			MetadataInterval:    500 * time.Millisecond,
			MetadataAttempts:    15,
			AutoAdvance:         true,
			AutoFeedback:        true,
			AdvanceOnCompletion: true,
			InitialMood:         "Neutral",
		},
		Scoring: ScoringConfig{
			URL:              "http://127.0.0.1:5000",
			Timeout:          5 * time.Second,
			MaxRetries:       2,
			ChannelStatusTTL: 5 * time.Second,
			ChannelCacheSize: 256,
			BreakerFailures:  5,
			BreakerTimeout:   30 * time.Second,
		},
		Telemetry: TelemetryConfig{
			Topic:        "engagement.telemetry",
			BufferSize:   256,
			CloseTimeout: 5 * time.Second,
		},
		Server: ServerConfig{
			Host:            "127.0.0.1",
			Port:            8765,
			Timeout:         15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"https://www.youtube.com", "chrome-extension://*"},
			RateLimitReqs:   120,
			RateLimitWindow: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration with layered sources:
//  1. Defaults
//  2. Optional YAML config file
//  3. Environment variables
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are parsed from comma-separated strings when set via env.
var sliceConfigPaths = []string{
	"engine.advance_retry_delays",
	"server.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) == 0 {
			continue
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

var envMappings = map[string]string{
	// Engine
	"like_threshold":        "engine.like_threshold",
	"dislike_threshold":     "engine.dislike_threshold",
	"auto_skip_threshold":   "engine.auto_skip_threshold",
	"completion_percent":    "engine.completion_percent",
	"min_exposure_percent":  "engine.min_exposure_percent",
	"confirmation_window":   "engine.confirmation_window",
	"stay_duration":         "engine.stay_duration",
	"scroll_back_threshold": "engine.scroll_back_threshold",
	"recency_capacity":      "engine.recency_capacity",
	"force_advance_enabled": "engine.force_advance_enabled",
	"force_advance_after":   "engine.force_advance_after",
	"poll_interval":         "engine.poll_interval",
	"progress_interval":     "engine.progress_interval",
	"advance_retry_delays":  "engine.advance_retry_delays",
	"repeat_skip_window":    "engine.repeat_skip_window",
	"repeat_skip_delay":     "engine.repeat_skip_delay",
	"metadata_attempts":     "engine.metadata_attempts",
	"metadata_interval":     "engine.metadata_interval",
	"auto_advance":          "engine.auto_advance",
	"auto_feedback":         "engine.auto_feedback",
	"advance_on_completion": "engine.advance_on_completion",
	"initial_mood":          "engine.initial_mood",

	// Scoring service
	"scoring_url":              "scoring.url",
	"scoring_timeout":          "scoring.timeout",
	"scoring_max_retries":      "scoring.max_retries",
	"channel_status_ttl":       "scoring.channel_status_ttl",
	"channel_cache_size":       "scoring.channel_cache_size",
	"scoring_breaker_failures": "scoring.breaker_failures",
	"scoring_breaker_timeout":  "scoring.breaker_timeout",

	// Telemetry
	"telemetry_topic":         "telemetry.topic",
	"telemetry_buffer_size":   "telemetry.buffer_size",
	"telemetry_close_timeout": "telemetry.close_timeout",

	// Server
	"http_host":             "server.host",
	"http_port":             "server.port",
	"http_timeout":          "server.timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"cors_origins":          "server.cors_origins",
	"rate_limit_requests":   "server.rate_limit_reqs",
	"rate_limit_window":     "server.rate_limit_window",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps environment variable names to koanf paths.
// Unmapped variables return "" and are skipped.
//
//   - HTTP_PORT -> server.port
//   - CONFIRMATION_WINDOW -> engine.confirmation_window
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

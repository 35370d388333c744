// Feedpilot - Short-form Feed Engagement Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedpilot

package engagement

import "time"

// ForceAdvance configures the hard per-item time limit. It only runs when
// Enabled is set; a zero After is not treated as "disabled".
type ForceAdvance struct {
	Enabled bool
	After   time.Duration
}

// Config holds the engine thresholds and timers.
type Config struct {
	LikeThreshold       float64
	DislikeThreshold    float64
	AutoSkipThreshold   float64
	CompletionPercent   float64
	MinExposurePercent  float64
	ConfirmationWindow  time.Duration
	StayDuration        time.Duration
	ScrollBackThreshold int
	RecencyCapacity     int
	ForceAdvance        ForceAdvance

	// PollInterval is the completion check cadence.
	PollInterval time.Duration

	// ProgressInterval is the minimum spacing between accepted playback samples.
	ProgressInterval time.Duration

	// AdvanceRetryDelays are offsets from completion at which the advance
	// command is (re)issued. Must be increasing.
	AdvanceRetryDelays []time.Duration

	// A low-score skip within RepeatSkipWindow of a skip on a different
	// item waits RepeatSkipDelay before advancing.
	RepeatSkipWindow time.Duration
	RepeatSkipDelay  time.Duration

	MetadataDelay    time.Duration
	MetadataInterval time.Duration
	MetadataAttempts int

	AutoAdvance         bool
	AutoFeedback        bool
	AdvanceOnCompletion bool
	InitialMood         Mood
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		LikeThreshold:       2,
		DislikeThreshold:    -1,
		AutoSkipThreshold:   0,
		CompletionPercent:   85,
		MinExposurePercent:  15,
		ConfirmationWindow:  30 * time.Second,
		StayDuration:        5 * time.Second,
		ScrollBackThreshold: 2,
		RecencyCapacity:     5,
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
		InitialMood:         MoodNeutral,
	}
}

// Feedpilot - Short-form Feed Engagement Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedpilot

package engagement

import "time"

// Event is anything the loop can process. Host-facing events are exported;
// timer and async result events are internal.
type Event interface {
	eventName() string
}

// VideoChanged reports that the host now shows a different item.
type VideoChanged struct {
	VideoID string
	At      time.Time
}

// Playback carries one playback snapshot.
type Playback struct {
	Sample PlaybackSample
}

// PlaybackEnded reports the host's end-of-playback signal.
type PlaybackEnded struct {
	VideoID string
}

// Scrolled reports the feed's scroll position.
type Scrolled struct {
	Position float64
}

// ManualFeedback reports a like/dislike click and the button's resulting
// pressed state.
type ManualFeedback struct {
	Type    FeedbackType
	Pressed bool
	VideoID string
}

// MoodChanged sets the viewer's mood.
type MoodChanged struct {
	Mood Mood
}

// ToggleTrust flips the trusted flag of the current channel.
type ToggleTrust struct{}

// ToggleBlock flips the blocked flag of the current channel.
type ToggleBlock struct{}

// SetAutoAdvance enables or disables automatic advancing.
type SetAutoAdvance struct {
	Enabled bool
}

// SetAutoFeedback enables or disables automatic like/dislike.
type SetAutoFeedback struct {
	Enabled bool
}

// RequestAction performs a user-initiated action through the actuator.
type RequestAction struct {
	Action Action
}

// BufferSizeReceived records the scoring service's queue size.
type BufferSizeReceived struct {
	Size int
}

func (VideoChanged) eventName() string       { return "video_changed" }
func (Playback) eventName() string           { return "playback" }
func (PlaybackEnded) eventName() string      { return "playback_ended" }
func (Scrolled) eventName() string           { return "scrolled" }
func (ManualFeedback) eventName() string     { return "manual_feedback" }
func (MoodChanged) eventName() string        { return "mood_changed" }
func (ToggleTrust) eventName() string        { return "toggle_trust" }
func (ToggleBlock) eventName() string        { return "toggle_block" }
func (SetAutoAdvance) eventName() string     { return "set_auto_advance" }
func (SetAutoFeedback) eventName() string    { return "set_auto_feedback" }
func (RequestAction) eventName() string      { return "request_action" }
func (BufferSizeReceived) eventName() string { return "buffer_size" }

// timerFired is posted by a timer callback. It is acted on only if seq and
// gen still match the armed timer.
type timerFired struct {
	kind timerKind
	seq  uint64
	gen  uint64
}

type scoreResult struct {
	seq    uint64
	result ScoreResult
	err    error
}

type channelStatusResult struct {
	seq       uint64
	channelID string
	status    ChannelStatus
	err       error
}

func (timerFired) eventName() string          { return "timer_fired" }
func (scoreResult) eventName() string         { return "score_result" }
func (channelStatusResult) eventName() string { return "channel_status_result" }

// Feedpilot - Short-form Feed Engagement Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedpilot

package scoring

// NextRequest is the body of POST /next.
type NextRequest struct {
	VideoID     string `json:"video_id"`
	ChannelID   string `json:"channel_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Captions    string `json:"captions"`
}

// NextResponse is the scoring verdict. Score is required.
type NextResponse struct {
	Score          *float64 `json:"score"`
	MoodSuggestion string   `json:"mood_suggestion,omitempty"`
}

// EventRequest is the body of POST /event.
type EventRequest struct {
	VideoID        string  `json:"video_id"`
	ChannelID      string  `json:"channel_id"`
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	Captions       string  `json:"captions"`
	EventType      string  `json:"event_type"`
	WatchedPercent float64 `json:"watched_percent"`
	Mood           string  `json:"mood"`
}

// EventResponse acknowledges a telemetry event.
type EventResponse struct {
	Status          string `json:"status"`
	CorrectionsMade int    `json:"corrections_made"`
}

// ChannelStatusResponse is returned by GET /channel_status.
type ChannelStatusResponse struct {
	Trusted bool `json:"trusted"`
	Blocked bool `json:"blocked"`
}

// BufferSizeResponse is returned by GET /buffer_size.
type BufferSizeResponse struct {
	BufferSize int `json:"buffer_size"`
}

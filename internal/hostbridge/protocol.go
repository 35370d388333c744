// Feedpilot - Short-form Feed Engagement Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedpilot

package hostbridge

// Inbound message types sent by the host page.
const (
	TypeVideoChanged    = "video_changed"
	TypePlayback        = "playback"
	TypeEnded           = "ended"
	TypeScroll          = "scroll"
	TypeFeedbackClick   = "feedback_click"
	TypeMetadata        = "metadata"
	TypeSetMood         = "set_mood"
	TypeToggleTrust     = "toggle_trust"
	TypeToggleBlock     = "toggle_block"
	TypeSetAutoAdvance  = "set_auto_advance"
	TypeSetAutoFeedback = "set_auto_feedback"
	TypeRequestAdvance  = "request_advance"
	TypeRequestLike     = "request_like"
	TypeRequestDislike  = "request_dislike"
)

// VideoChangedData announces the item now on screen.
type VideoChangedData struct {
	VideoID string `json:"video_id" validate:"required,max=64"`
}

// PlaybackData is one media element snapshot. Non-finite values are
// rejected later by the engine, not here.
type PlaybackData struct {
	VideoID  string  `json:"video_id" validate:"max=64"`
	Elapsed  float64 `json:"elapsed"`
	Duration float64 `json:"duration"`
	Ended    bool    `json:"ended"`
}

// EndedData is the media element's ended event.
type EndedData struct {
	VideoID string `json:"video_id" validate:"max=64"`
}

// ScrollData carries the feed's vertical scroll offset.
type ScrollData struct {
	Position float64 `json:"position"`
}

// FeedbackClickData reports a click on the like or dislike button and the
// button's pressed state after the click.
type FeedbackClickData struct {
	Type    string `json:"type" validate:"required,feedback_type"`
	Pressed bool   `json:"pressed"`
	VideoID string `json:"video_id" validate:"max=64"`
}

// MetadataData is what the page could scrape for the current item.
type MetadataData struct {
	VideoID     string   `json:"video_id" validate:"required,max=64"`
	ChannelHref string   `json:"channel_href" validate:"max=512"`
	ChannelName string   `json:"channel_name" validate:"max=256"`
	AuthorLinks []string `json:"author_links" validate:"max=32,dive,max=512"`
	Title       string   `json:"title" validate:"max=1024"`
	Description string   `json:"description" validate:"max=16384"`
	Captions    string   `json:"captions" validate:"max=131072"`
}

// SetMoodData selects the viewer's mood.
type SetMoodData struct {
	Mood string `json:"mood" validate:"required,mood"`
}

// ToggleData switches an automation toggle.
type ToggleData struct {
	Enabled bool `json:"enabled"`
}

// CommandData is the outbound command payload.
type CommandData struct {
	Action  string `json:"action"`
	VideoID string `json:"video_id"`
	Trigger string `json:"trigger"`
}

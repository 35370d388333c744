// Feedpilot - Short-form Feed Engagement Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedpilot

package engagement

import (
	"fmt"
	"strings"
	"time"
)

// FeedbackType is the direction of a like/dislike action.
type FeedbackType int

const (
	FeedbackLike FeedbackType = iota + 1
	FeedbackDislike
)

func (t FeedbackType) String() string {
	switch t {
	case FeedbackLike:
		return "like"
	case FeedbackDislike:
		return "dislike"
	default:
		return "unknown"
	}
}

// Opposite returns the contradicting feedback type.
func (t FeedbackType) Opposite() FeedbackType {
	if t == FeedbackLike {
		return FeedbackDislike
	}
	return FeedbackLike
}

// ParseFeedbackType parses "like" or "dislike".
func ParseFeedbackType(s string) (FeedbackType, bool) {
	switch strings.ToLower(s) {
	case "like":
		return FeedbackLike, true
	case "dislike":
		return FeedbackDislike, true
	default:
		return 0, false
	}
}

// FeedbackKind enumerates the variants of FeedbackState.
type FeedbackKind int

const (
	FeedbackNone FeedbackKind = iota
	FeedbackPendingAuto
	FeedbackConfirmed
	FeedbackUserOverridden
)

func (k FeedbackKind) String() string {
	switch k {
	case FeedbackNone:
		return "none"
	case FeedbackPendingAuto:
		return "pending_auto"
	case FeedbackConfirmed:
		return "confirmed"
	case FeedbackUserOverridden:
		return "user_overridden"
	default:
		return "unknown"
	}
}

// FeedbackState tracks automatic feedback for a session. Type and IssuedAt
// are only meaningful for PendingAuto and Confirmed.
type FeedbackState struct {
	Kind     FeedbackKind
	Type     FeedbackType
	IssuedAt time.Time
}

// PendingAuto returns the state after an automatic action was issued.
func PendingAuto(t FeedbackType, at time.Time) FeedbackState {
	return FeedbackState{Kind: FeedbackPendingAuto, Type: t, IssuedAt: at}
}

// ConfirmedFeedback returns the state after the confirmation window elapsed.
func ConfirmedFeedback(t FeedbackType, issuedAt time.Time) FeedbackState {
	return FeedbackState{Kind: FeedbackConfirmed, Type: t, IssuedAt: issuedAt}
}

// UserOverridden returns the state after the user contradicted an automatic action.
func UserOverridden() FeedbackState {
	return FeedbackState{Kind: FeedbackUserOverridden}
}

func (s FeedbackState) String() string {
	switch s.Kind {
	case FeedbackPendingAuto, FeedbackConfirmed:
		return fmt.Sprintf("%s(%s)", s.Kind, s.Type)
	default:
		return s.Kind.String()
	}
}

// IntentReason explains why the user is considered to want to stay.
type IntentReason int

const (
	IntentMultipleReturns IntentReason = iota + 1
	IntentStayedOnVideo
	IntentManualLike
	IntentManualDislike
)

func (r IntentReason) String() string {
	switch r {
	case IntentMultipleReturns:
		return "multiple_returns"
	case IntentStayedOnVideo:
		return "stayed_on_video"
	case IntentManualLike:
		return "manual_like"
	case IntentManualDislike:
		return "manual_dislike"
	default:
		return "unknown"
	}
}

// IntentState is Unknown until Detected latches; it never reverts.
type IntentState struct {
	Detected bool
	Reason   IntentReason
}

func (s IntentState) String() string {
	if !s.Detected {
		return "unknown"
	}
	return "detected(" + s.Reason.String() + ")"
}

// CompletionMethod names the heuristic that declared an item complete.
type CompletionMethod int

const (
	CompletionNone CompletionMethod = iota
	CompletionEnded
	CompletionPercentage
	CompletionStuckPercentage
	CompletionStalledNearEnd
)

func (m CompletionMethod) String() string {
	switch m {
	case CompletionEnded:
		return "ended"
	case CompletionPercentage:
		return "percentage"
	case CompletionStuckPercentage:
		return "stuck_percentage"
	case CompletionStalledNearEnd:
		return "stalled_near_end"
	default:
		return "none"
	}
}

// Action is a command the actuator performs on the host interface.
type Action int

const (
	ActionAdvance Action = iota + 1
	ActionLike
	ActionDislike
)

func (a Action) String() string {
	switch a {
	case ActionAdvance:
		return "advance"
	case ActionLike:
		return "like"
	case ActionDislike:
		return "dislike"
	default:
		return "unknown"
	}
}

// ParseAction parses "advance", "like" or "dislike".
func ParseAction(s string) (Action, bool) {
	switch strings.ToLower(s) {
	case "advance":
		return ActionAdvance, true
	case "like":
		return ActionLike, true
	case "dislike":
		return ActionDislike, true
	default:
		return 0, false
	}
}

func feedbackAction(t FeedbackType) Action {
	if t == FeedbackLike {
		return ActionLike
	}
	return ActionDislike
}

// Trigger records why an action was issued. Used for logs and metrics.
type Trigger string

const (
	TriggerCompletion  Trigger = "completion"
	TriggerLowScore    Trigger = "low_score"
	TriggerForceTimer  Trigger = "force_timer"
	TriggerAutoLike    Trigger = "auto_like"
	TriggerAutoDislike Trigger = "auto_dislike"
	TriggerUser        Trigger = "user"
)

// Command is sent to the Actuator.
type Command struct {
	Action  Action
	VideoID string
	Trigger Trigger
}

// Mood is the viewer's self-reported mood, forwarded with every telemetry event.
type Mood string

const (
	MoodNeutral   Mood = "Neutral"
	MoodHappy     Mood = "Happy"
	MoodRelaxed   Mood = "Relaxed"
	MoodFocused   Mood = "Focused"
	MoodEnergetic Mood = "Energetic"
	MoodCurious   Mood = "Curious"
	MoodCreative  Mood = "Creative"
	MoodMad       Mood = "Mad"
)

// Moods lists every known mood in display order.
var Moods = []Mood{
	MoodNeutral, MoodHappy, MoodRelaxed, MoodFocused,
	MoodEnergetic, MoodCurious, MoodCreative, MoodMad,
}

// ParseMood matches s case-insensitively against the known moods.
func ParseMood(s string) (Mood, bool) {
	for _, m := range Moods {
		if strings.EqualFold(string(m), s) {
			return m, true
		}
	}
	return "", false
}

// EventType is the telemetry event name sent to the scoring service.
type EventType string

const (
	EventUserLike             EventType = "user_like"
	EventUserDislike          EventType = "user_dislike"
	EventUserUnlike           EventType = "user_unlike"
	EventUserUndislike        EventType = "user_undislike"
	EventUndoAutoLike         EventType = "undo_auto_like"
	EventUndoAutoDislike      EventType = "undo_auto_dislike"
	EventAutoLikeConfirmed    EventType = "auto_like_confirmed"
	EventAutoDislikeConfirmed EventType = "auto_dislike_confirmed"
	EventUserIntentToStay     EventType = "user_intent_to_stay"
	EventManualSkip           EventType = "manual_skip"
	EventCompleted            EventType = "completed"
	EventMoodChange           EventType = "mood_change"
	EventTrustChannel         EventType = "trust_channel"
	EventUntrustChannel       EventType = "untrust_channel"
	EventBlockChannel         EventType = "block_channel"
	EventUnblockChannel       EventType = "unblock_channel"
)

// UnknownChannel is reported when the channel could not be resolved.
const UnknownChannel = "unknown"

// Metadata describes the current item as extracted from the host page.
type Metadata struct {
	VideoID     string
	ChannelID   string
	ChannelName string
	Title       string
	Description string
	Captions    string
}

// TelemetryEvent is one decision-relevant event reported to the scoring service.
type TelemetryEvent struct {
	VideoID        string
	ChannelID      string
	Title          string
	Description    string
	Captions       string
	EventType      EventType
	WatchedPercent float64
	Mood           Mood
	CorrelationID  string
	At             time.Time
}

// ScoreResult is the scoring service's verdict for an item.
type ScoreResult struct {
	Score          float64
	MoodSuggestion string
}

// ChannelStatus reports whether the user trusts or blocks a channel.
type ChannelStatus struct {
	Trusted bool
	Blocked bool
}

// ProgressState is owned by the ProgressTracker.
type ProgressState struct {
	WatchedPercent    float64
	MaxWatchedPercent float64
	LastValidPercent  float64
	Elapsed           float64
	Duration          float64
	Ended             bool
	Samples           int
}

// CompletionState is owned by the CompletionDetector.
type CompletionState struct {
	Completed   bool
	Method      CompletionMethod
	CompletedAt time.Time

	stuckCount  int
	lastSampled float64
}

// VideoSession is the single live per-item state. It is created on a video
// change and discarded on the next one.
type VideoSession struct {
	ID             string
	CorrelationID  string
	Metadata       Metadata
	WatchStartedAt time.Time

	Progress   ProgressState
	Completion CompletionState

	Score          float64
	HasScore       bool
	MoodSuggestion string

	Feedback        FeedbackState
	Intent          IntentState
	ScrollBackCount int
	OverrideActive  bool
	ManualFeedback  bool

	ChannelStatus      ChannelStatus
	HasChannelStatus   bool
	MetadataResolved   bool
	MetadataAttempts   int
	AdvanceIssued      bool
	ManualSkipReported bool

	seq           uint64
	scoreInFlight bool
	statusPending bool
	retryIndex    int
}

// ChannelID returns the resolved channel or UnknownChannel.
func (s *VideoSession) ChannelID() string {
	if s.Metadata.ChannelID == "" {
		return UnknownChannel
	}
	return s.Metadata.ChannelID
}

// automationBlocked reports whether every automatic action is off for this session.
func (s *VideoSession) automationBlocked() bool {
	return s.Intent.Detected || s.ManualFeedback || s.OverrideActive
}

// Snapshot is a read-only view of engine state for the overlay and API.
type Snapshot struct {
	VideoID          string    `json:"video_id"`
	ChannelID        string    `json:"channel_id"`
	ChannelName      string    `json:"channel_name,omitempty"`
	Title            string    `json:"title,omitempty"`
	WatchedPercent   float64   `json:"watched_percent"`
	MaxWatched       float64   `json:"max_watched_percent"`
	Score            *float64  `json:"score,omitempty"`
	MoodSuggestion   string    `json:"mood_suggestion,omitempty"`
	Mood             Mood      `json:"mood"`
	Feedback         string    `json:"feedback_state"`
	Intent           string    `json:"intent_state"`
	Completed        bool      `json:"completed"`
	CompletionMethod string    `json:"completion_method,omitempty"`
	ScrollBackCount  int       `json:"scroll_back_count"`
	AutoAdvance      bool      `json:"auto_advance"`
	AutoFeedback     bool      `json:"auto_feedback"`
	Trusted          bool      `json:"trusted"`
	Blocked          bool      `json:"blocked"`
	BufferSize       int       `json:"buffer_size"`
	UpdatedAt        time.Time `json:"updated_at"`
}

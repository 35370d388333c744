// Feedpilot - Short-form Feed Engagement Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedpilot

package engagement

func (e *Engine) onMoodChanged(m Mood) {
	mood, ok := ParseMood(string(m))
	if !ok {
		e.logger().Warn().Str("mood", string(m)).Msg("Ignoring unknown mood")
		return
	}
	prev := e.mood
	e.mood = mood
	e.logger().Info().Str("from", string(prev)).Str("to", string(mood)).Msg("Mood changed")
	e.emit(EventMoodChange)
}

// onToggleTrust and onToggleBlock flip the channel flags optimistically.
// Trusting and blocking are mutually exclusive on the scoring side, so
// setting one clears the other.
func (e *Engine) onToggleTrust() {
	s := e.channelSession("trust")
	if s == nil {
		return
	}
	if s.ChannelStatus.Trusted {
		s.ChannelStatus.Trusted = false
		e.emit(EventUntrustChannel)
		return
	}
	s.ChannelStatus = ChannelStatus{Trusted: true}
	e.emit(EventTrustChannel)
}

func (e *Engine) onToggleBlock() {
	s := e.channelSession("block")
	if s == nil {
		return
	}
	if s.ChannelStatus.Blocked {
		s.ChannelStatus.Blocked = false
		e.emit(EventUnblockChannel)
		return
	}
	s.ChannelStatus = ChannelStatus{Blocked: true}
	e.emit(EventBlockChannel)
}

// channelSession returns the live session if its channel is known.
func (e *Engine) channelSession(op string) *VideoSession {
	s := e.session
	if s == nil || s.ChannelID() == UnknownChannel {
		e.logger().Warn().Str("op", op).Msg("Channel not resolved, ignoring channel control")
		return nil
	}
	return s
}

func (e *Engine) onSetAutoAdvance(enabled bool) {
	if e.autoAdvance == enabled {
		return
	}
	e.autoAdvance = enabled
	e.logger().Info().Bool("enabled", enabled).Msg("Auto-advance toggled")
	if !enabled {
		e.timers.cancel(timerAutoSkip, timerAdvanceRetry)
	}
}

func (e *Engine) onSetAutoFeedback(enabled bool) {
	if e.autoFeedback == enabled {
		return
	}
	e.autoFeedback = enabled
	e.logger().Info().Bool("enabled", enabled).Msg("Auto-feedback toggled")
	if enabled && e.session != nil {
		e.evaluateAutoFeedback()
	}
}

// onRequestAction runs a user-initiated action. It bypasses automation
// gating; a like or dislike comes back from the host as a feedback click.
func (e *Engine) onRequestAction(a Action) {
	s := e.session
	if s == nil {
		e.logger().Warn().Str("action", a.String()).Msg("No active video, ignoring action")
		return
	}
	if a == ActionAdvance && !s.Completion.Completed && !s.ManualSkipReported {
		s.ManualSkipReported = true
		e.emit(EventManualSkip)
	}
	e.perform(Command{Action: a, VideoID: s.ID, Trigger: TriggerUser})
}

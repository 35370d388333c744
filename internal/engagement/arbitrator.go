// Feedpilot - Short-form Feed Engagement Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedpilot

package engagement

import (
	"errors"

	"github.com/tomtom215/feedpilot/internal/logging"
	"github.com/tomtom215/feedpilot/internal/metrics"
)

// onVideoChanged ends the previous session and starts a new one. Every
// timer of the outgoing session is canceled before any timer is armed for
// the incoming one.
func (e *Engine) onVideoChanged(ev VideoChanged) {
	if ev.VideoID == "" {
		return
	}
	if e.session != nil && e.session.ID == ev.VideoID {
		return
	}

	at := ev.At
	if at.IsZero() {
		at = e.clock.Now()
	}

	if prev := e.session; prev != nil {
		e.timers.cancelAll()
		e.recency.Push(prev.ID)
		e.logger().Info().
			Float64("watched_percent", prev.Progress.WatchedPercent).
			Bool("completed", prev.Completion.Completed).
			Str("feedback", prev.Feedback.String()).
			Str("intent", prev.Intent.String()).
			Msg("Session ended")
	}

	e.seq++
	e.session = &VideoSession{
		ID:             ev.VideoID,
		CorrelationID:  logging.GenerateCorrelationID(),
		Metadata:       Metadata{VideoID: ev.VideoID},
		WatchStartedAt: at,
		seq:            e.seq,
	}
	e.tracker.Reset()
	metrics.RecordSessionStarted()

	s := e.session
	e.timers.arm(s.seq, timerCompletionPoll, e.cfg.PollInterval)
	e.timers.arm(s.seq, timerMetadata, e.cfg.MetadataDelay)
	if e.cfg.ForceAdvance.Enabled && e.cfg.ForceAdvance.After > 0 {
		e.timers.arm(s.seq, timerForceAdvance, e.cfg.ForceAdvance.After)
	}

	e.logger().Info().Bool("returning", e.recency.Contains(s.ID)).Msg("Session started")
}

func (e *Engine) onPlayback(sample PlaybackSample) {
	s := e.session
	if s == nil || s.Completion.Completed {
		return
	}
	if sample.VideoID != "" && sample.VideoID != s.ID {
		metrics.RecordSignalDropped("stale_sample")
		return
	}
	if sample.At.IsZero() {
		sample.At = e.clock.Now()
	}

	accepted, err := e.tracker.Observe(&s.Progress, sample)
	if err != nil {
		if errors.Is(err, ErrTransientSignal) {
			metrics.RecordSignalDropped("transient")
			e.logger().Debug().Err(err).Msg("Dropped playback sample")
		}
		return
	}
	if s.Progress.Ended {
		e.checkCompletion()
	}
	if accepted {
		e.evaluateAutoFeedback()
	}
}

func (e *Engine) onPlaybackEnded(ev PlaybackEnded) {
	s := e.session
	if s == nil || (ev.VideoID != "" && ev.VideoID != s.ID) {
		return
	}
	s.Progress.Ended = true
	e.checkCompletion()
}

func (e *Engine) onCompletionPoll() {
	s := e.session
	e.checkCompletion()
	if !s.Completion.Completed {
		e.timers.arm(s.seq, timerCompletionPoll, e.cfg.PollInterval)
	}
	e.requestScore()
	e.evaluateAutoFeedback()
}

func (e *Engine) checkCompletion() {
	s := e.session
	if method, ok := e.detector.Check(&s.Progress, &s.Completion, e.clock.Now()); ok {
		e.onCompleted(method)
	}
}

// onCompleted runs once per session. The advance is reissued at each retry
// delay unless the session changes or automation becomes blocked first.
func (e *Engine) onCompleted(method CompletionMethod) {
	s := e.session
	e.timers.cancel(timerCompletionPoll, timerForceAdvance)
	metrics.RecordCompletion(method.String())
	e.logger().Info().
		Str("method", method.String()).
		Float64("watched_percent", s.Progress.WatchedPercent).
		Msg("Video completed")

	e.emit(EventCompleted)

	if !e.cfg.AdvanceOnCompletion || !e.advanceAllowed() {
		if s.automationBlocked() {
			e.logger().Debug().Msg("Completion advance suppressed by user override")
		}
		return
	}

	s.retryIndex = 0
	if len(e.cfg.AdvanceRetryDelays) == 0 {
		e.issueAdvance(TriggerCompletion)
		return
	}
	e.timers.arm(s.seq, timerAdvanceRetry, e.cfg.AdvanceRetryDelays[0])
}

func (e *Engine) onAdvanceRetry() {
	s := e.session
	if !e.advanceAllowed() {
		return
	}
	e.issueAdvance(TriggerCompletion)

	delays := e.cfg.AdvanceRetryDelays
	s.retryIndex++
	if s.retryIndex >= len(delays) {
		e.logger().Debug().Int("attempts", s.retryIndex).Msg("Advance retries exhausted")
		return
	}
	e.timers.arm(s.seq, timerAdvanceRetry, delays[s.retryIndex]-delays[s.retryIndex-1])
}

// advanceAllowed is checked both when an advance is scheduled and when it fires.
func (e *Engine) advanceAllowed() bool {
	s := e.session
	return s != nil && e.autoAdvance && !s.automationBlocked()
}

func (e *Engine) issueAdvance(trigger Trigger) {
	s := e.session
	s.AdvanceIssued = true
	e.perform(Command{Action: ActionAdvance, VideoID: s.ID, Trigger: trigger})
}

func (e *Engine) onForceTimerElapsed() {
	s := e.session
	if s.Completion.Completed || !e.advanceAllowed() {
		return
	}
	e.logger().Info().Dur("after", e.cfg.ForceAdvance.After).Msg("Force advance timer elapsed")
	e.issueAdvance(TriggerForceTimer)
}

func (e *Engine) onScoreResult(ev scoreResult) {
	s := e.session
	if s == nil || ev.seq != s.seq {
		metrics.RecordSignalDropped("stale_score")
		return
	}
	s.scoreInFlight = false
	if ev.err != nil {
		e.logger().Warn().Err(ev.err).Msg("Scoring request failed, will retry on next poll")
		return
	}

	s.Score = ev.result.Score
	s.HasScore = true
	s.MoodSuggestion = ev.result.MoodSuggestion
	e.logger().Info().
		Float64("score", s.Score).
		Str("mood_suggestion", s.MoodSuggestion).
		Msg("Score received")

	e.onScoreReceived()
}

func (e *Engine) onScoreReceived() {
	e.evaluateAutoSkip()
	e.evaluateAutoFeedback()
}

// evaluateAutoSkip advances past items scoring at or below the skip
// threshold. A second skip within RepeatSkipWindow of a skip on a different
// item is delayed slightly.
func (e *Engine) evaluateAutoSkip() {
	s := e.session
	if !s.HasScore || s.Score > e.cfg.AutoSkipThreshold {
		return
	}
	if s.Completion.Completed || s.AdvanceIssued || e.timers.active(timerAutoSkip) || !e.advanceAllowed() {
		return
	}

	now := e.clock.Now()
	repeat := e.lastAutoSkipID != "" &&
		e.lastAutoSkipID != s.ID &&
		now.Sub(e.lastAutoSkipAt) < e.cfg.RepeatSkipWindow
	e.lastAutoSkipID = s.ID
	e.lastAutoSkipAt = now

	if !repeat || e.cfg.RepeatSkipDelay <= 0 {
		e.issueAdvance(TriggerLowScore)
		return
	}
	e.timers.arm(s.seq, timerAutoSkip, e.cfg.RepeatSkipDelay)
}

func (e *Engine) onAutoSkipElapsed() {
	if !e.advanceAllowed() || e.session.AdvanceIssued {
		return
	}
	e.issueAdvance(TriggerLowScore)
}

// evaluateAutoFeedback is the gate in front of every automatic like or
// dislike. At most one is ever issued per session.
func (e *Engine) evaluateAutoFeedback() {
	s := e.session
	if s == nil || !e.autoFeedback || s.automationBlocked() {
		return
	}
	if s.Feedback.Kind != FeedbackNone || !s.HasScore {
		return
	}
	if s.Progress.WatchedPercent < e.cfg.MinExposurePercent {
		return
	}

	switch {
	case s.Score >= e.cfg.LikeThreshold:
		e.issueAutoFeedback(FeedbackLike)
	case s.Score <= e.cfg.DislikeThreshold:
		e.issueAutoFeedback(FeedbackDislike)
	}
}

func (e *Engine) issueAutoFeedback(t FeedbackType) {
	s := e.session
	if err := s.setFeedback(PendingAuto(t, e.clock.Now())); err != nil {
		e.logger().Error().Err(err).Msg("Auto-feedback rejected")
		return
	}

	trigger := TriggerAutoLike
	if t == FeedbackDislike {
		trigger = TriggerAutoDislike
	}
	e.perform(Command{Action: feedbackAction(t), VideoID: s.ID, Trigger: trigger})
	e.timers.arm(s.seq, timerConfirmation, e.cfg.ConfirmationWindow)

	e.logger().Info().
		Str("type", t.String()).
		Float64("score", s.Score).
		Dur("window", e.cfg.ConfirmationWindow).
		Msg("Auto-feedback issued, awaiting confirmation")
}

func (e *Engine) onConfirmationElapsed() {
	s := e.session
	if s.Feedback.Kind != FeedbackPendingAuto {
		return
	}
	t := s.Feedback.Type
	if err := s.setFeedback(ConfirmedFeedback(t, s.Feedback.IssuedAt)); err != nil {
		e.logger().Error().Err(err).Msg("Auto-feedback confirmation rejected")
		return
	}

	metrics.RecordFeedbackOutcome(t.String(), "confirmed")
	if t == FeedbackLike {
		e.emit(EventAutoLikeConfirmed)
	} else {
		e.emit(EventAutoDislikeConfirmed)
	}
}

// latchIntent blocks all further automation for the session. Completion
// polling and metadata probing keep running. A pending auto-feedback keeps
// its confirmation timer; only a contradicting click rolls it back.
func (e *Engine) latchIntent(reason IntentReason) {
	s := e.session
	if s == nil || !s.latchIntent(reason) {
		return
	}
	e.timers.cancel(automationTimers...)

	metrics.RecordIntent(reason.String())
	e.logger().Info().Str("reason", reason.String()).Msg("User intent to stay detected")
	e.emit(EventUserIntentToStay)
}

func (e *Engine) onStayElapsed() {
	e.latchIntent(IntentStayedOnVideo)
}

func (e *Engine) onScrolled(position float64) {
	s := e.session
	_, verdict := e.intent.ObserveScroll(s, position)
	switch verdict {
	case ReturnLatch:
		e.latchIntent(IntentMultipleReturns)
	case ReturnArmStay:
		e.logger().Debug().Int("returns", s.ScrollBackCount).Msg("Return to recent video")
		e.timers.arm(s.seq, timerStay, e.cfg.StayDuration)
	}
	e.onManualScroll()
}

// onManualScroll reports a user skip once per session. Scrolls caused by
// our own advance commands are not skips.
func (e *Engine) onManualScroll() {
	s := e.session
	if s == nil || s.Completion.Completed || s.AdvanceIssued || s.ManualSkipReported {
		return
	}
	s.ManualSkipReported = true
	e.emit(EventManualSkip)
}

// onManualFeedback handles a like/dislike click. Intent latches first, then
// a contradicted pending auto-action is rolled back, then the click itself
// is reported.
func (e *Engine) onManualFeedback(ev ManualFeedback) {
	s := e.session
	if s == nil || (ev.VideoID != "" && ev.VideoID != s.ID) {
		return
	}

	e.latchIntent(manualIntentReason(ev.Type))
	s.ManualFeedback = true

	if s.Feedback.Kind == FeedbackPendingAuto &&
		e.clock.Now().Sub(s.Feedback.IssuedAt) < e.cfg.ConfirmationWindow &&
		contradicts(s.Feedback.Type, ev) {
		e.rollbackAutoFeedback()
	}

	e.emit(manualEventType(ev))
}

// contradicts reports whether a click points the opposite way to pending.
// Pressing like or releasing dislike is positive; the reverse is negative.
func contradicts(pending FeedbackType, ev ManualFeedback) bool {
	positive := (ev.Type == FeedbackLike) == ev.Pressed
	return positive != (pending == FeedbackLike)
}

func (e *Engine) rollbackAutoFeedback() {
	s := e.session
	pending := s.Feedback.Type
	e.timers.cancel(timerConfirmation)
	if err := s.setFeedback(UserOverridden()); err != nil {
		e.logger().Error().Err(err).Msg("Auto-feedback rollback rejected")
		return
	}
	s.OverrideActive = true

	metrics.RecordFeedbackOutcome(pending.String(), "overridden")
	e.logger().Info().Str("type", pending.String()).Msg("User contradicted auto-feedback")
	if pending == FeedbackLike {
		e.emit(EventUndoAutoLike)
	} else {
		e.emit(EventUndoAutoDislike)
	}
}

func manualEventType(ev ManualFeedback) EventType {
	switch {
	case ev.Type == FeedbackLike && ev.Pressed:
		return EventUserLike
	case ev.Type == FeedbackLike:
		return EventUserUnlike
	case ev.Pressed:
		return EventUserDislike
	default:
		return EventUserUndislike
	}
}

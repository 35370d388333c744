// Feedpilot - Short-form Feed Engagement Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedpilot

package engagement

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/feedpilot/internal/logging"
	"github.com/tomtom215/feedpilot/internal/metrics"
)

const inboxSize = 1024

// Actuator performs a command on the host interface.
type Actuator interface {
	Perform(ctx context.Context, cmd Command) error
}

// TelemetrySink receives decision-relevant events. Emit must not block the
// loop for long; failures are logged and otherwise ignored.
type TelemetrySink interface {
	Emit(ctx context.Context, ev TelemetryEvent) error
}

// Scorer talks to the remote scoring service. Calls run off the loop.
type Scorer interface {
	Score(ctx context.Context, md Metadata) (ScoreResult, error)
	ChannelStatus(ctx context.Context, channelID string) (ChannelStatus, error)
}

// MetadataSource returns what the host page exposes about an item. Lookup
// runs on the loop and must be fast; an absent element is reported as
// ErrMissingElement.
type MetadataSource interface {
	Lookup(ctx context.Context, videoID string) (Metadata, error)
}

// OverlaySink receives state snapshots for on-screen display.
type OverlaySink interface {
	PublishSnapshot(s Snapshot)
}

// Deps are the engine's collaborators. Actuator and Telemetry are
// required; the rest may be nil.
type Deps struct {
	Actuator  Actuator
	Telemetry TelemetrySink
	Scorer    Scorer
	Metadata  MetadataSource
	Overlay   OverlaySink
	Clock     Clock
}

// Engine owns the live VideoSession and makes every automation decision.
type Engine struct {
	cfg       Config
	actuator  Actuator
	telemetry TelemetrySink
	scorer    Scorer
	metadata  MetadataSource
	overlay   OverlaySink
	clock     Clock

	inbox chan Event
	done  chan struct{}
	ctx   context.Context
	spawn func(func())

	// Loop-owned state.
	session  *VideoSession
	seq      uint64
	recency  *RecencyBuffer
	tracker  *ProgressTracker
	detector *CompletionDetector
	intent   *IntentDetector
	timers   *timerSet

	mood           Mood
	autoAdvance    bool
	autoFeedback   bool
	bufferSize     int
	lastAutoSkipID string
	lastAutoSkipAt time.Time

	snapMu sync.RWMutex
	snap   Snapshot
}

// New creates an engine. Call RunWithContext to start processing.
func New(cfg Config, deps Deps) *Engine {
	if deps.Clock == nil {
		deps.Clock = SystemClock{}
	}
	mood := cfg.InitialMood
	if _, ok := ParseMood(string(mood)); !ok {
		mood = MoodNeutral
	}

	recency := NewRecencyBuffer(cfg.RecencyCapacity)
	e := &Engine{
		cfg:          cfg,
		actuator:     deps.Actuator,
		telemetry:    deps.Telemetry,
		scorer:       deps.Scorer,
		metadata:     deps.Metadata,
		overlay:      deps.Overlay,
		clock:        deps.Clock,
		inbox:        make(chan Event, inboxSize),
		done:         make(chan struct{}),
		ctx:          context.Background(),
		spawn:        func(f func()) { go f() },
		recency:      recency,
		tracker:      NewProgressTracker(cfg.ProgressInterval),
		detector:     NewCompletionDetector(cfg.CompletionPercent),
		intent:       NewIntentDetector(recency, cfg.ScrollBackThreshold),
		mood:         mood,
		autoAdvance:  cfg.AutoAdvance,
		autoFeedback: cfg.AutoFeedback,
	}
	e.timers = newTimerSet(e.clock, e.post)
	e.snap = e.buildSnapshot()
	return e
}

// Submit queues a host event. It blocks until the event is queued, ctx is
// done or the loop has exited.
func (e *Engine) Submit(ctx context.Context, ev Event) error {
	select {
	case <-e.done:
		return ErrStopped
	default:
	}
	select {
	case e.inbox <- ev:
		return nil
	case <-e.done:
		return ErrStopped
	case <-ctx.Done():
		return fmt.Errorf("submit %s: %w", ev.eventName(), ctx.Err())
	}
}

// post queues an internal event from a timer or async call. It never blocks.
func (e *Engine) post(ev Event) {
	select {
	case e.inbox <- ev:
	default:
		metrics.RecordSignalDropped("inbox_full")
		logging.Warn().Str("event", ev.eventName()).Msg("Engine inbox full, dropping internal event")
	}
}

// RunWithContext processes events until ctx is canceled. It must be called
// at most once.
func (e *Engine) RunWithContext(ctx context.Context) error {
	e.ctx = ctx
	logging.Info().
		Bool("auto_advance", e.autoAdvance).
		Bool("auto_feedback", e.autoFeedback).
		Bool("force_advance", e.cfg.ForceAdvance.Enabled).
		Msg("Engagement engine started")

	defer func() {
		e.timers.cancelAll()
		close(e.done)
		logging.Info().Msg("Engagement engine stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-e.inbox:
			e.handle(ev)
		}
	}
}

// drain processes every queued event synchronously, including those queued
// while draining.
func (e *Engine) drain() {
	for {
		select {
		case ev := <-e.inbox:
			e.handle(ev)
		default:
			return
		}
	}
}

// handle runs one event to completion. A panic is logged and the loop
// continues from the state the handler left behind.
func (e *Engine) handle(ev Event) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			metrics.RecordHandlerPanic(ev.eventName())
			e.logger().Error().
				Interface("panic", r).
				Str("event", ev.eventName()).
				Msg("Recovered from panic in engine handler")
		}
	}()

	switch ev := ev.(type) {
	case VideoChanged:
		e.onVideoChanged(ev)
	case Playback:
		e.onPlayback(ev.Sample)
	case PlaybackEnded:
		e.onPlaybackEnded(ev)
	case Scrolled:
		e.onScrolled(ev.Position)
	case ManualFeedback:
		e.onManualFeedback(ev)
	case MoodChanged:
		e.onMoodChanged(ev.Mood)
	case ToggleTrust:
		e.onToggleTrust()
	case ToggleBlock:
		e.onToggleBlock()
	case SetAutoAdvance:
		e.onSetAutoAdvance(ev.Enabled)
	case SetAutoFeedback:
		e.onSetAutoFeedback(ev.Enabled)
	case RequestAction:
		e.onRequestAction(ev.Action)
	case BufferSizeReceived:
		e.bufferSize = ev.Size
	case timerFired:
		e.onTimer(ev)
	case scoreResult:
		e.onScoreResult(ev)
	case channelStatusResult:
		e.onChannelStatusResult(ev)
	default:
		e.logger().Warn().Str("event", ev.eventName()).Msg("Unhandled engine event")
	}

	metrics.SetActiveTimers(e.timers.count())
	e.publishSnapshot()
	metrics.RecordEngineEvent(ev.eventName(), time.Since(start))
}

func (e *Engine) onTimer(ev timerFired) {
	s := e.session
	if s == nil || ev.seq != s.seq {
		return
	}
	if !e.timers.claim(ev) {
		return
	}

	switch ev.kind {
	case timerForceAdvance:
		e.onForceTimerElapsed()
	case timerCompletionPoll:
		e.onCompletionPoll()
	case timerStay:
		e.onStayElapsed()
	case timerConfirmation:
		e.onConfirmationElapsed()
	case timerAutoSkip:
		e.onAutoSkipElapsed()
	case timerAdvanceRetry:
		e.onAdvanceRetry()
	case timerMetadata:
		e.probeMetadata()
	}
}

// logger returns a logger tagged with the live session, if any.
func (e *Engine) logger() *zerolog.Logger {
	if e.session == nil {
		l := logging.WithComponent("engagement")
		return &l
	}
	ctx := logging.ContextWithSession(e.ctx, e.session.CorrelationID, e.session.ID)
	l := logging.CtxWith(ctx).Str("component", "engagement").Logger()
	return &l
}

// emit reports ev for the live session with the current mood.
func (e *Engine) emit(eventType EventType) {
	ev := TelemetryEvent{
		EventType: eventType,
		Mood:      e.mood,
		ChannelID: UnknownChannel,
		At:        e.clock.Now(),
	}
	if s := e.session; s != nil {
		ev.VideoID = s.ID
		ev.ChannelID = s.ChannelID()
		ev.Title = s.Metadata.Title
		ev.Description = s.Metadata.Description
		ev.Captions = s.Metadata.Captions
		ev.WatchedPercent = s.Progress.WatchedPercent
		ev.CorrelationID = s.CorrelationID
	}

	metrics.RecordTelemetryEmitted(string(eventType))
	if err := e.telemetry.Emit(e.ctx, ev); err != nil {
		e.logger().Warn().Err(err).Str("event_type", string(eventType)).Msg("Failed to emit telemetry")
		return
	}
	e.logger().Debug().
		Str("event_type", string(eventType)).
		Float64("watched_percent", ev.WatchedPercent).
		Msg("Telemetry emitted")
}

// perform sends cmd to the actuator. Failures are logged; the host may
// still carry out the action.
func (e *Engine) perform(cmd Command) {
	err := e.actuator.Perform(e.ctx, cmd)
	metrics.RecordAction(cmd.Action.String(), string(cmd.Trigger), err)
	if err != nil {
		e.logger().Warn().Err(err).
			Str("action", cmd.Action.String()).
			Str("trigger", string(cmd.Trigger)).
			Msg("Actuator command failed")
		return
	}
	e.logger().Info().
		Str("action", cmd.Action.String()).
		Str("trigger", string(cmd.Trigger)).
		Msg("Actuator command issued")
}

// Snapshot returns the latest published state. Safe for concurrent use.
func (e *Engine) Snapshot() Snapshot {
	e.snapMu.RLock()
	defer e.snapMu.RUnlock()
	return e.snap
}

func (e *Engine) buildSnapshot() Snapshot {
	snap := Snapshot{
		Mood:         e.mood,
		ChannelID:    UnknownChannel,
		Feedback:     FeedbackState{}.String(),
		Intent:       IntentState{}.String(),
		AutoAdvance:  e.autoAdvance,
		AutoFeedback: e.autoFeedback,
		BufferSize:   e.bufferSize,
	}
	s := e.session
	if s == nil {
		return snap
	}

	snap.VideoID = s.ID
	snap.ChannelID = s.ChannelID()
	snap.ChannelName = s.Metadata.ChannelName
	snap.Title = s.Metadata.Title
	snap.WatchedPercent = s.Progress.WatchedPercent
	snap.MaxWatched = s.Progress.MaxWatchedPercent
	if s.HasScore {
		score := s.Score
		snap.Score = &score
	}
	snap.MoodSuggestion = s.MoodSuggestion
	snap.Feedback = s.Feedback.String()
	snap.Intent = s.Intent.String()
	snap.Completed = s.Completion.Completed
	if s.Completion.Completed {
		snap.CompletionMethod = s.Completion.Method.String()
	}
	snap.ScrollBackCount = s.ScrollBackCount
	snap.Trusted = s.ChannelStatus.Trusted
	snap.Blocked = s.ChannelStatus.Blocked
	return snap
}

// publishSnapshot stores the current state and forwards it to the overlay
// when something visible changed.
func (e *Engine) publishSnapshot() {
	next := e.buildSnapshot()

	e.snapMu.Lock()
	prev := e.snap
	changed := !snapshotsEqual(&prev, &next)
	if changed {
		next.UpdatedAt = e.clock.Now()
		e.snap = next
	}
	e.snapMu.Unlock()

	if changed && e.overlay != nil {
		e.overlay.PublishSnapshot(next)
	}
}

func snapshotsEqual(a, b *Snapshot) bool {
	if (a.Score == nil) != (b.Score == nil) {
		return false
	}
	if a.Score != nil && *a.Score != *b.Score {
		return false
	}
	ac, bc := *a, *b
	ac.Score, bc.Score = nil, nil
	ac.UpdatedAt, bc.UpdatedAt = time.Time{}, time.Time{}
	return ac == bc
}

// Feedpilot - Short-form Feed Engagement Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedpilot

package engagement

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/tomtom215/feedpilot/internal/logging"
)

func init() {
	logging.Init(logging.Config{Level: "error", Format: "console", Output: io.Discard})
}

var testEpoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// fakeClock fires timers only when Advance is called.
type fakeClock struct {
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	at      time.Time
	f       func()
	stopped bool
	fired   bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: testEpoch}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	t := &fakeTimer{at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// next returns the earliest pending timer due at or before target.
func (c *fakeClock) next(target time.Time) *fakeTimer {
	var due *fakeTimer
	for _, t := range c.timers {
		if t.stopped || t.fired || t.at.After(target) {
			continue
		}
		if due == nil || t.at.Before(due.at) {
			due = t
		}
	}
	return due
}

func (c *fakeClock) pending() int {
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

type recordingActuator struct {
	commands []Command
	err      error
	panicOn  Action
}

func (a *recordingActuator) Perform(_ context.Context, cmd Command) error {
	if a.panicOn != 0 && cmd.Action == a.panicOn {
		panic("actuator exploded")
	}
	a.commands = append(a.commands, cmd)
	return a.err
}

func (a *recordingActuator) count(action Action, trigger Trigger) int {
	n := 0
	for _, c := range a.commands {
		if c.Action == action && (trigger == "" || c.Trigger == trigger) {
			n++
		}
	}
	return n
}

type recordingTelemetry struct {
	events []TelemetryEvent
}

func (r *recordingTelemetry) Emit(_ context.Context, ev TelemetryEvent) error {
	r.events = append(r.events, ev)
	return nil
}

func (r *recordingTelemetry) types() []EventType {
	out := make([]EventType, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.EventType
	}
	return out
}

func (r *recordingTelemetry) count(t EventType) int {
	n := 0
	for _, ev := range r.events {
		if ev.EventType == t {
			n++
		}
	}
	return n
}

// stubScorer returns scores by video ID. failures makes the first n Score
// calls fail.
type stubScorer struct {
	scores   map[string]float64
	failures int
	calls    int
	status   map[string]ChannelStatus
}

func (s *stubScorer) Score(_ context.Context, md Metadata) (ScoreResult, error) {
	s.calls++
	if s.failures > 0 {
		s.failures--
		return ScoreResult{}, fmt.Errorf("POST /next: %w", ErrNetwork)
	}
	score, ok := s.scores[md.VideoID]
	if !ok {
		return ScoreResult{}, fmt.Errorf("no score for %s: %w", md.VideoID, ErrNetwork)
	}
	return ScoreResult{Score: score, MoodSuggestion: "Curious"}, nil
}

func (s *stubScorer) ChannelStatus(_ context.Context, channelID string) (ChannelStatus, error) {
	return s.status[channelID], nil
}

// stubMetadata reports ErrMissingElement for the first missing lookups.
type stubMetadata struct {
	missing int
	lookups int
	channel string
}

func (m *stubMetadata) Lookup(_ context.Context, videoID string) (Metadata, error) {
	m.lookups++
	if m.missing > 0 {
		m.missing--
		return Metadata{}, fmt.Errorf("channel link: %w", ErrMissingElement)
	}
	return Metadata{
		VideoID:   videoID,
		ChannelID: m.channel,
		Title:     "title " + videoID,
	}, nil
}

type recordingOverlay struct {
	snapshots []Snapshot
}

func (o *recordingOverlay) PublishSnapshot(s Snapshot) {
	o.snapshots = append(o.snapshots, s)
}

type harness struct {
	t         *testing.T
	clock     *fakeClock
	actuator  *recordingActuator
	telemetry *recordingTelemetry
	scorer    *stubScorer
	metadata  *stubMetadata
	overlay   *recordingOverlay
	engine    *Engine
}

func newHarness(t *testing.T, mutate func(*Config)) *harness {
	t.Helper()
	cfg := DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}

	h := &harness{
		t:         t,
		clock:     newFakeClock(),
		actuator:  &recordingActuator{},
		telemetry: &recordingTelemetry{},
		scorer:    &stubScorer{scores: map[string]float64{}, status: map[string]ChannelStatus{}},
		metadata:  &stubMetadata{channel: "UC123"},
		overlay:   &recordingOverlay{},
	}
	h.engine = New(cfg, Deps{
		Actuator:  h.actuator,
		Telemetry: h.telemetry,
		Scorer:    h.scorer,
		Metadata:  h.metadata,
		Overlay:   h.overlay,
		Clock:     h.clock,
	})
	h.engine.spawn = func(f func()) { f() }
	return h
}

// send handles ev and everything it queues.
func (h *harness) send(ev Event) {
	h.engine.handle(ev)
	h.engine.drain()
}

// advance moves the clock forward, firing due timers in order.
func (h *harness) advance(d time.Duration) {
	target := h.clock.now.Add(d)
	for {
		t := h.clock.next(target)
		if t == nil {
			break
		}
		h.clock.now = t.at
		t.fired = true
		t.f()
		h.engine.drain()
	}
	h.clock.now = target
}

// start opens a session for id and lets metadata and scoring resolve.
func (h *harness) start(id string, score float64) {
	h.scorer.scores[id] = score
	h.send(VideoChanged{VideoID: id})
	h.advance(h.engine.cfg.MetadataDelay)
}

// play reports elapsed/duration seconds after the sampling interval.
func (h *harness) play(elapsed, duration float64) {
	h.advance(200 * time.Millisecond)
	h.send(Playback{Sample: PlaybackSample{Elapsed: elapsed, Duration: duration}})
}

func (h *harness) session() *VideoSession {
	h.t.Helper()
	if h.engine.session == nil {
		h.t.Fatal("no live session")
	}
	return h.engine.session
}

// Feedpilot - Short-form Feed Engagement Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedpilot

package engagement

import "time"

type timerKind int

const (
	timerForceAdvance timerKind = iota + 1
	timerCompletionPoll
	timerStay
	timerConfirmation
	timerAutoSkip
	timerAdvanceRetry
	timerMetadata
)

func (k timerKind) String() string {
	switch k {
	case timerForceAdvance:
		return "force_advance"
	case timerCompletionPoll:
		return "completion_poll"
	case timerStay:
		return "stay"
	case timerConfirmation:
		return "confirmation"
	case timerAutoSkip:
		return "auto_skip"
	case timerAdvanceRetry:
		return "advance_retry"
	case timerMetadata:
		return "metadata"
	default:
		return "unknown"
	}
}

// automationTimers are canceled when intent latches. Completion polling and
// metadata probing keep running since they only observe.
var automationTimers = []timerKind{
	timerForceAdvance,
	timerStay,
	timerAutoSkip,
	timerAdvanceRetry,
}

type armedTimer struct {
	timer Timer
	gen   uint64
}

// timerSet holds at most one armed timer per kind for the live session.
// Only the loop goroutine touches it.
type timerSet struct {
	clock Clock
	post  func(Event)
	armed map[timerKind]armedTimer
	gen   uint64
}

func newTimerSet(clock Clock, post func(Event)) *timerSet {
	return &timerSet{
		clock: clock,
		post:  post,
		armed: make(map[timerKind]armedTimer),
	}
}

// arm replaces any timer of the same kind.
func (ts *timerSet) arm(seq uint64, kind timerKind, d time.Duration) {
	ts.cancel(kind)
	ts.gen++
	gen := ts.gen
	t := ts.clock.AfterFunc(d, func() {
		ts.post(timerFired{kind: kind, seq: seq, gen: gen})
	})
	ts.armed[kind] = armedTimer{timer: t, gen: gen}
}

func (ts *timerSet) cancel(kinds ...timerKind) {
	for _, kind := range kinds {
		if a, ok := ts.armed[kind]; ok {
			a.timer.Stop()
			delete(ts.armed, kind)
		}
	}
}

func (ts *timerSet) cancelAll() {
	for kind, a := range ts.armed {
		a.timer.Stop()
		delete(ts.armed, kind)
	}
}

func (ts *timerSet) active(kind timerKind) bool {
	_, ok := ts.armed[kind]
	return ok
}

// claim consumes the armed entry matching ev. A stopped timer that already
// fired, or one re-armed since, fails the generation check.
func (ts *timerSet) claim(ev timerFired) bool {
	a, ok := ts.armed[ev.kind]
	if !ok || a.gen != ev.gen {
		return false
	}
	delete(ts.armed, ev.kind)
	return true
}

func (ts *timerSet) count() int {
	return len(ts.armed)
}

// Feedpilot - Short-form Feed Engagement Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedpilot

package engagement

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestProgressTrackerObserve(t *testing.T) {
	type step struct {
		elapsed, duration float64
		wantPercent       float64
		wantMax           float64
	}
	tests := []struct {
		name  string
		steps []step
	}{
		{
			name: "forward progress",
			steps: []step{
				{2, 10, 20, 20},
				{5, 10, 50, 50},
				{8, 10, 80, 80},
			},
		},
		{
			name: "tracking glitch clamps to max",
			steps: []step{
				{6, 10, 60, 60},
				{3, 10, 60, 60},
			},
		},
		{
			name: "small seek back is accepted",
			steps: []step{
				{6, 10, 60, 60},
				{5, 10, 50, 60},
			},
		},
		{
			name: "loop restart clamps to max",
			steps: []step{
				{8, 10, 80, 80},
				{8, 0, 0, 80},
				{0.2, 10, 80, 80},
			},
		},
		{
			name: "early rewind is accepted",
			steps: []step{
				{1, 16, 6.25, 6.25},
				{0.25, 16, 1.5625, 6.25},
			},
		},
		{
			name: "elapsed past duration clamps to 100",
			steps: []step{
				{12, 10, 100, 100},
			},
		},
		{
			name: "invalid duration resets percent",
			steps: []step{
				{5, 10, 50, 50},
				{5, 0, 0, 50},
				{5, math.NaN(), 0, 50},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker := NewProgressTracker(0)
			var p ProgressState
			at := testEpoch
			for i, s := range tt.steps {
				at = at.Add(time.Second)
				accepted, err := tracker.Observe(&p, PlaybackSample{Elapsed: s.elapsed, Duration: s.duration, At: at})
				if err != nil || !accepted {
					t.Fatalf("step %d: Observe() = %v, %v", i, accepted, err)
				}
				if p.WatchedPercent != s.wantPercent {
					t.Errorf("step %d: WatchedPercent = %v, want %v", i, p.WatchedPercent, s.wantPercent)
				}
				if p.MaxWatchedPercent != s.wantMax {
					t.Errorf("step %d: MaxWatchedPercent = %v, want %v", i, p.MaxWatchedPercent, s.wantMax)
				}
			}
		})
	}
}

func TestProgressTrackerMaxIsMonotonic(t *testing.T) {
	tracker := NewProgressTracker(0)
	var p ProgressState
	samples := []float64{1, 3, 2, 7, 0.1, 6, 9, 1, 9.5, 4, 10}
	prevMax := 0.0
	at := testEpoch
	for _, elapsed := range samples {
		at = at.Add(time.Second)
		if _, err := tracker.Observe(&p, PlaybackSample{Elapsed: elapsed, Duration: 10, At: at}); err != nil {
			t.Fatalf("Observe(%v) error = %v", elapsed, err)
		}
		if p.MaxWatchedPercent < prevMax {
			t.Fatalf("max dropped from %v to %v", prevMax, p.MaxWatchedPercent)
		}
		prevMax = p.MaxWatchedPercent
	}
}

func TestProgressTrackerRejectsTransientSignal(t *testing.T) {
	tests := []struct {
		name     string
		elapsed  float64
		duration float64
	}{
		{"NaN elapsed", math.NaN(), 10},
		{"infinite elapsed", math.Inf(1), 10},
		{"negative elapsed", -1, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker := NewProgressTracker(0)
			p := ProgressState{WatchedPercent: 40, MaxWatchedPercent: 40, LastValidPercent: 40}

			_, err := tracker.Observe(&p, PlaybackSample{Elapsed: tt.elapsed, Duration: tt.duration, At: testEpoch})
			if !errors.Is(err, ErrTransientSignal) {
				t.Fatalf("Observe() error = %v, want ErrTransientSignal", err)
			}
			if p.WatchedPercent != 40 {
				t.Errorf("WatchedPercent = %v, want last good value 40", p.WatchedPercent)
			}
		})
	}
}

func TestProgressTrackerRateLimit(t *testing.T) {
	tracker := NewProgressTracker(150 * time.Millisecond)
	var p ProgressState

	if ok, _ := tracker.Observe(&p, PlaybackSample{Elapsed: 1, Duration: 10, At: testEpoch}); !ok {
		t.Fatal("first sample rejected")
	}
	ok, _ := tracker.Observe(&p, PlaybackSample{Elapsed: 2, Duration: 10, Ended: true, At: testEpoch.Add(50 * time.Millisecond)})
	if ok {
		t.Fatal("sample inside interval accepted")
	}
	if p.WatchedPercent != 10 {
		t.Errorf("WatchedPercent = %v, want 10", p.WatchedPercent)
	}
	if !p.Ended {
		t.Error("Ended flag dropped with rate-limited sample")
	}
	if ok, _ := tracker.Observe(&p, PlaybackSample{Elapsed: 3, Duration: 10, At: testEpoch.Add(200 * time.Millisecond)}); !ok {
		t.Error("sample after interval rejected")
	}

	tracker.Reset()
	if ok, _ := tracker.Observe(&p, PlaybackSample{Elapsed: 4, Duration: 10, At: testEpoch.Add(210 * time.Millisecond)}); !ok {
		t.Error("sample after Reset rejected")
	}
}

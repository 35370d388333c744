// Feedpilot - Short-form Feed Engagement Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedpilot

package engagement

import (
	"fmt"
	"math"
	"time"

	"golang.org/x/time/rate"
)

// Glitch policy constants, in watched-percent points.
const (
	glitchDropPoints     = 20.0
	glitchMinLastValid   = 10.0
	restartFloorPercent  = 5.0
	restartMinMaxPercent = 50.0
)

// PlaybackSample is one raw playback snapshot from the host.
type PlaybackSample struct {
	// VideoID, when set, must match the live session or the sample is dropped.
	VideoID  string
	Elapsed  float64
	Duration float64
	Ended    bool
	At       time.Time
}

// ProgressTracker turns playback samples into a watched percent. It is
// deterministic for a given sample sequence: the rate limiter is evaluated
// against each sample's own timestamp.
type ProgressTracker struct {
	interval time.Duration
	limiter  *rate.Limiter
}

// NewProgressTracker accepts at most one sample per interval. A zero
// interval accepts every sample.
func NewProgressTracker(interval time.Duration) *ProgressTracker {
	t := &ProgressTracker{interval: interval}
	t.Reset()
	return t
}

// Reset starts a fresh sampling window, called on every new session.
func (t *ProgressTracker) Reset() {
	limit := rate.Inf
	if t.interval > 0 {
		limit = rate.Every(t.interval)
	}
	t.limiter = rate.NewLimiter(limit, 1)
}

// Observe applies s to p. It returns true if the sample was accepted. A
// non-finite or negative computed percent returns ErrTransientSignal and
// leaves p unchanged apart from the sticky Ended flag.
func (t *ProgressTracker) Observe(p *ProgressState, s PlaybackSample) (bool, error) {
	if s.Ended {
		p.Ended = true
	}
	if !t.limiter.AllowN(s.At, 1) {
		return false, nil
	}

	if !validDuration(s.Duration) {
		p.WatchedPercent = 0
		p.LastValidPercent = 0
		p.Duration = 0
		p.Samples++
		return true, nil
	}

	percent := s.Elapsed / s.Duration * 100
	if math.IsNaN(percent) || math.IsInf(percent, 0) || percent < 0 {
		return false, fmt.Errorf("%w: elapsed=%v duration=%v", ErrTransientSignal, s.Elapsed, s.Duration)
	}
	if percent > 100 {
		percent = 100
	}

	p.Elapsed = s.Elapsed
	p.Duration = s.Duration
	p.Samples++

	switch {
	case p.LastValidPercent > glitchMinLastValid && percent < p.LastValidPercent-glitchDropPoints:
		// tracking glitch
		p.WatchedPercent = p.MaxWatchedPercent
	case percent < restartFloorPercent && p.MaxWatchedPercent > restartMinMaxPercent:
		// looped back to the start
		p.WatchedPercent = p.MaxWatchedPercent
	default:
		p.WatchedPercent = percent
		p.LastValidPercent = percent
		p.MaxWatchedPercent = math.Max(p.MaxWatchedPercent, percent)
	}
	return true, nil
}

func validDuration(d float64) bool {
	return d > 0 && !math.IsNaN(d) && !math.IsInf(d, 0)
}

// Feedpilot - Short-form Feed Engagement Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedpilot

package engagement

import "time"

const (
	stuckFloorPercent   = 88.0
	stuckMaxDelta       = 1.0
	stuckSamples        = 3
	stalledRemainingSec = 1.0
	stalledMinPercent   = 80.0
)

type completionHeuristic struct {
	method  CompletionMethod
	matches func(p *ProgressState, c *CompletionState) bool
}

// CompletionDetector declares an item complete using an ordered list of
// heuristics. The first match wins and the result is terminal.
type CompletionDetector struct {
	heuristics []completionHeuristic
}

// NewCompletionDetector builds the default cascade with the given
// percentage threshold.
func NewCompletionDetector(threshold float64) *CompletionDetector {
	return &CompletionDetector{
		heuristics: []completionHeuristic{
			{CompletionEnded, func(p *ProgressState, _ *CompletionState) bool {
				return p.Ended
			}},
			{CompletionPercentage, func(p *ProgressState, _ *CompletionState) bool {
				return p.WatchedPercent >= threshold
			}},
			{CompletionStuckPercentage, stuckAtEnd},
			{CompletionStalledNearEnd, func(p *ProgressState, _ *CompletionState) bool {
				return p.Duration > 0 &&
					p.Duration-p.Elapsed < stalledRemainingSec &&
					p.WatchedPercent > stalledMinPercent
			}},
		},
	}
}

// stuckAtEnd counts consecutive samples above the floor whose delta from the
// previous sample is under one point. The previous sample is only recorded
// while above the floor.
func stuckAtEnd(p *ProgressState, c *CompletionState) bool {
	if p.WatchedPercent < stuckFloorPercent {
		return false
	}
	delta := p.WatchedPercent - c.lastSampled
	if delta < 0 {
		delta = -delta
	}
	if delta < stuckMaxDelta {
		c.stuckCount++
	} else {
		c.stuckCount = 0
	}
	c.lastSampled = p.WatchedPercent
	return c.stuckCount >= stuckSamples
}

// Check evaluates the cascade once. It returns the matching method and true
// the first time a heuristic matches; later calls are no-ops.
func (d *CompletionDetector) Check(p *ProgressState, c *CompletionState, now time.Time) (CompletionMethod, bool) {
	if c.Completed {
		return CompletionNone, false
	}
	for _, h := range d.heuristics {
		if h.matches(p, c) {
			c.Completed = true
			c.Method = h.method
			c.CompletedAt = now
			return h.method, true
		}
	}
	return CompletionNone, false
}

// Feedpilot - Short-form Feed Engagement Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedpilot

package engagement

// ReturnVerdict is the outcome of a return check on an upward scroll.
type ReturnVerdict int

const (
	// ReturnNone means the current item was not seen recently.
	ReturnNone ReturnVerdict = iota
	// ReturnArmStay means a return was counted but the threshold is not met;
	// the stay timer should be (re)armed.
	ReturnArmStay
	// ReturnLatch means the return threshold was reached.
	ReturnLatch
)

// IntentDetector tracks scroll direction and recognizes returns to
// recently left items. Scroll position persists across sessions because the
// feed is one continuous scroll surface.
type IntentDetector struct {
	recency      *RecencyBuffer
	threshold    int
	lastPosition float64
	hasPosition  bool
}

// NewIntentDetector creates a detector that latches after threshold returns.
func NewIntentDetector(recency *RecencyBuffer, threshold int) *IntentDetector {
	if threshold < 1 {
		threshold = 1
	}
	return &IntentDetector{recency: recency, threshold: threshold}
}

// ObserveScroll records position and, on upward movement, runs the return
// check against s. It reports whether the movement was upward.
func (d *IntentDetector) ObserveScroll(s *VideoSession, position float64) (bool, ReturnVerdict) {
	upward := d.hasPosition && position < d.lastPosition
	d.lastPosition = position
	d.hasPosition = true

	if !upward || s == nil || s.Intent.Detected {
		return upward, ReturnNone
	}
	if !d.recency.Contains(s.ID) {
		return true, ReturnNone
	}

	s.ScrollBackCount++
	if s.ScrollBackCount >= d.threshold {
		return true, ReturnLatch
	}
	return true, ReturnArmStay
}

// manualIntentReason maps a clicked button to its intent reason.
func manualIntentReason(t FeedbackType) IntentReason {
	if t == FeedbackLike {
		return IntentManualLike
	}
	return IntentManualDislike
}

// latchIntent sets the intent state once. It returns false if already latched.
func (s *VideoSession) latchIntent(reason IntentReason) bool {
	if s.Intent.Detected {
		return false
	}
	s.Intent = IntentState{Detected: true, Reason: reason}
	s.OverrideActive = true
	return true
}

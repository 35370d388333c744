// Feedpilot - Short-form Feed Engagement Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedpilot

package engagement

import "fmt"

// feedbackTransitions lists every legal FeedbackState change within a
// session. A manual action with nothing pending leaves the state at None.
var feedbackTransitions = map[FeedbackKind]map[FeedbackKind]bool{
	FeedbackNone: {
		FeedbackPendingAuto: true,
	},
	FeedbackPendingAuto: {
		FeedbackConfirmed:      true,
		FeedbackUserOverridden: true,
	},
}

// CanTransitionFeedback reports whether from -> to is legal.
func CanTransitionFeedback(from, to FeedbackKind) bool {
	return feedbackTransitions[from][to]
}

// setFeedback applies next to the session if the transition is legal.
func (s *VideoSession) setFeedback(next FeedbackState) error {
	if !CanTransitionFeedback(s.Feedback.Kind, next.Kind) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, s.Feedback, next)
	}
	s.Feedback = next
	return nil
}

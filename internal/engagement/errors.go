// Feedpilot - Short-form Feed Engagement Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedpilot

package engagement

import "errors"

// Error taxonomy. Collaborators wrap these with %w; the engine checks them
// with errors.Is and never treats any of them as fatal.
var (
	// ErrTransientSignal marks a malformed playback sample. The sample is
	// dropped and the last good value kept.
	ErrTransientSignal = errors.New("transient signal")

	// ErrNetwork marks a failed scoring or telemetry request. Dependent state
	// stays unset until the next polling cycle.
	ErrNetwork = errors.New("network request failed")

	// ErrMissingElement marks an absent page element during metadata
	// probing. Retried up to the configured attempt count.
	ErrMissingElement = errors.New("page element missing")

	// ErrIllegalTransition is returned when a feedback state change is not
	// in the transition table.
	ErrIllegalTransition = errors.New("illegal feedback transition")

	// ErrStopped is returned by Submit after the loop has exited.
	ErrStopped = errors.New("engine stopped")
)

// Feedpilot - Short-form Feed Engagement Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedpilot

// Package engagement implements the per-item decision engine that drives a
// continuously advancing short-form video feed.
//
// The engine tracks one live VideoSession at a time. Raw host signals
// (video changes, playback snapshots, scroll positions, button clicks) are
// submitted as events and processed one at a time on a single goroutine:
//
//	engine := engagement.New(cfg, engagement.Deps{
//	    Actuator:  bridge,
//	    Telemetry: publisher,
//	    Scorer:    scoringClient,
//	    Metadata:  metadataStore,
//	    Overlay:   overlay,
//	})
//	go engine.RunWithContext(ctx)
//	engine.Submit(ctx, engagement.VideoChanged{VideoID: "abc"})
//
// # Components
//
//   - ProgressTracker: turns playback snapshots into a watched percent,
//     filtering tracking glitches and accidental restarts.
//   - CompletionDetector: ordered heuristics (ended, percentage,
//     stuck_percentage, stalled_near_end), first match wins.
//   - IntentDetector: latches "user wants to stay" from repeated returns,
//     staying on a returned-to item, or a manual like/dislike.
//   - Arbitrator (engine handlers): decides auto-advance and auto-feedback,
//     runs the feedback confirmation window and resolves conflicts with
//     manual actions.
//
// # Guarantees
//
// Once intent has latched or the user has pressed like/dislike, no automatic
// advance or feedback is issued for that session. The check is repeated at
// the moment an action fires, not only when it is scheduled.
//
// Timers never run engine code directly. A firing timer posts an event
// tagged with the session sequence number and a generation counter; stale
// events are discarded when they reach the loop.
//
// # Thread Safety
//
// Submit and Snapshot are safe for concurrent use. Everything else runs on
// the loop goroutine started by RunWithContext.
package engagement

// Feedpilot - Short-form Feed Engagement Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedpilot

/*
Package services adapts daemon components to suture.Service.

  - HTTPServerService: ListenAndServe plus graceful Shutdown on cancellation
  - RunnerService: any RunWithContext loop (websocket hub)
  - EngineService: the engagement engine, never restarted after it exits
  - BufferSizeService: one-shot startup fetch of the scoring buffer size

The telemetry forwarder implements suture.Service itself and is added to the
tree directly.
*/
package services

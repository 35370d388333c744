// Feedpilot - Short-form Feed Engagement Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedpilot

package services

import (
	"context"
	"fmt"

	"github.com/thejerf/suture/v4"
)

// ContextRunner is anything with a blocking, context-aware run loop, such as
// *websocket.Hub or *engagement.Engine.
type ContextRunner interface {
	RunWithContext(ctx context.Context) error
}

// RunnerService names a ContextRunner for the supervisor.
type RunnerService struct {
	runner ContextRunner
	name   string
}

// NewRunnerService wraps runner under name.
func NewRunnerService(name string, runner ContextRunner) *RunnerService {
	return &RunnerService{runner: runner, name: name}
}

// Serve implements suture.Service.
func (r *RunnerService) Serve(ctx context.Context) error {
	return r.runner.RunWithContext(ctx)
}

func (r *RunnerService) String() string {
	return r.name
}

// EngineService runs the engagement engine. The engine's loop can only be
// started once, so an unexpected exit is reported to suture as terminal.
type EngineService struct {
	engine ContextRunner
}

// NewEngineService wraps engine.
func NewEngineService(engine ContextRunner) *EngineService {
	return &EngineService{engine: engine}
}

// Serve implements suture.Service.
func (e *EngineService) Serve(ctx context.Context) error {
	err := e.engine.RunWithContext(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return fmt.Errorf("engagement engine exited: %w: %w", err, suture.ErrDoNotRestart)
}

func (e *EngineService) String() string {
	return "engagement-engine"
}

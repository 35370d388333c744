// Feedpilot - Short-form Feed Engagement Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedpilot

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/feedpilot/internal/engagement"
	"github.com/tomtom215/feedpilot/internal/logging"
)

// BufferSizeSource reports the scoring service's queue size.
type BufferSizeSource interface {
	BufferSize(ctx context.Context) (int, error)
}

// EventSubmitter accepts engine events.
type EventSubmitter interface {
	Submit(ctx context.Context, ev engagement.Event) error
}

// BufferSizeService fetches the buffer size once at startup and hands it to
// the engine. Failed fetches back off from InitialDelay up to MaxDelay.
type BufferSizeService struct {
	source BufferSizeSource
	engine EventSubmitter

	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// NewBufferSizeService creates the one-shot fetch service.
func NewBufferSizeService(source BufferSizeSource, engine EventSubmitter) *BufferSizeService {
	return &BufferSizeService{
		source:       source,
		engine:       engine,
		InitialDelay: time.Second,
		MaxDelay:     30 * time.Second,
	}
}

// Serve implements suture.Service. After one successful delivery it returns
// suture.ErrDoNotRestart.
func (b *BufferSizeService) Serve(ctx context.Context) error {
	delay := b.InitialDelay
	for attempt := 1; ; attempt++ {
		size, err := b.source.BufferSize(ctx)
		if err == nil {
			if err := b.engine.Submit(ctx, engagement.BufferSizeReceived{Size: size}); err != nil {
				return fmt.Errorf("submit buffer size: %w", err)
			}
			logging.Info().Int("buffer_size", size).Msg("Scoring buffer size received")
			return suture.ErrDoNotRestart
		}

		logging.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", delay).Msg("Buffer size fetch failed")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay = min(delay*2, b.MaxDelay)
	}
}

func (b *BufferSizeService) String() string {
	return "buffer-size-fetch"
}

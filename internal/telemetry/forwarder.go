// Feedpilot - Short-form Feed Engagement Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedpilot

package telemetry

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/goccy/go-json"

	"github.com/tomtom215/feedpilot/internal/config"
	"github.com/tomtom215/feedpilot/internal/engagement"
	"github.com/tomtom215/feedpilot/internal/logging"
	"github.com/tomtom215/feedpilot/internal/metrics"
	"github.com/tomtom215/feedpilot/internal/scoring"
)

const handlerName = "telemetry_forwarder"

// EventSender delivers one event to the scoring service.
type EventSender interface {
	SendEvent(ctx context.Context, ev engagement.TelemetryEvent) (scoring.EventResponse, error)
}

// Forwarder consumes the telemetry topic and sends each event to the
// scoring service.
type Forwarder struct {
	sub    message.Subscriber
	sender EventSender
	cfg    config.TelemetryConfig
	logger watermill.LoggerAdapter

	ready     chan struct{}
	readyOnce sync.Once

	forwarded atomic.Int64
	dropped   atomic.Int64
}

// ForwarderStats holds runtime counters.
type ForwarderStats struct {
	Forwarded int64
	Dropped   int64
}

// NewForwarder creates a forwarder reading cfg.Topic from sub.
func NewForwarder(sub message.Subscriber, sender EventSender, cfg *config.TelemetryConfig) (*Forwarder, error) {
	if sub == nil {
		return nil, fmt.Errorf("subscriber required")
	}
	if sender == nil {
		return nil, fmt.Errorf("sender required")
	}
	return &Forwarder{
		sub:    sub,
		sender: sender,
		cfg:    *cfg,
		logger: NewLogger(),
		ready:  make(chan struct{}),
	}, nil
}

// Serve runs a fresh router until ctx is canceled. A Watermill router can
// only run once, so each call (including supervisor restarts) builds a new one.
func (f *Forwarder) Serve(ctx context.Context) error {
	router, err := f.newRouter()
	if err != nil {
		return err
	}

	go func() {
		select {
		case <-router.Running():
			f.readyOnce.Do(func() { close(f.ready) })
		case <-ctx.Done():
		}
	}()

	logging.Info().Str("topic", f.cfg.Topic).Msg("Telemetry forwarder started")
	if err := router.Run(ctx); err != nil {
		return fmt.Errorf("telemetry router: %w", err)
	}
	return ctx.Err()
}

// String names the service for the supervisor.
func (f *Forwarder) String() string {
	return handlerName
}

// Ready is closed once the first router is consuming.
func (f *Forwarder) Ready() <-chan struct{} {
	return f.ready
}

// Stats returns current counters.
func (f *Forwarder) Stats() ForwarderStats {
	return ForwarderStats{
		Forwarded: f.forwarded.Load(),
		Dropped:   f.dropped.Load(),
	}
}

// newRouter wires the middleware chain, outer to inner: Recoverer,
// drop-on-failure. Events are sent once; a failed send is logged and dropped.
func (f *Forwarder) newRouter() (*message.Router, error) {
	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: f.cfg.CloseTimeout}, f.logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill router: %w", err)
	}

	router.AddMiddleware(middleware.Recoverer)
	router.AddMiddleware(f.dropOnFailure)

	router.AddConsumerHandler(handlerName, f.cfg.Topic, f.sub, f.Handle)
	return router, nil
}

// dropOnFailure acks messages whose send failed. The in-process transport
// redelivers nacked messages forever.
func (f *Forwarder) dropOnFailure(h message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		msgs, err := h(msg)
		if err != nil {
			eventType := msg.Metadata.Get(MetadataEventType)
			f.dropped.Add(1)
			metrics.RecordTelemetryForwarded(eventType, err)
			logging.Warn().
				Err(err).
				Str("event_type", eventType).
				Str("correlation_id", msg.Metadata.Get(MetadataCorrelationID)).
				Str("message_uuid", msg.UUID).
				Msg("Dropping telemetry event")
			return nil, nil
		}
		return msgs, nil
	}
}

// Handle forwards a single message.
func (f *Forwarder) Handle(msg *message.Message) error {
	var env Envelope
	if err := json.Unmarshal(msg.Payload, &env); err != nil {
		return fmt.Errorf("decode telemetry envelope: %w", err)
	}

	resp, err := f.sender.SendEvent(msg.Context(), env.Event())
	if err != nil {
		return fmt.Errorf("forward %s: %w", env.EventType, err)
	}

	f.forwarded.Add(1)
	metrics.RecordTelemetryForwarded(env.EventType, nil)
	logging.Debug().
		Str("event_type", env.EventType).
		Str("video_id", env.VideoID).
		Str("correlation_id", env.CorrelationID).
		Int("corrections_made", resp.CorrectionsMade).
		Msg("Telemetry event forwarded")
	return nil
}

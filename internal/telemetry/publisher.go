// Feedpilot - Short-form Feed Engagement Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedpilot

/*
Package telemetry decouples the engine from the scoring service's /event
endpoint.

The engine emits events into an in-process Watermill GoChannel topic and
returns immediately. A Watermill router consumes the topic and forwards each
event to the scoring service once, with panic recovery. A failed send is
logged and dropped; telemetry never blocks or fails a decision.

	pubsub := telemetry.NewPubSub(&cfg.Telemetry)
	sink := telemetry.NewPublisher(pubsub, cfg.Telemetry.Topic)
	fwd, _ := telemetry.NewForwarder(pubsub, client, &cfg.Telemetry)
	go fwd.Serve(ctx)
*/
package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/feedpilot/internal/config"
	"github.com/tomtom215/feedpilot/internal/engagement"
	"github.com/tomtom215/feedpilot/internal/logging"
)

// Message metadata keys.
const (
	MetadataEventType     = "event_type"
	MetadataCorrelationID = "correlation_id"
)

// Envelope is the wire form of an engagement.TelemetryEvent on the topic.
type Envelope struct {
	VideoID        string    `json:"video_id"`
	ChannelID      string    `json:"channel_id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Captions       string    `json:"captions"`
	EventType      string    `json:"event_type"`
	WatchedPercent float64   `json:"watched_percent"`
	Mood           string    `json:"mood"`
	CorrelationID  string    `json:"correlation_id,omitempty"`
	At             time.Time `json:"at"`
}

// NewEnvelope converts an engine event.
func NewEnvelope(ev engagement.TelemetryEvent) Envelope {
	return Envelope{
		VideoID:        ev.VideoID,
		ChannelID:      ev.ChannelID,
		Title:          ev.Title,
		Description:    ev.Description,
		Captions:       ev.Captions,
		EventType:      string(ev.EventType),
		WatchedPercent: ev.WatchedPercent,
		Mood:           string(ev.Mood),
		CorrelationID:  ev.CorrelationID,
		At:             ev.At,
	}
}

// Event converts back to the engine type.
func (e Envelope) Event() engagement.TelemetryEvent {
	return engagement.TelemetryEvent{
		VideoID:        e.VideoID,
		ChannelID:      e.ChannelID,
		Title:          e.Title,
		Description:    e.Description,
		Captions:       e.Captions,
		EventType:      engagement.EventType(e.EventType),
		WatchedPercent: e.WatchedPercent,
		Mood:           engagement.Mood(e.Mood),
		CorrelationID:  e.CorrelationID,
		At:             e.At,
	}
}

// NewLogger adapts the global zerolog logger for Watermill.
func NewLogger() watermill.LoggerAdapter {
	return watermill.NewSlogLogger(logging.NewSlogLogger())
}

// NewPubSub creates the in-process topic transport.
func NewPubSub(cfg *config.TelemetryConfig) *gochannel.GoChannel {
	return gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: cfg.BufferSize,
	}, NewLogger())
}

// Publisher implements engagement.TelemetrySink on a Watermill publisher.
type Publisher struct {
	pub   message.Publisher
	topic string
}

// NewPublisher creates a sink publishing to topic.
func NewPublisher(pub message.Publisher, topic string) *Publisher {
	return &Publisher{pub: pub, topic: topic}
}

// Emit publishes ev. It does not wait for delivery to the scoring service.
func (p *Publisher) Emit(ctx context.Context, ev engagement.TelemetryEvent) error {
	payload, err := json.Marshal(NewEnvelope(ev))
	if err != nil {
		return fmt.Errorf("encode telemetry event: %w", err)
	}

	msg := message.NewMessage(uuid.New().String(), payload)
	msg.SetContext(ctx)
	msg.Metadata.Set(MetadataEventType, string(ev.EventType))
	if ev.CorrelationID != "" {
		msg.Metadata.Set(MetadataCorrelationID, ev.CorrelationID)
	}

	if err := p.pub.Publish(p.topic, msg); err != nil {
		return fmt.Errorf("publish telemetry event: %w", err)
	}
	return nil
}

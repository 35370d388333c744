// Feedpilot - Short-form Feed Engagement Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedpilot

/*
Package hostbridge adapts the host page protocol to the engagement engine.

Inbound websocket messages are decoded, validated and turned into engine
events (Bridge). Engine commands and overlay snapshots go back out through
the hub (Actuator, Overlay). Metadata scraped by the page is kept in a
MetadataStore that the engine's probe reads.
*/
package hostbridge

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/tomtom215/feedpilot/internal/engagement"
	"github.com/tomtom215/feedpilot/internal/logging"
	"github.com/tomtom215/feedpilot/internal/validation"
	"github.com/tomtom215/feedpilot/internal/websocket"
)

// ErrUnknownMessage is returned for an unrecognized message type.
var ErrUnknownMessage = errors.New("unknown message type")

// Submitter accepts engine events.
type Submitter interface {
	Submit(ctx context.Context, ev engagement.Event) error
}

// Bridge implements websocket.MessageHandler.
type Bridge struct {
	engine   Submitter
	metadata *MetadataStore
}

// NewBridge creates a bridge feeding engine and recording scrapes in metadata.
func NewBridge(engine Submitter, metadata *MetadataStore) *Bridge {
	return &Bridge{engine: engine, metadata: metadata}
}

// HandleMessage decodes, validates and forwards one inbound message.
func (b *Bridge) HandleMessage(ctx context.Context, msg websocket.InboundMessage) error {
	ev, err := b.translate(msg)
	if err != nil {
		return err
	}
	if ev == nil {
		return nil
	}
	if err := b.engine.Submit(ctx, ev); err != nil {
		return fmt.Errorf("submit %s: %w", msg.Type, err)
	}
	return nil
}

// translate returns the engine event for msg, or nil when the message is
// fully handled by the bridge.
func (b *Bridge) translate(msg websocket.InboundMessage) (engagement.Event, error) {
	switch msg.Type {
	case TypeVideoChanged:
		var d VideoChangedData
		if err := decode(msg, &d); err != nil {
			return nil, err
		}
		return engagement.VideoChanged{VideoID: d.VideoID}, nil

	case TypePlayback:
		var d PlaybackData
		if err := decode(msg, &d); err != nil {
			return nil, err
		}
		return engagement.Playback{Sample: engagement.PlaybackSample{
			VideoID:  d.VideoID,
			Elapsed:  d.Elapsed,
			Duration: d.Duration,
			Ended:    d.Ended,
		}}, nil

	case TypeEnded:
		var d EndedData
		if err := decode(msg, &d); err != nil {
			return nil, err
		}
		return engagement.PlaybackEnded{VideoID: d.VideoID}, nil

	case TypeScroll:
		var d ScrollData
		if err := decode(msg, &d); err != nil {
			return nil, err
		}
		return engagement.Scrolled{Position: d.Position}, nil

	case TypeFeedbackClick:
		var d FeedbackClickData
		if err := decode(msg, &d); err != nil {
			return nil, err
		}
		t, _ := engagement.ParseFeedbackType(d.Type)
		return engagement.ManualFeedback{Type: t, Pressed: d.Pressed, VideoID: d.VideoID}, nil

	case TypeMetadata:
		var d MetadataData
		if err := decode(msg, &d); err != nil {
			return nil, err
		}
		md := b.metadata.Put(&d)
		logging.Debug().
			Str("video_id", md.VideoID).
			Str("channel_id", md.ChannelID).
			Bool("has_title", md.Title != "").
			Msg("Metadata received")
		return nil, nil

	case TypeSetMood:
		var d SetMoodData
		if err := decode(msg, &d); err != nil {
			return nil, err
		}
		mood, _ := engagement.ParseMood(d.Mood)
		return engagement.MoodChanged{Mood: mood}, nil

	case TypeToggleTrust:
		return engagement.ToggleTrust{}, nil

	case TypeToggleBlock:
		return engagement.ToggleBlock{}, nil

	case TypeSetAutoAdvance, TypeSetAutoFeedback:
		var d ToggleData
		if err := decode(msg, &d); err != nil {
			return nil, err
		}
		if msg.Type == TypeSetAutoAdvance {
			return engagement.SetAutoAdvance{Enabled: d.Enabled}, nil
		}
		return engagement.SetAutoFeedback{Enabled: d.Enabled}, nil

	case TypeRequestAdvance:
		return engagement.RequestAction{Action: engagement.ActionAdvance}, nil
	case TypeRequestLike:
		return engagement.RequestAction{Action: engagement.ActionLike}, nil
	case TypeRequestDislike:
		return engagement.RequestAction{Action: engagement.ActionDislike}, nil
	}

	return nil, fmt.Errorf("%q: %w", msg.Type, ErrUnknownMessage)
}

// decode unmarshals msg.Data into v and validates it. Missing data decodes
// as the zero value.
func decode(msg websocket.InboundMessage, v interface{}) error {
	if len(msg.Data) > 0 && string(msg.Data) != "null" {
		if err := json.Unmarshal(msg.Data, v); err != nil {
			return fmt.Errorf("decode %s: %w", msg.Type, err)
		}
	}
	if verr := validation.ValidateStruct(v); verr != nil {
		return fmt.Errorf("invalid %s: %w", msg.Type, verr)
	}
	return nil
}

// Feedpilot - Short-form Feed Engagement Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedpilot

package hostbridge

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/feedpilot/internal/engagement"
	"github.com/tomtom215/feedpilot/internal/websocket"
)

var (
	// ErrNoHost is returned when no page is connected to receive a command.
	ErrNoHost = errors.New("no host page connected")

	// ErrQueueFull is returned when the outbound queue dropped a command.
	ErrQueueFull = errors.New("outbound queue full")
)

// Broadcaster is the part of the websocket hub the bridge writes to.
type Broadcaster interface {
	BroadcastJSON(messageType string, data interface{}) bool
	BroadcastSticky(messageType string, data interface{}) bool
	GetClientCount() int
}

// Actuator sends engine commands to the connected page.
type Actuator struct {
	hub Broadcaster
}

// NewActuator creates an actuator writing to hub.
func NewActuator(hub Broadcaster) *Actuator {
	return &Actuator{hub: hub}
}

// Perform implements engagement.Actuator.
func (a *Actuator) Perform(_ context.Context, cmd engagement.Command) error {
	if a.hub.GetClientCount() == 0 {
		return fmt.Errorf("%s %s: %w", cmd.Action, cmd.VideoID, ErrNoHost)
	}
	data := CommandData{
		Action:  cmd.Action.String(),
		VideoID: cmd.VideoID,
		Trigger: string(cmd.Trigger),
	}
	if !a.hub.BroadcastJSON(websocket.MessageTypeCommand, data) {
		return fmt.Errorf("%s %s: %w", cmd.Action, cmd.VideoID, ErrQueueFull)
	}
	return nil
}

// Overlay publishes engine snapshots to the page overlay.
type Overlay struct {
	hub Broadcaster
}

// NewOverlay creates an overlay sink writing to hub.
func NewOverlay(hub Broadcaster) *Overlay {
	return &Overlay{hub: hub}
}

// PublishSnapshot implements engagement.OverlaySink. The snapshot is sticky
// so a page that reconnects redraws immediately.
func (o *Overlay) PublishSnapshot(s engagement.Snapshot) {
	o.hub.BroadcastSticky(websocket.MessageTypeOverlay, s)
}

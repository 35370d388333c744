// Feedpilot - Short-form Feed Engagement Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedpilot

/*
Package websocket is the transport between the daemon and the host page
(the browser extension content script that drives the feed).

It uses gorilla/websocket with a hub-client architecture:

  - Hub: owns the client set, broadcasts outbound messages, routes inbound
    messages to a MessageHandler and replays sticky messages to new clients
  - Client: one connection with a read goroutine and a write goroutine

All messages are JSON {"type": ..., "data": ...}.

Outbound types:

  - command: an action the page must perform (advance, like, dislike)
  - overlay: the latest engine snapshot; sticky, so a reconnecting page
    immediately redraws its overlay
  - pong: reply to an application-level ping
  - error: an inbound message was rejected (sent to that client only)

Inbound messages other than ping are handed to the MessageHandler on the
client's read goroutine, so messages from one page are handled in arrival
order.

Usage:

	hub := websocket.NewHub()
	hub.SetHandler(bridge)
	go hub.RunWithContext(ctx)

	hub.BroadcastJSON(websocket.MessageTypeCommand, cmd)
	hub.BroadcastSticky(websocket.MessageTypeOverlay, snapshot)

Timeouts:
  - writeWait: 10 seconds per write
  - pongWait: 60 seconds without a pong closes the connection
  - pingPeriod: 54 seconds
  - maxMessageSize: 256 KB
*/
package websocket

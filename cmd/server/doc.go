// Feedpilot - Short-form Feed Engagement Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedpilot

/*
Package main is the entry point for the feedpilot daemon.

Feedpilot watches a short-form video feed through a companion browser page,
scores each item with an external scoring service and automates advance,
like and dislike while reporting engagement telemetry back to that service.

# Application Architecture

	RootSupervisor ("feedpilot")
	├── EngineSupervisor ("engine-layer")
	│   ├── engagement engine
	│   └── buffer-size fetch (one shot)
	├── MessagingSupervisor ("messaging-layer")
	│   ├── websocket hub (host page connection)
	│   └── telemetry forwarder (Watermill router)
	└── APISupervisor ("api-layer")
	    └── HTTP server (/ws, /api/v1, /healthz, /metrics)

Data flow:

	page --ws--> hostbridge.Bridge --Submit--> engagement.Engine
	engine --Perform--> hostbridge.Actuator --ws--> page
	engine --Emit--> telemetry.Publisher --gochannel--> telemetry.Forwarder --HTTP--> scoring service
	engine --Score/ChannelStatus--> scoring.Client --HTTP--> scoring service

# Configuration

Defaults, then an optional YAML file (CONFIG_PATH or ./config.yaml), then
environment variables. Common settings:

	SCORING_URL          scoring service base URL (default http://127.0.0.1:5000)
	HTTP_HOST, HTTP_PORT listen address (default 127.0.0.1:8765)
	CORS_ORIGINS         comma-separated origins allowed on /api/v1 and /ws
	LIKE_THRESHOLD       auto-like score cut-off
	DISLIKE_THRESHOLD    auto-dislike score cut-off
	AUTO_ADVANCE         advance automatically on completion and low score
	LOG_LEVEL            trace, debug, info, warn or error

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains for
HTTP_SHUTDOWN_TIMEOUT, the websocket hub closes its pages and the telemetry
router finishes in-flight deliveries before the process exits.
*/
package main

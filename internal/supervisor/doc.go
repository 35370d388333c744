// Feedpilot - Short-form Feed Engagement Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedpilot

/*
Package supervisor runs the daemon's long-lived services under a suture v4
tree.

	RootSupervisor ("feedpilot")
	├── EngineSupervisor ("engine-layer")
	│   ├── engagement engine (RunnerService)
	│   └── buffer-size fetch (BufferSizeService, one shot)
	├── MessagingSupervisor ("messaging-layer")
	│   ├── websocket hub (RunnerService)
	│   └── telemetry forwarder
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Crashed services restart with suture's backoff. Supervisor events are logged
through sutureslog into the zerolog logger:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddEngineService(services.NewEngineService(engine))
	tree.AddMessagingService(services.NewRunnerService("websocket-hub", hub))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	return tree.Serve(ctx)

The engine's run loop may only be started once, so its wrapper asks suture
not to restart it.
*/
package supervisor

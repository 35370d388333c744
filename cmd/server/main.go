// Feedpilot - Short-form Feed Engagement Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedpilot

package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/tomtom215/feedpilot/internal/api"
	"github.com/tomtom215/feedpilot/internal/config"
	"github.com/tomtom215/feedpilot/internal/engagement"
	"github.com/tomtom215/feedpilot/internal/hostbridge"
	"github.com/tomtom215/feedpilot/internal/logging"
	"github.com/tomtom215/feedpilot/internal/scoring"
	"github.com/tomtom215/feedpilot/internal/supervisor"
	"github.com/tomtom215/feedpilot/internal/supervisor/services"
	"github.com/tomtom215/feedpilot/internal/telemetry"
	ws "github.com/tomtom215/feedpilot/internal/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("scoring_url", cfg.Scoring.URL).
		Str("http_host", cfg.Server.Host).
		Int("http_port", cfg.Server.Port).
		Bool("auto_advance", cfg.Engine.AutoAdvance).
		Bool("auto_feedback", cfg.Engine.AutoFeedback).
		Msg("Configuration loaded")

	scorer := scoring.NewClient(&cfg.Scoring)

	// Telemetry: engine -> in-process topic -> forwarder -> scoring service
	pubSub := telemetry.NewPubSub(&cfg.Telemetry)
	defer func() {
		if err := pubSub.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing telemetry pubsub")
		}
	}()
	forwarder, err := telemetry.NewForwarder(pubSub, scorer, &cfg.Telemetry)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create telemetry forwarder")
	}

	hub := ws.NewHub()
	metadata := hostbridge.NewMetadataStore()

	engine := engagement.New(cfg.Engine.Engagement(), engagement.Deps{
		Actuator:  hostbridge.NewActuator(hub),
		Telemetry: telemetry.NewPublisher(pubSub, cfg.Telemetry.Topic),
		Scorer:    scorer,
		Metadata:  metadata,
		Overlay:   hostbridge.NewOverlay(hub),
	})
	hub.SetHandler(hostbridge.NewBridge(engine, metadata))

	mw := api.NewChiMiddleware(api.ChiMiddlewareConfigFromServer(&cfg.Server))
	router := api.NewRouter(api.NewHandler(engine, hub, mw), mw)

	server := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       2 * cfg.Server.Timeout,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddEngineService(services.NewEngineService(engine))
	tree.AddEngineService(services.NewBufferSizeService(scorer, engine))
	tree.AddMessagingService(services.NewRunnerService("websocket-hub", hub))
	tree.AddMessagingService(forwarder)
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
		err = <-errCh
	case err = <-errCh:
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Feedpilot stopped")
}

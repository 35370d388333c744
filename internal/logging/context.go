// Feedpilot - Short-form Feed Engagement Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedpilot

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type contextKey string

const (
	correlationIDKey contextKey = "correlation_id"
	videoIDKey       contextKey = "video_id"
)

// GenerateCorrelationID returns the first 8 characters of a fresh UUID.
// Each video session gets one so its log lines can be grouped.
func GenerateCorrelationID() string {
	return uuid.New().String()[:8]
}

// ContextWithCorrelationID returns a new context carrying id.
func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

// CorrelationIDFromContext returns the correlation ID, or "" if absent.
func CorrelationIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(correlationIDKey).(string); ok {
		return id
	}
	return ""
}

// ContextWithVideoID returns a new context carrying the current video ID.
func ContextWithVideoID(ctx context.Context, videoID string) context.Context {
	return context.WithValue(ctx, videoIDKey, videoID)
}

// VideoIDFromContext returns the video ID, or "" if absent.
func VideoIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(videoIDKey).(string); ok {
		return id
	}
	return ""
}

// ContextWithSession is shorthand for attaching both the session correlation
// ID and the video ID.
func ContextWithSession(ctx context.Context, correlationID, videoID string) context.Context {
	return ContextWithVideoID(ContextWithCorrelationID(ctx, correlationID), videoID)
}

// Ctx returns a logger with the context's correlation_id and video_id fields.
//
//	logging.Ctx(ctx).Info().Msg("Auto-like issued")
func Ctx(ctx context.Context) *zerolog.Logger {
	logger := CtxWith(ctx).Logger()
	return &logger
}

// CtxWith returns a logger context builder pre-populated from ctx.
func CtxWith(ctx context.Context) zerolog.Context {
	logCtx := Logger().With()
	if id := CorrelationIDFromContext(ctx); id != "" {
		logCtx = logCtx.Str("correlation_id", id)
	}
	if id := VideoIDFromContext(ctx); id != "" {
		logCtx = logCtx.Str("video_id", id)
	}
	return logCtx
}

// Feedpilot - Short-form Feed Engagement Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedpilot

package engagement

import "errors"

// probeMetadata asks the MetadataSource for the live item. Missing page
// elements are retried on MetadataInterval; once attempts run out the
// session continues with an unknown channel.
func (e *Engine) probeMetadata() {
	s := e.session
	if s.MetadataResolved {
		return
	}
	if e.metadata == nil {
		e.resolveMetadata(Metadata{VideoID: s.ID})
		return
	}

	s.MetadataAttempts++
	md, err := e.metadata.Lookup(e.ctx, s.ID)
	if err == nil {
		md.VideoID = s.ID
		e.resolveMetadata(md)
		return
	}

	if s.MetadataAttempts < e.cfg.MetadataAttempts {
		ev := e.logger().Debug().Err(err).Int("attempt", s.MetadataAttempts)
		if !errors.Is(err, ErrMissingElement) {
			ev = e.logger().Warn().Err(err).Int("attempt", s.MetadataAttempts)
		}
		ev.Msg("Metadata not available yet")
		e.timers.arm(s.seq, timerMetadata, e.cfg.MetadataInterval)
		return
	}

	e.logger().Warn().Err(err).
		Int("attempts", s.MetadataAttempts).
		Msg("Metadata probe exhausted, continuing with unknown channel")
	e.resolveMetadata(Metadata{VideoID: s.ID})
}

func (e *Engine) resolveMetadata(md Metadata) {
	s := e.session
	s.Metadata = md
	s.MetadataResolved = true
	e.logger().Info().
		Str("channel_id", s.ChannelID()).
		Str("title", md.Title).
		Int("attempts", s.MetadataAttempts).
		Msg("Metadata resolved")

	e.requestScore()
	e.requestChannelStatus()
}

// requestScore starts an off-loop scoring call unless one is pending or a
// score is already known. Failed calls are retried from the poll tick.
func (e *Engine) requestScore() {
	s := e.session
	if e.scorer == nil || !s.MetadataResolved || s.HasScore || s.scoreInFlight {
		return
	}
	s.scoreInFlight = true

	ctx, seq, md := e.ctx, s.seq, s.Metadata
	e.spawn(func() {
		res, err := e.scorer.Score(ctx, md)
		e.post(scoreResult{seq: seq, result: res, err: err})
	})
}

func (e *Engine) requestChannelStatus() {
	s := e.session
	channelID := s.ChannelID()
	if e.scorer == nil || channelID == UnknownChannel || s.statusPending {
		return
	}
	s.statusPending = true

	ctx, seq := e.ctx, s.seq
	e.spawn(func() {
		status, err := e.scorer.ChannelStatus(ctx, channelID)
		e.post(channelStatusResult{seq: seq, channelID: channelID, status: status, err: err})
	})
}

func (e *Engine) onChannelStatusResult(ev channelStatusResult) {
	s := e.session
	if s == nil || ev.seq != s.seq {
		return
	}
	s.statusPending = false
	if ev.err != nil {
		e.logger().Warn().Err(ev.err).Str("channel_id", ev.channelID).Msg("Channel status request failed")
		return
	}
	if ev.channelID != s.ChannelID() {
		return
	}

	s.ChannelStatus = ev.status
	s.HasChannelStatus = true
	e.logger().Debug().
		Bool("trusted", ev.status.Trusted).
		Bool("blocked", ev.status.Blocked).
		Msg("Channel status received")
}

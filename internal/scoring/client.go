// Feedpilot - Short-form Feed Engagement Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedpilot

/*
Package scoring is the HTTP client for the remote scoring service.

Endpoints:
  - POST /next: score an item from its metadata
  - POST /event: record a telemetry event
  - GET /channel_status: trusted/blocked flags for a channel
  - GET /buffer_size: size of the service's pending queue

Resilience:
  - Circuit breaker (sony/gobreaker) trips after consecutive failures
  - HTTP 429 retried with exponential backoff, honoring Retry-After
  - Channel status cached in a TTL LRU; trust/block events invalidate it

Every transport failure is wrapped with engagement.ErrNetwork so the engine
can treat it uniformly.
*/
package scoring

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/feedpilot/internal/cache"
	"github.com/tomtom215/feedpilot/internal/config"
	"github.com/tomtom215/feedpilot/internal/engagement"
	"github.com/tomtom215/feedpilot/internal/logging"
	"github.com/tomtom215/feedpilot/internal/metrics"
)

const (
	breakerName      = "scoring"
	maxErrorBodySize = 4 * 1024
	channelCacheType = "channel_status"
)

// Client talks to the scoring service. Safe for concurrent use.
type Client struct {
	baseURL        string
	client         *http.Client
	maxRetries     int
	retryBaseDelay time.Duration
	breaker        *gobreaker.CircuitBreaker[[]byte]
	statuses       *cache.LRU[engagement.ChannelStatus]
}

// NewClient creates a client from cfg.
func NewClient(cfg *config.ScoringConfig) *Client {
	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	failures := cfg.BreakerFailures
	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("[CIRCUIT BREAKER] State transition")
			metrics.RecordCircuitBreakerTransition(name, from.String(), to.String(), int(to))
		},
	})

	return &Client{
		baseURL:        strings.TrimRight(cfg.URL, "/"),
		client:         &http.Client{Timeout: cfg.Timeout},
		maxRetries:     cfg.MaxRetries,
		retryBaseDelay: 250 * time.Millisecond,
		breaker:        breaker,
		statuses:       cache.NewLRU[engagement.ChannelStatus](cfg.ChannelCacheSize, cfg.ChannelStatusTTL),
	}
}

// Score requests a score for md.
func (c *Client) Score(ctx context.Context, md engagement.Metadata) (engagement.ScoreResult, error) {
	body := NextRequest{
		VideoID:     md.VideoID,
		ChannelID:   channelOrUnknown(md.ChannelID),
		Title:       md.Title,
		Description: md.Description,
		Captions:    md.Captions,
	}

	var resp NextResponse
	if err := c.call(ctx, http.MethodPost, "/next", nil, body, &resp); err != nil {
		return engagement.ScoreResult{}, err
	}
	if resp.Score == nil {
		metrics.RecordScoringRequest("/next", 0, "decode")
		return engagement.ScoreResult{}, fmt.Errorf("POST /next: response missing score: %w", engagement.ErrNetwork)
	}
	return engagement.ScoreResult{Score: *resp.Score, MoodSuggestion: resp.MoodSuggestion}, nil
}

// ChannelStatus returns the trusted/blocked flags, served from cache when fresh.
func (c *Client) ChannelStatus(ctx context.Context, channelID string) (engagement.ChannelStatus, error) {
	if st, ok := c.statuses.Get(channelID); ok {
		metrics.RecordCacheLookup(channelCacheType, true)
		return st, nil
	}
	metrics.RecordCacheLookup(channelCacheType, false)

	var resp ChannelStatusResponse
	query := url.Values{"channel_id": {channelID}}
	if err := c.call(ctx, http.MethodGet, "/channel_status", query, nil, &resp); err != nil {
		return engagement.ChannelStatus{}, err
	}

	st := engagement.ChannelStatus{Trusted: resp.Trusted, Blocked: resp.Blocked}
	c.statuses.Add(channelID, st)
	return st, nil
}

// SendEvent records one telemetry event. Channel control events drop the
// cached status for that channel.
func (c *Client) SendEvent(ctx context.Context, ev engagement.TelemetryEvent) (EventResponse, error) {
	if isChannelControl(ev.EventType) {
		c.statuses.Remove(ev.ChannelID)
	}

	body := EventRequest{
		VideoID:        ev.VideoID,
		ChannelID:      channelOrUnknown(ev.ChannelID),
		Title:          ev.Title,
		Description:    ev.Description,
		Captions:       ev.Captions,
		EventType:      string(ev.EventType),
		WatchedPercent: ev.WatchedPercent,
		Mood:           string(ev.Mood),
	}

	var resp EventResponse
	if err := c.call(ctx, http.MethodPost, "/event", nil, body, &resp); err != nil {
		return EventResponse{}, err
	}
	return resp, nil
}

// BufferSize returns the scoring service's queue size.
func (c *Client) BufferSize(ctx context.Context) (int, error) {
	var resp BufferSizeResponse
	if err := c.call(ctx, http.MethodGet, "/buffer_size", nil, nil, &resp); err != nil {
		return 0, err
	}
	return resp.BufferSize, nil
}

// call runs one request through the breaker and decodes the JSON response into out.
func (c *Client) call(ctx context.Context, method, path string, query url.Values, in, out interface{}) error {
	var payload []byte
	if in != nil {
		var err error
		if payload, err = json.Marshal(in); err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
	}

	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	start := time.Now()
	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.doRequestWithRateLimit(ctx, method, reqURL, payload)
	})
	if err != nil {
		errType := "network"
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			errType = "circuit_open"
		} else if errors.Is(err, errStatus) {
			errType = "status"
		}
		metrics.RecordScoringRequest(path, time.Since(start), errType)
		return fmt.Errorf("%s %s: %w: %w", method, path, engagement.ErrNetwork, err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		metrics.RecordScoringRequest(path, time.Since(start), "decode")
		return fmt.Errorf("decode %s %s: %w: %w", method, path, engagement.ErrNetwork, err)
	}
	metrics.RecordScoringRequest(path, time.Since(start), "")
	return nil
}

var errStatus = errors.New("unexpected status")

// doRequestWithRateLimit performs the request, retrying HTTP 429 with
// exponential backoff. Retry-After (seconds) overrides the computed delay.
func (c *Client) doRequestWithRateLimit(ctx context.Context, method, reqURL string, payload []byte) ([]byte, error) {
	for attempt := 0; ; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		var reqBody io.Reader = http.NoBody
		if payload != nil {
			reqBody = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("HTTP request failed: %w", err)
		}

		if resp.StatusCode != http.StatusTooManyRequests {
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return nil, fmt.Errorf("%w %d: %s", errStatus, resp.StatusCode, readBodyForError(resp.Body))
			}
			return io.ReadAll(resp.Body)
		}

		_ = resp.Body.Close()
		metrics.RecordScoringRateLimited()
		if attempt >= c.maxRetries {
			return nil, fmt.Errorf("rate limit exceeded after %d retries (HTTP 429)", c.maxRetries)
		}

		delay := c.retryBaseDelay * time.Duration(1<<uint(attempt))
		if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
			if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds >= 0 {
				delay = time.Duration(seconds) * time.Second
			}
		}
		logging.Debug().Dur("delay", delay).Int("attempt", attempt+1).Str("url", reqURL).Msg("Scoring service rate limited, backing off")

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func readBodyForError(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return "(failed to read response body)"
	}
	return strings.TrimSpace(string(body))
}

func channelOrUnknown(id string) string {
	if id == "" {
		return engagement.UnknownChannel
	}
	return id
}

func isChannelControl(t engagement.EventType) bool {
	switch t {
	case engagement.EventTrustChannel, engagement.EventUntrustChannel,
		engagement.EventBlockChannel, engagement.EventUnblockChannel:
		return true
	}
	return false
}

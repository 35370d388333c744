// Feedpilot - Short-form Feed Engagement Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedpilot

package hostbridge

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/feedpilot/internal/cache"
	"github.com/tomtom215/feedpilot/internal/engagement"
	"github.com/tomtom215/feedpilot/internal/metrics"
)

const (
	metadataCacheSize = 32
	metadataTTL       = 10 * time.Minute
	metadataCacheType = "metadata"
)

// MetadataStore holds the most recent page scrape per item and serves it
// to the engine's metadata probe.
type MetadataStore struct {
	items *cache.LRU[engagement.Metadata]
}

// NewMetadataStore creates an empty store.
func NewMetadataStore() *MetadataStore {
	return &MetadataStore{items: cache.NewLRU[engagement.Metadata](metadataCacheSize, metadataTTL)}
}

// Put records a scrape, resolving the channel from whatever the page found.
func (s *MetadataStore) Put(d *MetadataData) engagement.Metadata {
	md := engagement.Metadata{
		VideoID:     d.VideoID,
		ChannelID:   ResolveChannel(d.ChannelHref, d.ChannelName, d.AuthorLinks),
		ChannelName: strings.TrimSpace(d.ChannelName),
		Title:       strings.TrimSpace(d.Title),
		Description: strings.TrimSpace(d.Description),
		Captions:    strings.TrimSpace(d.Captions),
	}
	s.items.Add(d.VideoID, md)
	return md
}

// Lookup implements engagement.MetadataSource. A scrape that found neither
// channel, title nor description counts as missing.
func (s *MetadataStore) Lookup(_ context.Context, videoID string) (engagement.Metadata, error) {
	md, ok := s.items.Get(videoID)
	metrics.RecordCacheLookup(metadataCacheType, ok)
	if !ok {
		return engagement.Metadata{}, fmt.Errorf("no metadata for %s: %w", videoID, engagement.ErrMissingElement)
	}
	if md.ChannelID == "" && md.Title == "" && md.Description == "" {
		return engagement.Metadata{}, fmt.Errorf("metadata for %s is empty: %w", videoID, engagement.ErrMissingElement)
	}
	return md, nil
}

// ResolveChannel picks a channel identifier, first match wins:
//  1. a /channel/<id> or /@<handle> href on the channel element
//  2. the channel name text
//  3. the first author link containing /channel/ or /@, query stripped
//
// It returns "" if nothing matched.
func ResolveChannel(href, name string, authorLinks []string) string {
	href = strings.TrimSpace(href)
	switch {
	case strings.HasPrefix(href, "/channel/"):
		if id := strings.TrimPrefix(href, "/channel/"); id != "" {
			return id
		}
	case strings.HasPrefix(href, "/@"):
		if handle := strings.TrimPrefix(href, "/@"); handle != "" {
			return handle
		}
	}

	if name = strings.TrimSpace(name); name != "" {
		return name
	}

	for _, link := range authorLinks {
		for _, marker := range []string{"/channel/", "/@"} {
			if _, rest, ok := strings.Cut(link, marker); ok {
				if id, _, _ := strings.Cut(rest, "?"); id != "" {
					return id
				}
			}
		}
	}
	return ""
}

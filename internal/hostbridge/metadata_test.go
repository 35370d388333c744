// Feedpilot - Short-form Feed Engagement Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedpilot

package hostbridge

import (
	"context"
	"errors"
	"testing"

	"github.com/tomtom215/feedpilot/internal/engagement"
)

func TestResolveChannel(t *testing.T) {
	tests := []struct {
		name  string
		href  string
		cname string
		links []string
		want  string
	}{
		{"channel href", "/channel/UC123", "Cat Videos", nil, "UC123"},
		{"handle href", "/@catvids", "Cat Videos", nil, "catvids"},
		{"unrelated href falls back to name", "/watch?v=1", " Cat Videos ", nil, "Cat Videos"},
		{"empty channel path falls back to name", "/channel/", "Cat Videos", nil, "Cat Videos"},
		{"author link channel", "", "", []string{"https://www.youtube.com/shorts/x", "https://www.youtube.com/channel/UC9?si=abc"}, "UC9"},
		{"author link handle", "", "  ", []string{"https://www.youtube.com/@dogs?feature=shorts"}, "dogs"},
		{"nothing found", "", "", []string{"https://www.youtube.com/shorts/x"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveChannel(tt.href, tt.cname, tt.links); got != tt.want {
				t.Errorf("ResolveChannel() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMetadataStoreLookup(t *testing.T) {
	store := NewMetadataStore()
	ctx := context.Background()

	if _, err := store.Lookup(ctx, "abc"); !errors.Is(err, engagement.ErrMissingElement) {
		t.Errorf("Lookup() before Put error = %v, want ErrMissingElement", err)
	}

	store.Put(&MetadataData{VideoID: "abc", Captions: "only captions"})
	if _, err := store.Lookup(ctx, "abc"); !errors.Is(err, engagement.ErrMissingElement) {
		t.Errorf("Lookup() of empty scrape error = %v, want ErrMissingElement", err)
	}

	// a later, richer scrape replaces the earlier one
	store.Put(&MetadataData{VideoID: "abc", ChannelName: "Cat Videos", Captions: "only captions"})
	md, err := store.Lookup(ctx, "abc")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if md.ChannelID != "Cat Videos" || md.ChannelName != "Cat Videos" || md.Captions != "only captions" {
		t.Errorf("Lookup() = %+v", md)
	}

	if _, err := store.Lookup(ctx, "other"); !errors.Is(err, engagement.ErrMissingElement) {
		t.Errorf("Lookup() for other item error = %v, want ErrMissingElement", err)
	}
}

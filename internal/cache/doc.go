// Feedpilot - Short-form Feed Engagement Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedpilot

/*
Package cache provides a thread-safe generic LRU cache with TTL support.

The scoring client uses it to hold channel trusted/blocked status for a few
seconds, so the engine can ask on every video change without hammering the
scoring service:

	statuses := cache.NewLRU[engagement.ChannelStatus](256, 5*time.Second)
	statuses.Add("UC123", engagement.ChannelStatus{Trusted: true})
	if st, ok := statuses.Get("UC123"); ok {
	    // fresh for 5s
	}

Expiration is lazy: an expired entry is dropped when read, or in bulk by
CleanupExpired.
*/
package cache

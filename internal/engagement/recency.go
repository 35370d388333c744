// Feedpilot - Short-form Feed Engagement Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedpilot

package engagement

// RecencyBuffer is a bounded FIFO of recently left item IDs. The oldest
// entry is evicted when a push exceeds capacity.
type RecencyBuffer struct {
	ids      []string
	capacity int
}

// NewRecencyBuffer creates a buffer holding at most capacity IDs.
func NewRecencyBuffer(capacity int) *RecencyBuffer {
	if capacity < 1 {
		capacity = 1
	}
	return &RecencyBuffer{
		ids:      make([]string, 0, capacity),
		capacity: capacity,
	}
}

// Push appends id, evicting the oldest entry when full.
func (r *RecencyBuffer) Push(id string) {
	if id == "" {
		return
	}
	if len(r.ids) == r.capacity {
		copy(r.ids, r.ids[1:])
		r.ids = r.ids[:len(r.ids)-1]
	}
	r.ids = append(r.ids, id)
}

// Contains reports whether id is in the buffer.
func (r *RecencyBuffer) Contains(id string) bool {
	for _, v := range r.ids {
		if v == id {
			return true
		}
	}
	return false
}

// Len returns the number of buffered IDs.
func (r *RecencyBuffer) Len() int {
	return len(r.ids)
}

// IDs returns a copy of the buffer, oldest first.
func (r *RecencyBuffer) IDs() []string {
	out := make([]string, len(r.ids))
	copy(out, r.ids)
	return out
}

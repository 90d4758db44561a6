// Package filter decides which captured frames reach the decoder.
package filter

import "sync/atomic"

// Filter reports whether a raw frame should be kept.
type Filter interface {
	Match(data []byte) bool
}

// Chain keeps a frame only when every filter matches. An empty chain keeps everything.
type Chain []Filter

func (c Chain) Match(data []byte) bool {
	for _, f := range c {
		if !f.Match(data) {
			return false
		}
	}
	return true
}

// CounterFilter wraps a Filter and counts its verdicts. Safe for concurrent use.
type CounterFilter struct {
	next    Filter
	matched atomic.Uint64
	dropped atomic.Uint64
}

func NewCounterFilter(next Filter) *CounterFilter {
	return &CounterFilter{next: next}
}

func (f *CounterFilter) Match(data []byte) bool {
	if f.next.Match(data) {
		f.matched.Add(1)
		return true
	}
	f.dropped.Add(1)
	return false
}

// Counts returns the number of matched and dropped frames so far.
func (f *CounterFilter) Counts() (matched, dropped uint64) {
	return f.matched.Load(), f.dropped.Load()
}

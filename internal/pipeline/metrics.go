package pipeline

import (
	"sync/atomic"
)

// Metrics contains per-pipeline metrics counters.
type Metrics struct {
	Source string

	// Packet counters (using atomic for thread-safety)
	Received     atomic.Uint64
	Decoded      atomic.Uint64
	Skipped      atomic.Uint64 // decoded fine but not PTP
	DecodeErrors atomic.Uint64
	Parsed       atomic.Uint64
	ParseErrors  atomic.Uint64
	Processed    atomic.Uint64
	Dropped      atomic.Uint64
	Reported     atomic.Uint64
	ReportErrors atomic.Uint64
}

// NewMetrics creates a new metrics instance.
func NewMetrics(source string) *Metrics {
	return &Metrics{Source: source}
}

// Snapshot reads every counter.
func (m *Metrics) Snapshot() Stats {
	return Stats{
		Received:     m.Received.Load(),
		Decoded:      m.Decoded.Load(),
		Skipped:      m.Skipped.Load(),
		DecodeErrors: m.DecodeErrors.Load(),
		Parsed:       m.Parsed.Load(),
		ParseErrors:  m.ParseErrors.Load(),
		Processed:    m.Processed.Load(),
		Dropped:      m.Dropped.Load(),
		Reported:     m.Reported.Load(),
		ReportErrors: m.ReportErrors.Load(),
	}
}

// Reset resets all counters to zero.
func (m *Metrics) Reset() {
	m.Received.Store(0)
	m.Decoded.Store(0)
	m.Skipped.Store(0)
	m.DecodeErrors.Store(0)
	m.Parsed.Store(0)
	m.ParseErrors.Store(0)
	m.Processed.Store(0)
	m.Dropped.Store(0)
	m.Reported.Store(0)
	m.ReportErrors.Store(0)
}

// Stats represents pipeline statistics.
type Stats struct {
	Received     uint64 `json:"received" yaml:"received"`
	Decoded      uint64 `json:"decoded" yaml:"decoded"`
	Skipped      uint64 `json:"skipped" yaml:"skipped"`
	DecodeErrors uint64 `json:"decode_errors" yaml:"decode_errors"`
	Parsed       uint64 `json:"parsed" yaml:"parsed"`
	ParseErrors  uint64 `json:"parse_errors" yaml:"parse_errors"`
	Processed    uint64 `json:"processed" yaml:"processed"`
	Dropped      uint64 `json:"dropped" yaml:"dropped"`
	Reported     uint64 `json:"reported" yaml:"reported"`
	ReportErrors uint64 `json:"report_errors" yaml:"report_errors"`
}

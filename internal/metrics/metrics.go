// Package metrics implements Prometheus metrics.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"firestige.xyz/ptpwire/internal/pipeline"
)

const namespace = "ptpwire"

// Metrics holds the collectors of one registry.
type Metrics struct {
	registry *prometheus.Registry

	// MessagesTotal counts decoded PTP messages
	MessagesTotal *prometheus.CounterVec

	// MessageBytes measures messageLength per message type
	MessageBytes *prometheus.HistogramVec

	// TwoStepMatchedTotal counts follow-ups matched to their event message
	TwoStepMatchedTotal *prometheus.CounterVec
}

// Default is the registry served by the metrics reporter plugin.
var Default = New()

// New creates a Metrics with its own registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		MessagesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "messages_total",
				Help:      "Total number of decoded PTP messages",
			},
			[]string{"source", "message_type", "domain"},
		),
		MessageBytes: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "message_bytes",
				Help:      "Size of decoded PTP messages in bytes",
				Buckets:   []float64{34, 44, 54, 64, 128, 256, 512, 1500},
			},
			[]string{"source", "message_type"},
		),
		TwoStepMatchedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "two_step_matched_total",
				Help:      "Total number of follow-up messages matched to a two-step event message",
			},
			[]string{"source", "message_type"},
		),
	}
}

// Registry returns the registry holding every collector of m.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RegisterPipeline exports the stage counters of a pipeline. stats is read
// on every scrape.
func (m *Metrics) RegisterPipeline(source string, stats func() pipeline.Stats) error {
	stages := []struct {
		stage string
		value func(pipeline.Stats) uint64
	}{
		{"received", func(s pipeline.Stats) uint64 { return s.Received }},
		{"decoded", func(s pipeline.Stats) uint64 { return s.Decoded }},
		{"skipped", func(s pipeline.Stats) uint64 { return s.Skipped }},
		{"decode_error", func(s pipeline.Stats) uint64 { return s.DecodeErrors }},
		{"parsed", func(s pipeline.Stats) uint64 { return s.Parsed }},
		{"parse_error", func(s pipeline.Stats) uint64 { return s.ParseErrors }},
		{"dropped", func(s pipeline.Stats) uint64 { return s.Dropped }},
		{"reported", func(s pipeline.Stats) uint64 { return s.Reported }},
		{"report_error", func(s pipeline.Stats) uint64 { return s.ReportErrors }},
	}
	for _, st := range stages {
		value := st.value
		c := prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "pipeline_packets_total",
			Help:        "Total number of packets per pipeline stage",
			ConstLabels: prometheus.Labels{"source": source, "stage": st.stage},
		}, func() float64 { return float64(value(stats())) })
		if err := m.registry.Register(c); err != nil {
			return fmt.Errorf("register pipeline %q: %w", source, err)
		}
	}
	return nil
}

// WriteTextfile writes every metric to path in the text exposition format,
// as read by the node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

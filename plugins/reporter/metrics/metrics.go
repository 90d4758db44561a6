// Package metrics implements a reporter that counts PTP messages into
// Prometheus collectors instead of printing them.
package metrics

import (
	"context"
	"fmt"

	"firestige.xyz/ptpwire/internal/core"
	"firestige.xyz/ptpwire/internal/metrics"
	"firestige.xyz/ptpwire/pkg/plugin"
)

const pluginName = "metrics"

// Reporter counts every reported packet by message type and domain.
type Reporter struct {
	name string
	m    *metrics.Metrics
}

// NewReporter creates a reporter feeding metrics.Default.
func NewReporter() plugin.Reporter {
	return New(metrics.Default)
}

// New creates a reporter feeding m.
func New(m *metrics.Metrics) *Reporter {
	return &Reporter{name: pluginName, m: m}
}

func (r *Reporter) Name() string                     { return r.name }
func (r *Reporter) Init(config map[string]any) error { return nil }
func (r *Reporter) Start(ctx context.Context) error  { return nil }
func (r *Reporter) Stop(ctx context.Context) error   { return nil }
func (r *Reporter) Flush(ctx context.Context) error  { return nil }

// Report updates the counters for pkt. Packets no parser handled count
// under message type "raw".
func (r *Reporter) Report(ctx context.Context, pkt *core.OutputPacket) error {
	if pkt == nil {
		return fmt.Errorf("nil packet")
	}
	msgType := pkt.Labels[core.LabelPTPMessageType]
	if msgType == "" {
		msgType = pkt.PayloadType
	}

	r.m.MessagesTotal.WithLabelValues(pkt.Source, msgType, pkt.Labels[core.LabelPTPDomain]).Inc()
	r.m.MessageBytes.WithLabelValues(pkt.Source, msgType).Observe(float64(len(pkt.RawPayload)))
	if _, ok := pkt.Labels[core.LabelPTPMatchedIndex]; ok {
		r.m.TwoStepMatchedTotal.WithLabelValues(pkt.Source, msgType).Inc()
	}
	return nil
}

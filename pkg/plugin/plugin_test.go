package plugin

import (
	"context"

	"firestige.xyz/ptpwire/internal/core"
)

// Minimal plugins of every kind, used by the registry tests.

type mockPlugin struct {
	name string
}

func (m *mockPlugin) Name() string                    { return m.name }
func (m *mockPlugin) Init(cfg map[string]any) error   { return nil }
func (m *mockPlugin) Start(ctx context.Context) error { return nil }
func (m *mockPlugin) Stop(ctx context.Context) error  { return nil }

type mockCapturer struct{ mockPlugin }

func (m *mockCapturer) Capture(ctx context.Context, output chan<- core.RawPacket) error { return nil }
func (m *mockCapturer) Stats() CaptureStats                                             { return CaptureStats{} }

type mockParser struct{ mockPlugin }

func (m *mockParser) CanHandle(pkt *core.DecodedPacket) bool { return true }
func (m *mockParser) Handle(pkt *core.DecodedPacket) (any, core.Labels, error) {
	return nil, core.Labels{core.LabelPTPMessageType: "SYNC"}, nil
}

type mockProcessor struct{ mockPlugin }

func (m *mockProcessor) Process(pkt *core.OutputPacket) bool { return true }

type mockReporter struct{ mockPlugin }

func (m *mockReporter) Report(ctx context.Context, pkt *core.OutputPacket) error { return nil }
func (m *mockReporter) Flush(ctx context.Context) error                          { return nil }

var (
	_ Capturer  = (*mockCapturer)(nil)
	_ Parser    = (*mockParser)(nil)
	_ Processor = (*mockProcessor)(nil)
	_ Reporter  = (*mockReporter)(nil)
)

func resetAll() {
	capturerReg.Reset()
	parserReg.Reset()
	processorReg.Reset()
	reporterReg.Reset()
}

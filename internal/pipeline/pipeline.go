// Package pipeline implements the packet processing pipeline engine.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"firestige.xyz/ptpwire/internal/core"
	"firestige.xyz/ptpwire/internal/core/decoder"
	"firestige.xyz/ptpwire/internal/log"
	"firestige.xyz/ptpwire/pkg/plugin"
)

// DecoderFactory builds one decoder per worker, since decoders may keep
// per-call state.
type DecoderFactory func() decoder.Decoder

// Pipeline moves packets from one capturer through decoding, parsing and
// processing to every reporter.
//
// With more than one worker, reporters are called concurrently and packets
// may be reported out of capture order.
type Pipeline struct {
	source     string
	capturer   plugin.Capturer
	newDecoder DecoderFactory
	parsers    []plugin.Parser
	processors []plugin.Processor
	reporters  []plugin.Reporter
	workers    int
	metrics    *Metrics
	logger     log.Logger

	// Runtime state
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	mu       sync.Mutex
	started  bool
	stopped  bool
	captured chan error

	// Channel for backpressure control
	rawPacketChan chan core.RawPacket
}

// Config contains pipeline configuration.
type Config struct {
	Source     string // reported in OutputPacket.Source
	Capturer   plugin.Capturer
	Decoder    DecoderFactory
	Parsers    []plugin.Parser
	Processors []plugin.Processor
	Reporters  []plugin.Reporter
	Workers    int // decode workers, default 1
	BufferSize int // raw packet channel buffer size
}

// New creates a new pipeline.
func New(cfg Config) *Pipeline {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1024
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Decoder == nil {
		cfg.Decoder = func() decoder.Decoder { return decoder.NewStandardDecoder(decoder.Config{}) }
	}

	return &Pipeline{
		source:        cfg.Source,
		capturer:      cfg.Capturer,
		newDecoder:    cfg.Decoder,
		parsers:       cfg.Parsers,
		processors:    cfg.Processors,
		reporters:     cfg.Reporters,
		workers:       cfg.Workers,
		metrics:       NewMetrics(cfg.Source),
		logger:        log.GetLogger().WithField("source", cfg.Source),
		captured:      make(chan error, 1),
		rawPacketChan: make(chan core.RawPacket, cfg.BufferSize),
	}
}

// Start starts every plugin, then the capture and worker goroutines.
func (p *Pipeline) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return fmt.Errorf("pipeline already started")
	}
	if p.capturer == nil {
		return fmt.Errorf("%w: pipeline has no capturer", core.ErrConfigInvalid)
	}
	p.ctx, p.cancel = context.WithCancel(ctx)

	if err := p.startPlugins(); err != nil {
		p.cancel()
		return err
	}
	p.started = true
	p.logger.WithField("workers", p.workers).Info("pipeline starting")

	go p.captureLoop()

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.processLoop(p.newDecoder())
	}
	return nil
}

func (p *Pipeline) startPlugins() error {
	for _, pl := range p.plugins() {
		if err := pl.Start(p.ctx); err != nil {
			return fmt.Errorf("start %s: %w", pl.Name(), err)
		}
	}
	return nil
}

// Wait blocks until the capturer is exhausted and every captured packet has
// been handled, then flushes reporters and stops plugins. It returns the
// capture error, if any.
func (p *Pipeline) Wait() error {
	p.mu.Lock()
	started := p.started
	p.mu.Unlock()
	if !started {
		return nil
	}
	p.wg.Wait()
	err := <-p.captured
	p.captured <- err
	p.shutdown()
	return err
}

// Stop stops the pipeline early and waits for the workers to exit.
func (p *Pipeline) Stop() error {
	p.mu.Lock()
	started := p.started
	p.mu.Unlock()
	if !started {
		return nil
	}
	p.logger.Info("pipeline stopping")
	p.cancel()
	return p.Wait()
}

// Run starts the pipeline and waits for it to finish.
func (p *Pipeline) Run(ctx context.Context) error {
	if err := p.Start(ctx); err != nil {
		return err
	}
	return p.Wait()
}

func (p *Pipeline) shutdown() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return
	}
	p.stopped = true

	// Flush reporters
	for _, reporter := range p.reporters {
		if err := reporter.Flush(context.Background()); err != nil {
			p.logger.WithError(err).WithField("reporter", reporter.Name()).Error("reporter flush failed")
		}
	}
	for _, pl := range p.plugins() {
		if err := pl.Stop(context.Background()); err != nil {
			p.logger.WithError(err).WithField("plugin", pl.Name()).Warn("plugin stop failed")
		}
	}
	p.cancel()

	s := p.Stats()
	p.logger.WithFields(map[string]interface{}{
		"received":      s.Received,
		"decoded":       s.Decoded,
		"skipped":       s.Skipped,
		"decode_errors": s.DecodeErrors,
		"parsed":        s.Parsed,
		"parse_errors":  s.ParseErrors,
		"dropped":       s.Dropped,
		"reported":      s.Reported,
	}).Info("pipeline stopped")
}

func (p *Pipeline) plugins() []plugin.Plugin {
	plugins := []plugin.Plugin{p.capturer}
	for _, pr := range p.parsers {
		plugins = append(plugins, pr)
	}
	for _, pr := range p.processors {
		plugins = append(plugins, pr)
	}
	for _, r := range p.reporters {
		plugins = append(plugins, r)
	}
	return plugins
}

// captureLoop reads packets from capturer and sends to processing channel.
func (p *Pipeline) captureLoop() {
	err := p.capturer.Capture(p.ctx, p.rawPacketChan)
	if err != nil && p.ctx.Err() == nil {
		p.logger.WithError(err).Error("capture failed")
	} else {
		err = nil
	}
	// Close channel when capture ends
	close(p.rawPacketChan)
	p.captured <- err
}

// processLoop drains the raw packet channel until it is closed or the
// pipeline is cancelled.
func (p *Pipeline) processLoop(dec decoder.Decoder) {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return

		case raw, ok := <-p.rawPacketChan:
			if !ok {
				return
			}
			p.metrics.Received.Add(1)
			if err := p.processPacket(dec, raw); err != nil && p.logger.IsDebugEnabled() {
				p.logger.WithError(err).WithField("index", raw.Index).Debug("packet processing failed")
			}
		}
	}
}

// processPacket processes a single packet through the entire pipeline.
func (p *Pipeline) processPacket(dec decoder.Decoder, raw core.RawPacket) error {
	// Step 1: Decode L2-L4
	decoded, err := dec.Decode(raw)
	if err != nil {
		if errors.Is(err, core.ErrNotPTP) {
			p.metrics.Skipped.Add(1)
			return nil
		}
		p.metrics.DecodeErrors.Add(1)
		return fmt.Errorf("decode failed: %w", err)
	}
	p.metrics.Decoded.Add(1)

	// Step 2: Parse application layer
	var parsedPayload any
	var parsedLabels core.Labels
	var payloadType string

	for _, parser := range p.parsers {
		if !parser.CanHandle(&decoded) {
			continue
		}
		payload, labels, err := parser.Handle(&decoded)
		if err != nil {
			p.metrics.ParseErrors.Add(1)
			p.logger.WithError(err).WithFields(map[string]interface{}{
				"parser": parser.Name(),
				"index":  raw.Index,
			}).Warn("parser failed")
			continue
		}

		// Use first successful parser
		parsedPayload = payload
		parsedLabels = labels
		payloadType = parser.Name()
		p.metrics.Parsed.Add(1)
		break
	}

	// If no parser handled the packet, use raw payload
	if parsedPayload == nil {
		parsedPayload = decoded.Payload
		payloadType = "raw"
		parsedLabels = make(core.Labels)
	}

	// Step 3: Build OutputPacket
	output := core.OutputPacket{
		Source:      p.source,
		Index:       decoded.Index,
		Timestamp:   decoded.Timestamp,
		SrcIP:       decoded.IP.SrcIP,
		DstIP:       decoded.IP.DstIP,
		SrcPort:     decoded.Transport.SrcPort,
		DstPort:     decoded.Transport.DstPort,
		Protocol:    decoded.IP.Protocol,
		Labels:      parsedLabels,
		PayloadType: payloadType,
		Payload:     parsedPayload,
		RawPayload:  decoded.Payload,
	}

	// Step 4: Process through processors
	for _, processor := range p.processors {
		keep := processor.Process(&output)
		p.metrics.Processed.Add(1)
		if !keep {
			p.metrics.Dropped.Add(1)
			return nil
		}
	}

	// Step 5: Report to all reporters
	for _, reporter := range p.reporters {
		if err := reporter.Report(p.ctx, &output); err != nil {
			p.metrics.ReportErrors.Add(1)
			p.logger.WithError(err).WithField("reporter", reporter.Name()).Error("reporter failed")
			continue
		}
	}
	p.metrics.Reported.Add(1)

	return nil
}

// Stats returns pipeline statistics.
func (p *Pipeline) Stats() Stats {
	return p.metrics.Snapshot()
}

// CaptureStats returns the capturer's own statistics.
func (p *Pipeline) CaptureStats() plugin.CaptureStats {
	return p.capturer.Stats()
}

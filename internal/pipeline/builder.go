package pipeline

import (
	"firestige.xyz/ptpwire/pkg/plugin"
)

// Builder assembles a Config step by step. Stage setters append, so a
// chain may be built up across several calls; defaults are left to New.
type Builder struct {
	cfg Config
}

func NewBuilder() *Builder { return &Builder{} }

func (b *Builder) WithSource(name string) *Builder {
	b.cfg.Source = name
	return b
}

func (b *Builder) WithCapturer(c plugin.Capturer) *Builder {
	b.cfg.Capturer = c
	return b
}

// WithDecoder sets the factory called once per worker.
func (b *Builder) WithDecoder(f DecoderFactory) *Builder {
	b.cfg.Decoder = f
	return b
}

func (b *Builder) WithParsers(ps ...plugin.Parser) *Builder {
	b.cfg.Parsers = append(b.cfg.Parsers, ps...)
	return b
}

func (b *Builder) WithProcessors(ps ...plugin.Processor) *Builder {
	b.cfg.Processors = append(b.cfg.Processors, ps...)
	return b
}

func (b *Builder) WithReporters(rs ...plugin.Reporter) *Builder {
	b.cfg.Reporters = append(b.cfg.Reporters, rs...)
	return b
}

// WithWorkers sets the decode fan-out. Output order follows capture order
// only with a single worker.
func (b *Builder) WithWorkers(n int) *Builder {
	b.cfg.Workers = n
	return b
}

func (b *Builder) WithBufferSize(n int) *Builder {
	b.cfg.BufferSize = n
	return b
}

// Config returns a copy of what has been set so far.
func (b *Builder) Config() Config { return b.cfg }

func (b *Builder) Build() *Pipeline { return New(b.cfg) }

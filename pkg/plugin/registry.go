package plugin

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"firestige.xyz/ptpwire/internal/core"
)

type (
	CapturerFactory  func() Capturer
	ParserFactory    func() Parser
	ProcessorFactory func() Processor
	ReporterFactory  func() Reporter
)

// registry maps plugin names to factories of one plugin kind. Registration
// happens from init functions, so misuse panics.
type registry[T any] struct {
	kind      string
	mu        sync.RWMutex
	factories map[string]func() T
}

func newRegistry[T any](kind string) *registry[T] {
	return &registry[T]{kind: kind, factories: make(map[string]func() T)}
}

func (r *registry[T]) register(name string, f func() T) {
	if name == "" {
		panic(fmt.Sprintf("plugin: empty %s name", r.kind))
	}
	if f == nil {
		panic(fmt.Sprintf("plugin: nil factory for %s %q", r.kind, name))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.factories[name]; dup {
		panic(fmt.Sprintf("plugin: %s %q registered twice", r.kind, name))
	}
	r.factories[name] = f
}

func (r *registry[T]) get(name string) (func() T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("%s %q: %w", r.kind, name, core.ErrPluginNotFound)
	}
	return f, nil
}

func (r *registry[T]) list() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.factories))
}

// Reset removes every registration. Tests only.
func (r *registry[T]) Reset() {
	r.mu.Lock()
	r.factories = make(map[string]func() T)
	r.mu.Unlock()
}

var (
	capturerReg  = newRegistry[Capturer]("capturer")
	parserReg    = newRegistry[Parser]("parser")
	processorReg = newRegistry[Processor]("processor")
	reporterReg  = newRegistry[Reporter]("reporter")
)

func RegisterCapturer(name string, f CapturerFactory)   { capturerReg.register(name, f) }
func RegisterParser(name string, f ParserFactory)       { parserReg.register(name, f) }
func RegisterProcessor(name string, f ProcessorFactory) { processorReg.register(name, f) }
func RegisterReporter(name string, f ReporterFactory)   { reporterReg.register(name, f) }

func GetCapturerFactory(name string) (CapturerFactory, error) {
	f, err := capturerReg.get(name)
	return f, err
}

func GetParserFactory(name string) (ParserFactory, error) {
	f, err := parserReg.get(name)
	return f, err
}

func GetProcessorFactory(name string) (ProcessorFactory, error) {
	f, err := processorReg.get(name)
	return f, err
}

func GetReporterFactory(name string) (ReporterFactory, error) {
	f, err := reporterReg.get(name)
	return f, err
}

func ListCapturers() []string  { return capturerReg.list() }
func ListParsers() []string    { return parserReg.list() }
func ListProcessors() []string { return processorReg.list() }
func ListReporters() []string  { return reporterReg.list() }

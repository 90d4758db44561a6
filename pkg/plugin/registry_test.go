package plugin

import (
	"errors"
	"slices"
	"testing"

	"firestige.xyz/ptpwire/internal/core"
)

// kind wraps the exported functions of one registry so every kind runs
// through the same tests.
type kind struct {
	name     string
	register func(name string)
	get      func(name string) (Plugin, error)
	list     func() []string
}

func kinds() []kind {
	return []kind{
		{
			name: "capturer",
			register: func(n string) {
				RegisterCapturer(n, func() Capturer { return &mockCapturer{mockPlugin{name: n}} })
			},
			get: func(n string) (Plugin, error) {
				f, err := GetCapturerFactory(n)
				if err != nil {
					return nil, err
				}
				return f(), nil
			},
			list: ListCapturers,
		},
		{
			name: "parser",
			register: func(n string) {
				RegisterParser(n, func() Parser { return &mockParser{mockPlugin{name: n}} })
			},
			get: func(n string) (Plugin, error) {
				f, err := GetParserFactory(n)
				if err != nil {
					return nil, err
				}
				return f(), nil
			},
			list: ListParsers,
		},
		{
			name: "processor",
			register: func(n string) {
				RegisterProcessor(n, func() Processor { return &mockProcessor{mockPlugin{name: n}} })
			},
			get: func(n string) (Plugin, error) {
				f, err := GetProcessorFactory(n)
				if err != nil {
					return nil, err
				}
				return f(), nil
			},
			list: ListProcessors,
		},
		{
			name: "reporter",
			register: func(n string) {
				RegisterReporter(n, func() Reporter { return &mockReporter{mockPlugin{name: n}} })
			},
			get: func(n string) (Plugin, error) {
				f, err := GetReporterFactory(n)
				if err != nil {
					return nil, err
				}
				return f(), nil
			},
			list: ListReporters,
		},
	}
}

func TestRegisterAndGet(t *testing.T) {
	for _, k := range kinds() {
		t.Run(k.name, func(t *testing.T) {
			resetAll()
			k.register("pcapfile")

			p, err := k.get("pcapfile")
			if err != nil {
				t.Fatalf("get failed: %v", err)
			}
			if p.Name() != "pcapfile" {
				t.Errorf("Expected name 'pcapfile', got %s", p.Name())
			}

			_, err = k.get("afpacket")
			if !errors.Is(err, core.ErrPluginNotFound) {
				t.Errorf("Expected ErrPluginNotFound, got %v", err)
			}
		})
	}
}

func TestListSorted(t *testing.T) {
	for _, k := range kinds() {
		t.Run(k.name, func(t *testing.T) {
			resetAll()
			if got := k.list(); len(got) != 0 {
				t.Errorf("Expected empty list, got %v", got)
			}
			for _, n := range []string{"c", "a", "b"} {
				k.register(n)
			}
			if got := k.list(); !slices.Equal(got, []string{"a", "b", "c"}) {
				t.Errorf("Expected [a b c], got %v", got)
			}
		})
	}
}

func TestRegisterPanics(t *testing.T) {
	tests := []struct {
		name string
		fn   func()
	}{
		{"duplicate", func() {
			RegisterParser("ptp", func() Parser { return &mockParser{} })
			RegisterParser("ptp", func() Parser { return &mockParser{} })
		}},
		{"empty name", func() {
			RegisterReporter("", func() Reporter { return &mockReporter{} })
		}},
		{"nil factory", func() {
			RegisterCapturer("pcapfile", nil)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetAll()
			defer func() {
				if r := recover(); r == nil {
					t.Error("Expected panic")
				}
			}()
			tt.fn()
		})
	}
}

// The same name in different kinds does not conflict.
func TestKindsAreSeparate(t *testing.T) {
	resetAll()
	for _, k := range kinds() {
		k.register("ptp")
	}
	for _, k := range kinds() {
		if _, err := k.get("ptp"); err != nil {
			t.Errorf("%s: %v", k.name, err)
		}
	}

	p, _ := GetParserFactory("ptp")
	_, labels, _ := p().Handle(&core.DecodedPacket{})
	if labels[core.LabelPTPMessageType] != "SYNC" {
		t.Errorf("unexpected labels %v", labels)
	}
}

// Package console implements the console reporter.
// Outputs one record per packet to stdout as text, JSON lines or YAML documents.
package console

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/netip"
	"os"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/kr/pretty"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"firestige.xyz/ptpwire/internal/core"
	"firestige.xyz/ptpwire/internal/log"
	"firestige.xyz/ptpwire/pkg/plugin"
)

const pluginName = "console"

var formats = []string{"text", "json", "yaml"}

// Config represents console reporter configuration.
type Config struct {
	Format  string `mapstructure:"format"`  // text, json or yaml, default text
	Labels  bool   `mapstructure:"labels"`  // include labels, default true
	Payload bool   `mapstructure:"payload"` // text only: dump the decoded message
}

// ConsoleReporter writes packets to an io.Writer, os.Stdout by default.
// Report is safe for concurrent use; records never interleave.
type ConsoleReporter struct {
	name   string
	config Config

	mu   sync.Mutex
	out  io.Writer
	yaml *yaml.Encoder

	reportedCount atomic.Uint64
}

// NewConsoleReporter creates a new console reporter.
func NewConsoleReporter() plugin.Reporter {
	return New(os.Stdout)
}

// New creates a console reporter writing to w.
func New(w io.Writer) *ConsoleReporter {
	return &ConsoleReporter{
		name:   pluginName,
		config: Config{Format: "text", Labels: true},
		out:    w,
	}
}

// Name returns the plugin name.
func (r *ConsoleReporter) Name() string {
	return r.name
}

// Init initializes the reporter with configuration.
func (r *ConsoleReporter) Init(config map[string]any) error {
	cfg := Config{Format: "text", Labels: true}
	if err := mapstructure.WeakDecode(config, &cfg); err != nil {
		return fmt.Errorf("%w: console: %v", core.ErrPluginInitFailed, err)
	}
	cfg.Format = strings.ToLower(cfg.Format)
	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if !slices.Contains(formats, cfg.Format) {
		return fmt.Errorf("%w: console: invalid format %q, must be one of %v", core.ErrPluginInitFailed, cfg.Format, formats)
	}
	r.config = cfg
	return nil
}

// Start starts the reporter.
func (r *ConsoleReporter) Start(ctx context.Context) error {
	if r.config.Format == "yaml" {
		r.yaml = yaml.NewEncoder(r.out)
		r.yaml.SetIndent(2)
	}
	log.GetLogger().WithField("format", r.config.Format).Debug("console reporter started")
	return nil
}

// Stop stops the reporter.
func (r *ConsoleReporter) Stop(ctx context.Context) error {
	log.GetLogger().WithField("total_reported", r.reportedCount.Load()).Debug("console reporter stopped")
	return nil
}

// Report writes one record for pkt.
func (r *ConsoleReporter) Report(ctx context.Context, pkt *core.OutputPacket) error {
	if pkt == nil {
		return fmt.Errorf("nil packet")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var err error
	switch r.config.Format {
	case "json":
		err = r.reportJSON(pkt)
	case "yaml":
		err = r.reportYAML(pkt)
	default:
		err = r.reportText(pkt)
	}
	if err != nil {
		return err
	}
	r.reportedCount.Add(1)
	return nil
}

// Reported returns the number of records written.
func (r *ConsoleReporter) Reported() uint64 {
	return r.reportedCount.Load()
}

// record is the JSON and YAML shape of one packet.
type record struct {
	Source      string      `json:"source,omitempty" yaml:"source,omitempty"`
	Index       uint64      `json:"index" yaml:"index"`
	Timestamp   string      `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
	Src         string      `json:"src,omitempty" yaml:"src,omitempty"`
	Dst         string      `json:"dst,omitempty" yaml:"dst,omitempty"`
	PayloadType string      `json:"payload_type" yaml:"payload_type"`
	Labels      core.Labels `json:"labels,omitempty" yaml:"labels,omitempty"`
	Length      int         `json:"length" yaml:"length"`
	Message     any         `json:"message,omitempty" yaml:"message,omitempty"`
}

func (r *ConsoleReporter) newRecord(pkt *core.OutputPacket) record {
	rec := record{
		Source:      pkt.Source,
		Index:       pkt.Index,
		Src:         endpoint(pkt.SrcIP, pkt.SrcPort),
		Dst:         endpoint(pkt.DstIP, pkt.DstPort),
		PayloadType: pkt.PayloadType,
		Length:      len(pkt.RawPayload),
		Message:     pkt.Payload,
	}
	if !pkt.Timestamp.IsZero() {
		rec.Timestamp = pkt.Timestamp.Format("2006-01-02T15:04:05.000000000Z07:00")
	}
	if r.config.Labels {
		rec.Labels = pkt.Labels
	}
	return rec
}

func (r *ConsoleReporter) reportJSON(pkt *core.OutputPacket) error {
	data, err := json.Marshal(r.newRecord(pkt))
	if err != nil {
		return fmt.Errorf("json marshal failed: %w", err)
	}
	data = append(data, '\n')
	_, err = r.out.Write(data)
	return err
}

func (r *ConsoleReporter) reportYAML(pkt *core.OutputPacket) error {
	if r.yaml == nil {
		r.yaml = yaml.NewEncoder(r.out)
		r.yaml.SetIndent(2)
	}
	if err := r.yaml.Encode(r.newRecord(pkt)); err != nil {
		return fmt.Errorf("yaml marshal failed: %w", err)
	}
	return nil
}

// reportText writes one line:
//
//	index time src -> dst type key=value ...
func (r *ConsoleReporter) reportText(pkt *core.OutputPacket) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%d", pkt.Index)
	if !pkt.Timestamp.IsZero() {
		b.WriteString(" " + pkt.Timestamp.Format("15:04:05.000000"))
	}
	if src, dst := endpoint(pkt.SrcIP, pkt.SrcPort), endpoint(pkt.DstIP, pkt.DstPort); src != "" {
		fmt.Fprintf(&b, " %s -> %s", src, dst)
	}
	b.WriteString(" " + pkt.PayloadType)

	if r.config.Labels && len(pkt.Labels) > 0 {
		keys := make([]string, 0, len(pkt.Labels))
		for k := range pkt.Labels {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%s", k, pkt.Labels[k])
		}
	} else if len(pkt.RawPayload) > 0 {
		fmt.Fprintf(&b, " payload_len=%d", len(pkt.RawPayload))
	}
	b.WriteByte('\n')

	if r.config.Payload && pkt.Payload != nil {
		fmt.Fprintf(&b, "  %# v\n", pretty.Formatter(pkt.Payload))
	}

	_, err := io.WriteString(r.out, b.String())
	return err
}

// Flush flushes a pending YAML document.
func (r *ConsoleReporter) Flush(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.yaml != nil {
		err := r.yaml.Close()
		r.yaml = nil
		return err
	}
	return nil
}

func endpoint(ip netip.Addr, port uint16) string {
	if !ip.IsValid() {
		return ""
	}
	return netip.AddrPortFrom(ip, port).String()
}

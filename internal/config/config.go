// Package config handles ptpdump configuration loading using viper.
package config

import (
	"fmt"
	"slices"
	"strings"
)

// GlobalConfig represents the top-level configuration.
// Maps to the `ptpwire:` root key in YAML.
type GlobalConfig struct {
	Log     LogConfig      `mapstructure:"log"`
	Capture CaptureConfig  `mapstructure:"capture"`
	Decoder DecoderConfig  `mapstructure:"decoder"`
	Parser  map[string]any `mapstructure:"parser"` // options for the ptp parser plugin
	Output  OutputConfig   `mapstructure:"output"`
	Metrics MetricsConfig  `mapstructure:"metrics"`
}

// ─── Capture ───

// CaptureConfig selects the packet source.
type CaptureConfig struct {
	File    string   `mapstructure:"file"`    // pcap or pcapng path
	SnapLen int      `mapstructure:"snaplen"` // bytes kept by the BPF prefilter
	BPF     bool     `mapstructure:"bpf"`     // run the PTP prefilter before decoding
	Ports   []uint16 `mapstructure:"ports"`   // UDP ports carrying PTP
}

// ─── Decoder ───

// DecoderConfig selects the L2-L4 decoder.
type DecoderConfig struct {
	Engine  string `mapstructure:"engine"`  // native / gopacket
	Workers int    `mapstructure:"workers"` // 0 = 1
}

// ─── Output ───

// OutputConfig controls how decoded messages are reported.
type OutputConfig struct {
	Format string `mapstructure:"format"` // text / json / yaml
	Labels bool   `mapstructure:"labels"` // include ptp.* labels
}

// ─── Metrics ───

// MetricsConfig exports decode counters in the Prometheus format.
type MetricsConfig struct {
	File string `mapstructure:"file"` // textfile written after the capture is read
	Addr string `mapstructure:"addr"` // serve /metrics while reading, e.g. ":9090"
	Path string `mapstructure:"path"`
}

// ─── Log ───

// LogConfig contains logging settings.
type LogConfig struct {
	Level   string           `mapstructure:"level"`  // debug / info / warn / error
	Format  string           `mapstructure:"format"` // json / text / pattern
	Pattern string           `mapstructure:"pattern"`
	Outputs LogOutputsConfig `mapstructure:"outputs"`
}

// LogOutputsConfig contains log output destinations besides stderr.
type LogOutputsConfig struct {
	File FileOutputConfig `mapstructure:"file"`
}

// FileOutputConfig configures file log output.
type FileOutputConfig struct {
	Enabled  bool           `mapstructure:"enabled"`
	Path     string         `mapstructure:"path"`
	Rotation RotationConfig `mapstructure:"rotation"`
}

// RotationConfig configures log file rotation.
type RotationConfig struct {
	MaxSizeMB  int  `mapstructure:"max_size_mb"`
	MaxAgeDays int  `mapstructure:"max_age_days"`
	MaxBackups int  `mapstructure:"max_backups"`
	Compress   bool `mapstructure:"compress"`
}

var (
	validLevels     = []string{"debug", "info", "warn", "error"}
	validLogFormats = []string{"json", "text", "pattern"}
	validEngines    = []string{"native", "gopacket"}
	validOutputs    = []string{"text", "json", "yaml"}
)

// ValidateAndApplyDefaults validates configuration and applies runtime defaults.
func (cfg *GlobalConfig) ValidateAndApplyDefaults() error {
	// ── Log ──
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	if !slices.Contains(validLevels, cfg.Log.Level) {
		return fmt.Errorf("invalid log level: %s (must be debug/info/warn/error)", cfg.Log.Level)
	}
	if !slices.Contains(validLogFormats, cfg.Log.Format) {
		return fmt.Errorf("invalid log format: %s (must be json/text/pattern)", cfg.Log.Format)
	}
	if cfg.Log.Outputs.File.Enabled && cfg.Log.Outputs.File.Path == "" {
		return fmt.Errorf("log.outputs.file.path is required when log.outputs.file.enabled=true")
	}

	// ── Capture ──
	if cfg.Capture.SnapLen < 0 || cfg.Capture.SnapLen > 262144 {
		return fmt.Errorf("invalid capture.snaplen: %d (must be 0-262144)", cfg.Capture.SnapLen)
	}
	if cfg.Capture.SnapLen == 0 {
		cfg.Capture.SnapLen = 65535
	}
	for _, p := range cfg.Capture.Ports {
		if p == 0 {
			return fmt.Errorf("invalid capture.ports: port 0")
		}
	}

	// ── Decoder ──
	if !slices.Contains(validEngines, cfg.Decoder.Engine) {
		return fmt.Errorf("invalid decoder.engine: %s (must be native/gopacket)", cfg.Decoder.Engine)
	}
	if cfg.Decoder.Workers < 0 {
		return fmt.Errorf("invalid decoder.workers: %d", cfg.Decoder.Workers)
	}
	if cfg.Decoder.Workers == 0 {
		cfg.Decoder.Workers = 1
	}

	// ── Output ──
	if !slices.Contains(validOutputs, cfg.Output.Format) {
		return fmt.Errorf("invalid output.format: %s (must be text/json/yaml)", cfg.Output.Format)
	}

	if cfg.Parser == nil {
		cfg.Parser = map[string]any{}
	}
	return nil
}

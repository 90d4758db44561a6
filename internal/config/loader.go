package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// configRoot is the top-level wrapper matching the YAML structure `ptpwire: ...`.
type configRoot struct {
	PTPWire GlobalConfig `mapstructure:"ptpwire"`
}

// Load loads configuration from path. An empty path loads defaults and
// environment overrides only. Env vars map through the key replacer, e.g.
// key "ptpwire.log.level" -> PTPWIRE_LOG_LEVEL.
func Load(path string) (*GlobalConfig, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	var root configRoot
	if err := v.Unmarshal(&root); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg := root.PTPWire

	if err := cfg.ValidateAndApplyDefaults(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default values for configuration.
// All keys use the "ptpwire." prefix to match the YAML root wrapper.
func setDefaults(v *viper.Viper) {
	// Log defaults
	v.SetDefault("ptpwire.log.level", "info")
	v.SetDefault("ptpwire.log.format", "text")
	v.SetDefault("ptpwire.log.pattern", "%time [%level] %msg %field%n")
	v.SetDefault("ptpwire.log.outputs.file.enabled", false)
	v.SetDefault("ptpwire.log.outputs.file.path", "/var/log/ptpwire/ptpdump.log")
	v.SetDefault("ptpwire.log.outputs.file.rotation.max_size_mb", 100)
	v.SetDefault("ptpwire.log.outputs.file.rotation.max_age_days", 30)
	v.SetDefault("ptpwire.log.outputs.file.rotation.max_backups", 5)
	v.SetDefault("ptpwire.log.outputs.file.rotation.compress", true)

	// Capture defaults
	v.SetDefault("ptpwire.capture.file", "")
	v.SetDefault("ptpwire.capture.snaplen", 65535)
	v.SetDefault("ptpwire.capture.bpf", true)
	v.SetDefault("ptpwire.capture.ports", []uint16{319, 320})

	// Decoder defaults
	v.SetDefault("ptpwire.decoder.engine", "native")
	v.SetDefault("ptpwire.decoder.workers", 1)

	// Parser defaults
	v.SetDefault("ptpwire.parser.correlate", true)
	v.SetDefault("ptpwire.parser.correlation_ttl", "10s")

	// Output defaults
	v.SetDefault("ptpwire.output.format", "text")
	v.SetDefault("ptpwire.output.labels", true)

	// Metrics defaults
	v.SetDefault("ptpwire.metrics.file", "")
	v.SetDefault("ptpwire.metrics.addr", "")
	v.SetDefault("ptpwire.metrics.path", "/metrics")
}

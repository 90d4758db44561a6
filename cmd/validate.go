package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"firestige.xyz/ptpwire/internal/config"
	"firestige.xyz/ptpwire/pkg/plugin"
)

func newValidateCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate a configuration file",
		Long: `Validate a configuration file (YAML, JSON or TOML) without reading any capture.

PTPWIRE_* environment variables are applied as they would be for read.

Examples:
  ptpdump validate -c ptpdump.yaml`,
		Args: cobra.NoArgs,
		// Loading is the command itself, so skip the root hook.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if root.configFile == "" {
				return fmt.Errorf("validate needs a config file, pass -c")
			}
			return runValidate(root.configFile, cmd.OutOrStdout())
		},
	}
}

func runValidate(path string, w io.Writer) error {
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("INVALID: %w", err)
	}
	// plugin options are only checked by the plugin itself
	if _, err := newParser(cfg.Parser); err != nil {
		return fmt.Errorf("INVALID: parser: %w", err)
	}

	fmt.Fprintf(w, "VALID: %s (decoder %s x%d, output %s, log %s)\n",
		path, cfg.Decoder.Engine, cfg.Decoder.Workers, cfg.Output.Format, cfg.Log.Level)
	return nil
}

func newPluginsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plugins",
		Short: "List the registered plugins",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runPlugins(cmd.OutOrStdout())
			return nil
		},
	}
}

func runPlugins(w io.Writer) {
	for _, kind := range []struct {
		name  string
		names []string
	}{
		{"capturers", plugin.ListCapturers()},
		{"parsers", plugin.ListParsers()},
		{"processors", plugin.ListProcessors()},
		{"reporters", plugin.ListReporters()},
	} {
		fmt.Fprintf(w, "%-11s %v\n", kind.name+":", kind.names)
	}
}

// Package cmd implements CLI commands using cobra framework.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"firestige.xyz/ptpwire/internal/config"
	"firestige.xyz/ptpwire/internal/log"
	_ "firestige.xyz/ptpwire/plugins" // register built-in plugins
)

// rootOptions carries the global flags and the configuration loaded from them.
type rootOptions struct {
	configFile string
	logLevel   string

	cfg *config.GlobalConfig
}

func newRootCmd() *cobra.Command {
	o := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "ptpdump",
		Short: "ptpdump - IEEE 1588 PTP message decoder",
		Long: `ptpdump decodes IEEE 1588-2008 (PTPv2) messages.

It reads pcap and pcapng captures, finds PTP over UDP (ports 319/320) and
raw Ethernet (EtherType 0x88F7), decodes every message with its TLVs and
prints one record per message as text, JSON or YAML.

Examples:
  ptpdump read gm.pcapng                      # decode a capture
  ptpdump read -o json --types announce gm.pcap
  ptpdump decode 1002002c00000000...          # decode a message from hex
  ptpdump encode-check 1002002c00000000...    # check the re-encoded bytes match
  ptpdump validate -c ptpdump.yaml            # check a configuration file`,
		Version:       "0.1.0",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return o.load()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&o.configFile, "config", "c", "",
		"config file path (defaults and PTPWIRE_* env vars when empty)")
	rootCmd.PersistentFlags().StringVar(&o.logLevel, "log-level", "",
		"override log level (debug, info, warn, error)")

	rootCmd.AddCommand(newReadCmd(o))
	rootCmd.AddCommand(newDecodeCmd(o))
	rootCmd.AddCommand(newEncodeCheckCmd())
	rootCmd.AddCommand(newValidateCmd(o))
	rootCmd.AddCommand(newPluginsCmd())

	return rootCmd
}

// load reads the configuration and initializes logging.
func (o *rootOptions) load() error {
	cfg, err := config.Load(o.configFile)
	if err != nil {
		return err
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
		if err := cfg.ValidateAndApplyDefaults(); err != nil {
			return err
		}
	}
	if err := log.Init(cfg.Log); err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	o.cfg = cfg
	return nil
}

// Execute runs the root command. This is called by main.main().
func Execute() error {
	return newRootCmd().Execute()
}

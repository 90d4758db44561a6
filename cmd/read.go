package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"firestige.xyz/ptpwire/internal/config"
	"firestige.xyz/ptpwire/internal/core/decoder"
	"firestige.xyz/ptpwire/internal/log"
	"firestige.xyz/ptpwire/internal/metrics"
	"firestige.xyz/ptpwire/internal/pipeline"
	"firestige.xyz/ptpwire/pkg/plugin"
	"firestige.xyz/ptpwire/plugins/reporter/console"
	metricsreporter "firestige.xyz/ptpwire/plugins/reporter/metrics"
)

type readOptions struct {
	engine   string
	format   string
	workers  int
	noBPF    bool
	noLabels bool
	payload  bool
	types    []string
	domains  []int

	metricsFile string
	metricsAddr string
}

func newReadCmd(root *rootOptions) *cobra.Command {
	o := &readOptions{}

	cmd := &cobra.Command{
		Use:   "read [FILE]",
		Short: "Decode every PTP message in a pcap or pcapng file",
		Long: `Decode every PTP message in a pcap or pcapng file.

FILE defaults to capture.file from the configuration. Frames that are not
PTP are skipped; frames that fail to decode are counted and logged.

Examples:
  ptpdump read gm.pcap
  ptpdump read --engine gopacket -o yaml gm.pcapng
  ptpdump read --types sync,follow_up --domains 0,24 gm.pcap`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := *root.cfg
			if len(args) == 1 {
				cfg.Capture.File = args[0]
			}
			if err := o.apply(cmd, &cfg); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			_, err := runRead(ctx, &cfg, o, cmd.OutOrStdout())
			return err
		},
	}

	cmd.Flags().StringVar(&o.engine, "engine", "", "decoder engine: native or gopacket")
	cmd.Flags().StringVarP(&o.format, "output", "o", "", "output format: text, json or yaml")
	cmd.Flags().IntVarP(&o.workers, "workers", "w", 0, "decode workers, >1 may reorder output")
	cmd.Flags().BoolVar(&o.noBPF, "no-bpf", false, "decode every frame, skip the PTP prefilter")
	cmd.Flags().BoolVar(&o.noLabels, "no-labels", false, "omit ptp.* labels")
	cmd.Flags().BoolVar(&o.payload, "payload", false, "text output: dump each decoded message")
	cmd.Flags().StringSliceVar(&o.types, "types", nil, "keep only these message types")
	cmd.Flags().IntSliceVar(&o.domains, "domains", nil, "keep only these domains")
	cmd.Flags().StringVar(&o.metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile when done")
	cmd.Flags().StringVar(&o.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while reading")

	return cmd
}

// apply overrides cfg with the flags that were set.
func (o *readOptions) apply(cmd *cobra.Command, cfg *config.GlobalConfig) error {
	flags := cmd.Flags()
	if flags.Changed("engine") {
		cfg.Decoder.Engine = o.engine
	}
	if flags.Changed("output") {
		cfg.Output.Format = o.format
	}
	if flags.Changed("workers") {
		cfg.Decoder.Workers = o.workers
	}
	if o.noBPF {
		cfg.Capture.BPF = false
	}
	if o.noLabels {
		cfg.Output.Labels = false
	}
	if o.metricsFile != "" {
		cfg.Metrics.File = o.metricsFile
	}
	if o.metricsAddr != "" {
		cfg.Metrics.Addr = o.metricsAddr
	}
	return cfg.ValidateAndApplyDefaults()
}

// runRead decodes cfg.Capture.File and writes one record per message to w.
func runRead(ctx context.Context, cfg *config.GlobalConfig, o *readOptions, w io.Writer) (pipeline.Stats, error) {
	if cfg.Capture.File == "" {
		return pipeline.Stats{}, fmt.Errorf("no capture file: pass FILE or set capture.file")
	}

	capturer, err := newCapturer(cfg.Capture)
	if err != nil {
		return pipeline.Stats{}, err
	}
	parser, err := newParser(cfg.Parser)
	if err != nil {
		return pipeline.Stats{}, err
	}
	processors, err := newProcessors(o.types, o.domains)
	if err != nil {
		return pipeline.Stats{}, err
	}
	reporter, err := newReporter(cfg.Output, o.payload, w)
	if err != nil {
		return pipeline.Stats{}, err
	}
	reporters := []plugin.Reporter{reporter}

	var m *metrics.Metrics
	if cfg.Metrics.File != "" || cfg.Metrics.Addr != "" {
		m = metrics.New()
		reporters = append(reporters, metricsreporter.New(m))
	}

	p := pipeline.NewBuilder().
		WithSource(cfg.Capture.File).
		WithCapturer(capturer).
		WithDecoder(newDecoderFactory(cfg.Decoder.Engine, cfg.Capture.Ports)).
		WithParsers(parser).
		WithProcessors(processors...).
		WithReporters(reporters...).
		WithWorkers(cfg.Decoder.Workers).
		Build()

	if m != nil {
		if err := m.RegisterPipeline(cfg.Capture.File, p.Stats); err != nil {
			return pipeline.Stats{}, err
		}
		if cfg.Metrics.Addr != "" {
			srv := metrics.NewServer(cfg.Metrics.Addr, cfg.Metrics.Path, m)
			if err := srv.Start(ctx); err != nil {
				return pipeline.Stats{}, err
			}
			defer srv.Stop(context.Background())
		}
	}

	if err := p.Run(ctx); err != nil {
		return p.Stats(), err
	}
	if m != nil && cfg.Metrics.File != "" {
		if err := m.WriteTextfile(cfg.Metrics.File); err != nil {
			return p.Stats(), fmt.Errorf("write metrics: %w", err)
		}
	}

	stats, cs := p.Stats(), p.CaptureStats()
	log.GetLogger().WithFields(map[string]interface{}{
		"file":          cfg.Capture.File,
		"frames":        cs.PacketsReceived,
		"prefiltered":   cs.PacketsFiltered,
		"truncated":     cs.PacketsDropped,
		"messages":      stats.Parsed,
		"skipped":       stats.Skipped,
		"decode_errors": stats.DecodeErrors + stats.ParseErrors,
		"reported":      stats.Reported,
	}).Info("capture decoded")
	return stats, nil
}

func newDecoderFactory(engine string, ports []uint16) pipeline.DecoderFactory {
	cfg := decoder.Config{Ports: ports}
	if engine == "gopacket" {
		return func() decoder.Decoder { return decoder.NewGopacketDecoder(cfg) }
	}
	// stateless, one instance serves every worker
	d := decoder.NewStandardDecoder(cfg)
	return func() decoder.Decoder { return d }
}

func newCapturer(cfg config.CaptureConfig) (plugin.Capturer, error) {
	factory, err := plugin.GetCapturerFactory("pcapfile")
	if err != nil {
		return nil, err
	}
	c := factory()
	if err := c.Init(map[string]any{
		"file":    cfg.File,
		"snaplen": cfg.SnapLen,
		"bpf":     cfg.BPF,
		"ports":   cfg.Ports,
	}); err != nil {
		return nil, err
	}
	return c, nil
}

func newParser(options map[string]any) (plugin.Parser, error) {
	factory, err := plugin.GetParserFactory("ptp")
	if err != nil {
		return nil, err
	}
	p := factory()
	if err := p.Init(options); err != nil {
		return nil, err
	}
	return p, nil
}

func newProcessors(types []string, domains []int) ([]plugin.Processor, error) {
	if len(types) == 0 && len(domains) == 0 {
		return nil, nil
	}
	factory, err := plugin.GetProcessorFactory("msgfilter")
	if err != nil {
		return nil, err
	}
	f := factory()
	if err := f.Init(map[string]any{
		"message_types": types,
		"domains":       domains,
	}); err != nil {
		return nil, err
	}
	return []plugin.Processor{f}, nil
}

func newReporter(cfg config.OutputConfig, payload bool, w io.Writer) (plugin.Reporter, error) {
	r := console.New(w)
	if err := r.Init(map[string]any{
		"format":  cfg.Format,
		"labels":  cfg.Labels,
		"payload": payload,
	}); err != nil {
		return nil, err
	}
	return r, nil
}

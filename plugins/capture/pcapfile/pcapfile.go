// Package pcapfile implements a capture plugin that replays pcap and pcapng
// files.
package pcapfile

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"github.com/mitchellh/mapstructure"

	"firestige.xyz/ptpwire/internal/core"
	"firestige.xyz/ptpwire/internal/filter"
	"firestige.xyz/ptpwire/internal/log"
	"firestige.xyz/ptpwire/pkg/plugin"
)

const (
	pluginName     = "pcapfile"
	defaultSnapLen = 65535
)

// pcapng section header block type, the first four bytes of every pcapng file.
var ngMagic = []byte{0x0A, 0x0D, 0x0D, 0x0A}

// Config represents pcapfile-specific configuration.
type Config struct {
	File    string   `mapstructure:"file"`    // required
	SnapLen int      `mapstructure:"snaplen"` // optional, default 65535
	BPF     bool     `mapstructure:"bpf"`     // optional, run the PTP prefilter
	Ports   []uint16 `mapstructure:"ports"`   // optional, prefilter ports, default 319/320
}

// Capturer reads frames from a capture file in order. Only Ethernet link
// types are supported.
type Capturer struct {
	name   string
	config Config
	filter filter.Filter

	ctx    context.Context
	cancel context.CancelFunc

	packetsReceived atomic.Uint64
	packetsFiltered atomic.Uint64
	packetsDropped  atomic.Uint64
}

// NewCapturer creates a new capture file reader.
func NewCapturer() plugin.Capturer {
	return &Capturer{name: pluginName}
}

// Name returns the plugin name.
func (c *Capturer) Name() string {
	return c.name
}

// Init initializes the capturer with configuration.
func (c *Capturer) Init(cfg map[string]any) error {
	c.config = Config{SnapLen: defaultSnapLen}
	if err := mapstructure.WeakDecode(cfg, &c.config); err != nil {
		return fmt.Errorf("%w: pcapfile: %v", core.ErrPluginInitFailed, err)
	}
	if c.config.File == "" {
		return fmt.Errorf("%w: pcapfile: file is required", core.ErrPluginInitFailed)
	}
	if c.config.SnapLen <= 0 {
		c.config.SnapLen = defaultSnapLen
	}

	c.filter = nil
	if c.config.BPF {
		f, err := filter.NewPTPFilter(uint32(c.config.SnapLen), c.config.Ports...)
		if err != nil {
			return fmt.Errorf("%w: pcapfile: %v", core.ErrPluginInitFailed, err)
		}
		c.filter = f
	}

	log.GetLogger().WithFields(map[string]interface{}{
		"file": c.config.File,
		"bpf":  c.config.BPF,
	}).Debug("pcapfile initialized")
	return nil
}

// Start starts the capturer (no-op, actual work in Capture).
func (c *Capturer) Start(ctx context.Context) error {
	c.ctx, c.cancel = context.WithCancel(ctx)
	return nil
}

// Stop interrupts a running Capture.
func (c *Capturer) Stop(ctx context.Context) error {
	if c.cancel != nil {
		c.cancel()
	}
	return nil
}

// packetReader is implemented by both pcapgo.Reader and pcapgo.NgReader.
type packetReader interface {
	gopacket.PacketDataSource
	LinkType() layers.LinkType
}

// Capture reads the whole file into output. It returns nil at end of file
// and when ctx (or Stop) ends the capture early. A truncated last record
// counts as dropped.
func (c *Capturer) Capture(ctx context.Context, output chan<- core.RawPacket) error {
	if c.ctx != nil {
		var cancel context.CancelFunc
		ctx, cancel = mergeCancel(ctx, c.ctx)
		defer cancel()
	}

	f, err := os.Open(c.config.File)
	if err != nil {
		return fmt.Errorf("pcapfile: %w", err)
	}
	defer f.Close()

	r, err := openReader(bufio.NewReader(f))
	if err != nil {
		return fmt.Errorf("pcapfile: %s: %w", c.config.File, err)
	}
	if lt := r.LinkType(); lt != layers.LinkTypeEthernet {
		return fmt.Errorf("pcapfile: link type %s: %w", lt, core.ErrUnsupportedProto)
	}

	logger := log.GetLogger().WithField("file", c.config.File)
	logger.Info("pcapfile capture started")

	var index uint64
	for {
		data, ci, err := r.ReadPacketData()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			if errors.Is(err, io.ErrUnexpectedEOF) {
				c.packetsDropped.Add(1)
				logger.WithError(err).Warn("truncated record at end of file")
				break
			}
			return fmt.Errorf("pcapfile: record %d: %w", index+1, err)
		}
		index++
		c.packetsReceived.Add(1)

		if c.filter != nil && !c.filter.Match(data) {
			c.packetsFiltered.Add(1)
			continue
		}

		raw := core.RawPacket{
			Data:       data,
			Timestamp:  ci.Timestamp,
			CaptureLen: uint32(ci.CaptureLength),
			OrigLen:    uint32(ci.Length),
			Index:      index,
		}

		// a file can wait for the pipeline, so block instead of dropping
		select {
		case output <- raw:
		case <-ctx.Done():
			logger.Info("pcapfile capture stopped")
			return nil
		}
	}

	logger.WithFields(map[string]interface{}{
		"received": c.packetsReceived.Load(),
		"filtered": c.packetsFiltered.Load(),
	}).Info("pcapfile capture finished")
	return nil
}

// Stats returns capture statistics.
func (c *Capturer) Stats() plugin.CaptureStats {
	return plugin.CaptureStats{
		PacketsReceived: c.packetsReceived.Load(),
		PacketsFiltered: c.packetsFiltered.Load(),
		PacketsDropped:  c.packetsDropped.Load(),
	}
}

func openReader(br *bufio.Reader) (packetReader, error) {
	magic, err := br.Peek(4)
	if err != nil {
		return nil, fmt.Errorf("read magic: %w", err)
	}
	if bytes.Equal(magic, ngMagic) {
		return pcapgo.NewNgReader(br, pcapgo.DefaultNgReaderOptions)
	}
	return pcapgo.NewReader(br)
}

// mergeCancel returns a context done when either a or b is done.
func mergeCancel(a, b context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(a)
	stop := context.AfterFunc(b, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

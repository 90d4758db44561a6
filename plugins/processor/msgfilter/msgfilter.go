// Package msgfilter implements a processor that keeps PTP messages by type
// and domain.
package msgfilter

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/mitchellh/mapstructure"

	"firestige.xyz/ptpwire/internal/core"
	"firestige.xyz/ptpwire/pkg/plugin"
)

const pluginName = "msgfilter"

// Config selects the messages to keep. Empty lists keep everything.
type Config struct {
	MessageTypes []string `mapstructure:"message_types"` // e.g. ["ANNOUNCE", "sync"]
	Domains      []int    `mapstructure:"domains"`
}

// Filter drops output packets whose ptp labels do not match Config.
type Filter struct {
	name    string
	types   []string
	domains []string
	dropped atomic.Uint64
}

// NewFilter creates a new message filter.
func NewFilter() plugin.Processor {
	return &Filter{name: pluginName}
}

func (f *Filter) Name() string {
	return f.name
}

func (f *Filter) Init(cfg map[string]any) error {
	var c Config
	if err := mapstructure.WeakDecode(cfg, &c); err != nil {
		return fmt.Errorf("%w: msgfilter: %v", core.ErrPluginInitFailed, err)
	}
	f.types = f.types[:0]
	for _, t := range c.MessageTypes {
		f.types = append(f.types, strings.ToUpper(strings.ReplaceAll(t, "-", "_")))
	}
	f.domains = f.domains[:0]
	for _, d := range c.Domains {
		if d < 0 || d > 255 {
			return fmt.Errorf("%w: msgfilter: domain %d out of range", core.ErrPluginInitFailed, d)
		}
		f.domains = append(f.domains, strconv.Itoa(d))
	}
	return nil
}

func (f *Filter) Start(ctx context.Context) error {
	return nil
}

func (f *Filter) Stop(ctx context.Context) error {
	return nil
}

// Process keeps pkt when both its message type and domain are selected.
// Packets without ptp labels only pass an empty filter.
func (f *Filter) Process(pkt *core.OutputPacket) bool {
	keep := match(f.types, pkt.Labels, core.LabelPTPMessageType) &&
		match(f.domains, pkt.Labels, core.LabelPTPDomain)
	if !keep {
		f.dropped.Add(1)
	}
	return keep
}

// Dropped returns the number of packets rejected so far.
func (f *Filter) Dropped() uint64 {
	return f.dropped.Load()
}

func match(allowed []string, labels core.Labels, key string) bool {
	if len(allowed) == 0 {
		return true
	}
	v, ok := labels[key]
	return ok && slices.Contains(allowed, v)
}

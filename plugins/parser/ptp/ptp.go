// Package ptp implements the PTP parser plugin.
// Decodes the message carried by a DecodedPacket, attaches ptp.* labels and
// pairs two-step event messages with the follow-up that completes them.
package ptp

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/patrickmn/go-cache"

	"firestige.xyz/ptpwire/internal/core"
	"firestige.xyz/ptpwire/pkg/plugin"
	codec "firestige.xyz/ptpwire/pkg/ptp"
)

const (
	pluginName            = "ptp"
	defaultCorrelationTTL = 10 * time.Second
)

// Options configures the parser.
type Options struct {
	Correlate      bool          `mapstructure:"correlate"`       // pair Sync/Follow_Up and Pdelay_Resp/Pdelay_Resp_Follow_Up
	CorrelationTTL time.Duration `mapstructure:"correlation_ttl"` // how long an unmatched two-step message waits
}

// Parser decodes PTP payloads. It is safe for concurrent use.
type Parser struct {
	name    string
	opts    Options
	pending *cache.Cache // twoStepKey -> capture index of the two-step message
}

// NewParser creates a new PTP parser.
func NewParser() plugin.Parser {
	return &Parser{
		name: pluginName,
		opts: Options{Correlate: true, CorrelationTTL: defaultCorrelationTTL},
	}
}

// Name returns the plugin name.
func (p *Parser) Name() string {
	return p.name
}

// Init decodes cfg into Options.
func (p *Parser) Init(cfg map[string]any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		Result:           &p.opts,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("%w: ptp parser: %v", core.ErrPluginInitFailed, err)
	}
	if p.opts.CorrelationTTL <= 0 {
		p.opts.CorrelationTTL = defaultCorrelationTTL
	}
	if p.opts.Correlate {
		p.pending = cache.New(p.opts.CorrelationTTL, 2*p.opts.CorrelationTTL)
	}
	return nil
}

// Start starts the parser.
func (p *Parser) Start(ctx context.Context) error {
	return nil
}

// Stop drops unmatched two-step messages.
func (p *Parser) Stop(ctx context.Context) error {
	if p.pending != nil {
		p.pending.Flush()
	}
	return nil
}

// CanHandle accepts anything the decoder identified as PTP.
func (p *Parser) CanHandle(pkt *core.DecodedPacket) bool {
	return pkt.Encapsulation != core.EncapUnknown && len(pkt.Payload) >= codec.HeaderLen
}

// Handle decodes the message. The payload is the codec.Message.
func (p *Parser) Handle(pkt *core.DecodedPacket) (any, core.Labels, error) {
	m, err := codec.Decode(pkt.Payload)
	if err != nil {
		return nil, nil, fmt.Errorf("ptp decode failed: %w", err)
	}

	labels := Labels(m)
	labels[core.LabelPTPTransport] = pkt.Encapsulation.String()
	if p.pending != nil {
		p.correlate(m, pkt.Index, labels)
	}
	return m, labels, nil
}

func (p *Parser) correlate(m codec.Message, index uint64, labels core.Labels) {
	h := m.MessageHeader()
	switch m.Type() {
	case codec.MessageSync, codec.MessagePdelayResp:
		if h.Flags.Has(codec.FlagTwoStep) {
			p.pending.SetDefault(twoStepKey(h, m.Type()), index)
		}
	case codec.MessageFollowUp:
		p.match(twoStepKey(h, codec.MessageSync), labels)
	case codec.MessagePdelayRespFollowUp:
		p.match(twoStepKey(h, codec.MessagePdelayResp), labels)
	}
}

func (p *Parser) match(key string, labels core.Labels) {
	v, ok := p.pending.Get(key)
	if !ok {
		return
	}
	p.pending.Delete(key)
	labels[core.LabelPTPMatchedIndex] = strconv.FormatUint(v.(uint64), 10)
}

// twoStepKey identifies a two-step exchange: the follow-up repeats the
// domain, source port and sequence id of the event message.
func twoStepKey(h codec.Header, event codec.MessageType) string {
	return fmt.Sprintf("%d/%s/%d/%d", h.DomainNumber, h.SourcePortIdentity, h.SequenceID, event)
}

// Labels returns the ptp.* labels of m, without the transport label.
func Labels(m codec.Message) core.Labels {
	h := m.MessageHeader()
	labels := core.Labels{
		core.LabelPTPMessageType: m.Type().String(),
		core.LabelPTPDomain:      strconv.Itoa(int(h.DomainNumber)),
		core.LabelPTPSequenceID:  strconv.Itoa(int(h.SequenceID)),
		core.LabelPTPSourcePort:  h.SourcePortIdentity.String(),
		core.LabelPTPVersion:     strconv.Itoa(int(h.Version)),
		core.LabelPTPFlags:       h.Flags.String(),
		core.LabelPTPCorrection:  strconv.FormatFloat(h.Correction.Nanoseconds(), 'f', 3, 64),
		core.LabelPTPTLVCount:    strconv.Itoa(len(codec.Suffix(m))),
	}

	if a, ok := m.(*codec.Announce); ok {
		labels[core.LabelPTPGrandmaster] = a.GrandmasterIdentity.String()
		labels[core.LabelPTPClockClass] = strconv.Itoa(int(a.GrandmasterClockQuality.ClockClass))
		labels[core.LabelPTPTimeSource] = a.TimeSource.String()
		labels[core.LabelPTPSteps] = strconv.Itoa(int(a.StepsRemoved))
		labels[core.LabelPTPUTCOffset] = strconv.Itoa(int(a.CurrentUTCOffset))
	}
	return labels
}

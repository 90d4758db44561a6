package decoder

import (
	"errors"
	"fmt"
	"net/netip"
	"slices"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	"firestige.xyz/ptpwire/internal/core"
	"firestige.xyz/ptpwire/pkg/ptplayer"
)

/*
GopacketDecoder decodes with gopacket's DecodingLayerParser. PTP is found
through the port and EtherType registrations done by ptplayer, plus any
extra ports from Config.

The layer structs are reused between calls, so a GopacketDecoder must not
be shared between goroutines. Only the innermost VLAN tag is reported.
*/
type GopacketDecoder struct {
	ports []uint16

	parser  *gopacket.DecodingLayerParser
	eth     layers.Ethernet
	dot1q   layers.Dot1Q
	ip4     layers.IPv4
	ip6     layers.IPv6
	udp     layers.UDP
	decoded []gopacket.LayerType
}

// NewGopacketDecoder creates a GopacketDecoder.
func NewGopacketDecoder(cfg Config) *GopacketDecoder {
	d := &GopacketDecoder{ports: cfg.ports()}
	d.parser = gopacket.NewDecodingLayerParser(
		layers.LayerTypeEthernet,
		&d.eth,
		&d.dot1q,
		&d.ip4,
		&d.ip6,
		&d.udp,
	)
	// the PTP layer itself is left to the parser plugin
	d.parser.IgnoreUnsupported = true
	return d
}

// Decode implements Decoder.
func (d *GopacketDecoder) Decode(raw core.RawPacket) (core.DecodedPacket, error) {
	out := core.DecodedPacket{
		Timestamp:  raw.Timestamp,
		CaptureLen: raw.CaptureLen,
		OrigLen:    raw.OrigLen,
		Index:      raw.Index,
	}

	d.decoded = d.decoded[:0]
	if err := d.parser.DecodeLayers(raw.Data, &d.decoded); err != nil {
		if len(d.decoded) == 0 {
			return out, fmt.Errorf("ethernet: %w: %v", core.ErrPacketTooShort, err)
		}
		var unsupported gopacket.UnsupportedLayerType
		if !errors.As(err, &unsupported) {
			return out, fmt.Errorf("%s: %w: %v", d.decoded[len(d.decoded)-1], core.ErrPacketTooShort, err)
		}
	}
	if len(d.decoded) == 0 {
		return out, core.ErrPacketTooShort
	}

	var last gopacket.DecodingLayer
	for _, lt := range d.decoded {
		switch lt {
		case layers.LayerTypeEthernet:
			copy(out.Ethernet.SrcMAC[:], d.eth.SrcMAC)
			copy(out.Ethernet.DstMAC[:], d.eth.DstMAC)
			out.Ethernet.EtherType = uint16(d.eth.EthernetType)
			last = &d.eth
		case layers.LayerTypeDot1Q:
			out.Ethernet.VLANs = []uint16{d.dot1q.VLANIdentifier}
			out.Ethernet.EtherType = uint16(d.dot1q.Type)
			last = &d.dot1q
		case layers.LayerTypeIPv4:
			if d.ip4.Flags&layers.IPv4MoreFragments != 0 || d.ip4.FragOffset != 0 {
				return out, fmt.Errorf("ip fragment: %w", core.ErrUnsupportedProto)
			}
			out.IP = core.IPHeader{
				Version:  4,
				SrcIP:    addr(d.ip4.SrcIP),
				DstIP:    addr(d.ip4.DstIP),
				Protocol: uint8(d.ip4.Protocol),
				TTL:      d.ip4.TTL,
				TotalLen: d.ip4.Length,
			}
			last = &d.ip4
		case layers.LayerTypeIPv6:
			out.IP = core.IPHeader{
				Version:  6,
				SrcIP:    addr(d.ip6.SrcIP),
				DstIP:    addr(d.ip6.DstIP),
				Protocol: uint8(d.ip6.NextHeader),
				TTL:      d.ip6.HopLimit,
				TotalLen: d.ip6.Length + 40,
			}
			last = &d.ip6
		case layers.LayerTypeUDP:
			out.Transport = core.TransportHeader{
				SrcPort:  uint16(d.udp.SrcPort),
				DstPort:  uint16(d.udp.DstPort),
				Protocol: protocolUDP,
				Length:   d.udp.Length,
			}
			last = &d.udp
		}
	}

	switch l := last.(type) {
	case *layers.UDP:
		if l.NextLayerType() != ptplayer.LayerTypePTP && !d.isPTPPort(out.Transport) {
			return out, fmt.Errorf("udp %d->%d: %w", l.SrcPort, l.DstPort, core.ErrNotPTP)
		}
		out.Encapsulation = core.EncapUDP
		out.Payload = l.Payload
	case *layers.Ethernet, *layers.Dot1Q:
		if l.NextLayerType() != ptplayer.LayerTypePTP {
			return out, fmt.Errorf("ethertype 0x%04x: %w", out.Ethernet.EtherType, core.ErrNotPTP)
		}
		out.Encapsulation = core.EncapEthernet
		out.Payload = l.LayerPayload()
	default:
		return out, fmt.Errorf("%s: %w", d.decoded[len(d.decoded)-1], core.ErrNotPTP)
	}
	return out, nil
}

func (d *GopacketDecoder) isPTPPort(t core.TransportHeader) bool {
	return slices.Contains(d.ports, t.DstPort) || slices.Contains(d.ports, t.SrcPort)
}

func addr(ip []byte) netip.Addr {
	a, _ := netip.AddrFromSlice(ip)
	return a.Unmap()
}

// Package decoder implements L2-L4 protocol stack decoding.
//
// A decoder strips Ethernet, VLAN, IP and UDP headers off a captured frame
// and hands back the PTP message bytes. Frames that do not carry PTP fail
// with core.ErrNotPTP so callers can count and skip them.
package decoder

import (
	"fmt"
	"slices"

	"firestige.xyz/ptpwire/internal/core"
	"firestige.xyz/ptpwire/pkg/ptp"
)

// Decoder decodes raw packets into structured format.
type Decoder interface {
	Decode(raw core.RawPacket) (core.DecodedPacket, error)
}

// Config configures which UDP ports are treated as PTP.
type Config struct {
	Ports []uint16 // default 319, 320
}

func (c Config) ports() []uint16 {
	if len(c.Ports) == 0 {
		return []uint16{ptp.PortEvent, ptp.PortGeneral}
	}
	return c.Ports
}

// StandardDecoder decodes with hand-written header parsers. It keeps no
// state and is safe for concurrent use.
type StandardDecoder struct {
	ports []uint16
}

// NewStandardDecoder creates a StandardDecoder.
func NewStandardDecoder(cfg Config) *StandardDecoder {
	return &StandardDecoder{ports: cfg.ports()}
}

// Decode implements Decoder.
func (d *StandardDecoder) Decode(raw core.RawPacket) (core.DecodedPacket, error) {
	out := core.DecodedPacket{
		Timestamp:  raw.Timestamp,
		CaptureLen: raw.CaptureLen,
		OrigLen:    raw.OrigLen,
		Index:      raw.Index,
	}

	eth, payload, err := decodeEthernet(raw.Data)
	if err != nil {
		return out, fmt.Errorf("ethernet: %w", err)
	}
	out.Ethernet = eth

	switch eth.EtherType {
	case etherTypePTP:
		out.Encapsulation = core.EncapEthernet
		out.Payload = payload
		return out, nil
	case etherTypeIPv4, etherTypeIPv6:
	default:
		return out, fmt.Errorf("ethertype 0x%04x: %w", eth.EtherType, core.ErrNotPTP)
	}

	ip, payload, err := decodeIP(payload)
	out.IP = ip
	if err != nil {
		return out, fmt.Errorf("ip: %w", err)
	}

	transport, payload, err := decodeTransport(payload, ip.Protocol)
	if err != nil {
		return out, fmt.Errorf("transport protocol %d: %w", ip.Protocol, err)
	}
	out.Transport = transport

	if !d.isPTPPort(transport) {
		return out, fmt.Errorf("udp %d->%d: %w", transport.SrcPort, transport.DstPort, core.ErrNotPTP)
	}
	out.Encapsulation = core.EncapUDP
	out.Payload = payload
	return out, nil
}

func (d *StandardDecoder) isPTPPort(t core.TransportHeader) bool {
	return slices.Contains(d.ports, t.DstPort) || slices.Contains(d.ports, t.SrcPort)
}

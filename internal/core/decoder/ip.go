package decoder

import (
	"encoding/binary"
	"fmt"
	"net/netip"

	"firestige.xyz/ptpwire/internal/core"
)

const (
	ipv4MinHeaderLen = 20
	ipv6HeaderLen    = 40

	// IPv6 extension headers walked before the upper-layer header.
	ipv6HopByHop = 0
	ipv6Routing  = 43
	ipv6Fragment = 44
	ipv6DestOpts = 60

	maxIPv6Extensions = 8
)

var errFragment = fmt.Errorf("fragmented datagram: %w", core.ErrUnsupportedProto)

// decodeIP reads an IPv4 or IPv6 header and returns the upper-layer
// payload. Fragments are rejected: a PTP message always fits one datagram
// and reassembly is not performed.
func decodeIP(data []byte) (core.IPHeader, []byte, error) {
	if len(data) == 0 {
		return core.IPHeader{}, nil, core.ErrPacketTooShort
	}
	switch data[0] >> 4 {
	case 4:
		return decodeIPv4(data)
	case 6:
		return decodeIPv6(data)
	default:
		return core.IPHeader{}, nil, core.ErrUnsupportedProto
	}
}

func decodeIPv4(data []byte) (core.IPHeader, []byte, error) {
	if len(data) < ipv4MinHeaderLen {
		return core.IPHeader{}, nil, core.ErrPacketTooShort
	}
	hlen := int(data[0]&0x0F) * 4
	if hlen < ipv4MinHeaderLen || hlen > len(data) {
		return core.IPHeader{}, nil, core.ErrPacketTooShort
	}

	ip := core.IPHeader{
		Version:  4,
		TotalLen: binary.BigEndian.Uint16(data[2:4]),
		TTL:      data[8],
		Protocol: data[9],
		SrcIP:    netip.AddrFrom4([4]byte(data[12:16])),
		DstIP:    netip.AddrFrom4([4]byte(data[16:20])),
	}

	// MF set or a non-zero offset
	if binary.BigEndian.Uint16(data[6:8])&0x3FFF != 0 {
		return ip, nil, errFragment
	}

	return ip, trimTo(data[hlen:], int(ip.TotalLen)-hlen), nil
}

func decodeIPv6(data []byte) (core.IPHeader, []byte, error) {
	if len(data) < ipv6HeaderLen {
		return core.IPHeader{}, nil, core.ErrPacketTooShort
	}

	plen := binary.BigEndian.Uint16(data[4:6])
	ip := core.IPHeader{
		Version:  6,
		TotalLen: ipv6HeaderLen + plen,
		TTL:      data[7],
		SrcIP:    netip.AddrFrom16([16]byte(data[8:24])),
		DstIP:    netip.AddrFrom16([16]byte(data[24:40])),
	}

	next := data[6]
	rest := trimTo(data[ipv6HeaderLen:], int(plen))
	for range maxIPv6Extensions {
		switch next {
		case ipv6HopByHop, ipv6Routing, ipv6DestOpts:
			if len(rest) < 8 {
				return ip, nil, core.ErrPacketTooShort
			}
			n := (int(rest[1]) + 1) * 8
			if n > len(rest) {
				return ip, nil, core.ErrPacketTooShort
			}
			next, rest = rest[0], rest[n:]
		case ipv6Fragment:
			return ip, nil, errFragment
		default:
			ip.Protocol = next
			return ip, rest, nil
		}
	}
	return ip, nil, fmt.Errorf("more than %d extension headers: %w", maxIPv6Extensions, core.ErrUnsupportedProto)
}

// trimTo cuts link-layer padding when n is a plausible length for b.
func trimTo(b []byte, n int) []byte {
	if n >= 0 && n < len(b) {
		return b[:n]
	}
	return b
}

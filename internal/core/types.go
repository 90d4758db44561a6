// Package core defines the packet model shared by the capture pipeline.
package core

import "net/netip"

// EthernetHeader represents L2 Ethernet frame header.
type EthernetHeader struct {
	SrcMAC    [6]byte
	DstMAC    [6]byte
	EtherType uint16   // innermost type: 0x0800=IPv4, 0x86DD=IPv6, 0x88F7=PTP
	VLANs     []uint16 // 0~2 VLAN IDs (QinQ scenarios have 2)
}

// IPHeader represents L3 IP header (IPv4/IPv6). Zero for PTP over Ethernet.
type IPHeader struct {
	Version  uint8
	SrcIP    netip.Addr
	DstIP    netip.Addr
	Protocol uint8 // UDP=17
	TTL      uint8
	TotalLen uint16
}

// TransportHeader represents the UDP header.
type TransportHeader struct {
	SrcPort  uint16
	DstPort  uint16
	Protocol uint8 // Redundant storage for convenience
	Length   uint16
}

// Encapsulation says how a PTP message was carried.
type Encapsulation uint8

const (
	EncapUnknown  Encapsulation = iota
	EncapUDP                    // UDP over IPv4/IPv6, ports 319/320
	EncapEthernet               // raw Ethernet, EtherType 0x88F7
)

func (e Encapsulation) String() string {
	switch e {
	case EncapUDP:
		return "udp"
	case EncapEthernet:
		return "ethernet"
	default:
		return "unknown"
	}
}

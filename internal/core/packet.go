// Package core defines core data structures with zero external dependencies.
package core

import (
	"net/netip"
	"time"
)

// RawPacket is one frame read by a capturer. Data belongs to the packet;
// capturers must not reuse the buffer.
type RawPacket struct {
	Data       []byte    // Raw frame data
	Timestamp  time.Time // Capture timestamp
	CaptureLen uint32    // Actual captured length
	OrigLen    uint32    // Original frame length
	Index      uint64    // 1-based position in the capture
}

// DecodedPacket is the result of L2-L4 protocol stack decoding.
type DecodedPacket struct {
	Timestamp     time.Time
	Ethernet      EthernetHeader
	IP            IPHeader
	Transport     TransportHeader
	Encapsulation Encapsulation
	Payload       []byte // PTP message bytes, slice of the raw frame
	CaptureLen    uint32
	OrigLen       uint32
	Index         uint64
}

// OutputPacket is the final output sent to reporters.
type OutputPacket struct {
	// Envelope
	Source    string // capture file or "hex"
	Index     uint64
	Timestamp time.Time

	// Network context, zero for PTP over Ethernet
	SrcIP    netip.Addr
	DstIP    netip.Addr
	SrcPort  uint16
	DstPort  uint16
	Protocol uint8

	// Labels set by parsers
	Labels Labels

	// Payload is the parser result, e.g. a ptp.Message
	PayloadType string // e.g. "ptp", "raw"
	Payload     any    // Concrete type determined by PayloadType, Reporter does type assertion
	RawPayload  []byte // Raw payload (optional preservation)
}

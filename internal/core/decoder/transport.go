package decoder

import (
	"encoding/binary"

	"firestige.xyz/ptpwire/internal/core"
)

const (
	udpHeaderLen = 8
	protocolUDP  = 17
)

// decodeTransport reads the UDP header. Any other protocol is unsupported,
// PTP has no TCP mapping.
func decodeTransport(data []byte, protocol uint8) (core.TransportHeader, []byte, error) {
	th := core.TransportHeader{Protocol: protocol}
	if protocol != protocolUDP {
		return th, nil, core.ErrUnsupportedProto
	}
	if len(data) < udpHeaderLen {
		return th, nil, core.ErrPacketTooShort
	}

	th.SrcPort = binary.BigEndian.Uint16(data[0:2])
	th.DstPort = binary.BigEndian.Uint16(data[2:4])
	th.Length = binary.BigEndian.Uint16(data[4:6])
	// data[6:8] checksum, not verified

	return th, trimTo(data[udpHeaderLen:], int(th.Length)-udpHeaderLen), nil
}

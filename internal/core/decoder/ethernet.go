package decoder

import (
	"encoding/binary"

	"firestige.xyz/ptpwire/internal/core"
)

const (
	ethHeaderLen = 14
	tagLen       = 4
	maxTags      = 2

	etherTypeIPv4 = 0x0800
	etherTypeIPv6 = 0x86DD
	etherTypeVLAN = 0x8100 // 802.1Q
	etherTypeQinQ = 0x88A8 // 802.1ad service tag
	etherTypePTP  = 0x88F7
)

func isTag(etherType uint16) bool {
	return etherType == etherTypeVLAN || etherType == etherTypeQinQ
}

// decodeEthernet reads the MAC header and up to two VLAN tags. VLANs are
// listed outermost first; EtherType is the one behind the last tag.
func decodeEthernet(data []byte) (core.EthernetHeader, []byte, error) {
	var eth core.EthernetHeader
	if len(data) < ethHeaderLen {
		return eth, nil, core.ErrPacketTooShort
	}
	eth.DstMAC = [6]byte(data[0:6])
	eth.SrcMAC = [6]byte(data[6:12])
	eth.EtherType = binary.BigEndian.Uint16(data[12:14])

	rest := data[ethHeaderLen:]
	for isTag(eth.EtherType) {
		switch {
		case len(eth.VLANs) == maxTags:
			return eth, nil, core.ErrUnsupportedProto
		case len(rest) < tagLen:
			return eth, nil, core.ErrPacketTooShort
		}
		// TCI: PCP(3) DEI(1) VID(12)
		eth.VLANs = append(eth.VLANs, binary.BigEndian.Uint16(rest[0:2])&0x0FFF)
		eth.EtherType = binary.BigEndian.Uint16(rest[2:4])
		rest = rest[tagLen:]
	}
	return eth, rest, nil
}

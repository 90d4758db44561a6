package ptplayer

import (
	"net"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firestige.xyz/ptpwire/pkg/ptp"
)

var (
	srcMAC = net.HardwareAddr{0x00, 0x1b, 0x21, 0x8a, 0x3c, 0x10}
	// 01-1B-19-00-00-00 is the PTP primary multicast address
	dstMAC = net.HardwareAddr{0x01, 0x1b, 0x19, 0x00, 0x00, 0x00}
)

func announce() *ptp.Announce {
	h := ptp.NewHeader(ptp.MessageAnnounce)
	h.SequenceID = 99
	h.SourcePortIdentity = ptp.PortIdentity{
		ClockIdentity: ptp.ClockIdentity{0x00, 0x1b, 0x21, 0xff, 0xfe, 0x8a, 0x3c, 0x10},
		PortNumber:    1,
	}
	return &ptp.Announce{
		Header:               h,
		OriginTimestamp:      ptp.Timestamp{Seconds: 1700000000},
		CurrentUTCOffset:     37,
		GrandmasterPriority1: 128,
		GrandmasterPriority2: 128,
		TimeSource:           ptp.TimeSourceGNSS,
		TLVs: []ptp.TLV{
			&ptp.RawTLV{Type: ptp.TLVPathTrace, Value: []byte{0, 0x1b, 0x21, 0xff, 0xfe, 0x8a, 0x3c, 0x10}},
		},
	}
}

func serialize(t *testing.T, ls ...gopacket.SerializableLayer) []byte {
	t.Helper()
	buf := gopacket.NewSerializeBuffer()
	err := gopacket.SerializeLayers(buf, gopacket.SerializeOptions{FixLengths: true}, ls...)
	require.NoError(t, err)
	return buf.Bytes()
}

func udpFrame(t *testing.T, port layers.UDPPort, m ptp.Message) []byte {
	return serialize(t,
		&layers.Ethernet{SrcMAC: srcMAC, DstMAC: dstMAC, EthernetType: layers.EthernetTypeIPv4},
		&layers.IPv4{
			Version:  4,
			TTL:      1,
			Protocol: layers.IPProtocolUDP,
			SrcIP:    net.IPv4(192, 168, 1, 10),
			DstIP:    net.IPv4(224, 0, 1, 129),
		},
		&layers.UDP{SrcPort: port, DstPort: port},
		&PTP{Message: m},
	)
}

var ignoreLength = cmpopts.IgnoreFields(ptp.Header{}, "MessageLength")

func TestDecodeOverUDP(t *testing.T) {
	for _, port := range []layers.UDPPort{ptp.PortEvent, ptp.PortGeneral} {
		t.Run(port.String(), func(t *testing.T) {
			want := announce()
			data := udpFrame(t, port, want)

			pkt := gopacket.NewPacket(data, layers.LayerTypeEthernet, gopacket.Default)
			require.Nil(t, pkt.ErrorLayer())
			p, ok := FromPacket(pkt)
			require.True(t, ok)
			if diff := cmp.Diff(ptp.Message(want), p.Message, ignoreLength); diff != "" {
				t.Errorf("message mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, p, pkt.ApplicationLayer())
		})
	}
}

func TestDecodeOverEthernet(t *testing.T) {
	sync := &ptp.Sync{Header: ptp.NewHeader(ptp.MessageSync), OriginTimestamp: ptp.Timestamp{Seconds: 1, Nanoseconds: 2}}
	data := serialize(t,
		&layers.Ethernet{SrcMAC: srcMAC, DstMAC: dstMAC, EthernetType: ptp.EtherType},
		&PTP{Message: sync},
	)

	pkt := gopacket.NewPacket(data, layers.LayerTypeEthernet, gopacket.Default)
	p, ok := FromPacket(pkt)
	require.True(t, ok)
	got, ok := p.Message.(*ptp.Sync)
	require.True(t, ok)
	assert.Equal(t, sync.OriginTimestamp, got.OriginTimestamp)
	assert.Len(t, p.LayerContents(), ptp.HeaderLen+ptp.TimestampLen)
}

func TestDecodingLayerParser(t *testing.T) {
	data := udpFrame(t, ptp.PortGeneral, announce())

	var (
		eth     layers.Ethernet
		ip4     layers.IPv4
		udp     layers.UDP
		ptpl    PTP
		decoded []gopacket.LayerType
	)
	parser := gopacket.NewDecodingLayerParser(layers.LayerTypeEthernet, &eth, &ip4, &udp, &ptpl)
	require.NoError(t, parser.DecodeLayers(data, &decoded))
	assert.Equal(t, []gopacket.LayerType{
		layers.LayerTypeEthernet, layers.LayerTypeIPv4, layers.LayerTypeUDP, LayerTypePTP,
	}, decoded)
	assert.Equal(t, uint16(99), ptpl.Message.MessageHeader().SequenceID)
}

func TestTruncatedPayload(t *testing.T) {
	b, err := ptp.Encode(announce())
	require.NoError(t, err)

	pkt := gopacket.NewPacket(b[:len(b)-4], LayerTypePTP, gopacket.Default)
	require.NotNil(t, pkt.ErrorLayer())
	assert.ErrorIs(t, pkt.ErrorLayer().Error(), ptp.ErrTruncated)
	assert.True(t, pkt.Metadata().Truncated)
}

func TestSerializeWithoutMessage(t *testing.T) {
	buf := gopacket.NewSerializeBuffer()
	err := (&PTP{}).SerializeTo(buf, gopacket.SerializeOptions{})
	assert.Error(t, err)
}

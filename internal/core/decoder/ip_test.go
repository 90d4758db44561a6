package decoder

import (
	"errors"
	"net/netip"
	"testing"

	"firestige.xyz/ptpwire/internal/core"
)

// ipv4Header returns a 20 byte UDP header for 192.168.1.10 -> 224.0.1.129.
func ipv4Header(totalLen uint16, fragWord uint16) []byte {
	return []byte{
		0x45, 0x00, byte(totalLen >> 8), byte(totalLen),
		0x12, 0x34, byte(fragWord >> 8), byte(fragWord),
		0x01, 0x11, 0x00, 0x00,
		192, 168, 1, 10,
		224, 0, 1, 129,
	}
}

// ipv6Header returns a 40 byte header for fe80::1 -> ff02::181.
func ipv6Header(payloadLen uint16, next byte) []byte {
	b := make([]byte, ipv6HeaderLen)
	b[0] = 0x60
	b[4], b[5] = byte(payloadLen>>8), byte(payloadLen)
	b[6], b[7] = next, 1
	src := netip.MustParseAddr("fe80::1").As16()
	dst := netip.MustParseAddr("ff02::181").As16()
	copy(b[8:24], src[:])
	copy(b[24:40], dst[:])
	return b
}

func TestDecodeIPv4(t *testing.T) {
	data := append(ipv4Header(24, 0), 1, 2, 3, 4, 0, 0) // two bytes of link padding

	ip, payload, err := decodeIP(data)
	if err != nil {
		t.Fatalf("decodeIP failed: %v", err)
	}
	want := core.IPHeader{
		Version:  4,
		SrcIP:    netip.MustParseAddr("192.168.1.10"),
		DstIP:    netip.MustParseAddr("224.0.1.129"),
		Protocol: protocolUDP,
		TTL:      1,
		TotalLen: 24,
	}
	if ip != want {
		t.Errorf("header = %+v, want %+v", ip, want)
	}
	if len(payload) != 4 {
		t.Errorf("payload = %d bytes, want 4", len(payload))
	}
}

func TestDecodeIPv4Options(t *testing.T) {
	data := ipv4Header(28, 0)
	data[0] = 0x46 // IHL 6
	data = append(data, 0x01, 0x01, 0x01, 0x00, 0xAA, 0xBB, 0xCC, 0xDD)

	_, payload, err := decodeIP(data)
	if err != nil {
		t.Fatalf("decodeIP failed: %v", err)
	}
	if len(payload) != 4 || payload[0] != 0xAA {
		t.Errorf("payload = %x, want aabbccdd", payload)
	}
}

func TestDecodeIPv6(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		payload int
		err     error
	}{
		{
			name:    "plain",
			data:    append(ipv6Header(4, protocolUDP), 1, 2, 3, 4),
			payload: 4,
		},
		{
			name: "hop by hop",
			data: append(ipv6Header(12, ipv6HopByHop),
				protocolUDP, 0, 0, 0, 0, 0, 0, 0,
				1, 2, 3, 4),
			payload: 4,
		},
		{
			name: "destination options too long",
			data: append(ipv6Header(8, ipv6DestOpts),
				protocolUDP, 1, 0, 0, 0, 0, 0, 0),
			err: core.ErrPacketTooShort,
		},
		{
			name: "fragment",
			data: append(ipv6Header(8, ipv6Fragment),
				protocolUDP, 0, 0, 1, 0, 0, 0, 1),
			err: core.ErrUnsupportedProto,
		},
		{
			name: "short",
			data: ipv6Header(0, protocolUDP)[:39],
			err:  core.ErrPacketTooShort,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ip, payload, err := decodeIP(tt.data)
			if tt.err != nil {
				if !errors.Is(err, tt.err) {
					t.Fatalf("Expected %v, got %v", tt.err, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("decodeIP failed: %v", err)
			}
			if ip.Version != 6 || ip.Protocol != protocolUDP || ip.TTL != 1 {
				t.Errorf("header = %+v", ip)
			}
			if ip.SrcIP != netip.MustParseAddr("fe80::1") || ip.DstIP != netip.MustParseAddr("ff02::181") {
				t.Errorf("addresses = %v -> %v", ip.SrcIP, ip.DstIP)
			}
			if len(payload) != tt.payload {
				t.Errorf("payload = %d bytes, want %d", len(payload), tt.payload)
			}
		})
	}
}

func TestDecodeIPRejects(t *testing.T) {
	bad := ipv4Header(20, 0)
	bad[0] = 0x44 // IHL below minimum

	tests := []struct {
		name string
		data []byte
		err  error
	}{
		{"empty", nil, core.ErrPacketTooShort},
		{"ipv4 runt", ipv4Header(20, 0)[:12], core.ErrPacketTooShort},
		{"bad ihl", bad, core.ErrPacketTooShort},
		{"version 7", append([]byte{0x70}, make([]byte, 19)...), core.ErrUnsupportedProto},
		{"more fragments", ipv4Header(20, 0x2000), core.ErrUnsupportedProto},
		{"last fragment", ipv4Header(20, 0x00B9), core.ErrUnsupportedProto},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := decodeIP(tt.data); !errors.Is(err, tt.err) {
				t.Errorf("Expected %v, got %v", tt.err, err)
			}
		})
	}
}

func TestDecodeIPv4DontFragment(t *testing.T) {
	if _, _, err := decodeIP(ipv4Header(20, 0x4000)); err != nil {
		t.Errorf("DF alone is not a fragment: %v", err)
	}
}

func BenchmarkDecodeIPv4(b *testing.B) {
	data := append(ipv4Header(72, 0), make([]byte, 52)...)
	for b.Loop() {
		if _, _, err := decodeIP(data); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDecodeIPv6(b *testing.B) {
	data := append(ipv6Header(52, protocolUDP), make([]byte, 52)...)
	for b.Loop() {
		if _, _, err := decodeIP(data); err != nil {
			b.Fatal(err)
		}
	}
}

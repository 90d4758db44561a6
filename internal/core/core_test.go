package core

import (
	"errors"
	"fmt"
	"net/netip"
	"testing"
	"time"
)

// Test zero values of core structs
func TestStructZeroValues(t *testing.T) {
	t.Run("EthernetHeader", func(t *testing.T) {
		var eth EthernetHeader
		if eth.EtherType != 0 {
			t.Errorf("expected EtherType=0, got %d", eth.EtherType)
		}
		if eth.VLANs != nil {
			t.Errorf("expected VLANs=nil, got %v", eth.VLANs)
		}
	})

	t.Run("IPHeader", func(t *testing.T) {
		var ip IPHeader
		if ip.SrcIP.IsValid() || ip.DstIP.IsValid() {
			t.Errorf("expected invalid addresses, got %v -> %v", ip.SrcIP, ip.DstIP)
		}
	})

	t.Run("DecodedPacket", func(t *testing.T) {
		var decoded DecodedPacket
		if decoded.Encapsulation != EncapUnknown {
			t.Errorf("expected EncapUnknown, got %s", decoded.Encapsulation)
		}
		if decoded.Payload != nil {
			t.Errorf("expected Payload=nil, got %v", decoded.Payload)
		}
	})

	t.Run("OutputPacket", func(t *testing.T) {
		var out OutputPacket
		if out.Labels != nil {
			t.Errorf("expected Labels=nil, got %v", out.Labels)
		}
	})
}

func TestEncapsulationString(t *testing.T) {
	tests := map[Encapsulation]string{
		EncapUnknown:      "unknown",
		EncapUDP:          "udp",
		EncapEthernet:     "ethernet",
		Encapsulation(42): "unknown",
	}
	for e, want := range tests {
		if got := e.String(); got != want {
			t.Errorf("Encapsulation(%d).String() = %q, want %q", e, got, want)
		}
	}
}

// Test Labels operations
func TestLabels(t *testing.T) {
	t.Run("LabelConstants", func(t *testing.T) {
		// Verify label naming convention {protocol}.{field}
		expected := map[string]string{
			LabelPTPMessageType: "ptp.message_type",
			LabelPTPSequenceID:  "ptp.sequence_id",
			LabelPTPSourcePort:  "ptp.source_port",
			LabelPTPGrandmaster: "ptp.grandmaster",
		}
		for constant, expectedName := range expected {
			if constant != expectedName {
				t.Errorf("label constant mismatch: expected %s, got %s", expectedName, constant)
			}
		}
	})

	t.Run("NilLabels", func(t *testing.T) {
		var labels Labels
		if val := labels[LabelPTPMessageType]; val != "" {
			t.Errorf("expected empty string from nil map, got %s", val)
		}
	})
}

// Test sentinel errors
func TestSentinelErrors(t *testing.T) {
	t.Run("ErrorMessages", func(t *testing.T) {
		tests := []struct {
			err     error
			message string
		}{
			{ErrPipelineStopped, "ptpwire: pipeline stopped"},
			{ErrPacketTooShort, "ptpwire: packet too short"},
			{ErrNotPTP, "ptpwire: not a ptp packet"},
			{ErrPluginNotFound, "ptpwire: plugin not found"},
			{ErrConfigInvalid, "ptpwire: invalid configuration"},
		}
		for _, tt := range tests {
			if tt.err.Error() != tt.message {
				t.Errorf("expected error message %q, got %q", tt.message, tt.err.Error())
			}
		}
	})

	t.Run("ErrorWrapping", func(t *testing.T) {
		wrapped := fmt.Errorf("decode frame 12: %w", ErrUnsupportedProto)
		if !errors.Is(wrapped, ErrUnsupportedProto) {
			t.Error("errors.Is failed for wrapped error")
		}
	})
}

func TestPacketStructures(t *testing.T) {
	srcIP := netip.MustParseAddr("192.168.1.10")
	dstIP := netip.MustParseAddr("224.0.1.129")

	decoded := DecodedPacket{
		Timestamp:     time.Now(),
		Ethernet:      EthernetHeader{EtherType: 0x0800},
		IP:            IPHeader{Version: 4, SrcIP: srcIP, DstIP: dstIP, Protocol: 17},
		Transport:     TransportHeader{SrcPort: 319, DstPort: 319, Protocol: 17},
		Encapsulation: EncapUDP,
		Payload:       make([]byte, 44),
		Index:         3,
	}
	if decoded.IP.DstIP != dstIP {
		t.Errorf("DstIP mismatch")
	}
	if decoded.Transport.DstPort != 319 {
		t.Errorf("expected DstPort=319, got %d", decoded.Transport.DstPort)
	}

	out := OutputPacket{
		Source:      "capture.pcap",
		Index:       decoded.Index,
		SrcIP:       decoded.IP.SrcIP,
		Labels:      Labels{LabelPTPMessageType: "SYNC"},
		PayloadType: "ptp",
	}
	if out.Labels[LabelPTPMessageType] != "SYNC" {
		t.Errorf("label mismatch")
	}
}

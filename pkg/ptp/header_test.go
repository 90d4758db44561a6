package ptp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderLayout(t *testing.T) {
	h := Header{
		TransportSpecific:  0xA,
		MessageType:        MessageAnnounce,
		Version:            2,
		MessageLength:      64,
		DomainNumber:       127,
		Flags:              FlagUnicast | FlagUTCOffsetValid,
		Correction:         -2,
		SourcePortIdentity: testPort,
		SequenceID:         0xBEEF,
		LogMessageInterval: -3,
	}
	b, err := EncodeHeader(h)
	require.NoError(t, err)
	require.Len(t, b, HeaderLen)

	assert.Equal(t, []byte{
		0xAB,       // transportSpecific 0xA, messageType 0xB
		0x02,       // versionPTP
		0x00, 0x40, // messageLength
		0x7F,       // domainNumber
		0x00,       // reserved
		0x04, 0x04, // flagField
		0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFE, // correctionField
		0x00, 0x00, 0x00, 0x00, // reserved
		0x00, 0x1b, 0x21, 0xff, 0xfe, 0x8a, 0x3c, 0x10, 0x00, 0x01, // sourcePortIdentity
		0xBE, 0xEF, // sequenceId
		0x05, // controlField, derived
		0xFD, // logMessageInterval -3
	}, b)

	got, n, err := DecodeHeader(b)
	require.NoError(t, err)
	assert.Equal(t, HeaderLen, n)
	h.ControlField = ControlOther
	assert.Equal(t, h, got)
}

func TestDecodeHeaderIgnoresReservedNibble(t *testing.T) {
	b, err := EncodeHeader(NewHeader(MessageSync))
	require.NoError(t, err)
	b[1] = 0x12

	h, _, err := DecodeHeader(b)
	require.NoError(t, err)
	assert.Equal(t, uint8(2), h.Version)
}

func TestDecodeHeaderTruncated(t *testing.T) {
	_, _, err := DecodeHeader(make([]byte, HeaderLen-1))
	assert.ErrorIs(t, err, ErrTruncated)
	_, _, err = DecodeHeader(nil)
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestDecodeHeaderAcceptsAnyType(t *testing.T) {
	for typ := MessageType(0); typ <= 0xF; typ++ {
		b := make([]byte, HeaderLen)
		b[0] = uint8(typ)
		h, _, err := DecodeHeader(b)
		require.NoError(t, err)
		assert.Equal(t, typ, h.MessageType)
	}
}

func TestNewHeader(t *testing.T) {
	tests := []struct {
		typ      MessageType
		control  ControlField
		interval LogInterval
	}{
		{MessageSync, ControlSync, 0},
		{MessageDelayReq, ControlDelayReq, DefaultLogMessageInterval},
		{MessagePdelayReq, ControlOther, DefaultLogMessageInterval},
		{MessagePdelayResp, ControlOther, DefaultLogMessageInterval},
		{MessageFollowUp, ControlFollowUp, 0},
		{MessageDelayResp, ControlDelayResp, 0},
		{MessagePdelayRespFollowUp, ControlOther, DefaultLogMessageInterval},
		{MessageAnnounce, ControlOther, 0},
		{MessageSignaling, ControlOther, DefaultLogMessageInterval},
		{MessageManagement, ControlManagement, DefaultLogMessageInterval},
	}
	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			h := NewHeader(tt.typ)
			assert.Equal(t, tt.typ, h.MessageType)
			assert.Equal(t, Version, h.Version)
			assert.Equal(t, tt.control, h.ControlField)
			assert.Equal(t, tt.interval, h.LogMessageInterval)
		})
	}
}

func TestEncodeHeaderOutOfRange(t *testing.T) {
	for _, h := range []Header{
		{TransportSpecific: 0x10},
		{MessageType: 0x10},
		{Version: 0x10},
	} {
		_, err := EncodeHeader(h)
		assert.ErrorIs(t, err, ErrFieldOutOfRange)
	}
}

func TestProbeMessageType(t *testing.T) {
	typ, err := ProbeMessageType([]byte{0x1D})
	require.NoError(t, err)
	assert.Equal(t, MessageManagement, typ)

	_, err = ProbeMessageType(nil)
	assert.ErrorIs(t, err, ErrTruncated)
}

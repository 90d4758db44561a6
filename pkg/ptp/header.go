package ptp

import (
	"fmt"
)

// Header is the 34-byte common header carried by every PTP message.
type Header struct {
	TransportSpecific  uint8        `json:"transport_specific" yaml:"transport_specific"`
	MessageType        MessageType  `json:"message_type" yaml:"message_type"`
	Version            uint8        `json:"version" yaml:"version"`
	MessageLength      uint16       `json:"message_length" yaml:"message_length"`
	DomainNumber       uint8        `json:"domain_number" yaml:"domain_number"`
	Flags              Flags        `json:"flags" yaml:"flags"`
	Correction         Correction   `json:"correction" yaml:"correction"`
	SourcePortIdentity PortIdentity `json:"source_port_identity" yaml:"source_port_identity"`
	SequenceID         uint16       `json:"sequence_id" yaml:"sequence_id"`
	ControlField       ControlField `json:"control_field" yaml:"control_field"`
	LogMessageInterval LogInterval  `json:"log_message_interval" yaml:"log_message_interval"`
}

// NewHeader returns a version 2 header for t with the legacy control field
// filled in. Message types without a periodic schedule get the 0x7F interval.
func NewHeader(t MessageType) Header {
	h := Header{
		MessageType:  t,
		Version:      Version,
		ControlField: ControlFieldFor(t),
	}
	switch t {
	case MessageDelayReq, MessagePdelayReq, MessagePdelayResp, MessagePdelayRespFollowUp,
		MessageSignaling, MessageManagement:
		h.LogMessageInterval = DefaultLogMessageInterval
	}
	return h
}

// ProbeMessageType reads the message type nibble without decoding the rest.
func ProbeMessageType(b []byte) (MessageType, error) {
	if len(b) < 1 {
		return 0, ErrTruncated
	}
	return MessageType(b[0] & 0x0F), nil
}

// DecodeHeader parses the first HeaderLen bytes of b and returns the number
// of bytes consumed. The control field is returned as read.
func DecodeHeader(b []byte) (Header, int, error) {
	if len(b) < HeaderLen {
		return Header{}, 0, fmt.Errorf("%w: header needs %d bytes, have %d", ErrTruncated, HeaderLen, len(b))
	}
	r := &reader{b: b}
	var h Header

	tsmt := r.u8()
	h.TransportSpecific = tsmt >> 4
	h.MessageType = MessageType(tsmt & 0x0F)
	h.Version = r.u8() & 0x0F
	h.MessageLength = r.u16()
	h.DomainNumber = r.u8()
	r.skip(1)
	h.Flags = Flags(r.u16())
	h.Correction = Correction(r.i64())
	r.skip(4)
	h.SourcePortIdentity = r.portIdentity()
	h.SequenceID = r.u16()
	h.ControlField = ControlField(r.u8())
	h.LogMessageInterval = LogInterval(r.i8())

	if r.err != nil {
		return Header{}, 0, r.err
	}
	return h, r.off, nil
}

// EncodeHeader serializes h into a fresh HeaderLen byte slice.
func EncodeHeader(h Header) ([]byte, error) {
	return AppendHeader(make([]byte, 0, HeaderLen), h)
}

// AppendHeader appends the encoding of h to dst. The control field is
// derived from the message type; reserved bytes are written as zero.
func AppendHeader(dst []byte, h Header) ([]byte, error) {
	if err := h.validate(); err != nil {
		return dst, err
	}
	start := len(dst)
	dst = grow(dst, HeaderLen)
	w := &writer{b: dst[start:]}
	w.header(h)
	if w.err != nil {
		return dst[:start], w.err
	}
	return dst, nil
}

func (h Header) validate() error {
	if h.TransportSpecific > 0x0F {
		return fmt.Errorf("%w: transportSpecific %d", ErrFieldOutOfRange, h.TransportSpecific)
	}
	if h.MessageType > 0x0F {
		return fmt.Errorf("%w: messageType %d", ErrFieldOutOfRange, h.MessageType)
	}
	if h.Version > 0x0F {
		return fmt.Errorf("%w: versionPTP %d", ErrFieldOutOfRange, h.Version)
	}
	return nil
}

func (w *writer) header(h Header) {
	w.u8(h.TransportSpecific<<4 | uint8(h.MessageType))
	w.u8(h.Version)
	w.u16(h.MessageLength)
	w.u8(h.DomainNumber)
	w.zero(1)
	w.u16(uint16(h.Flags))
	w.i64(int64(h.Correction))
	w.zero(4)
	w.portIdentity(h.SourcePortIdentity)
	w.u16(h.SequenceID)
	w.u8(uint8(ControlFieldFor(h.MessageType)))
	w.i8(int8(h.LogMessageInterval))
}

// grow extends dst by n bytes, reallocating at most once.
func grow(dst []byte, n int) []byte {
	if cap(dst)-len(dst) < n {
		nb := make([]byte, len(dst), len(dst)+n)
		copy(nb, dst)
		dst = nb
	}
	return dst[:len(dst)+n]
}

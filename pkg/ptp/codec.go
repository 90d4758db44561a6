package ptp

import (
	"fmt"
)

/*
Decode parses one PTP message from b. messageLength bounds the message:
bytes in b past it are ignored, and a b shorter than it fails ErrTruncated.

An unrecognized message type returns *UnknownMessageTypeError, which still
carries the decoded header. No partial message is returned on error.
*/
func Decode(b []byte) (Message, error) {
	h, off, err := DecodeHeader(b)
	if err != nil {
		return nil, err
	}
	if !h.MessageType.Known() {
		return nil, &UnknownMessageTypeError{Header: h}
	}
	if len(b) < int(h.MessageLength) {
		return nil, fmt.Errorf("%w: %s messageLength %d, have %d bytes",
			ErrTruncated, h.MessageType, h.MessageLength, len(b))
	}
	if h.MessageLength < HeaderLen {
		return nil, fmt.Errorf("%w: messageLength %d shorter than header", ErrInvalidLength, h.MessageLength)
	}

	r := &reader{b: b[:h.MessageLength], off: off}
	switch h.MessageType {
	case MessageSync:
		return nonNil(decodeSync(h, r))
	case MessageDelayReq:
		return nonNil(decodeDelayReq(h, r))
	case MessagePdelayReq:
		return nonNil(decodePdelayReq(h, r))
	case MessagePdelayResp:
		return nonNil(decodePdelayResp(h, r))
	case MessageFollowUp:
		return nonNil(decodeFollowUp(h, r))
	case MessageDelayResp:
		return nonNil(decodeDelayResp(h, r))
	case MessagePdelayRespFollowUp:
		return nonNil(decodePdelayRespFollowUp(h, r))
	case MessageAnnounce:
		return nonNil(decodeAnnounce(h, r))
	case MessageSignaling:
		return nonNil(decodeSignaling(h, r))
	case MessageManagement:
		return nonNil(decodeManagement(h, r))
	}
	return nil, &UnknownMessageTypeError{Header: h}
}

// nonNil keeps a typed nil pointer from turning into a non-nil Message.
func nonNil[M Message](m M, err error) (Message, error) {
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Encode serializes m into a new slice.
func Encode(m Message) ([]byte, error) {
	return Append(nil, m)
}

/*
Append appends the encoding of m to dst. The message type comes from the
concrete type of m, messageLength and the control field are computed, and
reserved bytes are written as zero. m is not modified. On error dst is
returned unchanged.
*/
func Append(dst []byte, m Message) ([]byte, error) {
	if m == nil {
		return dst, fmt.Errorf("%w: nil message", ErrUnknownMessageType)
	}
	body, err := m.bodyLen()
	if err != nil {
		return dst, err
	}
	total := HeaderLen + body
	if total > 0xFFFF {
		return dst, fmt.Errorf("%w: messageLength %d", ErrFieldOutOfRange, total)
	}

	h := m.MessageHeader()
	h.MessageType = m.Type()
	h.MessageLength = uint16(total)
	if err := h.validate(); err != nil {
		return dst, err
	}

	start := len(dst)
	dst = grow(dst, total)
	w := &writer{b: dst[start:]}
	w.header(h)
	m.encodeBody(w)
	if w.err != nil {
		return dst[:start], w.err
	}
	return dst, nil
}

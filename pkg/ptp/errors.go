package ptp

import (
	"errors"
	"fmt"

	"firestige.xyz/ptpwire/pkg/ptp/wire"
)

// Decode and encode errors. Match with errors.Is.
var (
	ErrTruncated          = wire.ErrTruncated
	ErrFieldOutOfRange    = wire.ErrFieldOutOfRange
	ErrInvalidLength      = errors.New("ptp: invalid length")
	ErrUnknownMessageType = errors.New("ptp: unknown message type")
	ErrTrailingGarbage    = errors.New("ptp: trailing garbage")
)

// UnknownMessageTypeError is returned by Decode when the header parsed but
// its message type has no body codec. The header is kept so callers can
// still count or log the packet.
type UnknownMessageTypeError struct {
	Header Header
}

func (e *UnknownMessageTypeError) Error() string {
	return fmt.Sprintf("ptp: unknown message type %s (seq %d)", e.Header.MessageType, e.Header.SequenceID)
}

func (e *UnknownMessageTypeError) Unwrap() error { return ErrUnknownMessageType }

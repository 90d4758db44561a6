package ptp

import (
	"fmt"

	"firestige.xyz/ptpwire/pkg/ptp/wire"
)

const maxSeconds = wire.MaxUint48

// Fixed body sizes, excluding the header and any TLV suffix.
const (
	syncBodyLen               = TimestampLen
	pdelayReqBodyLen          = TimestampLen + PortIdentityLen
	pdelayRespBodyLen         = TimestampLen + PortIdentityLen
	followUpBodyLen           = TimestampLen + FollowUpSuffixLen
	delayRespBodyLen          = TimestampLen + PortIdentityLen
	pdelayRespFollowUpBodyLen = TimestampLen + PortIdentityLen
	announceBodyLen           = 30
	signalingBodyLen          = PortIdentityLen
	managementBodyLen         = PortIdentityLen + 4
)

/*
Message is a decoded PTP message. The implementations are closed:

	*Sync *DelayReq *PdelayReq *PdelayResp *FollowUp
	*DelayResp *PdelayRespFollowUp *Announce *Signaling *Management

Use a type switch to get at the body fields.
*/
type Message interface {
	MessageHeader() Header
	// Type is the message type written on encode, whatever Header.MessageType holds.
	Type() MessageType

	bodyLen() (int, error)
	encodeBody(w *writer)
}

// Sync carries the origin time of a sync event.
type Sync struct {
	Header
	OriginTimestamp Timestamp `json:"origin_timestamp" yaml:"origin_timestamp"`
}

// DelayReq shares the Sync layout.
type DelayReq struct {
	Header
	OriginTimestamp Timestamp `json:"origin_timestamp" yaml:"origin_timestamp"`
}

// PdelayReq is followed on the wire by a reserved 10-byte pad.
type PdelayReq struct {
	Header
	OriginTimestamp Timestamp `json:"origin_timestamp" yaml:"origin_timestamp"`
}

type PdelayResp struct {
	Header
	RequestReceiptTimestamp Timestamp    `json:"request_receipt_timestamp" yaml:"request_receipt_timestamp"`
	RequestingPortIdentity  PortIdentity `json:"requesting_port_identity" yaml:"requesting_port_identity"`
}

// FollowUp carries the precise origin time of the preceding two-step Sync
// and a fixed extension area.
type FollowUp struct {
	Header
	PreciseOriginTimestamp Timestamp               `json:"precise_origin_timestamp" yaml:"precise_origin_timestamp"`
	Extension              [FollowUpSuffixLen]byte `json:"extension" yaml:"extension"`
}

type DelayResp struct {
	Header
	ReceiveTimestamp       Timestamp    `json:"receive_timestamp" yaml:"receive_timestamp"`
	RequestingPortIdentity PortIdentity `json:"requesting_port_identity" yaml:"requesting_port_identity"`
	TLVs                   []TLV        `json:"tlvs,omitempty" yaml:"tlvs,omitempty"`
}

type PdelayRespFollowUp struct {
	Header
	ResponseOriginTimestamp Timestamp    `json:"response_origin_timestamp" yaml:"response_origin_timestamp"`
	RequestingPortIdentity  PortIdentity `json:"requesting_port_identity" yaml:"requesting_port_identity"`
	TLVs                    []TLV        `json:"tlvs,omitempty" yaml:"tlvs,omitempty"`
}

// Announce advertises the grandmaster a port is synchronized to.
type Announce struct {
	Header
	OriginTimestamp         Timestamp     `json:"origin_timestamp" yaml:"origin_timestamp"`
	CurrentUTCOffset        int16         `json:"current_utc_offset" yaml:"current_utc_offset"`
	GrandmasterPriority1    uint8         `json:"grandmaster_priority1" yaml:"grandmaster_priority1"`
	GrandmasterClockQuality ClockQuality  `json:"grandmaster_clock_quality" yaml:"grandmaster_clock_quality"`
	GrandmasterPriority2    uint8         `json:"grandmaster_priority2" yaml:"grandmaster_priority2"`
	GrandmasterIdentity     ClockIdentity `json:"grandmaster_identity" yaml:"grandmaster_identity"`
	StepsRemoved            uint16        `json:"steps_removed" yaml:"steps_removed"`
	TimeSource              TimeSource    `json:"time_source" yaml:"time_source"`
	TLVs                    []TLV         `json:"tlvs,omitempty" yaml:"tlvs,omitempty"`
}

type Signaling struct {
	Header
	TargetPortIdentity PortIdentity `json:"target_port_identity" yaml:"target_port_identity"`
	TLVs               []TLV        `json:"tlvs,omitempty" yaml:"tlvs,omitempty"`
}

// Management holds the routing part of a management message. The
// management TLVs themselves are left undecoded.
type Management struct {
	Header
	TargetPortIdentity   PortIdentity `json:"target_port_identity" yaml:"target_port_identity"`
	StartingBoundaryHops uint8        `json:"starting_boundary_hops" yaml:"starting_boundary_hops"`
	BoundaryHops         uint8        `json:"boundary_hops" yaml:"boundary_hops"`
	Action               Action       `json:"action" yaml:"action"`
	TLVs                 []TLV        `json:"tlvs,omitempty" yaml:"tlvs,omitempty"`
}

func (m *Sync) MessageHeader() Header               { return m.Header }
func (m *DelayReq) MessageHeader() Header           { return m.Header }
func (m *PdelayReq) MessageHeader() Header          { return m.Header }
func (m *PdelayResp) MessageHeader() Header         { return m.Header }
func (m *FollowUp) MessageHeader() Header           { return m.Header }
func (m *DelayResp) MessageHeader() Header          { return m.Header }
func (m *PdelayRespFollowUp) MessageHeader() Header { return m.Header }
func (m *Announce) MessageHeader() Header           { return m.Header }
func (m *Signaling) MessageHeader() Header          { return m.Header }
func (m *Management) MessageHeader() Header         { return m.Header }

func (*Sync) Type() MessageType               { return MessageSync }
func (*DelayReq) Type() MessageType           { return MessageDelayReq }
func (*PdelayReq) Type() MessageType          { return MessagePdelayReq }
func (*PdelayResp) Type() MessageType         { return MessagePdelayResp }
func (*FollowUp) Type() MessageType           { return MessageFollowUp }
func (*DelayResp) Type() MessageType          { return MessageDelayResp }
func (*PdelayRespFollowUp) Type() MessageType { return MessagePdelayRespFollowUp }
func (*Announce) Type() MessageType           { return MessageAnnounce }
func (*Signaling) Type() MessageType          { return MessageSignaling }
func (*Management) Type() MessageType         { return MessageManagement }

// Suffix returns the TLV records of m, or nil for types without a suffix.
func Suffix(m Message) []TLV {
	switch m := m.(type) {
	case *DelayResp:
		return m.TLVs
	case *PdelayRespFollowUp:
		return m.TLVs
	case *Announce:
		return m.TLVs
	case *Signaling:
		return m.TLVs
	case *Management:
		return m.TLVs
	}
	return nil
}

// body decoders. r is bounded by messageLength and positioned after the header.

func decodeSync(h Header, r *reader) (*Sync, error) {
	if err := r.fixed(h, syncBodyLen); err != nil {
		return nil, err
	}
	m := &Sync{Header: h, OriginTimestamp: r.timestamp()}
	return m, r.err
}

func decodeDelayReq(h Header, r *reader) (*DelayReq, error) {
	if err := r.fixed(h, syncBodyLen); err != nil {
		return nil, err
	}
	m := &DelayReq{Header: h, OriginTimestamp: r.timestamp()}
	return m, r.err
}

func decodePdelayReq(h Header, r *reader) (*PdelayReq, error) {
	if err := r.fixed(h, pdelayReqBodyLen); err != nil {
		return nil, err
	}
	m := &PdelayReq{Header: h, OriginTimestamp: r.timestamp()}
	r.skip(PortIdentityLen)
	return m, r.err
}

func decodePdelayResp(h Header, r *reader) (*PdelayResp, error) {
	if err := r.fixed(h, pdelayRespBodyLen); err != nil {
		return nil, err
	}
	m := &PdelayResp{
		Header:                  h,
		RequestReceiptTimestamp: r.timestamp(),
		RequestingPortIdentity:  r.portIdentity(),
	}
	return m, r.err
}

func decodeFollowUp(h Header, r *reader) (*FollowUp, error) {
	if err := r.fixed(h, followUpBodyLen); err != nil {
		return nil, err
	}
	m := &FollowUp{Header: h, PreciseOriginTimestamp: r.timestamp()}
	r.octets(m.Extension[:])
	return m, r.err
}

func decodeDelayResp(h Header, r *reader) (*DelayResp, error) {
	if err := r.fixed(h, delayRespBodyLen); err != nil {
		return nil, err
	}
	m := &DelayResp{
		Header:                 h,
		ReceiveTimestamp:       r.timestamp(),
		RequestingPortIdentity: r.portIdentity(),
	}
	var err error
	m.TLVs, err = r.suffix()
	return m, err
}

func decodePdelayRespFollowUp(h Header, r *reader) (*PdelayRespFollowUp, error) {
	if err := r.fixed(h, pdelayRespFollowUpBodyLen); err != nil {
		return nil, err
	}
	m := &PdelayRespFollowUp{
		Header:                  h,
		ResponseOriginTimestamp: r.timestamp(),
		RequestingPortIdentity:  r.portIdentity(),
	}
	var err error
	m.TLVs, err = r.suffix()
	return m, err
}

func decodeAnnounce(h Header, r *reader) (*Announce, error) {
	if err := r.fixed(h, announceBodyLen); err != nil {
		return nil, err
	}
	m := &Announce{Header: h}
	m.OriginTimestamp = r.timestamp()
	m.CurrentUTCOffset = r.i16()
	r.skip(1)
	m.GrandmasterPriority1 = r.u8()
	m.GrandmasterClockQuality = ClockQuality{
		ClockClass:              r.u8(),
		ClockAccuracy:           r.u8(),
		OffsetScaledLogVariance: r.u16(),
	}
	m.GrandmasterPriority2 = r.u8()
	m.GrandmasterIdentity = r.clockIdentity()
	m.StepsRemoved = r.u16()
	m.TimeSource = TimeSource(r.u8())
	var err error
	m.TLVs, err = r.suffix()
	return m, err
}

func decodeSignaling(h Header, r *reader) (*Signaling, error) {
	if err := r.fixed(h, signalingBodyLen); err != nil {
		return nil, err
	}
	m := &Signaling{Header: h, TargetPortIdentity: r.portIdentity()}
	var err error
	m.TLVs, err = r.suffix()
	return m, err
}

func decodeManagement(h Header, r *reader) (*Management, error) {
	if err := r.fixed(h, managementBodyLen); err != nil {
		return nil, err
	}
	m := &Management{Header: h, TargetPortIdentity: r.portIdentity()}
	m.StartingBoundaryHops = r.u8()
	m.BoundaryHops = r.u8()
	m.Action = Action(r.u8() & 0x0F)
	r.skip(1)
	var err error
	m.TLVs, err = r.suffix()
	return m, err
}

// fixed checks that messageLength leaves room for n body bytes.
func (r *reader) fixed(h Header, n int) error {
	if r.err != nil {
		return r.err
	}
	if int(h.MessageLength) < r.off+n {
		return fmt.Errorf("%w: %s messageLength %d shorter than fixed body of %d bytes",
			ErrInvalidLength, h.MessageType, h.MessageLength, HeaderLen+n)
	}
	return nil
}

// suffix decodes every remaining byte as TLVs.
func (r *reader) suffix() ([]TLV, error) {
	if r.err != nil {
		return nil, r.err
	}
	tlvs, err := DecodeTLVs(r.b[r.off:])
	if err != nil {
		return nil, err
	}
	r.off = len(r.b)
	return tlvs, nil
}

// body encoders

func (m *Sync) bodyLen() (int, error)               { return syncBodyLen, nil }
func (m *DelayReq) bodyLen() (int, error)           { return syncBodyLen, nil }
func (m *PdelayReq) bodyLen() (int, error)          { return pdelayReqBodyLen, nil }
func (m *PdelayResp) bodyLen() (int, error)         { return pdelayRespBodyLen, nil }
func (m *FollowUp) bodyLen() (int, error)           { return followUpBodyLen, nil }
func (m *DelayResp) bodyLen() (int, error)          { return withSuffix(delayRespBodyLen, m.TLVs) }
func (m *PdelayRespFollowUp) bodyLen() (int, error) { return withSuffix(pdelayRespFollowUpBodyLen, m.TLVs) }
func (m *Announce) bodyLen() (int, error)           { return withSuffix(announceBodyLen, m.TLVs) }
func (m *Signaling) bodyLen() (int, error)          { return withSuffix(signalingBodyLen, m.TLVs) }

func (m *Management) bodyLen() (int, error) {
	if m.Action > 0x0F {
		return 0, fmt.Errorf("%w: management action %d", ErrFieldOutOfRange, m.Action)
	}
	return withSuffix(managementBodyLen, m.TLVs)
}

func withSuffix(fixed int, tlvs []TLV) (int, error) {
	n, err := tlvsLen(tlvs)
	if err != nil {
		return 0, err
	}
	return fixed + n, nil
}

func (m *Sync) encodeBody(w *writer)     { w.timestamp(m.OriginTimestamp) }
func (m *DelayReq) encodeBody(w *writer) { w.timestamp(m.OriginTimestamp) }

func (m *PdelayReq) encodeBody(w *writer) {
	w.timestamp(m.OriginTimestamp)
	w.zero(PortIdentityLen)
}

func (m *PdelayResp) encodeBody(w *writer) {
	w.timestamp(m.RequestReceiptTimestamp)
	w.portIdentity(m.RequestingPortIdentity)
}

func (m *FollowUp) encodeBody(w *writer) {
	w.timestamp(m.PreciseOriginTimestamp)
	w.octets(m.Extension[:])
}

func (m *DelayResp) encodeBody(w *writer) {
	w.timestamp(m.ReceiveTimestamp)
	w.portIdentity(m.RequestingPortIdentity)
	w.tlvs(m.TLVs)
}

func (m *PdelayRespFollowUp) encodeBody(w *writer) {
	w.timestamp(m.ResponseOriginTimestamp)
	w.portIdentity(m.RequestingPortIdentity)
	w.tlvs(m.TLVs)
}

func (m *Announce) encodeBody(w *writer) {
	w.timestamp(m.OriginTimestamp)
	w.i16(m.CurrentUTCOffset)
	w.zero(1)
	w.u8(m.GrandmasterPriority1)
	w.u8(m.GrandmasterClockQuality.ClockClass)
	w.u8(m.GrandmasterClockQuality.ClockAccuracy)
	w.u16(m.GrandmasterClockQuality.OffsetScaledLogVariance)
	w.u8(m.GrandmasterPriority2)
	w.octets(m.GrandmasterIdentity[:])
	w.u16(m.StepsRemoved)
	w.u8(uint8(m.TimeSource))
	w.tlvs(m.TLVs)
}

func (m *Signaling) encodeBody(w *writer) {
	w.portIdentity(m.TargetPortIdentity)
	w.tlvs(m.TLVs)
}

func (m *Management) encodeBody(w *writer) {
	w.portIdentity(m.TargetPortIdentity)
	w.u8(m.StartingBoundaryHops)
	w.u8(m.BoundaryHops)
	w.u8(uint8(m.Action) & 0x0F)
	w.zero(1)
	w.tlvs(m.TLVs)
}

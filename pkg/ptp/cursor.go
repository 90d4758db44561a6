package ptp

import (
	"firestige.xyz/ptpwire/pkg/ptp/wire"
)

// reader walks a message buffer. The first failing read sticks in err and
// turns the remaining reads into no-ops, so decoders check err once.
type reader struct {
	b   []byte
	off int
	err error
}

func (r *reader) u8() uint8 {
	if r.err != nil {
		return 0
	}
	var v uint8
	v, r.off, r.err = wire.Uint8(r.b, r.off)
	return v
}

func (r *reader) u16() uint16 {
	if r.err != nil {
		return 0
	}
	var v uint16
	v, r.off, r.err = wire.Uint16(r.b, r.off)
	return v
}

func (r *reader) u32() uint32 {
	if r.err != nil {
		return 0
	}
	var v uint32
	v, r.off, r.err = wire.Uint32(r.b, r.off)
	return v
}

func (r *reader) i8() int8 {
	if r.err != nil {
		return 0
	}
	var v int8
	v, r.off, r.err = wire.Int8(r.b, r.off)
	return v
}

func (r *reader) i16() int16 {
	if r.err != nil {
		return 0
	}
	var v int16
	v, r.off, r.err = wire.Int16(r.b, r.off)
	return v
}

func (r *reader) i64() int64 {
	if r.err != nil {
		return 0
	}
	var v int64
	v, r.off, r.err = wire.Int64(r.b, r.off)
	return v
}

func (r *reader) octets(dst []byte) {
	if r.err != nil {
		return
	}
	r.off, r.err = wire.Octets(r.b, r.off, dst)
}

func (r *reader) skip(n int) {
	if r.err != nil {
		return
	}
	if len(r.b)-r.off < n {
		r.err = ErrTruncated
		return
	}
	r.off += n
}

func (r *reader) timestamp() Timestamp {
	if r.err != nil {
		return Timestamp{}
	}
	var ts Timestamp
	ts.Seconds, r.off, r.err = wire.Uint48(r.b, r.off)
	ts.Nanoseconds = r.u32()
	return ts
}

func (r *reader) clockIdentity() ClockIdentity {
	var c ClockIdentity
	r.octets(c[:])
	return c
}

func (r *reader) portIdentity() PortIdentity {
	return PortIdentity{
		ClockIdentity: r.clockIdentity(),
		PortNumber:    r.u16(),
	}
}

// writer fills a buffer that was sized up front.
type writer struct {
	b   []byte
	off int
	err error
}

func (w *writer) u8(v uint8) {
	if w.err != nil {
		return
	}
	w.off, w.err = wire.PutUint8(w.b, w.off, v)
}

func (w *writer) u16(v uint16) {
	if w.err != nil {
		return
	}
	w.off, w.err = wire.PutUint16(w.b, w.off, v)
}

func (w *writer) u32(v uint32) {
	if w.err != nil {
		return
	}
	w.off, w.err = wire.PutUint32(w.b, w.off, v)
}

func (w *writer) i8(v int8) {
	if w.err != nil {
		return
	}
	w.off, w.err = wire.PutInt8(w.b, w.off, v)
}

func (w *writer) i16(v int16) {
	if w.err != nil {
		return
	}
	w.off, w.err = wire.PutInt16(w.b, w.off, v)
}

func (w *writer) i64(v int64) {
	if w.err != nil {
		return
	}
	w.off, w.err = wire.PutInt64(w.b, w.off, v)
}

func (w *writer) octets(src []byte) {
	if w.err != nil {
		return
	}
	w.off, w.err = wire.PutOctets(w.b, w.off, src)
}

// zero writes n reserved zero bytes.
func (w *writer) zero(n int) {
	if w.err != nil {
		return
	}
	if len(w.b)-w.off < n {
		w.err = ErrTruncated
		return
	}
	clear(w.b[w.off : w.off+n])
	w.off += n
}

func (w *writer) timestamp(ts Timestamp) {
	if w.err != nil {
		return
	}
	w.off, w.err = wire.PutUint48(w.b, w.off, ts.Seconds)
	w.u32(ts.Nanoseconds)
}

func (w *writer) portIdentity(p PortIdentity) {
	w.octets(p.ClockIdentity[:])
	w.u16(p.PortNumber)
}

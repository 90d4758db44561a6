// Package wire implements the scalar field codec used by PTP messages.
//
// Every reader takes a byte slice and an offset and returns the decoded
// value together with the offset advanced past it. Every writer stores a
// value at an offset and returns the advanced offset. All multi-byte values
// are big-endian. No function retains the slice it is given.
package wire

import (
	"encoding/binary"
	"errors"
)

// MaxUint48 is the largest value representable by a 48-bit field.
const MaxUint48 = 1<<48 - 1

var (
	ErrTruncated       = errors.New("ptp: truncated data")
	ErrFieldOutOfRange = errors.New("ptp: field out of range")
)

// need reports whether b holds n bytes starting at off.
func need(b []byte, off, n int) bool {
	return off >= 0 && n >= 0 && len(b)-off >= n
}

// Uint8 reads one byte.
func Uint8(b []byte, off int) (uint8, int, error) {
	if !need(b, off, 1) {
		return 0, off, ErrTruncated
	}
	return b[off], off + 1, nil
}

// Uint16 reads a big-endian uint16.
func Uint16(b []byte, off int) (uint16, int, error) {
	if !need(b, off, 2) {
		return 0, off, ErrTruncated
	}
	return binary.BigEndian.Uint16(b[off:]), off + 2, nil
}

// Uint32 reads a big-endian uint32.
func Uint32(b []byte, off int) (uint32, int, error) {
	if !need(b, off, 4) {
		return 0, off, ErrTruncated
	}
	return binary.BigEndian.Uint32(b[off:]), off + 4, nil
}

// Uint64 reads a big-endian uint64.
func Uint64(b []byte, off int) (uint64, int, error) {
	if !need(b, off, 8) {
		return 0, off, ErrTruncated
	}
	return binary.BigEndian.Uint64(b[off:]), off + 8, nil
}

// Int8 reads a two's-complement int8.
func Int8(b []byte, off int) (int8, int, error) {
	v, next, err := Uint8(b, off)
	return int8(v), next, err
}

// Int16 reads a big-endian two's-complement int16.
func Int16(b []byte, off int) (int16, int, error) {
	v, next, err := Uint16(b, off)
	return int16(v), next, err
}

// Int32 reads a big-endian two's-complement int32.
func Int32(b []byte, off int) (int32, int, error) {
	v, next, err := Uint32(b, off)
	return int32(v), next, err
}

// Int64 reads a big-endian two's-complement int64.
func Int64(b []byte, off int) (int64, int, error) {
	v, next, err := Uint64(b, off)
	return int64(v), next, err
}

// Uint48 reads the timestamp seconds field: a 16-bit most significant
// part followed by a 32-bit least significant part.
func Uint48(b []byte, off int) (uint64, int, error) {
	if !need(b, off, 6) {
		return 0, off, ErrTruncated
	}
	msb := binary.BigEndian.Uint16(b[off:])
	lsb := binary.BigEndian.Uint32(b[off+2:])
	return uint64(msb)<<32 | uint64(lsb), off + 6, nil
}

// Octets copies len(dst) bytes starting at off into dst.
func Octets(b []byte, off int, dst []byte) (int, error) {
	if !need(b, off, len(dst)) {
		return off, ErrTruncated
	}
	copy(dst, b[off:])
	return off + len(dst), nil
}

// PutUint8 writes one byte.
func PutUint8(b []byte, off int, v uint8) (int, error) {
	if !need(b, off, 1) {
		return off, ErrTruncated
	}
	b[off] = v
	return off + 1, nil
}

// PutUint16 writes a big-endian uint16.
func PutUint16(b []byte, off int, v uint16) (int, error) {
	if !need(b, off, 2) {
		return off, ErrTruncated
	}
	binary.BigEndian.PutUint16(b[off:], v)
	return off + 2, nil
}

// PutUint32 writes a big-endian uint32.
func PutUint32(b []byte, off int, v uint32) (int, error) {
	if !need(b, off, 4) {
		return off, ErrTruncated
	}
	binary.BigEndian.PutUint32(b[off:], v)
	return off + 4, nil
}

// PutUint64 writes a big-endian uint64.
func PutUint64(b []byte, off int, v uint64) (int, error) {
	if !need(b, off, 8) {
		return off, ErrTruncated
	}
	binary.BigEndian.PutUint64(b[off:], v)
	return off + 8, nil
}

func PutInt8(b []byte, off int, v int8) (int, error)   { return PutUint8(b, off, uint8(v)) }
func PutInt16(b []byte, off int, v int16) (int, error) { return PutUint16(b, off, uint16(v)) }
func PutInt32(b []byte, off int, v int32) (int, error) { return PutUint32(b, off, uint32(v)) }
func PutInt64(b []byte, off int, v int64) (int, error) { return PutUint64(b, off, uint64(v)) }

// PutUint48 splits v into a 16-bit msb and a 32-bit lsb. Values above
// MaxUint48 fail with ErrFieldOutOfRange.
func PutUint48(b []byte, off int, v uint64) (int, error) {
	if v > MaxUint48 {
		return off, ErrFieldOutOfRange
	}
	if !need(b, off, 6) {
		return off, ErrTruncated
	}
	binary.BigEndian.PutUint16(b[off:], uint16(v>>32))
	binary.BigEndian.PutUint32(b[off+2:], uint32(v))
	return off + 6, nil
}

// PutOctets copies src into b at off.
func PutOctets(b []byte, off int, src []byte) (int, error) {
	if !need(b, off, len(src)) {
		return off, ErrTruncated
	}
	copy(b[off:], src)
	return off + len(src), nil
}

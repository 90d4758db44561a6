package ptp

import (
	"fmt"
	"iter"
)

// TLV is one record of a message suffix. The set of implementations is
// closed: *OrganizationExtensionTLV and *RawTLV.
type TLV interface {
	TLVType() TLVType
	// ValueLen is the number of value bytes written after the mini header.
	ValueLen() int

	putValue(w *writer)
	validate() error
}

// OrganizationExtensionTLV is the structured form of TLV type 0x0003.
type OrganizationExtensionTLV struct {
	OrganizationID [3]byte   `json:"organization_id" yaml:"organization_id"`
	Subtype        [3]byte   `json:"subtype" yaml:"subtype"`
	Data           Timestamp `json:"data" yaml:"data"`
}

func (*OrganizationExtensionTLV) TLVType() TLVType { return TLVOrganizationExtension }

func (*OrganizationExtensionTLV) ValueLen() int { return OrganizationExtensionLen }

func (t *OrganizationExtensionTLV) putValue(w *writer) {
	w.octets(t.OrganizationID[:])
	w.octets(t.Subtype[:])
	w.timestamp(t.Data)
}

func (t *OrganizationExtensionTLV) validate() error {
	if t.Data.Seconds > maxSeconds {
		return fmt.Errorf("%w: organization extension seconds %d", ErrFieldOutOfRange, t.Data.Seconds)
	}
	return nil
}

// RawTLV carries any record type this package does not structure. Value is
// owned by the record.
type RawTLV struct {
	Type  TLVType `json:"type" yaml:"type"`
	Value []byte  `json:"value" yaml:"value"`
}

func (t *RawTLV) TLVType() TLVType { return t.Type }

func (t *RawTLV) ValueLen() int { return len(t.Value) }

func (t *RawTLV) putValue(w *writer) { w.octets(t.Value) }

func (t *RawTLV) validate() error {
	switch {
	case len(t.Value) > 0xFFFF:
		return fmt.Errorf("%w: %s value of %d bytes", ErrFieldOutOfRange, t.Type, len(t.Value))
	case len(t.Value)%2 != 0:
		return fmt.Errorf("%w: %s value of %d bytes is odd", ErrInvalidLength, t.Type, len(t.Value))
	case t.Type == TLVOrganizationExtension && len(t.Value) != OrganizationExtensionLen:
		return fmt.Errorf("%w: organization extension value of %d bytes", ErrInvalidLength, len(t.Value))
	}
	return nil
}

/*
TLVs iterates over the records of a suffix. Iteration stops after the first
error, which is yielded with a nil TLV. A run of 1 to 3 bytes after the last
record yields ErrTrailingGarbage. Each pass re-reads b from the start.
*/
func TLVs(b []byte) iter.Seq2[TLV, error] {
	return func(yield func(TLV, error) bool) {
		for off := 0; off < len(b); {
			tlv, next, err := decodeTLV(b, off)
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(tlv, nil) {
				return
			}
			off = next
		}
	}
}

// DecodeTLVs collects every record of b. An empty suffix returns nil.
func DecodeTLVs(b []byte) ([]TLV, error) {
	var tlvs []TLV
	for tlv, err := range TLVs(b) {
		if err != nil {
			return nil, err
		}
		tlvs = append(tlvs, tlv)
	}
	return tlvs, nil
}

func decodeTLV(b []byte, off int) (TLV, int, error) {
	if rest := len(b) - off; rest < TLVHeaderLen {
		return nil, off, fmt.Errorf("%w: %d bytes after last TLV at offset %d", ErrTrailingGarbage, rest, off)
	}
	r := &reader{b: b, off: off}
	typ := TLVType(r.u16())
	length := int(r.u16())
	if len(b)-r.off < length {
		return nil, off, fmt.Errorf("%w: %s at offset %d wants %d value bytes, have %d",
			ErrTruncated, typ, off, length, len(b)-r.off)
	}
	if length%2 != 0 {
		return nil, off, fmt.Errorf("%w: %s at offset %d has odd length %d", ErrInvalidLength, typ, off, length)
	}

	if typ == TLVOrganizationExtension {
		if length != OrganizationExtensionLen {
			return nil, off, fmt.Errorf("%w: organization extension at offset %d has length %d",
				ErrInvalidLength, off, length)
		}
		t := &OrganizationExtensionTLV{}
		r.octets(t.OrganizationID[:])
		r.octets(t.Subtype[:])
		t.Data = r.timestamp()
		if r.err != nil {
			return nil, off, r.err
		}
		return t, r.off, nil
	}

	t := &RawTLV{Type: typ, Value: make([]byte, length)}
	r.octets(t.Value)
	if r.err != nil {
		return nil, off, r.err
	}
	return t, r.off, nil
}

// tlvsLen validates tlvs and returns their encoded size.
func tlvsLen(tlvs []TLV) (int, error) {
	n := 0
	for i, t := range tlvs {
		if t == nil {
			return 0, fmt.Errorf("%w: TLV %d is nil", ErrInvalidLength, i)
		}
		if err := t.validate(); err != nil {
			return 0, err
		}
		n += TLVHeaderLen + t.ValueLen()
	}
	return n, nil
}

func (w *writer) tlvs(tlvs []TLV) {
	for _, t := range tlvs {
		w.u16(uint16(t.TLVType()))
		w.u16(uint16(t.ValueLen()))
		t.putValue(w)
	}
}

// AppendTLVs appends the records to dst in the given order.
func AppendTLVs(dst []byte, tlvs []TLV) ([]byte, error) {
	n, err := tlvsLen(tlvs)
	if err != nil {
		return dst, err
	}
	start := len(dst)
	dst = grow(dst, n)
	w := &writer{b: dst[start:]}
	w.tlvs(tlvs)
	if w.err != nil {
		return dst[:start], w.err
	}
	return dst, nil
}

// EncodeTLVs is AppendTLVs into a new slice.
func EncodeTLVs(tlvs []TLV) ([]byte, error) {
	return AppendTLVs(nil, tlvs)
}

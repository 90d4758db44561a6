package ptp

import (
	"fmt"
	"math"
	"time"
)

const twoPow16 = 65536

// ClockIdentity is an opaque 8-byte identifier of a PTP instance.
type ClockIdentity [8]byte

// String formats the identity the way ptp4l's pmc client does.
func (c ClockIdentity) String() string {
	return fmt.Sprintf("%02x%02x%02x.%02x%02x.%02x%02x%02x",
		c[0], c[1], c[2], c[3], c[4], c[5], c[6], c[7])
}

// PortIdentity names a PTP port within a domain.
type PortIdentity struct {
	ClockIdentity ClockIdentity `json:"clock_identity" yaml:"clock_identity"`
	PortNumber    uint16        `json:"port_number" yaml:"port_number"`
}

func (p PortIdentity) String() string {
	return fmt.Sprintf("%s-%d", p.ClockIdentity, p.PortNumber)
}

// ClockQuality describes a clock for best master clock comparisons.
type ClockQuality struct {
	ClockClass              uint8  `json:"clock_class" yaml:"clock_class"`
	ClockAccuracy           uint8  `json:"clock_accuracy" yaml:"clock_accuracy"`
	OffsetScaledLogVariance uint16 `json:"offset_scaled_log_variance" yaml:"offset_scaled_log_variance"`
}

/*
Timestamp is a positive time with respect to the epoch. Seconds holds a
48-bit value. Nanoseconds is expected to stay below 1e9 but the codec
carries whatever is on the wire.
*/
type Timestamp struct {
	Seconds     uint64 `json:"seconds" yaml:"seconds"`
	Nanoseconds uint32 `json:"nanoseconds" yaml:"nanoseconds"`
}

// NewTimestamp converts t into a Timestamp. The zero time maps to the empty timestamp.
func NewTimestamp(t time.Time) Timestamp {
	if t.IsZero() {
		return Timestamp{}
	}
	return Timestamp{
		Seconds:     uint64(t.Unix()),
		Nanoseconds: uint32(t.Nanosecond()),
	}
}

// Empty reports whether both fields are zero.
func (t Timestamp) Empty() bool {
	return t.Seconds == 0 && t.Nanoseconds == 0
}

// Time converts the timestamp into a time.Time.
func (t Timestamp) Time() time.Time {
	if t.Empty() {
		return time.Time{}
	}
	return time.Unix(int64(t.Seconds), int64(t.Nanoseconds))
}

func (t Timestamp) String() string {
	if t.Empty() {
		return "Timestamp(empty)"
	}
	return fmt.Sprintf("Timestamp(%d.%09d)", t.Seconds, t.Nanoseconds)
}

/*
Correction is the correctionField: nanoseconds multiplied by 2**16.
A value with every bit but the sign bit set means the correction is too big
to be represented.
*/
type Correction int64

// NewCorrection builds a Correction from nanoseconds.
func NewCorrection(ns float64) Correction {
	v := ns * twoPow16
	if v >= math.MaxInt64 {
		return Correction(math.MaxInt64)
	}
	return Correction(v)
}

// TooBig reports whether the correction saturated.
func (c Correction) TooBig() bool {
	return c == math.MaxInt64
}

// Nanoseconds decodes the fixed-point value.
func (c Correction) Nanoseconds() float64 {
	if c.TooBig() {
		return math.Inf(1)
	}
	return float64(c) / twoPow16
}

// Duration drops sub-nanosecond precision. A saturated correction maps to 0.
func (c Correction) Duration() time.Duration {
	if c.TooBig() {
		return 0
	}
	return time.Duration(c.Nanoseconds())
}

func (c Correction) String() string {
	if c.TooBig() {
		return "Correction(too big)"
	}
	return fmt.Sprintf("Correction(%.3fns)", c.Nanoseconds())
}

// LogInterval is the base-2 logarithm of a message period in seconds.
type LogInterval int8

// Duration returns the period. DefaultLogMessageInterval has no period and returns 0.
func (i LogInterval) Duration() time.Duration {
	if i == DefaultLogMessageInterval {
		return 0
	}
	return time.Duration(math.Pow(2, float64(i)) * float64(time.Second))
}

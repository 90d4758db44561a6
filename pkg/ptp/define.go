package ptp

import (
	"fmt"
	"strings"
)

// Wire sizes.
const (
	HeaderLen       = 34
	TimestampLen    = 10
	PortIdentityLen = 10
	TLVHeaderLen    = 4

	// FollowUpSuffixLen is the fixed extension area carried by Follow_Up.
	FollowUpSuffixLen = 32

	// OrganizationExtensionLen is the value size of an organization extension TLV.
	OrganizationExtensionLen = 16
)

// Version is the PTP version written by NewHeader.
const Version uint8 = 2

// DefaultLogMessageInterval is used by message types without a periodic schedule.
const DefaultLogMessageInterval LogInterval = 0x7F

// Well-known transport identifiers.
const (
	PortEvent   = 319
	PortGeneral = 320

	EtherType = 0x88F7
)

// MessageType is the low nibble of the first header byte.
type MessageType uint8

const (
	MessageSync               MessageType = 0x0
	MessageDelayReq           MessageType = 0x1
	MessagePdelayReq          MessageType = 0x2
	MessagePdelayResp         MessageType = 0x3
	MessageFollowUp           MessageType = 0x8
	MessageDelayResp          MessageType = 0x9
	MessagePdelayRespFollowUp MessageType = 0xA
	MessageAnnounce           MessageType = 0xB
	MessageSignaling          MessageType = 0xC
	MessageManagement         MessageType = 0xD
)

var messageTypeNames = map[MessageType]string{
	MessageSync:               "SYNC",
	MessageDelayReq:           "DELAY_REQ",
	MessagePdelayReq:          "PDELAY_REQ",
	MessagePdelayResp:         "PDELAY_RESP",
	MessageFollowUp:           "FOLLOW_UP",
	MessageDelayResp:          "DELAY_RESP",
	MessagePdelayRespFollowUp: "PDELAY_RESP_FOLLOW_UP",
	MessageAnnounce:           "ANNOUNCE",
	MessageSignaling:          "SIGNALING",
	MessageManagement:         "MANAGEMENT",
}

func (t MessageType) String() string {
	if name, ok := messageTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(0x%X)", uint8(t))
}

// Known reports whether t has a body codec.
func (t MessageType) Known() bool {
	_, ok := messageTypeNames[t]
	return ok
}

// Event reports whether t is an event message, sent to PortEvent and timestamped on the wire.
func (t MessageType) Event() bool {
	return t <= MessagePdelayResp
}

// ControlField is the legacy control byte of the header.
type ControlField uint8

const (
	ControlSync       ControlField = 0x0
	ControlDelayReq   ControlField = 0x1
	ControlFollowUp   ControlField = 0x2
	ControlDelayResp  ControlField = 0x3
	ControlManagement ControlField = 0x4
	ControlOther      ControlField = 0x5
)

// ControlFieldFor returns the legacy control value written for t.
func ControlFieldFor(t MessageType) ControlField {
	switch t {
	case MessageSync:
		return ControlSync
	case MessageDelayReq:
		return ControlDelayReq
	case MessageFollowUp:
		return ControlFollowUp
	case MessageDelayResp:
		return ControlDelayResp
	case MessageManagement:
		return ControlManagement
	default:
		return ControlOther
	}
}

// Flags is the 16-bit flagField of the header.
type Flags uint16

const (
	FlagAlternateMaster Flags = 0x0001
	FlagTwoStep         Flags = 0x0002
	FlagUnicast         Flags = 0x0004
	FlagProfile1        Flags = 0x0020
	FlagProfile2        Flags = 0x0040
	FlagLeap61          Flags = 0x0100
	FlagLeap59          Flags = 0x0200
	FlagUTCOffsetValid  Flags = 0x0400
	FlagPTPTimescale    Flags = 0x0800
	FlagTimeTraceable   Flags = 0x1000
	// FlagFrequencyTraceable shares its bit with FlagTimeTraceable.
	FlagFrequencyTraceable Flags = 0x1000
)

var flagNames = []struct {
	flag Flags
	name string
}{
	{FlagAlternateMaster, "ALTERNATE_MASTER"},
	{FlagTwoStep, "TWO_STEP"},
	{FlagUnicast, "UNICAST"},
	{FlagProfile1, "PROFILE1"},
	{FlagProfile2, "PROFILE2"},
	{FlagLeap61, "LEAP61"},
	{FlagLeap59, "LEAP59"},
	{FlagUTCOffsetValid, "UTC_OFFSET_VALID"},
	{FlagPTPTimescale, "PTP_TIMESCALE"},
	{FlagTimeTraceable, "TIME_TRACEABLE"},
}

// Has reports whether every bit of f2 is set in f.
func (f Flags) Has(f2 Flags) bool {
	return f&f2 == f2
}

func (f Flags) String() string {
	var names []string
	for _, fn := range flagNames {
		if f.Has(fn.flag) {
			names = append(names, fn.name)
		}
	}
	if len(names) == 0 {
		return "NONE"
	}
	return strings.Join(names, "|")
}

// TLVType identifies a TLV record.
type TLVType uint16

const (
	TLVManagement                           TLVType = 0x0001
	TLVManagementErrorStatus                TLVType = 0x0002
	TLVOrganizationExtension                TLVType = 0x0003
	TLVRequestUnicastTransmission           TLVType = 0x0004
	TLVGrantUnicastTransmission             TLVType = 0x0005
	TLVCancelUnicastTransmission            TLVType = 0x0006
	TLVAcknowledgeCancelUnicastTransmission TLVType = 0x0007
	TLVPathTrace                            TLVType = 0x0008
	TLVAlternateTimeOffsetIndicator         TLVType = 0x0009
)

var tlvTypeNames = map[TLVType]string{
	TLVManagement:                           "MANAGEMENT",
	TLVManagementErrorStatus:                "MANAGEMENT_ERROR_STATUS",
	TLVOrganizationExtension:                "ORGANIZATION_EXTENSION",
	TLVRequestUnicastTransmission:           "REQUEST_UNICAST_TRANSMISSION",
	TLVGrantUnicastTransmission:             "GRANT_UNICAST_TRANSMISSION",
	TLVCancelUnicastTransmission:            "CANCEL_UNICAST_TRANSMISSION",
	TLVAcknowledgeCancelUnicastTransmission: "ACKNOWLEDGE_CANCEL_UNICAST_TRANSMISSION",
	TLVPathTrace:                            "PATH_TRACE",
	TLVAlternateTimeOffsetIndicator:         "ALTERNATE_TIME_OFFSET_INDICATOR",
}

func (t TLVType) String() string {
	if name, ok := tlvTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TLV(0x%04x)", uint16(t))
}

// Action is the management actionField.
type Action uint8

const (
	ActionGet Action = iota
	ActionSet
	ActionResponse
	ActionCommand
	ActionAcknowledge
)

var actionNames = map[Action]string{
	ActionGet:         "GET",
	ActionSet:         "SET",
	ActionResponse:    "RESPONSE",
	ActionCommand:     "COMMAND",
	ActionAcknowledge: "ACKNOWLEDGE",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("ACTION(%d)", uint8(a))
}

// TimeSource is the Announce timeSource enumeration.
type TimeSource uint8

const (
	TimeSourceAtomicClock        TimeSource = 0x10
	TimeSourceGNSS               TimeSource = 0x20
	TimeSourceTerrestrialRadio   TimeSource = 0x30
	TimeSourceSerialTimeCode     TimeSource = 0x39
	TimeSourcePTP                TimeSource = 0x40
	TimeSourceNTP                TimeSource = 0x50
	TimeSourceHandSet            TimeSource = 0x60
	TimeSourceOther              TimeSource = 0x90
	TimeSourceInternalOscillator TimeSource = 0xA0
)

var timeSourceNames = map[TimeSource]string{
	TimeSourceAtomicClock:        "ATOMIC_CLOCK",
	TimeSourceGNSS:               "GNSS",
	TimeSourceTerrestrialRadio:   "TERRESTRIAL_RADIO",
	TimeSourceSerialTimeCode:     "SERIAL_TIME_CODE",
	TimeSourcePTP:                "PTP",
	TimeSourceNTP:                "NTP",
	TimeSourceHandSet:            "HAND_SET",
	TimeSourceOther:              "OTHER",
	TimeSourceInternalOscillator: "INTERNAL_OSCILLATOR",
}

func (t TimeSource) String() string {
	if name, ok := timeSourceNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TIME_SOURCE(0x%02x)", uint8(t))
}

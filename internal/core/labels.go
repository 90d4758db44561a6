// Package core defines core types.
package core

// Labels represents key-value metadata attached by parsers.
type Labels map[string]string

// Label naming constants following {protocol}.{field} convention.
const (
	LabelPTPMessageType = "ptp.message_type" // e.g. "SYNC", "ANNOUNCE"
	LabelPTPDomain      = "ptp.domain"       // domainNumber (decimal)
	LabelPTPSequenceID  = "ptp.sequence_id"  // sequenceId (decimal)
	LabelPTPSourcePort  = "ptp.source_port"  // clock identity and port number, ptp4l format
	LabelPTPVersion     = "ptp.version"
	LabelPTPFlags       = "ptp.flags"      // "TWO_STEP|PTP_TIMESCALE", "NONE"
	LabelPTPCorrection  = "ptp.correction" // nanoseconds, 3 decimals
	LabelPTPTLVCount    = "ptp.tlv_count"
	LabelPTPTransport   = "ptp.transport" // "udp" or "ethernet"

	// Announce only
	LabelPTPGrandmaster = "ptp.grandmaster"        // grandmaster clock identity
	LabelPTPClockClass  = "ptp.clock_class"        // grandmaster clock class (decimal)
	LabelPTPTimeSource  = "ptp.time_source"        // e.g. "GNSS"
	LabelPTPSteps       = "ptp.steps_removed"      // stepsRemoved (decimal)
	LabelPTPUTCOffset   = "ptp.current_utc_offset" // seconds

	// Follow_Up and Pdelay_Resp_Follow_Up only: capture index of the
	// two-step message they complete
	LabelPTPMatchedIndex = "ptp.matched_index"
)

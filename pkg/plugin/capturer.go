package plugin

import (
	"context"

	"firestige.xyz/ptpwire/internal/core"
)

// Capturer produces raw frames until its source is exhausted or ctx is
// cancelled. It returns nil at the end of a finite source.
type Capturer interface {
	Plugin
	Capture(ctx context.Context, output chan<- core.RawPacket) error
	Stats() CaptureStats
}

// CaptureStats represents capture statistics.
type CaptureStats struct {
	PacketsReceived uint64
	PacketsFiltered uint64 // rejected by the prefilter
	PacketsDropped  uint64 // unreadable records
}

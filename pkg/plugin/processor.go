package plugin

import "firestige.xyz/ptpwire/internal/core"

// Processor inspects output packets before they are reported.
type Processor interface {
	Plugin
	Process(pkt *core.OutputPacket) (keep bool)
}

// Package plugins registers all built-in plugins.
package plugins

import (
	"firestige.xyz/ptpwire/pkg/plugin"
	"firestige.xyz/ptpwire/plugins/capture/pcapfile"
	"firestige.xyz/ptpwire/plugins/parser/ptp"
	"firestige.xyz/ptpwire/plugins/processor/msgfilter"
	"firestige.xyz/ptpwire/plugins/reporter/console"
	"firestige.xyz/ptpwire/plugins/reporter/metrics"
)

func init() {
	// Register capture plugins
	plugin.RegisterCapturer("pcapfile", pcapfile.NewCapturer)

	// Register parser plugins
	plugin.RegisterParser("ptp", ptp.NewParser)

	// Register processor plugins
	plugin.RegisterProcessor("msgfilter", msgfilter.NewFilter)

	// Register reporter plugins
	plugin.RegisterReporter("console", console.NewConsoleReporter)
	plugin.RegisterReporter("metrics", metrics.NewReporter)
}

// Package main is the entry point for ptpdump, the PTP capture decoder.
package main

import (
	"fmt"
	"os"

	"firestige.xyz/ptpwire/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

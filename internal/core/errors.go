// Package core defines sentinel errors.
package core

import "errors"

var (
	// Pipeline errors
	ErrPipelineStopped = errors.New("ptpwire: pipeline stopped")

	// Packet decoding errors
	ErrPacketTooShort   = errors.New("ptpwire: packet too short")
	ErrUnsupportedProto = errors.New("ptpwire: unsupported protocol")
	ErrNotPTP           = errors.New("ptpwire: not a ptp packet")

	// Plugin errors
	ErrPluginNotFound   = errors.New("ptpwire: plugin not found")
	ErrPluginInitFailed = errors.New("ptpwire: plugin init failed")

	// Configuration errors
	ErrConfigInvalid = errors.New("ptpwire: invalid configuration")
)

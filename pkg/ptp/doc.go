/*
Package ptp encodes and decodes IEEE 1588 version 2 messages.

A message is a 34-byte header, a body whose layout depends on the message
type, and for some types a suffix of TLV records. Decode returns one of the
concrete Message types; Encode and Append write it back bit-exact, deriving
messageLength and the legacy control field. TLVs iterates a suffix lazily.

All functions are safe for concurrent use. Decoded values never alias the
input buffer.
*/
package ptp

// Package protocol implements the wire format spoken by DFPlayer Mini,
// Catalex, Flyron and compatible serial audio playback modules: a 10-byte
// framed command/response protocol carried over a 9600-baud UART.
package protocol

// Wire framing constants. Every transmitted frame is exactly FrameLen
// bytes; a ShortFrameLen frame (no checksum) is accepted on receive for
// compatibility with modules that omit it.
const (
	FrameLen      = 10
	ShortFrameLen = 8

	posStart    = 0
	posVersion  = 1
	posLength   = 2
	posMsgID    = 3
	posFeedback = 4
	posParamHi  = 5
	posParamLo  = 6
	posChkHi    = 7
	posEnd      = 9

	valStart   byte = 0x7E
	valVersion byte = 0xFF
	valLength  byte = 0x06
	valEnd     byte = 0xEF
)

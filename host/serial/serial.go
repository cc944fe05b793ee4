// Package serial adapts a physical or simulated UART to the
// github.com/aidtopia/dfplayer/host/driver.Transport interface: a
// background reader drains the OS-level serial port into a byte buffer so
// that ReadAvailable never blocks, matching the coordinator's poll-driven
// contract.
package serial

import "io"

// Port is the minimal serial port surface this package depends on. It
// allows Open to be swapped for a mock or a pty-backed simulator in tests.
type Port interface {
	io.ReadWriteCloser

	// Flush discards any buffered input/output.
	Flush() error
}

// Config holds the parameters needed to open a serial connection to a
// DFPlayer-compatible module.
type Config struct {
	// Device is the OS path to the serial device (e.g. "/dev/ttyUSB0").
	Device string

	// Baud is the line rate. DFPlayer-family modules speak at 9600.
	Baud int

	// ReadBufferSize is carried in the configuration but is read by neither
	// Open nor NewTransport: the Transport's read buffer has no size limit
	// and grows until ReadAvailable drains it.
	ReadBufferSize int
}

// DefaultConfig returns the configuration DFPlayer Mini and compatible
// modules expect: 9600 baud, 8N1.
func DefaultConfig(device string) *Config {
	return &Config{
		Device:         device,
		Baud:           9600,
		ReadBufferSize: 256,
	}
}

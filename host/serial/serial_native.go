//go:build !wasm

package serial

import (
	"fmt"
	"time"

	"github.com/tarm/serial"
)

// NativePort wraps github.com/tarm/serial for a real UART connection to a
// DFPlayer-compatible module.
type NativePort struct {
	port *serial.Port
	cfg  *Config
}

// Open opens the serial device named by cfg.
func Open(cfg *Config) (Port, error) {
	if cfg == nil {
		return nil, fmt.Errorf("serial: config cannot be nil")
	}

	serialConfig := &serial.Config{
		Name: cfg.Device,
		Baud: cfg.Baud,
		// A short read timeout lets the background reader loop notice a
		// closed port promptly instead of blocking forever.
		ReadTimeout: 50 * time.Millisecond,
	}

	port, err := serial.OpenPort(serialConfig)
	if err != nil {
		return nil, fmt.Errorf("serial: open %s: %w", cfg.Device, err)
	}

	return &NativePort{port: port, cfg: cfg}, nil
}

func (p *NativePort) Read(b []byte) (int, error)  { return p.port.Read(b) }
func (p *NativePort) Write(b []byte) (int, error) { return p.port.Write(b) }

func (p *NativePort) Close() error {
	if p.port == nil {
		return nil
	}
	return p.port.Close()
}

// Flush discards any buffered input/output. tarm/serial doesn't expose a
// flush primitive of its own; Write already blocks until its bytes are
// handed to the OS, so there is nothing further to do on write, and input
// is drained by whoever owns ReadAvailable.
func (p *NativePort) Flush() error { return nil }

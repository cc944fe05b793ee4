package serial

import (
	"sync"
	"time"
)

// Transport wraps a Port with a background reader goroutine, satisfying
// host/driver.Transport's non-blocking ReadAvailable contract by structural
// typing — this package never imports host/driver. Grounded on the
// teacher's HostTransport read loop (protocol/transport_host.go), simplified
// to a single unbounded byte slice since the coordinator does its own
// framing and resync.
type Transport struct {
	port  Port
	start time.Time

	mu      sync.Mutex
	buf     []byte
	readErr error

	stop chan struct{}
	done chan struct{}
}

// NewTransport starts a background reader over port. Close it when done.
func NewTransport(port Port) *Transport {
	t := &Transport{
		port:  port,
		start: time.Now(),
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	go t.readLoop()
	return t
}

func (t *Transport) readLoop() {
	defer close(t.done)
	scratch := make([]byte, 128)
	for {
		select {
		case <-t.stop:
			return
		default:
		}

		n, err := t.port.Read(scratch)
		if n > 0 {
			t.mu.Lock()
			t.buf = append(t.buf, scratch[:n]...)
			t.mu.Unlock()
		} else if err == nil {
			// Port.Read returned with nothing to report, as a real serial
			// port does on a read timeout. Avoid busy-spinning until the
			// next byte arrives.
			time.Sleep(5 * time.Millisecond)
		}
		if err != nil {
			t.mu.Lock()
			t.readErr = err
			t.mu.Unlock()
			return
		}
	}
}

// Write sends p over the underlying port.
func (t *Transport) Write(p []byte) (int, error) { return t.port.Write(p) }

// ReadAvailable returns and clears whatever bytes the background reader has
// accumulated since the last call. It never blocks.
func (t *Transport) ReadAvailable() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.buf) == 0 {
		return nil
	}
	out := t.buf
	t.buf = nil
	return out
}

// NowMs returns milliseconds elapsed since the Transport was created, a
// monotonic clock suitable for the coordinator's deadlines.
func (t *Transport) NowMs() uint64 {
	return uint64(time.Since(t.start).Milliseconds())
}

// ReadErr returns the error (if any) that ended the background reader,
// e.g. because the port was closed or unplugged.
func (t *Transport) ReadErr() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.readErr
}

// Close stops the background reader and closes the underlying port.
func (t *Transport) Close() error {
	close(t.stop)
	<-t.done
	return t.port.Close()
}

package driver

// Transport is the only point at which the coordinator touches the outside
// world: write outbound bytes, read whatever inbound bytes are currently
// available without blocking, and report a monotonic millisecond clock. Implementations live in package
// github.com/aidtopia/dfplayer/host/serial.
type Transport interface {
	// Write sends len(p) bytes. It may not block beyond the underlying
	// UART's write buffer.
	Write(p []byte) (int, error)

	// ReadAvailable returns whatever inbound bytes are presently buffered,
	// without blocking.
	ReadAvailable() []byte

	// NowMs returns a monotonically increasing millisecond tick.
	NowMs() uint64
}

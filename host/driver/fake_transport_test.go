package driver

import "github.com/aidtopia/dfplayer/protocol"

// fakeTransport is an in-memory Transport for deterministic coordinator
// tests: writes are captured for inspection, inbound bytes are queued by
// the test, and the clock advances only when the test tells it to.
type fakeTransport struct {
	written [][]byte
	inbound []byte
	now     uint64
}

func (f *fakeTransport) Write(p []byte) (int, error) {
	cp := append([]byte(nil), p...)
	f.written = append(f.written, cp)
	return len(p), nil
}

func (f *fakeTransport) ReadAvailable() []byte {
	out := f.inbound
	f.inbound = nil
	return out
}

func (f *fakeTransport) NowMs() uint64 { return f.now }

func (f *fakeTransport) advance(ms uint64) { f.now += ms }

func (f *fakeTransport) feed(b []byte) { f.inbound = append(f.inbound, b...) }

func (f *fakeTransport) lastWrite() []byte {
	if len(f.written) == 0 {
		return nil
	}
	return f.written[len(f.written)-1]
}

// ackFrame builds the wire bytes for a generic ACK.
func ackFrame() []byte {
	w := protocol.Encode(protocol.Ack, 0, false)
	return w[:]
}

func responseFrame(id protocol.MsgID, param uint16) []byte {
	w := protocol.Encode(id, param, false)
	return w[:]
}

// recordingHooks captures every callback for assertions.
type recordingHooks struct {
	NoopHooks
	errors        []recordedError
	queryResponse []recordedQuery
	deviceChanges []recordedDeviceChange
	finished      []recordedFinish
	initComplete  []protocol.DeviceSet
}

type recordedError struct {
	code     protocol.ErrorCode
	inFlight protocol.MsgID
}

type recordedQuery struct {
	param protocol.Parameter
	value uint16
}

type recordedDeviceChange struct {
	device protocol.Device
	change DeviceChange
}

type recordedFinish struct {
	device protocol.Device
	index  uint16
}

func (h *recordingHooks) Error(code protocol.ErrorCode, inFlight protocol.MsgID) {
	h.errors = append(h.errors, recordedError{code, inFlight})
}

func (h *recordingHooks) QueryResponse(param protocol.Parameter, value uint16) {
	h.queryResponse = append(h.queryResponse, recordedQuery{param, value})
}

func (h *recordingHooks) DeviceChange(device protocol.Device, change DeviceChange) {
	h.deviceChanges = append(h.deviceChanges, recordedDeviceChange{device, change})
}

func (h *recordingHooks) FinishedFile(device protocol.Device, index uint16) {
	h.finished = append(h.finished, recordedFinish{device, index})
}

func (h *recordingHooks) InitComplete(devices protocol.DeviceSet) {
	h.initComplete = append(h.initComplete, devices)
}

// newReadyDriver returns a Driver already past power-up, as if a spontaneous
// INIT_COMPLETE arrived immediately, so tests can focus on one scenario at
// a time without repeating the power-up dance.
func newReadyDriver() (*Driver, *fakeTransport) {
	tr := &fakeTransport{}
	d := New(tr)
	d.Update(nil)
	tr.feed(responseFrame(protocol.InitComplete, uint16(protocol.DeviceSDCard)))
	d.Update(&recordingHooks{})
	return d, tr
}

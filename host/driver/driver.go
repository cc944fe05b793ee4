// Package driver implements the coordinator: a single-threaded state
// machine that sits between an application and a DFPlayer-compatible
// serial audio module. Every non-trivial bug in this kind of system lives
// in the coordinator, so it is kept small, synchronous, and free of
// background goroutines — Update must be called repeatedly by the caller,
// and all hook callbacks happen on that call's stack.
package driver

import (
	"github.com/aidtopia/dfplayer/protocol"
	"github.com/aidtopia/dfplayer/queue"
)

// LogFunc receives a one-line diagnostic message for events the coordinator
// chooses to log-and-ignore rather than surface through Hooks (e.g. an ACK
// with neither EXPECT_ACK nor EXPECT_ACK2 set). The default is a no-op;
// SetDebugLog installs a real sink. Kept as a plain function type to avoid
// coupling the coordinator to any concrete logging library.
type LogFunc func(string)

func noopLog(string) {}

// Driver is the coordinator. Construct one with New, call Update on every
// poll tick, and issue commands through its methods.
type Driver struct {
	transport Transport
	queue     *queue.Queue[command]
	decoder   protocol.Decoder
	state     state

	// toCheck holds devices named by DEVICE_INSERTED notifications (a
	// DEVICE_REMOVED for a device takes it out again), for the application's
	// own benefit; the coordinator itself never re-triggers discovery from it.
	toCheck protocol.DeviceSet

	// discoveryQueue is the ordered worklist driving the discovery
	// sub-protocol: devices still needing a file-count probe.
	discoveryQueue []protocol.Device

	lastFinishDevice protocol.Device
	lastFinishIndex  uint16
	lastFinishValid  bool

	debugLog LogFunc
}

// New creates a Driver in the power-up state: UNINITIALIZED, nothing sent,
// waiting up to 3000ms for a spontaneous INIT_COMPLETE before falling back
// to the discovery probe.
func New(t Transport) *Driver {
	d := &Driver{
		transport: t,
		queue:     queue.New[command](4),
		debugLog:  noopLog,
	}
	d.state.sent = protocol.None
	d.state.flags = Uninitialized
	d.state.setDeadline(t.NowMs(), 3000)
	return d
}

// SetDebugLog installs fn as the sink for log-and-ignore diagnostics.
// Passing nil restores the default no-op.
func (d *Driver) SetDebugLog(fn LogFunc) {
	if fn == nil {
		fn = noopLog
	}
	d.debugLog = fn
}

// Update drains whatever bytes are presently available from the transport,
// advances the state machine, and dispatches the next queued command if the
// coordinator is ready. It returns true if the queue still has room for
// another command. Call this often and regularly; it never blocks.
func (d *Driver) Update(hooks Hooks) bool {
	for _, b := range d.transport.ReadAvailable() {
		if f, ok := d.decoder.Push(b); ok {
			d.handleFrame(f, hooks)
		}
	}

	now := d.transport.NowMs()
	if d.state.deadlineExpired(now) {
		d.state.cancelDeadline()
		d.handleTimeout(hooks)
	}

	if d.state.ready() && !d.queue.Empty() {
		d.dispatchFromQueue()
	}

	return !d.queue.Full()
}

// PendingDeviceChanges returns the set of devices named by DEVICE_INSERTED
// notifications since the last call to ResetPendingDeviceChanges, minus any
// device named by a later DEVICE_REMOVED, for applications that want to re-run their own discovery after hotplug
// activity rather than trusting the coordinator's own Available set.
func (d *Driver) PendingDeviceChanges() protocol.DeviceSet { return d.toCheck }

// ResetPendingDeviceChanges clears the set reported by PendingDeviceChanges.
func (d *Driver) ResetPendingDeviceChanges() { d.toCheck = 0 }

// Available returns the device set most recently established by discovery
// or INIT_COMPLETE.
func (d *Driver) Available() protocol.DeviceSet { return d.state.available }

// enqueue appends a command to the queue, reporting ErrQueueFull on
// overflow rather than dropping anything.
func (d *Driver) enqueue(id protocol.MsgID, flags Flag, param uint16) error {
	if err := d.queue.PushBack(command{msgID: id, flags: flags, param: param}); err != nil {
		return ErrQueueFull
	}
	return nil
}

// dispatchFromQueue pops the head of the queue (only ever called when the
// coordinator is ready) and dispatches it.
func (d *Driver) dispatchFromQueue() {
	cmd := d.queue.PeekFront()
	d.queue.PopFront()
	d.dispatchFrame(cmd.msgID, cmd.flags, cmd.param)
}

// dispatchFrame writes the wire frame for id/param, requesting hardware
// feedback iff EXPECT_ACK is among flags, installs flags and sent into
// state, and sets the generic deadline: 30ms for EXPECT_ACK, 100ms for
// EXPECT_RESPONSE, disabled otherwise. Callers that need a different
// deadline (Reset's 3000ms) override it afterward.
func (d *Driver) dispatchFrame(id protocol.MsgID, flags Flag, param uint16) {
	feedback := flags.Has(ExpectAck)
	wire := protocol.Encode(id, param, feedback)
	_, _ = d.transport.Write(wire[:])

	d.state.sent = id
	d.state.flags = flags

	now := d.transport.NowMs()
	switch {
	case flags.Has(ExpectAck):
		d.state.setDeadline(now, 30)
	case flags.Has(ExpectResponse):
		d.state.setDeadline(now, 100)
	default:
		d.state.cancelDeadline()
	}
}

// handleFrame classifies a decoded frame and routes it to the matching
// handler.
func (d *Driver) handleFrame(f protocol.Frame, hooks Hooks) {
	switch {
	case f.ID.IsAsyncNotification():
		d.handleAsyncNotification(f, hooks)
	case f.ID == protocol.Ack:
		d.handleAck()
	case f.ID == protocol.InitComplete:
		d.handleInitComplete(f.Param, hooks)
	case f.ID == protocol.Error:
		d.handleError(protocol.ErrorCode(f.Param), hooks)
	case f.ID.IsQueryResponse():
		d.handleQueryResponse(f.ID, f.Param, hooks)
	default:
		d.debugLog("driver: unrecognized frame id " + f.ID.String())
	}
}

// handleAsyncNotification handles the five spontaneous module->host
// notifications: device insert/remove and the three per-device
// finished-file events.
func (d *Driver) handleAsyncNotification(f protocol.Frame, hooks Hooks) {
	switch f.ID {
	case protocol.DeviceInserted:
		dev := protocol.Device(f.Param)
		d.toCheck = d.toCheck.Insert(dev)
		if hooks != nil {
			hooks.DeviceChange(dev, Inserted)
		}
		// A freshly inserted device needs a quiet window before the module
		// will reliably answer further queries.
		d.state.flags = d.state.flags.Set(Delay)
		d.state.setDeadline(d.transport.NowMs(), 300)

	case protocol.DeviceRemoved:
		dev := protocol.Device(f.Param)
		d.state.available = d.state.available.Remove(dev)
		d.toCheck = d.toCheck.Remove(dev)
		if hooks != nil {
			hooks.DeviceChange(dev, Removed)
		}

	case protocol.FinishedUSB, protocol.FinishedSD, protocol.FinishedFlash:
		dev := deviceForFinishedID(f.ID)
		if d.lastFinishValid && d.lastFinishDevice == dev && d.lastFinishIndex == f.Param {
			// The module is known to repeat this notification; only the
			// first of a run reaches the application.
			d.lastFinishValid = false
			return
		}
		d.lastFinishDevice, d.lastFinishIndex, d.lastFinishValid = dev, f.Param, true
		if hooks != nil {
			hooks.FinishedFile(dev, f.Param)
		}
	}
}

// handleAck processes a generic ACK (0x41), clearing EXPECT_ACK before
// EXPECT_ACK2.
func (d *Driver) handleAck() {
	switch {
	case d.state.flags.Has(ExpectAck):
		d.state.flags = d.state.flags.Clear(ExpectAck)
		if d.state.flags.HasAny(ExpectAck2 | Delay) {
			d.state.setDeadline(d.transport.NowMs(), 300)
		} else if !d.state.flags.Has(Uninitialized) {
			// A RESET's ack leaves UNINITIALIZED set; its 3000ms deadline
			// keeps running until INIT_COMPLETE arrives.
			d.state.cancelDeadline()
		}
	case d.state.flags.Has(ExpectAck2):
		d.state.flags = d.state.flags.Clear(ExpectAck2)
		d.state.cancelDeadline()
	default:
		d.debugLog("driver: unexpected ACK, ignored")
	}
}

// handleInitComplete processes the 0x3F notification, which carries three
// distinguishable meanings: a normal power-up completion, the reply to an
// explicit Reset, or the reply to an INIT_COMPLETE query some modules
// support. Anything else is an unsolicited module reset mid-session.
func (d *Driver) handleInitComplete(param uint16, hooks Hooks) {
	devices := protocol.DeviceSet(param & 0xFF)

	switch {
	case d.state.poweringUp():
		d.state.flags = 0
		d.state.cancelDeadline()
	case d.state.sent == protocol.Reset:
		d.state.flags = 0
		d.state.cancelDeadline()
	case d.state.sent == protocol.InitComplete && d.state.flags.Has(ExpectResponse):
		d.state.flags = d.state.flags.Clear(ExpectResponse)
		d.state.cancelDeadline()
	default:
		d.debugLog("driver: module unexpectedly reset")
		d.queue.Clear()
		d.state.flags = 0
		d.state.sent = protocol.None
		d.state.cancelDeadline()
	}

	d.state.available = devices
	if hooks != nil {
		hooks.InitComplete(devices)
	}
}

// handleError processes a generic ERROR (0x40) or a synthesized TIMED_OUT.
// NO_SOURCES arriving during discovery is the module's way of saying it
// has nothing to offer; that terminates discovery cleanly rather than
// surfacing as a failure.
func (d *Driver) handleError(code protocol.ErrorCode, hooks Hooks) {
	if d.state.flags.Has(Uninitialized) && code == protocol.ErrNoSources {
		d.state.cancelDeadline()
		d.state.flags = 0
		d.state.available = 0
		d.discoveryQueue = nil
		if hooks != nil {
			hooks.InitComplete(0)
		}
		return
	}

	d.state.cancelDeadline()
	inFlight := d.state.sent
	d.state.flags = 0
	if hooks != nil {
		hooks.Error(code, inFlight)
	}
}

// handleQueryResponse processes any frame with an ID of 0x42 or above. If it
// doesn't match what's currently expected it is logged and ignored — stale
// replies can arrive after a timeout already gave up on them.
func (d *Driver) handleQueryResponse(id protocol.MsgID, param uint16, hooks Hooks) {
	if !d.state.flags.Has(ExpectResponse) || d.state.sent != id {
		d.debugLog("driver: unsolicited query response " + id.String())
		return
	}

	d.state.cancelDeadline()
	d.state.flags = d.state.flags.Clear(ExpectResponse)

	if d.state.flags.Has(Uninitialized) {
		d.handleDiscoveryResponse(id, param, hooks)
		return
	}

	if hooks != nil {
		hooks.QueryResponse(id, param)
	}
}

// handleTimeout processes a synthesized timeout event: clearing an expired
// DELAY quiet window, falling back to the discovery STATUS probe when a
// power-up INIT_COMPLETE never arrived, or else surfacing a generic
// TIMED_OUT error.
func (d *Driver) handleTimeout(hooks Hooks) {
	if d.state.flags.Has(Delay) {
		d.state.flags = d.state.flags.Clear(Delay)
		return
	}

	if d.state.poweringUp() {
		if hooks == nil {
			// Discovery is skipped when no hook sink was supplied: there
			// is nowhere to report init_complete, so just become ready.
			d.state.flags = 0
			return
		}
		d.dispatchFrame(protocol.Status, ExpectResponse|Uninitialized, 0)
		return
	}

	d.handleError(protocol.ErrTimedOut, hooks)
}

// handleDiscoveryResponse advances the discovery sub-protocol: the STATUS
// reply seeds the worklist, each file-count reply records presence and
// pops the worklist, and an empty worklist ends discovery.
func (d *Driver) handleDiscoveryResponse(id protocol.MsgID, param uint16, hooks Hooks) {
	d.state.flags = d.state.flags.Clear(CheckUSB | CheckSDCard | CheckFlash)

	switch id {
	case protocol.Status:
		selected := protocol.Device(param >> 8)
		d.state.available = protocol.DeviceSet(0).Insert(selected)
		d.discoveryQueue = nil
		for _, dev := range [...]protocol.Device{protocol.DeviceUSB, protocol.DeviceSDCard, protocol.DeviceFlash} {
			if dev != selected {
				d.discoveryQueue = append(d.discoveryQueue, dev)
			}
		}
	case protocol.USBFileCount, protocol.SDFileCount, protocol.FlashFileCount:
		dev := deviceForFileCountID(id)
		if param > 0 {
			d.state.available = d.state.available.Insert(dev)
		}
		d.discoveryQueue = removeDevice(d.discoveryQueue, dev)
	}

	d.advanceDiscovery(hooks)
}

// advanceDiscovery dispatches the next file-count probe, or, once the
// worklist is empty, ends discovery and reports InitComplete with the
// accumulated device set.
func (d *Driver) advanceDiscovery(hooks Hooks) {
	if len(d.discoveryQueue) == 0 {
		d.state.flags = 0
		d.state.sent = protocol.None
		if hooks != nil {
			hooks.InitComplete(d.state.available)
		}
		return
	}

	dev := d.discoveryQueue[0]
	d.dispatchFrame(queryIDForDevice(dev), ExpectResponse|Uninitialized|flagForDevice(dev), 0)
}

func deviceForFinishedID(id protocol.MsgID) protocol.Device {
	switch id {
	case protocol.FinishedUSB:
		return protocol.DeviceUSB
	case protocol.FinishedSD:
		return protocol.DeviceSDCard
	default:
		return protocol.DeviceFlash
	}
}

func deviceForFileCountID(id protocol.MsgID) protocol.Device {
	switch id {
	case protocol.USBFileCount:
		return protocol.DeviceUSB
	case protocol.SDFileCount:
		return protocol.DeviceSDCard
	default:
		return protocol.DeviceFlash
	}
}

func queryIDForDevice(dev protocol.Device) protocol.MsgID {
	switch dev {
	case protocol.DeviceUSB:
		return protocol.USBFileCount
	case protocol.DeviceSDCard:
		return protocol.SDFileCount
	default:
		return protocol.FlashFileCount
	}
}

func flagForDevice(dev protocol.Device) Flag {
	switch dev {
	case protocol.DeviceUSB:
		return CheckUSB
	case protocol.DeviceSDCard:
		return CheckSDCard
	default:
		return CheckFlash
	}
}

func removeDevice(devices []protocol.Device, dev protocol.Device) []protocol.Device {
	out := devices[:0]
	for _, d := range devices {
		if d != dev {
			out = append(out, d)
		}
	}
	return out
}

package driver

import "github.com/aidtopia/dfplayer/protocol"

// DeviceChange distinguishes the two asynchronous device-presence
// notifications.
type DeviceChange int

const (
	Removed DeviceChange = iota
	Inserted
)

func (c DeviceChange) String() string {
	if c == Inserted {
		return "inserted"
	}
	return "removed"
}

// Hooks is the application-supplied callback sink. All five methods are
// optional; embed NoopHooks to get empty defaults and override only the
// callbacks of interest. Calls are synchronous, made from inside Update on
// the caller's stack — a hook implementation must never re-enter Update.
type Hooks interface {
	// Error reports a protocol error or a synthesized TIMED_OUT, along
	// with the MsgID that was in flight when it occurred.
	Error(code protocol.ErrorCode, inFlight protocol.MsgID)

	// QueryResponse reports the value for a query the application enqueued.
	QueryResponse(param protocol.Parameter, value uint16)

	// DeviceChange reports an asynchronous media insertion/removal.
	DeviceChange(device protocol.Device, change DeviceChange)

	// FinishedFile reports that a track finished playing from device.
	FinishedFile(device protocol.Device, index uint16)

	// InitComplete reports that the module has finished (re)initializing,
	// naming the devices known present.
	InitComplete(devices protocol.DeviceSet)
}

// NoopHooks implements Hooks with empty bodies. Embed it in an application
// hook type to override only the callbacks actually needed.
type NoopHooks struct{}

func (NoopHooks) Error(protocol.ErrorCode, protocol.MsgID)            {}
func (NoopHooks) QueryResponse(protocol.Parameter, uint16)            {}
func (NoopHooks) DeviceChange(protocol.Device, DeviceChange)          {}
func (NoopHooks) FinishedFile(protocol.Device, uint16)                {}
func (NoopHooks) InitComplete(protocol.DeviceSet)                     {}

var _ Hooks = NoopHooks{}

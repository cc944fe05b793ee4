package driver

import "github.com/aidtopia/dfplayer/protocol"

// Flag is a bitmask over the coordinator's expected-event checklist.
// flags == 0 iff the coordinator is ready to dispatch the next queued
// command.
type Flag uint16

const (
	ExpectAck      Flag = 1 << iota // waiting for a 0x41 ACK
	ExpectAck2                      // waiting for a second ACK (e.g. LOOP_FOLDER)
	ExpectResponse                  // waiting for a query response matching sent
	Delay                           // enforcing a post-action quiet window
	CheckUSB                        // discovery: USB file-count probe outstanding
	CheckSDCard                     // discovery: SD file-count probe outstanding
	CheckFlash                      // discovery: flash file-count probe outstanding
	Uninitialized                   // no user command may run; only discovery
)

// Has reports whether all bits in f are set.
func (flags Flag) Has(f Flag) bool { return flags&f == f }

// HasAny reports whether any bit in f is set.
func (flags Flag) HasAny(f Flag) bool { return flags&f != 0 }

// Set returns flags with f added.
func (flags Flag) Set(f Flag) Flag { return flags | f }

// Clear returns flags with f removed.
func (flags Flag) Clear(f Flag) Flag { return flags &^ f }

// state is the coordinator's single mutable state record. It is owned
// exclusively by Driver.Update and never touched from a hook callback.
type state struct {
	sent      protocol.MsgID // ID of the most recently dispatched command; None when idle
	flags     Flag
	hasDeadline bool
	deadlineAt  uint64 // monotonic ms; meaningful only when hasDeadline
	available   protocol.DeviceSet
}

// ready reports whether the coordinator is willing to pop the queue
// (flags == 0).
func (s *state) ready() bool { return s.flags == 0 }

// poweringUp reports whether the coordinator is waiting for a spontaneous
// INIT_COMPLETE after construction/power-on, before anything has been sent.
func (s *state) poweringUp() bool {
	return s.sent == protocol.None && s.flags == Uninitialized
}

func (s *state) setDeadline(nowMs, ms uint64) {
	s.hasDeadline = true
	s.deadlineAt = nowMs + ms
}

func (s *state) cancelDeadline() {
	s.hasDeadline = false
}

func (s *state) deadlineExpired(nowMs uint64) bool {
	return s.hasDeadline && nowMs >= s.deadlineAt
}

// command is a queued command record: the state template to install on
// dispatch (ID + flags) together with its 16-bit parameter.
type command struct {
	msgID protocol.MsgID
	flags Flag
	param uint16
}

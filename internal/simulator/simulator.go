// Package simulator provides a pty-backed fake DFPlayer-compatible module
// that speaks the real wire protocol (package
// github.com/aidtopia/dfplayer/protocol), for integration tests and the
// cmd/dfplayer-host demo when no physical module is attached. It exposes a
// virtual serial port over a pseudo-terminal, the same way
// github.com/creack/pty is used elsewhere to back a virtual TNC.
package simulator

import (
	"os"
	"sync"

	"github.com/creack/pty"

	"github.com/aidtopia/dfplayer/protocol"
)

// Simulator is a fake module. Write Reply frames with Notify to simulate
// asynchronous events (device insert/remove, finished file); ordinary
// command/query traffic is answered automatically by Run.
type Simulator struct {
	master, slave *os.File

	mu      sync.Mutex
	volume  uint16
	eq      protocol.EqProfile
	devices protocol.DeviceSet

	stop chan struct{}
	done chan struct{}
}

// New opens a pseudo-terminal pair and returns a Simulator bound to it.
// SlavePath names the side a real Port implementation (e.g.
// host/serial.Open) should connect to.
func New() (*Simulator, error) {
	master, slave, err := pty.Open()
	if err != nil {
		return nil, err
	}
	return &Simulator{
		master:  master,
		slave:   slave,
		devices: protocol.DeviceSet(0).Insert(protocol.DeviceSDCard),
		volume:  20,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}, nil
}

// SlavePath is the pty path a client should open, e.g. "/dev/pts/7".
func (s *Simulator) SlavePath() string { return s.slave.Name() }

// Close shuts the simulator down and releases both ends of the pty.
func (s *Simulator) Close() error {
	close(s.stop)
	<-s.done
	_ = s.slave.Close()
	return s.master.Close()
}

// Run starts answering traffic on the master side until Close is called.
// Call it once, typically in its own goroutine.
func (s *Simulator) Run() {
	defer close(s.done)
	var dec protocol.Decoder
	buf := make([]byte, 64)
	for {
		select {
		case <-s.stop:
			return
		default:
		}

		n, err := s.master.Read(buf)
		if err != nil {
			return
		}
		for i := 0; i < n; i++ {
			if f, ok := dec.Push(buf[i]); ok {
				s.handle(f)
			}
		}
	}
}

// Notify writes an asynchronous notification frame, as if the hardware had
// spontaneously generated it (e.g. protocol.DeviceInserted).
func (s *Simulator) Notify(id protocol.MsgID, param uint16) error {
	wire := protocol.Encode(id, param, false)
	_, err := s.master.Write(wire[:])
	return err
}

func (s *Simulator) reply(id protocol.MsgID, param uint16) {
	wire := protocol.Encode(id, param, false)
	_, _ = s.master.Write(wire[:])
}

func (s *Simulator) handle(f protocol.Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch f.ID {
	case protocol.Reset:
		s.volume = 20
		s.eq = protocol.EqNormal
		s.reply(protocol.Ack, 0)
		s.reply(protocol.InitComplete, uint16(s.devices))
	case protocol.SetVolume:
		s.volume = f.Param
		s.reply(protocol.Ack, 0)
	case protocol.SetEQ:
		s.eq = protocol.EqProfile(f.Param)
		s.reply(protocol.Ack, 0)
	case protocol.LoopFolder:
		s.reply(protocol.Ack, 0)
		s.reply(protocol.Ack, 0)
	case protocol.Status:
		s.reply(protocol.Status, uint16(protocol.DeviceSDCard)<<8)
	case protocol.Volume:
		s.reply(protocol.Volume, s.volume)
	case protocol.EQProfileMsg:
		s.reply(protocol.EQProfileMsg, uint16(s.eq))
	case protocol.USBFileCount, protocol.SDFileCount, protocol.FlashFileCount:
		s.reply(f.ID, 0)
	default:
		if f.ID.IsCommand() {
			s.reply(protocol.Ack, 0)
		}
	}
}

package protocol

import (
	"testing"

	"pgregory.net/rapid"
)

// TestRapidRoundTrip checks the round-trip property: for every opcode and
// every 16-bit parameter, decode(encode(id, param, fb)) yields back
// (id, param, fb).
func TestRapidRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		id := MsgID(rapid.IntRange(0, 255).Draw(rt, "id"))
		param := uint16(rapid.IntRange(0, 0xFFFF).Draw(rt, "param"))
		feedback := rapid.Bool().Draw(rt, "feedback")

		wire := Encode(id, param, feedback)
		var d Decoder
		var got Frame
		found := false
		for _, b := range wire {
			if f, ok := d.Push(b); ok {
				got, found = f, true
			}
		}
		if !found {
			rt.Fatalf("encoded frame for id=0x%02X param=0x%04X did not decode", uint8(id), param)
		}
		if got.ID != id || got.Param != param || got.Feedback != feedback || got.Short {
			rt.Fatalf("round-trip mismatch: got %+v, want id=0x%02X param=0x%04X feedback=%v",
				got, uint8(id), param, feedback)
		}
	})
}

// TestRapidResyncThroughNoise checks the resync property: any noise prefix
// containing no 0x7E, followed by a valid frame, decodes to exactly that
// frame.
func TestRapidResyncThroughNoise(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		id := MsgID(rapid.IntRange(1, 255).Draw(rt, "id"))
		param := uint16(rapid.IntRange(0, 0xFFFF).Draw(rt, "param"))
		noise := rapid.SliceOfN(rapid.IntRange(0, 254), 0, 16).Draw(rt, "noise")

		wire := Encode(id, param, false)
		data := make([]byte, 0, len(noise)+FrameLen)
		for _, n := range noise {
			b := byte(n)
			if b >= valStart {
				b++ // skip 0x7E: noise must contain no start byte
			}
			data = append(data, b)
		}
		data = append(data, wire[:]...)

		var d Decoder
		var frames []Frame
		for _, b := range data {
			if f, ok := d.Push(b); ok {
				frames = append(frames, f)
			}
		}
		if len(frames) != 1 || frames[0].ID != id || frames[0].Param != param {
			rt.Fatalf("resync through %d noise bytes failed: got %+v", len(noise), frames)
		}
	})
}

// TestRapidChecksumSensitivity checks that perturbing any checksummed byte
// invalidates the frame.
func TestRapidChecksumSensitivity(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		id := MsgID(rapid.IntRange(1, 255).Draw(rt, "id"))
		param := uint16(rapid.IntRange(0, 0xFFFF).Draw(rt, "param"))
		pos := rapid.IntRange(3, 6).Draw(rt, "pos")
		delta := rapid.IntRange(1, 255).Draw(rt, "delta")

		wire := Encode(id, param, false)
		wire[pos] = byte(int(wire[pos]) + delta)

		var d Decoder
		for _, b := range wire {
			if f, ok := d.Push(b); ok {
				rt.Fatalf("perturbed frame unexpectedly decoded as %+v", f)
			}
		}
	})
}

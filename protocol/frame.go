package protocol

// Frame is a decoded (message-id, parameter, feedback) triple together with
// whether it arrived as a short (unchecksummed) frame.
type Frame struct {
	ID       MsgID
	Param    uint16
	Feedback bool
	Short    bool
}

// checksum computes the two's-complement negation of the 16-bit sum of the
// version/length/id/feedback/param-hi/param-lo bytes. Arithmetic wraps at
// 16 bits, matching the original library's `~sum() + 1`.
func checksum(version, length, id, feedback, paramHi, paramLo byte) uint16 {
	sum := uint16(version) + uint16(length) + uint16(id) + uint16(feedback) + uint16(paramHi) + uint16(paramLo)
	return ^sum + 1
}

// Encode produces the 10 wire bytes for (id, param, feedback). Transmitted
// frames always include the checksum trailer.
func Encode(id MsgID, param uint16, feedback bool) [FrameLen]byte {
	paramHi := byte(param >> 8)
	paramLo := byte(param)
	var fb byte
	if feedback {
		fb = 1
	}
	crc := checksum(valVersion, valLength, byte(id), fb, paramHi, paramLo)

	var out [FrameLen]byte
	out[posStart] = valStart
	out[posVersion] = valVersion
	out[posLength] = valLength
	out[posMsgID] = byte(id)
	out[posFeedback] = fb
	out[posParamHi] = paramHi
	out[posParamLo] = paramLo
	out[posChkHi] = byte(crc >> 8)
	out[8] = byte(crc)
	out[posEnd] = valEnd
	return out
}

// Decoder is a single-byte streaming decoder. Feed it bytes one at a time
// with Push; a completed, validated frame is reported via the returned
// (Frame, true). Decoder carries no buffering beyond the frame currently
// being assembled and is safe to reuse indefinitely.
type Decoder struct {
	buf [FrameLen]byte
	pos int
}

// Push feeds one byte into the decoder. It returns a complete frame and
// true once a full, structurally valid frame has been assembled; an
// invalid-checksum frame is silently dropped (never reported) — the
// coordinator sees only a timeout.
func (d *Decoder) Push(b byte) (Frame, bool) {
	switch d.pos {
	case 0, 1, 2, posEnd:
		want := d.template(d.pos)
		if b == want {
			d.buf[d.pos] = b
			d.pos++
			if d.pos == FrameLen {
				return d.finish(false)
			}
			return Frame{}, false
		}
		// Resync: a stray 0x7E becomes the new position-0 byte; anything
		// else restarts the search from scratch.
		if b == valStart {
			d.buf[0] = b
			d.pos = 1
			return Frame{}, false
		}
		d.pos = 0
		return Frame{}, false
	case posChkHi:
		if b == valEnd {
			// Short (unchecksummed) 8-byte frame.
			return d.finish(true)
		}
		d.buf[d.pos] = b
		d.pos++
		return Frame{}, false
	default: // 3,4,5,6,8
		d.buf[d.pos] = b
		d.pos++
		if d.pos == FrameLen {
			return d.finish(false)
		}
		return Frame{}, false
	}
}

func (d *Decoder) template(pos int) byte {
	switch pos {
	case 0:
		return valStart
	case 1:
		return valVersion
	case 2:
		return valLength
	case posEnd:
		return valEnd
	default:
		return 0
	}
}

func (d *Decoder) finish(short bool) (Frame, bool) {
	defer func() { d.pos = 0 }()

	id := MsgID(d.buf[posMsgID])
	feedback := d.buf[posFeedback] != 0
	param := uint16(d.buf[posParamHi])<<8 | uint16(d.buf[posParamLo])

	if short {
		return Frame{ID: id, Param: param, Feedback: feedback, Short: true}, true
	}

	crc := uint16(d.buf[posChkHi])<<8 | uint16(d.buf[8])
	sum := uint16(d.buf[posVersion]) + uint16(d.buf[posLength]) + uint16(d.buf[posMsgID]) +
		uint16(d.buf[posFeedback]) + uint16(d.buf[posParamHi]) + uint16(d.buf[posParamLo])
	if sum+crc != 0 {
		// Invalid checksum: drop the frame entirely.
		return Frame{}, false
	}
	return Frame{ID: id, Param: param, Feedback: feedback}, true
}

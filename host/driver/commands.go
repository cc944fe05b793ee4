package driver

import "github.com/aidtopia/dfplayer/protocol"

// Reset clears the queue and dispatches RESET directly, bypassing the
// normal ready-check: the module may be mid-command, and Reset always wins. It waits up to 3000ms for the INIT_COMPLETE that follows, a
// longer window than the generic 30ms EXPECT_ACK rule would give it.
func (d *Driver) Reset() {
	d.queue.Clear()
	d.discoveryQueue = nil
	d.dispatchFrame(protocol.Reset, ExpectAck|Uninitialized, 0)
	d.state.setDeadline(d.transport.NowMs(), 3000)
}

// SelectSource chooses which storage device subsequent playback commands
// address. The module needs a quiet window after acknowledging before it
// will reliably accept the next command, so a DELAY follows the ack.
func (d *Driver) SelectSource(dev protocol.Device) error {
	return d.enqueue(protocol.SelectSource, ExpectAck|Delay, uint16(dev))
}

// SetVolume sets playback volume, clamped to [0, 30].
func (d *Driver) SetVolume(level int) error {
	if level < 0 {
		level = 0
	} else if level > 30 {
		level = 30
	}
	return d.enqueue(protocol.SetVolume, ExpectAck, uint16(level))
}

// VolumeUp and VolumeDown nudge the volume by one step.
func (d *Driver) VolumeUp() error   { return d.enqueue(protocol.VolumeUp, ExpectAck, 0) }
func (d *Driver) VolumeDown() error { return d.enqueue(protocol.VolumeDown, ExpectAck, 0) }

// SetEQProfile selects one of the module's built-in equalizer curves.
func (d *Driver) SetEQProfile(eq protocol.EqProfile) error {
	return d.enqueue(protocol.SetEQ, ExpectAck, uint16(eq))
}

// SetAmplifierEnabled toggles the module's onboard amplifier.
func (d *Driver) SetAmplifierEnabled(enabled bool) error {
	param := uint16(1)
	if enabled {
		param = 0
	}
	return d.enqueue(protocol.Amplifier, ExpectAck, param)
}

// PlayFile plays a single file by its flat index on the selected device.
func (d *Driver) PlayFile(index uint16) error {
	return d.enqueue(protocol.PlayFile, ExpectAck, index)
}

// PlayNextFile and PlayPreviousFile step through the current playback
// sequence.
func (d *Driver) PlayNextFile() error     { return d.enqueue(protocol.PlayNext, ExpectAck, 0) }
func (d *Driver) PlayPreviousFile() error { return d.enqueue(protocol.PlayPrevious, ExpectAck, 0) }

// LoopFile repeats a single file by flat index.
func (d *Driver) LoopFile(index uint16) error {
	return d.enqueue(protocol.LoopFile, ExpectAck, index)
}

// LoopAllFiles repeats every file on the selected device in order.
func (d *Driver) LoopAllFiles() error {
	return d.enqueue(protocol.LoopAll, ExpectAck, 0)
}

// PlayFilesInRandomOrder shuffles playback across the selected device.
func (d *Driver) PlayFilesInRandomOrder() error {
	return d.enqueue(protocol.RandomPlay, ExpectAck, 0)
}

// LoopFolder repeats every file in folder n. The module acknowledges twice
// on success, hence the double-ack bookkeeping.
func (d *Driver) LoopFolder(folder uint16) error {
	return d.enqueue(protocol.LoopFolder, ExpectAck|ExpectAck2, folder)
}

// PlayTrack plays track within folder. When track < 256 it uses the
// small-folder encoding (folder<<8 | track); otherwise, when folder < 16, the
// big-folder encoding (folder<<12 | track). It returns ErrFolderTooLarge when
// neither condition holds. Folder is not checked against one byte in the
// first case, nor track against 12 bits in the second.
func (d *Driver) PlayTrack(folder, track uint16) error {
	switch {
	case track < 256:
		return d.enqueue(protocol.PlayFromFolder, ExpectAck, folder<<8|track)
	case folder < 16:
		return d.enqueue(protocol.PlayFromBigFolder, ExpectAck, folder<<12|track)
	default:
		return ErrFolderTooLarge
	}
}

// PlayFromMP3Folder plays track from the module's reserved MP3 folder by a
// single flat index.
func (d *Driver) PlayFromMP3Folder(track uint16) error {
	return d.enqueue(protocol.PlayFromMP3, ExpectAck, track)
}

// InsertAdvert interrupts current playback to play an advertisement track
// from the reserved advert folder, then resumes. InsertAdvertN plays track
// from folder instead; folder 0 delegates to the single-argument form.
func (d *Driver) InsertAdvert(track uint16) error {
	return d.enqueue(protocol.InsertAdvert, ExpectAck, track)
}

func (d *Driver) InsertAdvertN(folder, track uint16) error {
	if folder == 0 {
		return d.InsertAdvert(track)
	}
	return d.enqueue(protocol.InsertAdvertN, ExpectAck, folder<<8|track)
}

// StopAdvert cancels an in-progress inserted advertisement and resumes
// whatever was interrupted.
func (d *Driver) StopAdvert() error {
	return d.enqueue(protocol.StopAdvert, ExpectAck, 0)
}

// Stop halts playback entirely.
func (d *Driver) Stop() error { return d.enqueue(protocol.Stop, ExpectAck, 0) }

// Pause and Unpause suspend and resume playback in place.
func (d *Driver) Pause() error   { return d.enqueue(protocol.Pause, ExpectAck, 0) }
func (d *Driver) Unpause() error { return d.enqueue(protocol.Unpause, ExpectAck, 0) }

// query enqueues a query command; its response arrives asynchronously
// through Hooks.QueryResponse, matched by MsgID.
func (d *Driver) query(id protocol.MsgID, param uint16) error {
	return d.enqueue(id, ExpectResponse, param)
}

func (d *Driver) QueryVolume() error           { return d.query(protocol.Volume, 0) }
func (d *Driver) QueryStatus() error           { return d.query(protocol.Status, 0) }
func (d *Driver) QueryFirmwareVersion() error  { return d.query(protocol.FirmwareVersion, 0) }
func (d *Driver) QueryEQProfile() error        { return d.query(protocol.EQProfileMsg, 0) }
func (d *Driver) QueryFolderCount() error      { return d.query(protocol.FolderCount, 0) }
func (d *Driver) QueryPlaybackSequence() error { return d.query(protocol.PlaybackSequenceMsg, 0) }

// QueryFolderFileCount asks how many files are in folder.
func (d *Driver) QueryFolderFileCount(folder uint16) error {
	return d.query(protocol.FolderFileCount, folder)
}

// QueryFileCount and QueryCurrentFile address a specific device.
func (d *Driver) QueryFileCount(dev protocol.Device) error {
	return d.query(queryIDForDevice(dev), 0)
}

func (d *Driver) QueryCurrentFile(dev protocol.Device) error {
	switch dev {
	case protocol.DeviceUSB:
		return d.query(protocol.CurrentUSBFile, 0)
	case protocol.DeviceSDCard:
		return d.query(protocol.CurrentSDFile, 0)
	default:
		return d.query(protocol.CurrentFlashFile, 0)
	}
}

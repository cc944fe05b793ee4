package driver

import "errors"

// ErrQueueFull is returned by any enqueuing method when the command queue
// has no spare capacity; overflow is reported to the caller rather than
// silently dropped.
var ErrQueueFull = errors.New("driver: command queue full")

// ErrFolderTooLarge is returned by PlayTrack when track >= 256 and
// folder >= 16, so that neither the small-folder nor the big-folder encoding
// is chosen; the call is rejected with no side effect.
var ErrFolderTooLarge = errors.New("driver: folder/track combination not representable")

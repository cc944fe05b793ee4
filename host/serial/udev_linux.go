//go:build linux

package serial

import (
	"context"
	"fmt"
	"strings"

	"github.com/jochenvg/go-udev"
)

// WaitForDevice blocks until a tty device node matching devicePattern (a
// substring of the device's Devnode, e.g. "ttyUSB") appears, or ctx is
// canceled. It is meant for host programs that want to wait for a
// DFPlayer-compatible USB-serial adapter to be plugged in rather than
// polling os.Stat in a loop. This is a convenience for the host program,
// not something the coordinator in host/driver ever calls.
func WaitForDevice(ctx context.Context, devicePattern string) (string, error) {
	u := udev.Udev{}

	if existing, ok := findExistingTTY(&u, devicePattern); ok {
		return existing, nil
	}

	mon := u.NewMonitorFromNetlink("udev")
	if err := mon.FilterAddMatchSubsystem("tty"); err != nil {
		return "", fmt.Errorf("serial: udev monitor filter: %w", err)
	}

	events, errs := mon.DeviceChan(ctx)
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case err := <-errs:
			return "", fmt.Errorf("serial: udev monitor: %w", err)
		case dev := <-events:
			if dev == nil || dev.Action() != "add" {
				continue
			}
			node := dev.Devnode()
			if node != "" && strings.Contains(node, devicePattern) {
				return node, nil
			}
		}
	}
}

func findExistingTTY(u *udev.Udev, devicePattern string) (string, bool) {
	e := u.NewEnumerate()
	_ = e.AddMatchSubsystem("tty")
	devices, err := e.Devices()
	if err != nil {
		return "", false
	}
	for _, dev := range devices {
		node := dev.Devnode()
		if node != "" && strings.Contains(node, devicePattern) {
			return node, true
		}
	}
	return "", false
}

//go:build !linux

package serial

import (
	"context"
	"errors"
)

// WaitForDevice is only implemented on linux, where github.com/jochenvg/go-udev
// can watch for the USB-serial adapter's character device to appear.
func WaitForDevice(ctx context.Context, devicePattern string) (string, error) {
	return "", errors.New("serial: WaitForDevice requires linux (udev)")
}

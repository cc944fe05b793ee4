// Command dfplayer-host is an interactive CLI for driving a DFPlayer-family
// serial audio module from a host computer.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/aidtopia/dfplayer/host/driver"
	"github.com/aidtopia/dfplayer/host/serial"
	"github.com/aidtopia/dfplayer/protocol"
)

var (
	device        = pflag.StringP("device", "d", "/dev/ttyUSB0", "serial device path")
	verbose       = pflag.BoolP("verbose", "v", false, "enable debug logging")
	waitForDevice = pflag.Bool("wait-for-device", false, "wait for a tty device matching --device to be plugged in before opening it (linux/udev only)")
	waitPattern   = pflag.String("wait-pattern", "ttyUSB", "substring of the device node to watch for with --wait-for-device")
	waitTimeout   = pflag.Duration("wait-timeout", 0, "give up waiting after this long (0 = wait forever)")
)

func main() {
	pflag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "dfplayer-host",
	})
	if *verbose {
		logger.SetLevel(log.DebugLevel)
	}

	if *waitForDevice {
		ctx := context.Background()
		if *waitTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, *waitTimeout)
			defer cancel()
		}
		logger.Info("waiting for device", "pattern", *waitPattern)
		node, err := serial.WaitForDevice(ctx, *waitPattern)
		if err != nil {
			logger.Fatal("failed waiting for device", "pattern", *waitPattern, "err", err)
		}
		logger.Info("device appeared", "node", node)
		*device = node
	}

	port, err := serial.Open(serial.DefaultConfig(*device))
	if err != nil {
		logger.Fatal("failed to open serial port", "device", *device, "err", err)
	}

	transport := serial.NewTransport(port)
	defer transport.Close()

	d := driver.New(transport)
	d.SetDebugLog(func(msg string) { logger.Debug(msg) })

	hooks := &logHooks{logger: logger}

	fmt.Println("dfplayer-host: type 'help' for commands, 'quit' to exit")
	scanner := bufio.NewScanner(os.Stdin)
	lines := make(chan string)
	go func() {
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	// d is single-threaded and poll-driven: every touch of it, including
	// command dispatch from stdin, happens on this one goroutine's ticks.
	fmt.Print("> ")
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			d.Update(hooks)
		case line, ok := <-lines:
			if !ok {
				return
			}
			dispatchLine(d, logger, strings.TrimSpace(line))
			fmt.Print("> ")
		}
	}
}

func dispatchLine(d *driver.Driver, logger *log.Logger, line string) {
	if line == "" {
		return
	}
	fields := strings.Fields(line)
	cmd := fields[0]
	args := fields[1:]

	var err error
	switch cmd {
	case "quit", "exit", "q":
		os.Exit(0)
	case "help", "?":
		printHelp()
		return
	case "reset":
		d.Reset()
		return
	case "volume":
		err = runVolume(d, args)
	case "play":
		err = runPlay(d, args)
	case "stop":
		err = d.Stop()
	case "pause":
		err = d.Pause()
	case "unpause":
		err = d.Unpause()
	case "query-volume":
		err = d.QueryVolume()
	case "query-status":
		err = d.QueryStatus()
	default:
		logger.Warn("unrecognized command", "command", cmd)
		return
	}
	if err != nil {
		logger.Error("command failed", "command", cmd, "err", err)
	}
}

func runVolume(d *driver.Driver, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: volume <0-30>")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return err
	}
	return d.SetVolume(n)
}

func runPlay(d *driver.Driver, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: play <folder> <track>")
	}
	folder, err := strconv.Atoi(args[0])
	if err != nil {
		return err
	}
	track, err := strconv.Atoi(args[1])
	if err != nil {
		return err
	}
	return d.PlayTrack(uint16(folder), uint16(track))
}

func printHelp() {
	fmt.Println(`commands:
  reset                reset the module
  volume <0-30>        set volume
  play <folder> <track> play a track from a folder
  stop / pause / unpause
  query-volume / query-status
  quit`)
}

// logHooks surfaces every coordinator callback as a structured log line.
type logHooks struct {
	driver.NoopHooks
	logger *log.Logger
}

func (h *logHooks) Error(code protocol.ErrorCode, inFlight protocol.MsgID) {
	h.logger.Error("module error", "code", code, "inFlight", inFlight)
}

func (h *logHooks) QueryResponse(param protocol.Parameter, value uint16) {
	h.logger.Info("query response", "param", param, "value", value)
}

func (h *logHooks) DeviceChange(device protocol.Device, change driver.DeviceChange) {
	h.logger.Info("device change", "device", device, "change", change)
}

func (h *logHooks) FinishedFile(device protocol.Device, index uint16) {
	h.logger.Info("finished file", "device", device, "index", index)
}

func (h *logHooks) InitComplete(devices protocol.DeviceSet) {
	h.logger.Info("init complete", "devices", devices)
}

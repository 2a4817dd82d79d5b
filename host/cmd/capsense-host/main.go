// Command capsense-host runs the AD7746 controller on a desktop machine,
// either through a Linux i2c-dev bus or an MCP2221A USB bridge.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"periph.io/x/conn/v3/physic"

	"capsense/ad7746"
	"capsense/controller"
	"capsense/core"
	"capsense/host/bus"
	"capsense/host/serial"
)

var (
	busKind = flag.String("bus", "linux", "I2C adapter: linux or mcp2221")
	i2cName = flag.String("i2c", "", "Linux I2C bus name or number (empty = first bus)")
	index   = flag.Int("index", 0, "MCP2221A device index")
	out     = flag.String("serial", "", "Serial device for report lines (empty = stdout)")
	baud    = flag.Int("baud", serial.DefaultBaud, "Baud rate for -serial")
	verbose = flag.Bool("verbose", false, "Log bus errors")
	speed   = physic.Frequency(100 * physic.KiloHertz)
)

// i2cBus is an I2C adapter the controller can own
type i2cBus interface {
	Tx(addr uint16, w, r []byte) error
	Close() error
}

func main() {
	flag.Var(&speed, "speed", "I2C clock frequency")
	flag.Parse()

	log.SetFlags(log.Ltime | log.Lmicroseconds)
	core.SetDebugWriter(func(s string) { log.Println(s) })
	core.SetDebugEnabled(*verbose)

	b, err := openBus(*busKind)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer b.Close()

	w, closeOut, err := openOutput(*out, *baud)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closeOut()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("AD7746 at 0x%02X on %s", ad7746.Address, b)

	sensor := ad7746.New(b)
	ctrl := controller.New(&sensor, w, core.SystemSleeper, controller.DefaultConfig())
	ctrl.Run(ctx)

	st := ctrl.Stats()
	log.Printf("stopped: %d polls, %d reports, %d bus errors", st.Polls, st.Reports, st.BusErrors)
}

func openBus(kind string) (i2cBus, error) {
	switch kind {
	case "linux":
		b, err := bus.OpenLinux(*i2cName, speed)
		if err != nil {
			return nil, err
		}
		return b, nil
	case "mcp2221":
		b, err := bus.OpenMCP2221(*index, uint32(speed/physic.Hertz))
		if err != nil {
			return nil, err
		}
		return b, nil
	}
	return nil, fmt.Errorf("unknown bus %q", kind)
}

func openOutput(device string, baud int) (io.Writer, func(), error) {
	if device == "" {
		return os.Stdout, func() {}, nil
	}
	cfg := serial.DefaultConfig(device)
	cfg.Baud = baud
	port, err := serial.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	return port, func() { port.Close() }, nil
}

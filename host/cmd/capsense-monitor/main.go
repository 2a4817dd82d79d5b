// Command capsense-monitor prints the readings the firmware sends over its
// report UART.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"capsense/core"
	"capsense/host/monitor"
	"capsense/host/serial"
)

var (
	device  = flag.String("device", "/dev/ttyACM0", "Serial device path")
	baud    = flag.Int("baud", serial.DefaultBaud, "Baud rate")
	raw     = flag.Bool("raw", false, "Print lines exactly as received")
	verbose = flag.Bool("verbose", false, "Log skipped lines")
)

func main() {
	flag.Parse()

	core.SetDebugWriter(func(s string) { log.Println(s) })
	core.SetDebugEnabled(*verbose)

	cfg := serial.DefaultConfig(*device)
	cfg.Baud = *baud

	m := monitor.NewMonitor()
	if err := m.ConnectWithConfig(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer m.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := m.Run(ctx, func(r monitor.Reading) {
		if *raw {
			fmt.Println(r.Line)
			return
		}
		fmt.Printf("%s  %s pF\n", r.Time.Format("15:04:05.000"), core.FormatFloat(r.Picofarads, core.ReportDigits))
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	st := m.Stats()
	log.Printf("%d lines, %d readings, %d skipped", st.Lines, st.Readings, st.Skipped)
}

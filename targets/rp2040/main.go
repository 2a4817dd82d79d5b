//go:build rp2040 || rp2350

package main

import (
	"context"
	"machine"

	"capsense/ad7746"
	"capsense/controller"
	"capsense/core"
)

// Report output. UART0 TX=GP0, RX=GP1.
const reportBaud = 9600

func main() {
	// Disable watchdog on boot to clear any previous state
	err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0})
	if err != nil {
		return
	}

	// Debug goes to the USB CDC console, readings go to the UART
	core.SetDebugWriter(func(s string) { println(s) })
	core.SetDebugEnabled(debugBuild)

	uart := machine.UART0
	if err := uart.Configure(machine.UARTConfig{BaudRate: reportBaud}); err != nil {
		core.DebugError("uart", err)
	}

	i2c, err := configureI2C(sensorI2CBus, sensorI2CRate)
	if err != nil {
		core.DebugError("i2c", err)
		// Nothing to talk to; park rather than reset-loop
		select {}
	}

	sensor := ad7746.New(i2c)
	ctrl := controller.New(&sensor, uart, core.SystemSleeper, controller.DefaultConfig())

	// Never returns: the loop runs until power-off or reset
	ctrl.Run(context.Background())
}

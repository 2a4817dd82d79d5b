// Package controller runs the AD7746 sampling loop: configure the device
// once, then poll the ready flag, read and convert a sample and report it,
// at a fixed cadence, forever.
package controller

import (
	"context"
	"io"
	"time"

	"capsense/ad7746"
	"capsense/core"
)

// State is the controller lifecycle state.
type State uint8

const (
	StateInit State = iota
	StatePolling
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "INIT"
	case StatePolling:
		return "POLLING"
	}
	return "UNKNOWN"
}

// Sensor is the device side of the loop. *ad7746.Device implements it.
type Sensor interface {
	Configure(cfg ad7746.Config) error
	DataReady() (bool, error)
	ReadRaw() (uint32, error)
}

// Config holds the loop timing.
type Config struct {
	// StartupDelay lets the device power up before it is configured
	StartupDelay time.Duration

	// SettleDelay lets the configuration take effect before the first poll
	SettleDelay time.Duration

	// Interval is slept after every poll, ready or not
	Interval time.Duration
}

// DefaultConfig returns the standard cadence
func DefaultConfig() *Config {
	return &Config{
		StartupDelay: 100 * time.Millisecond,
		SettleDelay:  100 * time.Millisecond,
		Interval:     200 * time.Millisecond,
	}
}

// Stats counts loop activity since New.
type Stats struct {
	Polls     uint32 // ready-flag polls
	Reports   uint32 // lines written
	BusErrors uint32 // failed bus operations (not retried)
}

// Controller owns the sensor, the report output and the sleep primitive.
type Controller struct {
	sensor  Sensor
	out     io.Writer
	sleeper core.Sleeper
	cfg     Config
	state   State
	stats   Stats
}

// New creates a controller in StateInit. A nil sleeper uses the system
// clock and a nil cfg uses DefaultConfig.
func New(sensor Sensor, out io.Writer, sleeper core.Sleeper, cfg *Config) *Controller {
	if sleeper == nil {
		sleeper = core.SystemSleeper
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Controller{
		sensor:  sensor,
		out:     out,
		sleeper: sleeper,
		cfg:     *cfg,
		state:   StateInit,
	}
}

// State returns the current lifecycle state.
func (c *Controller) State() State { return c.state }

// Stats returns a copy of the activity counters.
func (c *Controller) Stats() Stats { return c.stats }

// Init waits for power-up, writes the device configuration and waits for it
// to settle. It cannot fail: bus errors are only logged.
func (c *Controller) Init() {
	c.sleeper.Sleep(c.cfg.StartupDelay)

	if err := c.sensor.Configure(ad7746.DefaultConfig()); err != nil {
		c.busError("configure", err)
	}

	c.sleeper.Sleep(c.cfg.SettleDelay)
	c.state = StatePolling
	core.DebugPrintln("ad7746: configured, polling")
}

// Step runs one polling iteration, without the cadence sleep. It returns
// true if a report line was written.
func (c *Controller) Step() bool {
	c.stats.Polls++

	ready, err := c.sensor.DataReady()
	if err != nil {
		c.busError("status", err)
	}
	if !ready {
		return false
	}

	raw, err := c.sensor.ReadRaw()
	if err != nil {
		c.busError("read", err)
	}

	// Reported even after a failed read: the value is whatever the bus left
	line := core.FormatReport(ad7746.RawToPicofarads(raw)) + "\r\n"
	if _, err := io.WriteString(c.out, line); err != nil {
		core.DebugError("ad7746: report", err)
		return false
	}
	c.stats.Reports++
	return true
}

// Run initializes the device if needed and then polls forever. It only
// returns when ctx is cancelled, with ctx.Err().
func (c *Controller) Run(ctx context.Context) error {
	if c.state == StateInit {
		c.Init()
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		c.Step()
		c.sleeper.Sleep(c.cfg.Interval)
	}
}

func (c *Controller) busError(op string, err error) {
	c.stats.BusErrors++
	core.DebugError("ad7746: "+op, err)
}

// Package monitor reads the firmware's report lines from a serial port and
// turns them into readings.
package monitor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"capsense/core"
	"capsense/host/serial"
)

// Reading is one capacitance sample received from the firmware
type Reading struct {
	Picofarads float64
	Line       string
	Time       time.Time
}

// Stats counts lines seen since Connect
type Stats struct {
	Lines    uint64
	Readings uint64
	Skipped  uint64 // lines that were not reports
}

// ErrNotConnected is returned by Run before Connect
var ErrNotConnected = errors.New("not connected to a serial port")

// Monitor represents a connection to the firmware's report UART
type Monitor struct {
	mu        sync.Mutex
	port      serial.Port
	connected bool
	stats     Stats

	// now stamps readings; replaced in tests
	now func() time.Time
}

// NewMonitor creates a new Monitor instance (not yet connected)
func NewMonitor() *Monitor {
	return &Monitor{
		now: time.Now,
	}
}

// Connect opens device at the default report baud rate
func (m *Monitor) Connect(device string) error {
	return m.ConnectWithConfig(serial.DefaultConfig(device))
}

// ConnectWithConfig connects with a custom serial config
func (m *Monitor) ConnectWithConfig(cfg *serial.Config) error {
	port, err := serial.Open(cfg)
	if err != nil {
		return fmt.Errorf("failed to open serial port: %w", err)
	}
	m.ConnectPort(port)
	return nil
}

// ConnectPort uses an already open port
func (m *Monitor) ConnectPort(port serial.Port) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.port = port
	m.connected = true
	m.stats = Stats{}
}

// Close closes the connection
func (m *Monitor) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return nil
	}
	m.connected = false
	return m.port.Close()
}

// IsConnected returns whether a port is open
func (m *Monitor) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

// Stats returns the line counters
func (m *Monitor) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}

// Run reads lines until the port reports EOF or ctx is cancelled, calling
// handle for every report line. Cancelling ctx closes the port to unblock
// the pending read; Run then returns ctx.Err(). EOF returns nil.
func (m *Monitor) Run(ctx context.Context, handle func(Reading)) error {
	m.mu.Lock()
	port, connected := m.port, m.connected
	m.mu.Unlock()
	if !connected {
		return ErrNotConnected
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			m.Close()
		case <-done:
		}
	}()

	scanner := bufio.NewScanner(port)
	for scanner.Scan() {
		m.handleLine(scanner.Text(), handle)
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("read serial: %w", err)
	}
	return nil
}

func (m *Monitor) handleLine(line string, handle func(Reading)) {
	pf, err := ParseReport(line)

	m.mu.Lock()
	m.stats.Lines++
	if err != nil {
		m.stats.Skipped++
	} else {
		m.stats.Readings++
	}
	m.mu.Unlock()

	if err != nil {
		core.DebugPrintln(fmt.Sprintf("monitor: skipped line %q", line))
		return
	}
	if handle != nil {
		handle(Reading{Picofarads: pf, Line: line, Time: m.now()})
	}
}

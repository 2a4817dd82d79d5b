package bus

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/karalabe/hid"
)

// MCP2221A USB-to-I2C bridge. The I2C engine is driven through 64-byte HID
// reports; every command report is answered by a response report echoing
// the command byte.
//
// Datasheet: http://ww1.microchip.com/downloads/en/devicedoc/20005565b.pdf

// USB identifiers of the MCP2221A.
const (
	MCP2221VID = 0x04D8
	MCP2221PID = 0x00DD
)

// DefaultMCP2221Baud is the I2C clock used when none is given.
const DefaultMCP2221Baud = 100000

const (
	mcpReportSize = 64
	mcpClockHz    = 12000000
	mcpChunk      = 60 // data bytes per report
	mcpRetries    = 50
	mcpPause      = 300 * time.Microsecond
)

// Command bytes, echoed back as the first byte of each response.
const (
	cmdStatus          byte = 0x10 // also "set parameters"
	cmdI2CWrite        byte = 0x90
	cmdI2CRead         byte = 0x91
	cmdI2CReadRepStart byte = 0x93
	cmdI2CWriteNoStop  byte = 0x94
	cmdI2CReadGetData  byte = 0x40
)

// Internal I2C engine states reported in status/get-data responses.
const (
	stateIdle             byte = 0x00
	stateStartTimeout     byte = 0x12
	stateRepStartTimeout  byte = 0x17
	stateAddrTimeout      byte = 0x23
	stateAddrNACK         byte = 0x25
	statePartialData      byte = 0x41
	stateWriteTimeout     byte = 0x44
	stateWritingNoStop    byte = 0x45
	stateReadTimeout      byte = 0x52
	stateReadPartial      byte = 0x54
	stateReadComplete     byte = 0x55
	stateStopTimeout      byte = 0x62
	stateReadError        byte = 0x7F
	setParamsCancel       byte = 0x10
	setParamsSpeed        byte = 0x20
	setParamsSpeedRefused byte = 0x21
)

// Bridge errors. Bus-level failures wrap ErrNACK or ErrTimeout.
var (
	ErrNotFound = errors.New("mcp2221: device not found")
	ErrNACK     = errors.New("i2c: address not acknowledged")
	ErrTimeout  = errors.New("i2c: bus timeout")
	ErrRetries  = errors.New("mcp2221: too many retries")

	errCommandFailed = errors.New("mcp2221: command failed")
)

// hidDevice is the subset of *hid.Device used by the bridge.
type hidDevice interface {
	Write(b []byte) (int, error)
	Read(b []byte) (int, error)
	Close() error
}

// MCP2221 is an I2C bus reached through an MCP2221A bridge. It implements
// drivers.I2C.
type MCP2221 struct {
	mu    sync.Mutex
	dev   hidDevice
	pause func(time.Duration)
}

// OpenMCP2221 opens the index'th attached MCP2221A and sets the I2C clock.
func OpenMCP2221(index int, baud uint32) (*MCP2221, error) {
	infos := hid.Enumerate(MCP2221VID, MCP2221PID)
	if index < 0 || index >= len(infos) {
		return nil, fmt.Errorf("%w: index %d, %d attached", ErrNotFound, index, len(infos))
	}

	d, err := infos[index].Open()
	if err != nil {
		return nil, fmt.Errorf("mcp2221: open %s: %w", infos[index].Path, err)
	}

	m := newMCP2221(d)
	if baud == 0 {
		baud = DefaultMCP2221Baud
	}
	if err := m.SetBaud(baud); err != nil {
		d.Close()
		return nil, err
	}
	return m, nil
}

func newMCP2221(d hidDevice) *MCP2221 {
	return &MCP2221{dev: d, pause: time.Sleep}
}

// Close releases the HID device.
func (m *MCP2221) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dev.Close()
}

// String implements fmt.Stringer.
func (m *MCP2221) String() string {
	return "mcp2221"
}

// SetBaud programs the I2C clock divider.
func (m *MCP2221) SetBaud(baud uint32) error {
	if baud > mcpClockHz/3 || baud < mcpClockHz/258 {
		return fmt.Errorf("mcp2221: invalid baud rate %d", baud)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	msg := newReport()
	msg[3] = setParamsSpeed
	msg[4] = byte(mcpClockHz/baud - 3)

	rsp, err := m.send(cmdStatus, msg)
	if err != nil {
		return err
	}
	if rsp[3] == setParamsSpeedRefused {
		return errors.New("mcp2221: transfer in progress, speed not set")
	}
	return nil
}

// Tx performs one I2C transaction: a write of w, a read into r, or a write
// followed by a repeated-start read when both are given.
func (m *MCP2221) Tx(addr uint16, w, r []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a := uint8(addr & 0x7F)
	switch {
	case len(w) > 0 && len(r) > 0:
		if err := m.write(a, w, false); err != nil {
			return err
		}
		return m.read(a, r, true)
	case len(w) > 0:
		return m.write(a, w, true)
	case len(r) > 0:
		return m.read(a, r, false)
	}
	return nil
}

func newReport() []byte { return make([]byte, mcpReportSize) }

// send transmits one command report and returns the response report. A
// response that does not echo cmd or reports failure is returned along with
// errCommandFailed so callers can inspect the engine state.
func (m *MCP2221) send(cmd byte, msg []byte) ([]byte, error) {
	msg[0] = cmd
	if _, err := m.dev.Write(msg); err != nil {
		return nil, fmt.Errorf("mcp2221: write cmd 0x%02X: %w", cmd, err)
	}

	rsp := newReport()
	n, err := m.dev.Read(rsp)
	if err != nil {
		return nil, fmt.Errorf("mcp2221: read cmd 0x%02X: %w", cmd, err)
	}
	if n < mcpReportSize {
		return nil, fmt.Errorf("mcp2221: cmd 0x%02X: short read (%d of %d bytes)", cmd, n, mcpReportSize)
	}
	if rsp[0] != cmd || rsp[1] != 0 {
		return rsp, errCommandFailed
	}
	return rsp, nil
}

// engineState returns the I2C engine state from a status report.
func (m *MCP2221) engineState() (byte, error) {
	rsp, err := m.send(cmdStatus, newReport())
	if err != nil {
		return 0, err
	}
	return rsp[8], nil
}

// cancel aborts whatever the engine is doing.
func (m *MCP2221) cancel() error {
	msg := newReport()
	msg[2] = setParamsCancel
	rsp, err := m.send(cmdStatus, msg)
	if err != nil {
		return err
	}
	if rsp[2] == setParamsCancel {
		m.pause(mcpPause)
	}
	return nil
}

// prepare makes sure the engine is free for a new transfer. A pending
// no-stop write is kept when the transfer continues it.
func (m *MCP2221) prepare(continuing bool) error {
	st, err := m.engineState()
	if err != nil {
		return err
	}
	if st == stateIdle || (continuing && st == stateWritingNoStop) {
		return nil
	}
	return m.cancel()
}

func (m *MCP2221) write(addr uint8, w []byte, stop bool) error {
	if err := m.prepare(false); err != nil {
		return err
	}

	cmd := cmdI2CWrite
	if !stop {
		cmd = cmdI2CWriteNoStop
	}

	for pos := 0; pos < len(w); {
		n := len(w) - pos
		if n > mcpChunk {
			n = mcpChunk
		}

		msg := newReport()
		msg[1] = byte(len(w))
		msg[2] = byte(len(w) >> 8)
		msg[3] = addr << 1
		copy(msg[4:], w[pos:pos+n])

		if err := m.sendRetry(cmd, msg, addr); err != nil {
			return err
		}
		pos += n
	}

	// wait for the engine to finish clocking the data out
	for i := 0; i < mcpRetries; i++ {
		st, err := m.engineState()
		if err != nil {
			return err
		}
		if st == stateIdle || (!stop && st == stateWritingNoStop) {
			return nil
		}
		if err := stateError(st, addr); err != nil {
			return err
		}
		m.pause(mcpPause)
	}
	return ErrRetries
}

// sendRetry resends a data report while the engine is busy.
func (m *MCP2221) sendRetry(cmd byte, msg []byte, addr uint8) error {
	for i := 0; i < mcpRetries; i++ {
		rsp, err := m.send(cmd, msg)
		if err == nil {
			return nil
		}
		if rsp == nil {
			return err
		}
		if err := stateError(rsp[2], addr); err != nil {
			return err
		}
		m.pause(mcpPause)
	}
	return ErrRetries
}

func (m *MCP2221) read(addr uint8, r []byte, repStart bool) error {
	if err := m.prepare(repStart); err != nil {
		return err
	}

	msg := newReport()
	msg[1] = byte(len(r))
	msg[2] = byte(len(r) >> 8)
	msg[3] = addr<<1 | 0x01

	cmd := cmdI2CRead
	if repStart {
		cmd = cmdI2CReadRepStart
	}
	if _, err := m.send(cmd, msg); err != nil {
		return err
	}

	for pos := 0; pos < len(r); {
		rsp, err := m.getData(addr)
		if err != nil {
			return err
		}

		n := int(rsp[3])
		if n > mcpChunk {
			n = mcpChunk
		}
		if n > len(r)-pos {
			n = len(r) - pos
		}
		if n == 0 {
			return fmt.Errorf("mcp2221: read from 0x%02X returned no data", addr)
		}
		copy(r[pos:], rsp[4:4+n])
		pos += n
	}
	return nil
}

// getData fetches the next chunk of read data, waiting while the engine is
// still receiving.
func (m *MCP2221) getData(addr uint8) ([]byte, error) {
	for i := 0; i < mcpRetries; i++ {
		rsp, err := m.send(cmdI2CReadGetData, newReport())
		if rsp == nil {
			return nil, err
		}
		if rsp[1] == statePartialData || rsp[3] == stateReadError {
			m.pause(mcpPause)
			continue
		}
		if err := stateError(rsp[2], addr); err != nil {
			return nil, err
		}
		if err != nil {
			return nil, err
		}
		if rsp[2] == stateIdle || rsp[2] == stateReadPartial || rsp[2] == stateReadComplete {
			return rsp, nil
		}
		m.pause(mcpPause)
	}
	return nil, ErrRetries
}

// stateError maps fatal engine states to errors.
func stateError(st byte, addr uint8) error {
	switch st {
	case stateAddrNACK:
		return fmt.Errorf("%w: 0x%02X", ErrNACK, addr)
	case stateStartTimeout, stateRepStartTimeout, stateStopTimeout,
		stateReadTimeout, stateWriteTimeout, stateAddrTimeout:
		return fmt.Errorf("%w: state 0x%02X", ErrTimeout, st)
	}
	return nil
}

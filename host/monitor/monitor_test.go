package monitor

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
)

// pipePort is a serial.Port whose read side is fed by the test
type pipePort struct {
	r      *io.PipeReader
	w      *io.PipeWriter
	closed bool
}

func newPipePort() *pipePort {
	r, w := io.Pipe()
	return &pipePort{r: r, w: w}
}

func (p *pipePort) Read(b []byte) (int, error)  { return p.r.Read(b) }
func (p *pipePort) Write(b []byte) (int, error) { return len(b), nil }
func (p *pipePort) Flush() error                { return nil }

func (p *pipePort) Close() error {
	p.closed = true
	return p.r.Close()
}

// stringPort serves a fixed transcript then EOF
type stringPort struct {
	*strings.Reader
}

func (stringPort) Write(b []byte) (int, error) { return len(b), nil }
func (stringPort) Flush() error                { return nil }
func (stringPort) Close() error                { return nil }

func TestRunParsesReports(t *testing.T) {
	c := qt.New(t)

	transcript := "Capacitance: 0.000000 pF\r\n" +
		"garbage\r\n" +
		"Capacitance: 1.500000 pF\r\n" +
		"\r\n" +
		"Capacitance: -4.000000 pF\r\n"

	m := NewMonitor()
	stamp := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	m.now = func() time.Time { return stamp }
	m.ConnectPort(stringPort{strings.NewReader(transcript)})

	var got []Reading
	err := m.Run(context.Background(), func(r Reading) {
		got = append(got, r)
	})
	c.Assert(err, qt.IsNil)

	c.Assert(got, qt.DeepEquals, []Reading{
		{Picofarads: 0, Line: "Capacitance: 0.000000 pF", Time: stamp},
		{Picofarads: 1.5, Line: "Capacitance: 1.500000 pF", Time: stamp},
		{Picofarads: -4, Line: "Capacitance: -4.000000 pF", Time: stamp},
	})
	c.Assert(m.Stats(), qt.Equals, Stats{Lines: 5, Readings: 3, Skipped: 2})
}

func TestRunNotConnected(t *testing.T) {
	c := qt.New(t)

	m := NewMonitor()
	c.Assert(m.IsConnected(), qt.IsFalse)
	c.Assert(m.Run(context.Background(), nil), qt.Equals, ErrNotConnected)
}

func TestRunCancelClosesPort(t *testing.T) {
	c := qt.New(t)

	port := newPipePort()
	m := NewMonitor()
	m.ConnectPort(port)
	c.Assert(m.IsConnected(), qt.IsTrue)

	ctx, cancel := context.WithCancel(context.Background())
	readings := make(chan Reading, 1)
	errc := make(chan error, 1)
	go func() {
		errc <- m.Run(ctx, func(r Reading) { readings <- r })
	}()

	_, err := io.WriteString(port.w, "Capacitance: 2.000000 pF\n")
	c.Assert(err, qt.IsNil)

	select {
	case r := <-readings:
		c.Assert(r.Picofarads, qt.Equals, 2.0)
	case <-time.After(5 * time.Second):
		c.Fatal("no reading received")
	}

	cancel()
	select {
	case err := <-errc:
		c.Assert(err, qt.Equals, context.Canceled)
	case <-time.After(5 * time.Second):
		c.Fatal("Run did not return after cancel")
	}
	c.Assert(m.IsConnected(), qt.IsFalse)
}

func TestCloseIdempotent(t *testing.T) {
	c := qt.New(t)

	port := newPipePort()
	m := NewMonitor()
	m.ConnectPort(port)

	c.Assert(m.Close(), qt.IsNil)
	c.Assert(port.closed, qt.IsTrue)
	c.Assert(m.Close(), qt.IsNil)
}

func TestConnectMissingDevice(t *testing.T) {
	c := qt.New(t)

	m := NewMonitor()
	err := m.Connect("")
	c.Assert(err, qt.ErrorMatches, "failed to open serial port: .*")
	c.Assert(m.IsConnected(), qt.IsFalse)
}

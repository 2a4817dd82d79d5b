package core

import "time"

// Sleeper blocks the caller for a fixed duration. The controller cadence is
// expressed through it so tests can step the loop without real time elapsing.
type Sleeper interface {
	Sleep(d time.Duration)
}

// SleepFunc adapts an ordinary function to the Sleeper interface.
type SleepFunc func(d time.Duration)

// Sleep calls f(d).
func (f SleepFunc) Sleep(d time.Duration) { f(d) }

// SystemSleeper sleeps on the runtime clock.
var SystemSleeper Sleeper = SleepFunc(time.Sleep)


package bus

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

// OpenLinux opens a host I2C bus through periph.io. An empty name selects the
// first bus found (e.g. /dev/i2c-1 on a Raspberry Pi). A zero speed leaves
// the bus clock unchanged.
//
// The returned bus implements drivers.I2C.
func OpenLinux(name string, speed physic.Frequency) (i2c.BusCloser, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}

	b, err := i2creg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %q: %w", name, err)
	}

	if speed != 0 {
		if err := b.SetSpeed(speed); err != nil {
			b.Close()
			return nil, fmt.Errorf("set i2c speed %s: %w", speed, err)
		}
	}

	return b, nil
}

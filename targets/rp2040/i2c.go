//go:build rp2040 || rp2350

package main

import (
	"errors"
	"machine"
)

// Sensor bus defaults. I2C0 uses SDA=GP4, SCL=GP5.
const (
	sensorI2CBus  = 0
	sensorI2CRate = 100000
)

// configureI2C initializes one of the two hardware I2C blocks and returns it.
// machine.I2C satisfies drivers.I2C, so it is handed to the driver as is.
func configureI2C(bus uint8, frequencyHz uint32) (*machine.I2C, error) {
	var i2c *machine.I2C

	switch bus {
	case 0:
		i2c = machine.I2C0
	case 1:
		// I2C1 - Default pins: SDA=GP6, SCL=GP7
		i2c = machine.I2C1
	default:
		return nil, errors.New("unsupported I2C bus ID")
	}

	// SDA and SCL pins are set to defaults by TinyGo
	err := i2c.Configure(machine.I2CConfig{
		Frequency: frequencyHz,
	})
	if err != nil {
		return nil, err
	}

	return i2c, nil
}

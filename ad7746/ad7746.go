// Package ad7746 implements a driver for the AD7746 capacitance-to-digital
// converter on a two-wire (I2C) bus.
//
// The driver runs the capacitive channel in differential mode with a ±4 pF
// full-scale range. Samples are 24-bit ratiometric codes mapped linearly onto
// [-4, +4] pF.
//
// Datasheet: https://www.analog.com/media/en/technical-documentation/data-sheets/ad7745_7746.pdf
package ad7746

import (
	"capsense/core"

	"tinygo.org/x/drivers"
)

// Device wraps an I2C connection to an AD7746 device.
type Device struct {
	bus     drivers.I2C
	Address uint16

	// Last bytes taken off the bus. A failed read stores noData, the value an
	// empty two-wire receive buffer hands back.
	status uint8
	data   [SAMPLE_BYTES]byte
}

// noData is what a read returns when the device did not answer
const noData = 0xFF

// Config holds the values written to the configuration registers by
// Configure.
type Config struct {
	Config   uint8 // CONFIG register
	CapSetup uint8 // CAP_SETUP register
	DacA     uint8 // CAP_DAC_A register
	DacB     uint8 // CAP_DAC_B register
}

// DefaultConfig returns continuous conversion on the differential capacitive
// channel with both offset DACs disabled.
func DefaultConfig() Config {
	return Config{
		Config:   CONFIG_CONTINUOUS,
		CapSetup: CAP_SETUP_DIFF,
		DacA:     CAP_DAC_OFF,
		DacB:     CAP_DAC_OFF,
	}
}

// New creates a new AD7746 connection. The I2C bus must already be
// configured.
//
// This function only creates the Device object, it does not touch the device.
func New(bus drivers.I2C) Device {
	return Device{
		bus:     bus,
		Address: Address,
		status:  noData,
	}
}

func (d *Device) dev() core.I2CDevice {
	return core.NewI2CDevice(d.bus, uint8(d.Address))
}

// Configure writes CONFIG, CAP_SETUP, CAP_DAC_A and CAP_DAC_B, in that order,
// one transaction each. There is no read-back. Every write is attempted even
// if an earlier one fails; the first error is returned.
func (d *Device) Configure(cfg Config) error {
	writes := [...]struct {
		reg Register
		val uint8
	}{
		{CONFIG, cfg.Config},
		{CAP_SETUP, cfg.CapSetup},
		{CAP_DAC_A, cfg.DacA},
		{CAP_DAC_B, cfg.DacB},
	}

	var first error
	for _, w := range writes {
		if err := d.WriteRegister(w.reg, w.val); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// WriteRegister writes a single byte to reg.
func (d *Device) WriteRegister(reg Register, value uint8) error {
	return d.dev().WriteRegister(uint8(reg), value)
}

// Status reads the STATUS register. On a bus error 0xFF is returned together
// with the error, which reads as busy.
func (d *Device) Status() (uint8, error) {
	var buf [1]byte
	if err := d.dev().ReadRegister(uint8(STATUS), buf[:]); err != nil {
		d.status = noData
		return d.status, err
	}
	d.status = buf[0]
	return d.status, nil
}

// DataReady reports whether a conversion has completed.
func (d *Device) DataReady() (bool, error) {
	status, err := d.Status()
	return Ready(status), err
}

// ReadRaw reads the 24-bit capacitance code from CAP_DATA_H..CAP_DATA_L in
// one sequential read. On a bus error every byte reads as 0xFF, giving
// MAX_CODE together with the error.
func (d *Device) ReadRaw() (uint32, error) {
	var buf [SAMPLE_BYTES]byte
	if err := d.dev().ReadRegister(uint8(CAP_DATA_H), buf[:]); err != nil {
		d.data = [SAMPLE_BYTES]byte{noData, noData, noData}
		return AssembleRaw(d.data[0], d.data[1], d.data[2]), err
	}
	d.data = buf
	return AssembleRaw(d.data[0], d.data[1], d.data[2]), nil
}

// ReadCapacitance reads one sample and returns it in picofarads.
func (d *Device) ReadCapacitance() (float64, error) {
	raw, err := d.ReadRaw()
	return RawToPicofarads(raw), err
}

// Ready interprets a STATUS byte: bit 7 clear means data is ready.
func Ready(status uint8) bool {
	return status&STATUS_BUSY == 0
}

// AssembleRaw combines the three data bytes, most significant first.
func AssembleRaw(high, mid, low uint8) uint32 {
	return uint32(high)<<16 | uint32(mid)<<8 | uint32(low)
}

// RawToPicofarads maps a raw code onto the symmetric ±4 pF range. The code is
// treated as an unsigned fraction of full scale; no sign extension is done.
func RawToPicofarads(code uint32) float64 {
	return float64(code)/FULL_SCALE_CODES*FULL_SCALE_RANGE_PF - FULL_SCALE_OFFSET_PF
}

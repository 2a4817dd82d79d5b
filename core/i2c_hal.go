package core

import "tinygo.org/x/drivers"

// I2CAddress is a 7-bit I2C device address.
type I2CAddress uint8

// I2CDevice pairs a bus with the address of one peripheral on it. The bus is
// anything implementing drivers.I2C: machine.I2C on TinyGo targets, a periph.io
// bus or a USB bridge on a host, or a mock in tests.
type I2CDevice struct {
	Bus     drivers.I2C
	Address I2CAddress
}

// NewI2CDevice returns a device handle for addr on bus.
func NewI2CDevice(bus drivers.I2C, addr uint8) I2CDevice {
	// Mask address to 7 bits
	return I2CDevice{Bus: bus, Address: I2CAddress(addr & 0x7F)}
}

// WriteRegister writes data starting at register reg in a single
// transaction: start, address+W, reg, data..., stop.
func (d I2CDevice) WriteRegister(reg uint8, data ...byte) error {
	buf := make([]byte, len(data)+1)
	buf[0] = reg
	copy(buf[1:], data)
	return d.Bus.Tx(uint16(d.Address), buf, nil)
}

// ReadRegister reads len(buf) bytes starting at register reg. The register
// pointer is written first and the read follows a repeated start.
func (d I2CDevice) ReadRegister(reg uint8, buf []byte) error {
	return d.Bus.Tx(uint16(d.Address), []byte{reg}, buf)
}

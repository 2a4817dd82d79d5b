package ad7746

// AD7746 24-bit capacitance-to-digital converter register map.
// Based on the AD7746 datasheet, Analog Devices.

// Address is the fixed 7-bit I2C address of the AD7746.
const Address = 0x48

// Register is a one-byte register address inside the device.
type Register uint8

// Register addresses
const (
	STATUS     Register = 0x00 // Status, bit 7 = conversion in progress
	CAP_DATA_H Register = 0x01 // Capacitance data, high byte
	CAP_DATA_M Register = 0x02 // Capacitance data, middle byte
	CAP_DATA_L Register = 0x03 // Capacitance data, low byte
	CONFIG     Register = 0x07 // Conversion mode control
	CAP_SETUP  Register = 0x08 // Capacitive channel enable / mode select
	EXC_SETUP  Register = 0x09 // Excitation signal control
	CAP_DAC_A  Register = 0x0A // Offset-compensation DAC A
	CAP_DAC_B  Register = 0x0B // Offset-compensation DAC B
)

// Status register bits
const (
	STATUS_BUSY = 0x80 // 1 = conversion in progress, 0 = data ready
)

// Configuration values written at start-up
const (
	CONFIG_CONTINUOUS    = 0x00 // Continuous conversion, temperature channel off
	CAP_SETUP_DIFF       = 0x20 // Capacitive channel enabled, differential mode
	CAP_DAC_OFF          = 0x00 // No offset compensation
	SAMPLE_BYTES         = 3    // CAP_DATA_H..CAP_DATA_L
	FULL_SCALE_CODES     = 1 << 24
	MAX_CODE             = FULL_SCALE_CODES - 1
	FULL_SCALE_RANGE_PF  = 8.0 // Span of the ±4 pF input range
	FULL_SCALE_OFFSET_PF = 4.0
)

func (r Register) String() string {
	switch r {
	case STATUS:
		return "STATUS"
	case CAP_DATA_H:
		return "CAP_DATA_H"
	case CAP_DATA_M:
		return "CAP_DATA_M"
	case CAP_DATA_L:
		return "CAP_DATA_L"
	case CONFIG:
		return "CONFIG"
	case CAP_SETUP:
		return "CAP_SETUP"
	case EXC_SETUP:
		return "EXC_SETUP"
	case CAP_DAC_A:
		return "CAP_DAC_A"
	case CAP_DAC_B:
		return "CAP_DAC_B"
	}
	return "UNKNOWN"
}

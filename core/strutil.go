package core

import "math"

// utoa converts an unsigned integer to a string
func utoa(n uint32) string {
	if n == 0 {
		return "0"
	}

	// Count digits
	temp := n
	digits := 0
	for temp > 0 {
		digits++
		temp /= 10
	}

	// Build string from right to left
	buf := make([]byte, digits)
	pos := digits - 1

	for n > 0 {
		buf[pos] = byte('0' + n%10)
		n /= 10
		pos--
	}

	return string(buf)
}

// FormatFloat renders v with a fixed number of fractional digits without the
// fmt package. It follows the microcontroller serial convention: round half
// up at the last printed digit, print the integer part, then peel off one
// fractional digit at a time. Magnitudes beyond 32 bits print as "ovf".
func FormatFloat(v float64, digits int) string {
	if math.IsNaN(v) {
		return "nan"
	}
	if math.IsInf(v, 0) {
		return "inf"
	}
	if v > maxPrintable || v < -maxPrintable {
		return "ovf"
	}

	var buf []byte
	if v < 0 {
		buf = append(buf, '-')
		v = -v
	}

	rounding := 0.5
	for i := 0; i < digits; i++ {
		rounding /= 10
	}
	v += rounding

	intPart := uint32(v)
	remainder := v - float64(intPart)
	buf = append(buf, utoa(intPart)...)

	if digits > 0 {
		buf = append(buf, '.')
	}
	for ; digits > 0; digits-- {
		remainder *= 10
		d := uint32(remainder)
		buf = append(buf, byte('0'+d))
		remainder -= float64(d)
	}

	return string(buf)
}

// maxPrintable is the largest magnitude whose integer part fits in 32 bits
const maxPrintable = 4294967040.0

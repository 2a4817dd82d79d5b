package monitor

import (
	"errors"
	"strconv"
	"strings"

	"capsense/core"
)

// ErrNotReport is returned by ParseReport for lines that are not readings.
var ErrNotReport = errors.New("not a capacitance report line")

// ParseReport extracts the picofarad value from a line produced by
// core.FormatReport. Surrounding whitespace and CR/LF are ignored.
func ParseReport(line string) (float64, error) {
	line = strings.TrimSpace(line)
	if len(line) < len(core.ReportPrefix)+len(core.ReportUnit) ||
		!strings.HasPrefix(line, core.ReportPrefix) || !strings.HasSuffix(line, core.ReportUnit) {
		return 0, ErrNotReport
	}
	num := strings.TrimSpace(line[len(core.ReportPrefix) : len(line)-len(core.ReportUnit)])
	if num == "" {
		return 0, ErrNotReport
	}
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, errors.Join(ErrNotReport, err)
	}
	return v, nil
}

package core

// Report line framing. One line is emitted per ready sample.
const (
	ReportPrefix = "Capacitance: "
	ReportUnit   = " pF"
	ReportDigits = 6
)

// FormatReport returns the report line for a value in picofarads, without
// the line terminator.
func FormatReport(pf float64) string {
	return ReportPrefix + FormatFloat(pf, ReportDigits) + ReportUnit
}

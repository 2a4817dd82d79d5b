package monitor

import (
	"errors"
	"testing"

	"capsense/core"
)

func TestParseReport(t *testing.T) {
	tests := []struct {
		line string
		want float64
		err  bool
	}{
		{"Capacitance: 0.000000 pF", 0, false},
		{"Capacitance: -3.250000 pF\r\n", -3.25, false},
		{"  Capacitance: 1.000001 pF", 1.000001, false},
		{"Capacitance:  pF", 0, true},
		{"Capacitance: pF", 0, true},
		{"Capacitance: abc pF", 0, true},
		{"Temperature: 1.0 C", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseReport(tt.line)
		if tt.err {
			if !errors.Is(err, ErrNotReport) {
				t.Errorf("ParseReport(%q) error = %v, want ErrNotReport", tt.line, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseReport(%q) unexpected error: %v", tt.line, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseReport(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestReportRoundTrip(t *testing.T) {
	for _, pf := range []float64{-4, -0.5, 0, 0.123456, 3.999999} {
		got, err := ParseReport(core.FormatReport(pf))
		if err != nil {
			t.Fatalf("ParseReport(FormatReport(%v)): %v", pf, err)
		}
		if diff := got - pf; diff > 1e-6 || diff < -1e-6 {
			t.Errorf("round trip %v -> %v", pf, got)
		}
	}
}

package serial

import (
	"errors"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("/dev/ttyUSB0")

	if cfg.Device != "/dev/ttyUSB0" {
		t.Errorf("Expected device /dev/ttyUSB0, got %s", cfg.Device)
	}
	if cfg.Baud != 9600 {
		t.Errorf("Expected baud 9600, got %d", cfg.Baud)
	}
	if cfg.ReadTimeout != 0 {
		t.Errorf("Expected blocking reads, got timeout %d", cfg.ReadTimeout)
	}
}

func TestOpenRejectsBadConfig(t *testing.T) {
	if _, err := Open(nil); !errors.Is(err, ErrNilConfig) {
		t.Errorf("Open(nil) error = %v, want ErrNilConfig", err)
	}

	if _, err := Open(&Config{}); err == nil {
		t.Error("Open with empty device should fail")
	}
}

func TestOpenMissingDevice(t *testing.T) {
	_, err := Open(DefaultConfig("/dev/capsense-does-not-exist"))
	if err == nil {
		t.Fatal("Expected error opening a missing device")
	}
}

package controller

import "testing"

func TestIsUSBPort(t *testing.T) {
	tests := []struct {
		name     string
		expected bool
	}{
		{"/dev/ttyUSB0", true},
		{"/dev/ttyACM0", true},
		{"/dev/cu.usbmodem2101", true},
		{"/dev/cu.usbserial-0001", true},
		{"/dev/ttyS0", false},
		{"/dev/console", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isUSBPort(tt.name); got != tt.expected {
				t.Errorf("isUSBPort(%q) = %t, want %t", tt.name, got, tt.expected)
			}
		})
	}
}

func TestJogRejectsProtocolValues(t *testing.T) {
	c := &Controller{}

	if err := c.Jog(0); err == nil {
		t.Error("Jog(0) should be rejected, 0 is the protocol no-op")
	}
	if err := c.Jog(1); err == nil {
		t.Error("Jog(1) should be rejected, 1 starts a cycle")
	}
}

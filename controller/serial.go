package controller

import (
	"errors"
	"strings"

	"go.bug.st/serial"
)

// SerialPortNone is the UI's "no port selected" sentinel.
const SerialPortNone = "none"

// ErrNoUSBSerial means no USB/ACM serial port was found to autodetect.
var ErrNoUSBSerial = errors.New("no USB serial ports found")

// preferredPorts are tried first, in order.
var preferredPorts = []string{"/dev/ttyUSB0", "/dev/ttyACM0"}

// GetSerialPorts lists serial ports that look like USB devices.
func GetSerialPorts() ([]string, error) {
	all, err := serial.GetPortsList()
	if err != nil {
		return nil, err
	}

	var ports []string
	for _, p := range all {
		if isUSBPort(p) {
			ports = append(ports, p)
		}
	}
	if len(ports) == 0 {
		return nil, ErrNoUSBSerial
	}
	return ports, nil
}

func autodetectPort() (string, error) {
	ports, err := GetSerialPorts()
	if err != nil {
		return "", err
	}

	for _, pref := range preferredPorts {
		for _, p := range ports {
			if p == pref {
				return p, nil
			}
		}
	}
	return ports[0], nil
}

func isUSBPort(name string) bool {
	return strings.Contains(name, "USB") ||
		strings.Contains(name, "ACM") ||
		strings.Contains(name, "usbmodem") ||
		strings.Contains(name, "usbserial")
}

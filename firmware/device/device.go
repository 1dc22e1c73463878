// Package device implements motion.Hardware on top of the machine package
// for the jig's A4988-style driver board.
//
// Electrical contract: the end-stop input is active-LOW with the internal
// pull-up, the external trigger is active-HIGH, and the driver enable
// output is active-LOW (LOW = coils energized).
package device

import (
	"errors"
	"machine"
	"time"
)

const defaultStepPulseWidth = 3 * time.Microsecond

// Config has the pin assignments and step pulse timing.
type Config struct {
	StepPin   machine.Pin
	DirPin    machine.Pin
	EnablePin machine.Pin

	EndStopPin machine.Pin
	TriggerPin machine.Pin

	StepPulseWidth time.Duration
}

// Device owns the driver pins and both digital inputs. Nothing else may
// write to them.
type Device struct {
	cfg Config
}

// New configures the pins and returns the device with the driver disabled.
func New(cfg Config) (*Device, error) {
	if cfg.StepPin == cfg.DirPin {
		return nil, errors.New("step and dir pins must differ")
	}
	if cfg.StepPulseWidth == 0 {
		cfg.StepPulseWidth = defaultStepPulseWidth
	}

	for _, p := range []machine.Pin{cfg.StepPin, cfg.DirPin, cfg.EnablePin} {
		p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	}
	cfg.EndStopPin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	cfg.TriggerPin.Configure(machine.PinConfig{Mode: machine.PinInputPulldown})

	d := &Device{cfg: cfg}
	d.SetEnable(false)
	return d, nil
}

// ReadEndStop reports whether the limit switch is pressed (pin LOW).
func (d *Device) ReadEndStop() bool {
	return !d.cfg.EndStopPin.Get()
}

// ReadTrigger reports whether the external trigger input is HIGH.
func (d *Device) ReadTrigger() bool {
	return d.cfg.TriggerPin.Get()
}

// SetEnable drives the enable output; the A4988 EN pin is active-LOW.
func (d *Device) SetEnable(on bool) {
	d.cfg.EnablePin.Set(!on)
}

// Step emits one step pulse in the given direction.
func (d *Device) Step(forward bool) {
	d.cfg.DirPin.Set(forward)
	d.cfg.StepPin.High()
	time.Sleep(d.cfg.StepPulseWidth)
	d.cfg.StepPin.Low()
}

// Serial adapts machine.Serial to the controller's byte interfaces.
// ReadByte is non-blocking and errors when the buffer is empty.
type Serial struct{}

func (Serial) ReadByte() (byte, error) {
	return machine.Serial.ReadByte()
}

func (Serial) Write(p []byte) (int, error) {
	for _, b := range p {
		machine.Serial.WriteByte(b)
	}
	return len(p), nil
}

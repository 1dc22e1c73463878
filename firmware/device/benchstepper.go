package device

import (
	"errors"

	"tinygo.org/x/drivers/easystepper"
)

// BenchRig drives the 28BYJ-48 test motor through easystepper instead of
// the A4988 carrier. It has no end-stop or trigger wired, so it only makes
// sense for serial-command bench testing of the step generator.
type BenchRig struct {
	stepper *easystepper.Device
}

// NewBenchRig creates the bench backend from an easystepper config.
func NewBenchRig(cfg easystepper.DeviceConfig) (*BenchRig, error) {
	stepper, err := easystepper.New(cfg)
	if err != nil {
		return nil, errors.New("error creating stepper: " + err.Error())
	}
	stepper.Configure()
	return &BenchRig{stepper: stepper}, nil
}

func (b *BenchRig) ReadEndStop() bool { return false }
func (b *BenchRig) ReadTrigger() bool { return false }

// SetEnable is a no-op: the ULN2003 board energizes coils directly.
func (b *BenchRig) SetEnable(on bool) {}

func (b *BenchRig) Step(forward bool) {
	if forward {
		b.stepper.Move(1)
	} else {
		b.stepper.Move(-1)
	}
}

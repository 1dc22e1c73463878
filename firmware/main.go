package main

import (
	"machine"
	"time"

	"github.com/tmarchant/autojig/firmware/device"
	"github.com/tmarchant/autojig/motion"
)

func main() {
	// for the motor-only bench rig, build hw with device.NewBenchRig and
	// an easystepper.DeviceConfig instead of device.New
	hw, err := device.New(device.Config{
		StepPin:        machine.GP2,
		DirPin:         machine.GP3,
		EnablePin:      machine.GP4,
		EndStopPin:     machine.GP14,
		TriggerPin:     machine.GP15,
		StepPulseWidth: 3 * time.Microsecond,
	})
	if err != nil {
		panic(err)
	}

	// give USB serial a moment to enumerate before the banner
	time.Sleep(2 * time.Second)

	ctrl := motion.New(hw, device.Serial{}, device.Serial{}, motion.DefaultConfig())
	ctrl.Run()
}

package motion

import "time"

// Profile pairs the speed limit and acceleration used for one motion
// segment. The controller switches between the fast and slow profiles
// during an auto cycle.
type Profile struct {
	MaxSpeed     float64 // steps/s
	Acceleration float64 // steps/s^2
}

// Config has the calibration values for the jig's travel and timing.
type Config struct {
	// ForwardSteps is the auto-cycle forward leg toward the end-stop
	// (~1.5cm plus margin). BackupSteps is the slow return leg.
	ForwardSteps int32
	BackupSteps  int32

	Fast Profile
	Slow Profile

	// DebounceDelay is the minimum time between accepted trigger edges.
	DebounceDelay time.Duration

	// WaitTime is the settle delay after the forward leg, SleepTime the
	// rest period after the motor is switched off.
	WaitTime  time.Duration
	SleepTime time.Duration

	// PollInterval is how long the step runner idles when no step is due.
	PollInterval time.Duration
}

// DefaultConfig returns the calibrated values for the jig fixture.
func DefaultConfig() Config {
	return Config{
		ForwardSteps:  130,
		BackupSteps:   125,
		Fast:          Profile{MaxSpeed: 1000, Acceleration: 500},
		Slow:          Profile{MaxSpeed: 250, Acceleration: 125},
		DebounceDelay: 50 * time.Millisecond,
		WaitTime:      1000 * time.Millisecond,
		SleepTime:     3000 * time.Millisecond,
		PollInterval:  100 * time.Microsecond,
	}
}

func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.ForwardSteps == 0 {
		c.ForwardSteps = def.ForwardSteps
	}
	if c.BackupSteps == 0 {
		c.BackupSteps = def.BackupSteps
	}
	if c.Fast == (Profile{}) {
		c.Fast = def.Fast
	}
	if c.Slow == (Profile{}) {
		c.Slow = def.Slow
	}
	if c.DebounceDelay == 0 {
		c.DebounceDelay = def.DebounceDelay
	}
	if c.WaitTime == 0 {
		c.WaitTime = def.WaitTime
	}
	if c.SleepTime == 0 {
		c.SleepTime = def.SleepTime
	}
	if c.PollInterval == 0 {
		c.PollInterval = def.PollInterval
	}
}

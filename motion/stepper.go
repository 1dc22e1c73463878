package motion

import (
	"math"
	"time"
)

// StepFunc issues one physical step in the given direction.
type StepFunc func(forward bool)

// Stepper generates steps for a trapezoidal speed ramp, one tick at a
// time. Each Run call emits at most one step when its interval is due, so
// the caller stays in control of the loop and the end-stop can be sampled
// between steps.
//
// The ramp timing uses the usual equal-interval approximation: the first
// interval is c0 = 0.676*sqrt(2/a) seconds and each following interval is
// cn = cn-1 - 2*cn-1/(4n+1), clamped at the MaxSpeed interval.
type Stepper struct {
	step  StepFunc
	clock Clock

	position int32
	target   int32

	maxSpeed float64 // steps/s
	accel    float64 // steps/s^2

	speed        float64 // signed, steps/s
	stepInterval float64 // µs, 0 means not stepping
	c0           float64 // µs, initial ramp interval
	cmin         float64 // µs, interval at MaxSpeed
	cn           float64 // µs, last computed interval
	rampStep     int32   // position in the ramp, negative while decelerating
	direction    int32   // +1 forward, -1 backward
	lastStep     time.Time
}

// NewStepper returns a stepper that calls step for every pulse and uses
// clock for interval timing.
func NewStepper(step StepFunc, clock Clock) *Stepper {
	return &Stepper{
		step:      step,
		clock:     clock,
		direction: 1,
	}
}

// SetProfile applies a new speed limit and acceleration. Safe to call
// mid-move; the ramp position is rescaled so the motor does not jump.
func (s *Stepper) SetProfile(p Profile) {
	if p.MaxSpeed <= 0 || p.Acceleration <= 0 {
		return
	}
	if s.maxSpeed != p.MaxSpeed {
		s.maxSpeed = p.MaxSpeed
		s.cmin = 1e6 / p.MaxSpeed
		if s.rampStep > 0 {
			s.rampStep = int32((s.speed * s.speed) / (2.0 * p.Acceleration))
		}
	}
	if s.accel != p.Acceleration {
		if s.accel > 0 {
			s.rampStep = int32(float64(s.rampStep) * (s.accel / p.Acceleration))
		}
		s.c0 = 0.676 * math.Sqrt(2.0/p.Acceleration) * 1e6
		s.accel = p.Acceleration
	}
	s.computeNewSpeed()
}

// Move sets a new target relative to the current position.
func (s *Stepper) Move(relative int32) {
	s.MoveTo(s.position + relative)
}

// MoveTo sets a new absolute target position.
func (s *Stepper) MoveTo(target int32) {
	s.target = target
	s.computeNewSpeed()
}

// Position returns the current position in steps, relative to the last
// override.
func (s *Stepper) Position() int32 {
	return s.position
}

// DistanceToGo returns the signed number of steps remaining to the target.
func (s *Stepper) DistanceToGo() int32 {
	return s.target - s.position
}

// Speed returns the current signed speed in steps/s.
func (s *Stepper) Speed() float64 {
	return s.speed
}

// OverridePosition redefines the current position, discarding any residual
// distance to go. Used when the end-stop marks a hard mechanical limit and
// for the logical re-zero at the end of a cycle.
func (s *Stepper) OverridePosition(position int32) {
	s.position = position
	s.target = position
	s.Halt()
}

// Halt stops step generation immediately without touching the position or
// target, so the remaining distance stays observable.
func (s *Stepper) Halt() {
	s.rampStep = 0
	s.speed = 0
	s.stepInterval = 0
}

// Run emits one step if its interval has elapsed. Returns true when a step
// was taken.
func (s *Stepper) Run() bool {
	if s.stepInterval == 0 {
		return false
	}

	now := s.clock.Now()
	interval := time.Duration(s.stepInterval) * time.Microsecond
	if !s.lastStep.IsZero() && now.Sub(s.lastStep) < interval {
		return false
	}

	s.position += s.direction
	s.step(s.direction > 0)
	s.lastStep = now
	s.computeNewSpeed()
	return true
}

func (s *Stepper) computeNewSpeed() {
	if s.accel <= 0 {
		s.stepInterval = 0
		return
	}

	distanceTo := s.DistanceToGo()
	stepsToStop := int32((s.speed * s.speed) / (2.0 * s.accel))

	if distanceTo == 0 && stepsToStop <= 1 {
		// at the target and essentially stopped
		s.stepInterval = 0
		s.speed = 0
		s.rampStep = 0
		return
	}

	if distanceTo > 0 {
		if s.rampStep > 0 {
			// accelerating: start braking if we would overshoot or are
			// headed the wrong way
			if stepsToStop >= distanceTo || s.direction < 0 {
				s.rampStep = -stepsToStop
			}
		} else if s.rampStep < 0 {
			if stepsToStop < distanceTo && s.direction > 0 {
				s.rampStep = -s.rampStep
			}
		}
	} else if distanceTo < 0 {
		if s.rampStep > 0 {
			if -distanceTo <= stepsToStop || s.direction > 0 {
				s.rampStep = -stepsToStop
			}
		} else if s.rampStep < 0 {
			if -distanceTo > stepsToStop && s.direction < 0 {
				s.rampStep = -s.rampStep
			}
		}
	}

	if s.rampStep == 0 {
		s.cn = s.c0
		if distanceTo > 0 {
			s.direction = 1
		} else {
			s.direction = -1
		}
	} else {
		s.cn = s.cn - (2.0*s.cn)/(4.0*float64(s.rampStep)+1.0)
		if s.cn < s.cmin {
			s.cn = s.cmin
		}
	}
	s.rampStep++

	s.stepInterval = s.cn
	s.speed = 1e6 / s.cn
	if s.direction < 0 {
		s.speed = -s.speed
	}
}

// Package motion implements the jig's motion controller: a single-loop,
// poll-driven state machine that drives the stepper through calibrated
// profiles, watches the end-stop and external trigger, and takes integer
// commands from the serial stream.
package motion

import (
	"fmt"
	"io"
	"time"

	"github.com/tmarchant/autojig"
)

// Hardware is the capability interface the controller needs from the
// board. Electrical polarity (active-LOW end-stop and enable, active-HIGH
// trigger) is the device layer's concern; these methods speak logic
// levels: ReadEndStop is true when the switch is pressed, ReadTrigger is
// true while the trigger input is high.
type Hardware interface {
	ReadEndStop() bool
	ReadTrigger() bool
	SetEnable(on bool)
	Step(forward bool)
}

// Input is the non-blocking serial byte source. ReadByte returns an error
// when nothing is buffered; the poll loop treats that as "nothing to do".
type Input interface {
	ReadByte() (byte, error)
}

// State is the controller's position in its cycle. There is no terminal
// state; the controller polls forever.
type State int

const (
	StateIdle State = iota
	StateManualMove
	StateForwardMove
	StateEndStopCheck
	StateWaitDelay
	StateReturnMove
	StateReset
	StateSleepDelay
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateManualMove:
		return "ManualMove"
	case StateForwardMove:
		return "ForwardMove"
	case StateEndStopCheck:
		return "EndStopCheck"
	case StateWaitDelay:
		return "WaitDelay"
	case StateReturnMove:
		return "ReturnMove"
	case StateReset:
		return "Reset"
	case StateSleepDelay:
		return "SleepDelay"
	default:
		return "Unknown"
	}
}

const maxLineLen = 64

// Controller owns the stepper, both digital inputs and the driver enable
// output. All state is mutated from the single poll loop; there are no
// concurrent writers.
type Controller struct {
	hw    Hardware
	in    Input
	out   io.Writer
	clock Clock
	cfg   Config

	stepper *Stepper
	state   State

	driverEnabled bool

	lastTriggerLevel bool
	lastTrigger      time.Time // last accepted edge

	line []byte
}

// New returns a controller using the wall clock.
func New(hw Hardware, in Input, out io.Writer, cfg Config) *Controller {
	return newController(hw, in, out, cfg, wallClock{})
}

func newController(hw Hardware, in Input, out io.Writer, cfg Config, clock Clock) *Controller {
	cfg.applyDefaults()
	return &Controller{
		hw:      hw,
		in:      in,
		out:     out,
		clock:   clock,
		cfg:     cfg,
		stepper: NewStepper(hw.Step, clock),
		line:    make([]byte, 0, maxLineLen),
	}
}

// State returns the controller's current state.
func (c *Controller) State() State {
	return c.state
}

// Position returns the logical position in steps since the last re-zero.
func (c *Controller) Position() int32 {
	return c.stepper.Position()
}

// DriverEnabled reports whether the driver output is currently enabled.
func (c *Controller) DriverEnabled() bool {
	return c.driverEnabled
}

// Run prints the readiness banner and polls forever. This is the firmware
// entry point; it never returns.
func (c *Controller) Run() {
	fmt.Fprintf(c.out, "Jig motion controller ready\r\n")
	for {
		c.Poll()
		c.clock.Sleep(c.cfg.PollInterval)
	}
}

// Poll runs one iteration of the control loop: sample the trigger, then
// drain the serial input. A move or cycle started here blocks until it
// reaches a safe stop, so neither input is observed mid-motion.
func (c *Controller) Poll() {
	c.pollTrigger()
	c.pollSerial()
}

func (c *Controller) pollTrigger() {
	if c.checkTrigger() {
		c.AutoCycle()
	}
}

// checkTrigger samples the trigger input and reports whether a debounced
// rising edge was accepted. Edges inside the debounce window are discarded
// outright; a bouncing switch yields exactly one accepted edge per press.
func (c *Controller) checkTrigger() bool {
	level := c.hw.ReadTrigger()
	rising := level && !c.lastTriggerLevel
	c.lastTriggerLevel = level

	if !rising {
		return false
	}
	now := c.clock.Now()
	if !c.lastTrigger.IsZero() && now.Sub(c.lastTrigger) < c.cfg.DebounceDelay {
		return false
	}
	c.lastTrigger = now
	return true
}

func (c *Controller) pollSerial() {
	for {
		b, err := c.in.ReadByte()
		if err != nil {
			return
		}

		switch b {
		case '\n', '\r', ' ', '\t':
			if len(c.line) == 0 {
				continue
			}
			cmd := autojig.ParseCommand(c.line)
			c.line = c.line[:0]
			if c.dispatch(cmd) {
				// one command per line: whatever follows the parsed
				// number is discarded
				if b == ' ' || b == '\t' {
					c.discardLine()
				}
				return
			}
		default:
			if len(c.line) < maxLineLen {
				c.line = append(c.line, b)
			}
		}
	}
}

// dispatch runs a parsed command and reports whether motion happened, so
// the caller can yield back to the trigger poll.
func (c *Controller) dispatch(cmd autojig.Command) bool {
	switch cmd.Kind {
	case autojig.CommandAutoCycle:
		c.AutoCycle()
		return true
	case autojig.CommandMoveSteps:
		c.MoveSteps(cmd.Steps)
		return true
	default:
		return false
	}
}

// MoveSteps moves n steps relative to the current position with the fast
// profile. Negative travel is toward the end-stop and is aborted the
// moment the switch asserts. The driver stays enabled afterwards so the
// motor holds position.
func (c *Controller) MoveSteps(n int32) {
	if n == 0 {
		return
	}

	c.state = StateManualMove
	c.enableDriver()
	c.stepper.SetProfile(c.cfg.Fast)
	c.stepper.Move(n)

	start := c.clock.Now()
	hit := c.runStepper(n < 0)
	elapsed := c.clock.Now().Sub(start)

	if hit {
		remaining := c.stepper.DistanceToGo()
		c.stepper.Halt()
		travelled := abs32(n) - abs32(remaining)
		fmt.Fprintf(c.out, "End-stop reached after %d steps (%d remaining)\r\n", travelled, abs32(remaining))
	} else {
		c.reportMove(abs32(n), elapsed)
	}

	c.state = StateIdle
}

// AutoCycle runs the autonomous sequence: fast forward leg toward the
// end-stop, settle wait, slow return leg, logical re-zero, driver off,
// sleep. It runs to completion; commands and trigger edges arriving
// meanwhile are dropped, not queued.
func (c *Controller) AutoCycle() {
	fmt.Fprintf(c.out, "Auto cycle: forward %d steps\r\n", c.cfg.ForwardSteps)

	c.state = StateForwardMove
	c.enableDriver()
	c.stepper.SetProfile(c.cfg.Fast)
	c.stepper.Move(-c.cfg.ForwardSteps)
	hit := c.runStepper(true)

	c.state = StateEndStopCheck
	if hit {
		// hard mechanical limit: stop dead, no deceleration, and adopt
		// the present physical position
		c.stepper.OverridePosition(c.stepper.Position())
		fmt.Fprintf(c.out, "End-stop reached, stopping early\r\n")
	}

	c.state = StateWaitDelay
	fmt.Fprintf(c.out, "Waiting %dms\r\n", c.cfg.WaitTime.Milliseconds())
	c.clock.Sleep(c.cfg.WaitTime)

	c.state = StateReturnMove
	fmt.Fprintf(c.out, "Returning %d steps\r\n", c.cfg.BackupSteps)
	c.stepper.SetProfile(c.cfg.Slow)
	c.stepper.Move(c.cfg.BackupSteps)
	c.runStepper(false)

	c.state = StateReset
	c.stepper.OverridePosition(0)
	c.disableDriver()
	fmt.Fprintf(c.out, "Cycle complete, motor off\r\n")

	c.state = StateSleepDelay
	c.clock.Sleep(c.cfg.SleepTime)

	// anything that arrived on the wire during the cycle is stale
	c.drainInput()
	c.state = StateIdle
}

// runStepper drives the step generator until the remaining distance is
// zero, or, when guarding the end-stop, until the switch asserts. The
// end-stop is sampled at least once per iteration so an already-asserted
// switch stops the move before the first step.
func (c *Controller) runStepper(checkEndStop bool) bool {
	for c.stepper.DistanceToGo() != 0 {
		if checkEndStop && c.hw.ReadEndStop() {
			return true
		}
		if !c.stepper.Run() {
			c.clock.Sleep(c.cfg.PollInterval)
		}
	}
	return false
}

func (c *Controller) reportMove(steps int32, elapsed time.Duration) {
	secs := elapsed.Seconds()
	if secs > 0 {
		fmt.Fprintf(c.out, "Moved %d steps in %dms (%.0f steps/s)\r\n",
			steps, elapsed.Milliseconds(), float64(steps)/secs)
		return
	}
	// degenerate zero-duration move: skip the rate rather than divide
	fmt.Fprintf(c.out, "Moved %d steps\r\n", steps)
}

func (c *Controller) enableDriver() {
	c.hw.SetEnable(true)
	c.driverEnabled = true
}

func (c *Controller) disableDriver() {
	c.hw.SetEnable(false)
	c.driverEnabled = false
}

// discardLine consumes buffered bytes up to the end of the current line.
func (c *Controller) discardLine() {
	for {
		b, err := c.in.ReadByte()
		if err != nil || b == '\n' || b == '\r' {
			return
		}
	}
}

func (c *Controller) drainInput() {
	c.line = c.line[:0]
	for {
		if _, err := c.in.ReadByte(); err != nil {
			return
		}
	}
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

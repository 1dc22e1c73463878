package motion

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

type fakeHardware struct {
	endStop      bool  // directly asserted switch
	endStopAt    int32 // when armed, switch asserts at this physical position
	endStopArmed bool
	trigger      bool

	enabled     bool
	enableCalls []bool

	endStopReads int
	position     int32 // net physical steps
	stepCount    int
}

func (f *fakeHardware) ReadEndStop() bool {
	f.endStopReads++
	if f.endStopArmed && f.position <= f.endStopAt {
		return true
	}
	return f.endStop
}

func (f *fakeHardware) ReadTrigger() bool {
	return f.trigger
}

func (f *fakeHardware) SetEnable(on bool) {
	f.enabled = on
	f.enableCalls = append(f.enableCalls, on)
}

func (f *fakeHardware) Step(forward bool) {
	if forward {
		f.position++
	} else {
		f.position--
	}
	f.stepCount++
}

func newTestController(hw *fakeHardware, input string) (*Controller, *bytes.Buffer, *fakeClock) {
	out := &bytes.Buffer{}
	clock := newFakeClock()
	c := newController(hw, bytes.NewBufferString(input), out, DefaultConfig(), clock)
	return c, out, clock
}

func TestMoveStepsForward(t *testing.T) {
	hw := &fakeHardware{}
	c, out, _ := newTestController(hw, "")

	c.MoveSteps(250)

	if hw.position != 250 {
		t.Errorf("position = %d, want 250", hw.position)
	}
	if hw.endStopReads != 0 {
		t.Errorf("endStopReads = %d, forward moves must not sample the end-stop", hw.endStopReads)
	}
	if !hw.enabled {
		t.Error("driver should stay enabled after a manual move")
	}
	if c.stepper.DistanceToGo() != 0 {
		t.Errorf("DistanceToGo() = %d, want 0", c.stepper.DistanceToGo())
	}
	if got := out.String(); !strings.Contains(got, "Moved 250 steps") || !strings.Contains(got, "steps/s") {
		t.Errorf("unexpected report: %q", got)
	}
	if c.State() != StateIdle {
		t.Errorf("State() = %s, want Idle", c.State())
	}
}

func TestMoveStepsForwardIgnoresAssertedEndStop(t *testing.T) {
	hw := &fakeHardware{endStop: true}
	c, _, _ := newTestController(hw, "")

	c.MoveSteps(30)

	if hw.position != 30 {
		t.Errorf("position = %d, want 30", hw.position)
	}
	if hw.endStopReads != 0 {
		t.Errorf("endStopReads = %d, want 0", hw.endStopReads)
	}
}

func TestMoveStepsBackwardStopsAtEndStop(t *testing.T) {
	hw := &fakeHardware{endStopArmed: true, endStopAt: -10}
	c, out, _ := newTestController(hw, "")

	c.MoveSteps(-100)

	if hw.position != -10 {
		t.Errorf("position = %d, want -10", hw.position)
	}
	if got := c.stepper.DistanceToGo(); got == 0 {
		t.Error("DistanceToGo() = 0, early stop must leave residual distance")
	}
	if got := out.String(); !strings.Contains(got, "End-stop reached after 10 steps (90 remaining)") {
		t.Errorf("unexpected report: %q", got)
	}
}

func TestMoveStepsBackwardEndStopAtRest(t *testing.T) {
	hw := &fakeHardware{endStop: true}
	c, out, _ := newTestController(hw, "")

	c.MoveSteps(-50)

	if hw.stepCount != 0 {
		t.Errorf("stepCount = %d, want 0 when end-stop is already asserted", hw.stepCount)
	}
	if got := out.String(); !strings.Contains(got, "End-stop reached after 0 steps (50 remaining)") {
		t.Errorf("unexpected report: %q", got)
	}
}

func TestMoveStepsZeroDurationOmitsSpeed(t *testing.T) {
	hw := &fakeHardware{}
	c, out, _ := newTestController(hw, "")

	// a single step fires on the first tick, before any simulated time passes
	c.MoveSteps(-1)

	got := out.String()
	if !strings.Contains(got, "Moved 1 steps") {
		t.Errorf("unexpected report: %q", got)
	}
	if strings.Contains(got, "steps/s") {
		t.Errorf("zero-duration move must omit the speed figure: %q", got)
	}
}

func TestTriggerDebounce(t *testing.T) {
	hw := &fakeHardware{}
	c, _, clock := newTestController(hw, "")

	press := func() bool {
		hw.trigger = true
		accepted := c.checkTrigger()
		hw.trigger = false
		c.checkTrigger()
		return accepted
	}

	if !press() {
		t.Error("first edge should be accepted")
	}

	clock.Sleep(10 * time.Millisecond)
	if press() {
		t.Error("edge 10ms after an accepted edge should be discarded")
	}

	// a discarded edge must not reset the window
	clock.Sleep(10 * time.Millisecond)
	if press() {
		t.Error("edge still inside the window should be discarded")
	}

	clock.Sleep(60 * time.Millisecond)
	if !press() {
		t.Error("edge after the window should be accepted")
	}
}

func TestTriggerLevelHeldHighFiresOnce(t *testing.T) {
	hw := &fakeHardware{trigger: true}
	c, out, _ := newTestController(hw, "")

	c.Poll()
	c.Poll()
	c.Poll()

	if got := strings.Count(out.String(), "Cycle complete"); got != 1 {
		t.Errorf("cycles = %d, want exactly 1 for a held-high trigger", got)
	}
}

func TestAutoCycleNetTravel(t *testing.T) {
	hw := &fakeHardware{}
	c, out, _ := newTestController(hw, "")

	c.AutoCycle()

	// 130 toward the end-stop, 125 back: 5 steps short of the start
	if hw.position != -5 {
		t.Errorf("physical position = %d, want -5", hw.position)
	}
	if hw.stepCount != 255 {
		t.Errorf("stepCount = %d, want 255", hw.stepCount)
	}
	if c.Position() != 0 {
		t.Errorf("logical position = %d, want 0 after re-zero", c.Position())
	}
	if hw.enabled {
		t.Error("driver must be disabled after a cycle")
	}
	if len(hw.enableCalls) == 0 || !hw.enableCalls[0] {
		t.Error("driver must be enabled before motion starts")
	}
	if c.State() != StateIdle {
		t.Errorf("State() = %s, want Idle", c.State())
	}

	got := out.String()
	for _, want := range []string{
		"Auto cycle: forward 130 steps",
		"Waiting 1000ms",
		"Returning 125 steps",
		"Cycle complete, motor off",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q: %q", want, got)
		}
	}
}

func TestAutoCycleEndStop(t *testing.T) {
	hw := &fakeHardware{endStopArmed: true, endStopAt: -40}
	c, out, _ := newTestController(hw, "")

	c.AutoCycle()

	// forward leg aborted at -40, full 125-step return
	if hw.position != 85 {
		t.Errorf("physical position = %d, want 85", hw.position)
	}
	if c.Position() != 0 {
		t.Errorf("logical position = %d, want 0 after re-zero", c.Position())
	}
	if hw.enabled {
		t.Error("driver must be disabled after a cycle")
	}
	if !strings.Contains(out.String(), "End-stop reached, stopping early") {
		t.Errorf("output missing early-stop report: %q", out.String())
	}
}

func TestPollSerialMove(t *testing.T) {
	hw := &fakeHardware{}
	c, out, _ := newTestController(hw, "250\n")

	c.Poll()

	if hw.position != 250 {
		t.Errorf("position = %d, want 250", hw.position)
	}
	if !strings.Contains(out.String(), "Moved 250 steps") {
		t.Errorf("unexpected report: %q", out.String())
	}
}

func TestPollSerialIgnoresNoise(t *testing.T) {
	hw := &fakeHardware{}
	c, out, _ := newTestController(hw, "hello\n0\n\n  \n")

	c.Poll()

	if hw.stepCount != 0 {
		t.Errorf("stepCount = %d, want 0", hw.stepCount)
	}
	if out.Len() != 0 {
		t.Errorf("expected no status output, got %q", out.String())
	}
}

func TestPollSerialWhitespaceDelimited(t *testing.T) {
	hw := &fakeHardware{}
	c, _, _ := newTestController(hw, "jog -30\n")

	c.Poll()

	if hw.position != -30 {
		t.Errorf("position = %d, want -30", hw.position)
	}
}

func TestPollSerialDiscardsLineRemainder(t *testing.T) {
	hw := &fakeHardware{}
	c, _, _ := newTestController(hw, "250 7\n")

	c.Poll()
	c.Poll()

	if hw.position != 250 {
		t.Errorf("position = %d, want 250 (trailing token on the line must be discarded)", hw.position)
	}
}

func TestPollSerialDiscardsRemainderKeepsNextLine(t *testing.T) {
	hw := &fakeHardware{}
	c, _, _ := newTestController(hw, "-30 junk 5\n40\n")

	c.Poll()
	c.Poll()

	// first line moves -30 and drops its remainder; the next line is intact
	if hw.position != 10 {
		t.Errorf("position = %d, want 10 (-30 then +40)", hw.position)
	}
}

func TestCommandsDuringCycleAreDropped(t *testing.T) {
	hw := &fakeHardware{}
	c, out, _ := newTestController(hw, "1\n250\n")

	c.Poll()
	c.Poll()

	// the 250 arrived mid-cycle and must be dropped, not queued
	if hw.position != -5 {
		t.Errorf("position = %d, want -5 (cycle only)", hw.position)
	}
	if strings.Contains(out.String(), "Moved 250 steps") {
		t.Error("queued command executed after the cycle")
	}
}

package motion

import "time"

// Clock abstracts time so the controller can run against simulated time in
// tests. The firmware uses the wall clock.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type wallClock struct{}

func (wallClock) Now() time.Time        { return time.Now() }
func (wallClock) Sleep(d time.Duration) { time.Sleep(d) }

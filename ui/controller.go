package ui

import (
	"fmt"
	"io"
	"time"
)

// controllerWrapper writes jig protocol lines to the command stream.
type controllerWrapper struct {
	writer     io.Writer
	cycleTimer *timer
}

func (c *controllerWrapper) Jog(steps int) {
	fmt.Fprintf(c.writer, "%d\n", steps)
}

func (c *controllerWrapper) AutoCycle() {
	c.cycleTimer.Set(time.Now())
	fmt.Fprintf(c.writer, "1\n")
}

// Package controller is the host-side client for the jig: it opens the
// serial port, forwards integer commands, and relays the firmware's status
// text.
package controller

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	log "github.com/sirupsen/logrus"
	"go.bug.st/serial"

	"github.com/tmarchant/autojig"
)

// Config selects the serial port and speed. Zero values mean "autodetect"
// and the protocol default.
type Config struct {
	SerialPort string
	BaudRate   string
}

// Controller wraps an open serial connection to the jig.
type Controller struct {
	port serial.Port
	cfg  Config
}

// New opens the configured port, autodetecting when none is given.
func New(cfg Config) (*Controller, error) {
	if cfg.SerialPort == "" || cfg.SerialPort == SerialPortNone {
		port, err := autodetectPort()
		if err != nil {
			return nil, err
		}
		cfg.SerialPort = port
	}

	baud := autojig.BaudRate
	if cfg.BaudRate != "" {
		parsed, err := strconv.Atoi(cfg.BaudRate)
		if err != nil {
			return nil, fmt.Errorf("invalid baud rate %q: %w", cfg.BaudRate, err)
		}
		baud = parsed
	}

	port, err := serial.Open(cfg.SerialPort, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("error opening serial port %s: %w", cfg.SerialPort, err)
	}

	log.WithFields(log.Fields{"port": cfg.SerialPort, "baud": baud}).Info("connected to jig")

	return &Controller{port: port, cfg: cfg}, nil
}

// NewFromEnv builds the config from AUTOJIG_PORT and AUTOJIG_BAUD.
func NewFromEnv() (*Controller, error) {
	return New(Config{
		SerialPort: os.Getenv("AUTOJIG_PORT"),
		BaudRate:   os.Getenv("AUTOJIG_BAUD"),
	})
}

// Close closes the serial port.
func (c *Controller) Close() error {
	return c.port.Close()
}

// Jog moves the jig by the given relative step count.
func (c *Controller) Jog(steps int) error {
	if steps == 0 || steps == 1 {
		// 0 is the protocol no-op and 1 would start a cycle
		return fmt.Errorf("invalid jog distance: %d", steps)
	}
	_, err := fmt.Fprintf(c.port, "%d\n", steps)
	return err
}

// AutoCycle starts an autonomous cycle.
func (c *Controller) AutoCycle() error {
	_, err := fmt.Fprintf(c.port, "1\n")
	return err
}

// Run copies command lines from in to the jig and status text from the jig
// to out until ctx is cancelled or in is exhausted.
func (c *Controller) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// status text back from the firmware
	go func() {
		defer cancel()
		buf := make([]byte, 256)
		for {
			n, err := c.port.Read(buf)
			if err != nil {
				return
			}
			if n > 0 {
				out.Write(buf[:n])
			}
		}
	}()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if _, err := fmt.Fprintf(c.port, "%s\n", line); err != nil {
				return fmt.Errorf("error writing command: %w", err)
			}
		}
	}
}

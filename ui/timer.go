package ui

import (
	"fmt"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
)

// timer shows the elapsed time since the last auto cycle was started, with
// millisecond resolution so short cycles are still readable.
type timer struct {
	startTime time.Time
	mtx       *sync.Mutex
	text      *canvas.Text
	stop      chan struct{}
}

func newCycleTimer() *timer {
	return &timer{
		startTime: time.Time{},
		mtx:       &sync.Mutex{},
		text:      canvas.NewText("00:00.000", nil),
		stop:      make(chan struct{}),
	}
}

func (t *timer) Set(start time.Time) {
	t.mtx.Lock()
	t.startTime = start
	t.mtx.Unlock()
}

func (t *timer) Stop() {
	close(t.stop)
}

func (t *timer) Go(waitForStart chan struct{}) {
	go func() {
		<-waitForStart
		for range time.Tick(64 * time.Millisecond) {
			select {
			case <-t.stop:
				return
			default:
			}
			fyne.Do(func() {
				t.mtx.Lock()
				elapsed := time.Since(t.startTime)
				minutes := int(elapsed.Minutes())
				seconds := int(elapsed.Seconds()) % 60
				millis := int(elapsed.Milliseconds()) % 1000
				t.text.Text = fmt.Sprintf("%02d:%02d.%03d", minutes, seconds, millis)
				t.text.Refresh()
				t.mtx.Unlock()
			})
		}
	}()
}

// Package ui is the desktop control panel for the jig: jog buttons, an
// auto-cycle button with an elapsed timer, and a live view of the status
// text coming back over serial.
package ui

import (
	"context"
	"io"
	"strconv"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

const defaultJogSteps = 25

type JigUI struct {
	mtx        sync.Mutex
	logText    string
	logContent *widget.Label
}

func NewJigUI() *JigUI {
	return &JigUI{}
}

// Write receives status text from the serial reader goroutine and appends
// it to the log view.
func (ui *JigUI) Write(p []byte) (int, error) {
	ui.mtx.Lock()
	ui.logText += string(p)
	text := ui.logText
	ui.mtx.Unlock()

	if ui.logContent != nil {
		fyne.Do(func() {
			ui.logContent.SetText(text)
		})
	}
	return len(p), nil
}

// Run shows the panel and blocks until the window closes or ctx is
// cancelled. Commands are written to w as protocol lines.
func (ui *JigUI) Run(ctx context.Context, w io.Writer) {
	application := app.New()
	window := application.NewWindow("Jig Controller")

	cycleTimer := newCycleTimer()
	waitForStart := make(chan struct{})
	cycleTimer.Go(waitForStart)
	var startOnce sync.Once

	wrapper := &controllerWrapper{writer: w, cycleTimer: cycleTimer}

	stepEntry := widget.NewEntry()
	stepEntry.SetText(strconv.Itoa(defaultJogSteps))

	jogSteps := func() int {
		steps, err := strconv.Atoi(stepEntry.Text)
		if err != nil || steps <= 1 {
			// 0 is the no-op and 1 would start a cycle
			return defaultJogSteps
		}
		return steps
	}

	jogBack := widget.NewButton("Jog -", func() {
		wrapper.Jog(-jogSteps())
	})
	jogForward := widget.NewButton("Jog +", func() {
		wrapper.Jog(jogSteps())
	})

	cycleButton := widget.NewButton("Auto Cycle", func() {
		startOnce.Do(func() { close(waitForStart) })
		wrapper.AutoCycle()
	})

	ui.logContent = widget.NewLabel("")
	logScroll := container.NewVScroll(ui.logContent)
	logScroll.SetMinSize(fyne.NewSize(320, 120))
	logAccordion := widget.NewAccordion(
		widget.NewAccordionItem("Status", logScroll),
	)
	logAccordion.Open(0)

	contentContainer := container.NewVBox(
		container.NewHBox(
			widget.NewLabel("Cycle"),
			container.NewPadded(cycleTimer.text),
			layout.NewSpacer(),
		),
		cycleButton,
		container.NewGridWithColumns(3,
			jogBack,
			stepEntry,
			jogForward,
		),
		logAccordion,
	)

	go func() {
		<-ctx.Done()
		fyne.Do(func() {
			application.Quit()
		})
	}()

	window.SetContent(contentContainer)
	window.Resize(fyne.NewSize(340, 300))
	window.ShowAndRun()
}

package main

import (
	"fmt"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"spotiwake/pkg/models"
)

// AlarmWindow is the fullscreen acknowledgement surface shown when an alarm
// fires. Dismiss requires press-and-hold; snooze is a plain tap.
type AlarmWindow struct {
	window          fyne.Window
	app             fyne.App
	alarm           models.Alarm
	snoozeMinutes   int
	holdTimeSeconds int
	onDismiss       func()
	onSnooze        func()

	dismissProgress float64
	dismissTicker   *time.Ticker
	dismissHeld     bool
}

func NewAlarmWindow(app fyne.App, alarm models.Alarm, snoozeMinutes, holdTimeSeconds int, onDismiss, onSnooze func()) *AlarmWindow {
	aw := &AlarmWindow{
		app:             app,
		alarm:           alarm,
		snoozeMinutes:   snoozeMinutes,
		holdTimeSeconds: holdTimeSeconds,
		onDismiss:       onDismiss,
		onSnooze:        onSnooze,
	}

	fyne.Do(func() {
		aw.window = app.NewWindow("Wake Up")
		aw.window.SetFullScreen(true)
		aw.buildUI()
	})

	return aw
}

func (aw *AlarmWindow) buildUI() {
	heading := aw.alarm.Label
	if heading == "" {
		heading = "Alarm"
	}
	title := canvas.NewText(heading, nil)
	title.TextSize = 32
	title.Alignment = fyne.TextAlignCenter

	timeText := canvas.NewText(aw.alarm.Time, nil)
	timeText.TextSize = 64
	timeText.Alignment = fyne.TextAlignCenter

	content := container.NewVBox(
		container.NewPadded(title),
		container.NewPadded(timeText),
	)

	if aw.alarm.Track.Name != "" {
		trackLabel := widget.NewLabel(fmt.Sprintf("%s — %s", aw.alarm.Track.Name, aw.alarm.Track.Artist))
		trackLabel.Alignment = fyne.TextAlignCenter
		content.Add(trackLabel)
	}

	content.Add(widget.NewSeparator())

	var dismissButton *HoldButton
	dismissButton = NewHoldButton(fmt.Sprintf("Dismiss (Hold %ds)", aw.holdTimeSeconds), func() {
		aw.startDismissProgress(dismissButton)
	}, func() {
		aw.stopDismissProgress(dismissButton)
	})

	buttonRow := container.NewHBox()
	if aw.snoozeMinutes > 0 {
		snoozeButton := widget.NewButton(fmt.Sprintf("Snooze %dm", aw.snoozeMinutes), func() {
			if aw.onSnooze != nil {
				aw.onSnooze()
			}
			aw.window.Close()
		})
		snoozeButton.Importance = widget.HighImportance
		buttonRow.Add(snoozeButton)
	}
	buttonRow.Add(dismissButton)

	content.Add(container.NewCenter(buttonRow))

	aw.window.SetContent(container.NewPadded(container.NewCenter(content)))
}

func (aw *AlarmWindow) startDismissProgress(button *HoldButton) {
	if aw.dismissHeld {
		return
	}

	aw.dismissHeld = true
	aw.dismissProgress = 0
	fyne.Do(func() {
		button.SetProgress(0)
	})

	tickInterval := 50 * time.Millisecond
	totalTicks := float64(aw.holdTimeSeconds*1000) / float64(tickInterval.Milliseconds())
	progressIncrement := 1.0 / totalTicks

	aw.dismissTicker = time.NewTicker(tickInterval)

	go func() {
		for range aw.dismissTicker.C {
			if !aw.dismissHeld {
				return
			}

			aw.dismissProgress += progressIncrement
			currentProgress := aw.dismissProgress

			fyne.Do(func() {
				button.SetProgress(currentProgress)
			})

			if currentProgress >= 1.0 {
				aw.dismissTicker.Stop()
				if aw.onDismiss != nil {
					aw.onDismiss()
				}
				fyne.Do(func() {
					aw.window.Close()
				})
				return
			}
		}
	}()
}

func (aw *AlarmWindow) stopDismissProgress(button *HoldButton) {
	aw.dismissHeld = false
	if aw.dismissTicker != nil {
		aw.dismissTicker.Stop()
	}
	aw.dismissProgress = 0
	fyne.Do(func() {
		button.SetProgress(0)
	})
}

func (aw *AlarmWindow) Show() {
	fyne.Do(func() {
		if aw.window != nil {
			aw.window.Show()
		}
	})
}

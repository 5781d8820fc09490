package main

import (
	"fmt"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"

	"spotiwake/pkg/models"
	"spotiwake/pkg/scheduler"
)

var dayAbbrev = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

func (sw *Spotiwake) setupSystemTray() {
	sw.updateSystemTrayMenu()
}

func (sw *Spotiwake) updateSystemTrayMenu() {
	desk, ok := sw.app.(desktop.App)
	if !ok {
		return
	}

	menuItems := []*fyne.MenuItem{}

	// Countdown to the next firing at the top
	if next, found := sw.sched.NextOccurrence(time.Now()); found {
		nextText := fmt.Sprintf("Next alarm: %s in %s",
			next.Alarm.Time, scheduler.FormatRelative(next.Until))
		nextItem := fyne.NewMenuItem(nextText, nil)
		nextItem.Disabled = true
		menuItems = append(menuItems, nextItem)
	} else {
		noneItem := fyne.NewMenuItem("No alarms scheduled", nil)
		noneItem.Disabled = true
		menuItems = append(menuItems, noneItem)
	}
	menuItems = append(menuItems, fyne.NewMenuItemSeparator())

	// One toggle per alarm
	for _, alarm := range sw.alarmStore.List() {
		alarm := alarm
		item := fyne.NewMenuItem(trayAlarmText(alarm), func() {
			if err := sw.alarmStore.SetEnabled(alarm.ID, !alarm.Enabled); err != nil {
				sw.log.Warn().Err(err).Str("id", alarm.ID).Msg("failed to toggle alarm")
			}
			sw.updateSystemTrayMenu()
		})
		item.Checked = alarm.Enabled
		menuItems = append(menuItems, item)
	}
	menuItems = append(menuItems, fyne.NewMenuItemSeparator())

	// Unlock must run inside a user input event; the tray action is one.
	if !sw.session.Unlocked() {
		menuItems = append(menuItems, fyne.NewMenuItem("Enable Audio", func() {
			sw.session.Unlock()
			sw.updateSystemTrayMenu()
		}))
	}

	menuItems = append(menuItems,
		fyne.NewMenuItem("Alarms...", func() {
			sw.showSettingsWindow()
		}),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() {
			sw.quit()
		}),
	)

	menu := fyne.NewMenu("Spotiwake", menuItems...)
	desk.SetSystemTrayMenu(menu)
	desk.SetSystemTrayIcon(theme.MediaMusicIcon())
}

func trayAlarmText(alarm models.Alarm) string {
	label := alarm.Label
	if label == "" {
		label = alarm.Track.Name
	}
	if label == "" {
		label = "Alarm"
	}
	return fmt.Sprintf("%s  %s (%s)", alarm.Time, truncateString(label, 25), formatDays(alarm.Days))
}

func formatDays(days []int) string {
	if len(days) == 0 {
		return "once"
	}
	names := make([]string, 0, len(days))
	for _, d := range days {
		if d >= 0 && d < len(dayAbbrev) {
			names = append(names, dayAbbrev[d])
		}
	}
	return strings.Join(names, ",")
}

// truncateString truncates a string to maxLen characters, adding "..." if needed
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

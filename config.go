package main

import (
	"fyne.io/fyne/v2"
)

type Config struct {
	AutoStart       bool   `json:"auto_start"`
	SnoozeMinutes   int    `json:"snooze_minutes"`
	HoldTimeSeconds int    `json:"hold_time_seconds"`
	DeviceName      string `json:"device_name"`
}

func loadConfig(app fyne.App) *Config {
	prefs := app.Preferences()

	return &Config{
		AutoStart:       prefs.BoolWithFallback("auto_start", false),
		SnoozeMinutes:   prefs.IntWithFallback("snooze_minutes", 5),
		HoldTimeSeconds: prefs.IntWithFallback("hold_time_seconds", 3),
		DeviceName:      prefs.StringWithFallback("device_name", ""),
	}
}

func saveConfig(app fyne.App, config *Config) {
	prefs := app.Preferences()

	prefs.SetBool("auto_start", config.AutoStart)
	prefs.SetInt("snooze_minutes", config.SnoozeMinutes)
	prefs.SetInt("hold_time_seconds", config.HoldTimeSeconds)
	prefs.SetString("device_name", config.DeviceName)
}

package main

import (
	"context"
	"os"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"spotiwake/pkg/audio"
	"spotiwake/pkg/models"
	"spotiwake/pkg/playback"
	"spotiwake/pkg/scheduler"
	"spotiwake/pkg/spotify"
	"spotiwake/pkg/store"
)

type Spotiwake struct {
	app        fyne.App
	log        zerolog.Logger
	config     *Config
	alarmStore *store.AlarmStore
	session    *audio.Controller
	dispatcher *playback.Dispatcher
	sched      *scheduler.Scheduler

	settingsWindow *SettingsWindow
}

func main() {
	// Streaming credentials come from the environment; a .env file is
	// optional.
	_ = godotenv.Load()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()

	sw := &Spotiwake{
		app: app.NewWithID("io.spotiwake.app"),
		log: logger,
	}

	sw.initialize()
	sw.run()
}

func (sw *Spotiwake) initialize() {
	sw.config = loadConfig(sw.app)

	// Sync autostart state with config on startup
	if err := setupAutostart(sw.config.AutoStart); err != nil {
		sw.log.Warn().Err(err).Msg("failed to setup autostart")
	}

	saveConfig(sw.app, sw.config)

	sw.alarmStore = store.NewAlarmStore(sw.app.Preferences(), sw.log)
	sw.session = audio.NewController(sw.log)

	remote := spotify.NewClient(os.Getenv("SPOTIFY_ACCESS_TOKEN"))
	sw.dispatcher = playback.New(remote, sw.session, sw.app, sw.log)
	if deviceID := os.Getenv("SPOTIFY_DEVICE_ID"); deviceID != "" {
		sw.dispatcher.SetLocalDevice(deviceID)
	}

	sw.sched = scheduler.New(sw.alarmStore, sw.dispatcher, sw.onAlarmFired, sw.log)

	sw.setupSystemTray()
	sw.sched.Start()
}

func (sw *Spotiwake) run() {
	sw.app.Run()
}

// onAlarmFired starts playback asynchronously and surfaces the alarm window.
// The scheduler tick must never wait on the network or the audio device.
func (sw *Spotiwake) onAlarmFired(alarm models.Alarm) {
	go func() {
		via := sw.dispatcher.Dispatch(context.Background(), alarm)
		sw.log.Info().Str("alarm", alarm.ID).Str("via", string(via)).Msg("playback dispatched")
	}()

	sw.showAlarmWindow(alarm)
	sw.updateSystemTrayMenu()
}

func (sw *Spotiwake) showAlarmWindow(alarm models.Alarm) {
	NewAlarmWindow(
		sw.app,
		alarm,
		sw.config.SnoozeMinutes,
		sw.config.HoldTimeSeconds,
		func() {
			sw.sched.Dismiss()
			sw.log.Info().Str("alarm", alarm.ID).Msg("alarm dismissed")
			sw.updateSystemTrayMenu()
		},
		func() {
			sw.sched.Snooze(alarm.ID, sw.config.SnoozeMinutes)
			sw.updateSystemTrayMenu()
		},
	).Show()
}

func (sw *Spotiwake) showSettingsWindow() {
	if sw.settingsWindow != nil && sw.settingsWindow.window != nil {
		sw.settingsWindow.window.RequestFocus()
		sw.settingsWindow.window.Show()
		return
	}

	sw.settingsWindow = NewSettingsWindow(sw.app, sw.config, sw.alarmStore, sw.sched, func(newConfig *Config) {
		sw.config = newConfig
		saveConfig(sw.app, sw.config)

		if err := setupAutostart(sw.config.AutoStart); err != nil {
			sw.log.Warn().Err(err).Msg("failed to update autostart")
		}
		sw.updateSystemTrayMenu()
	})

	sw.settingsWindow.window.SetOnClosed(func() {
		sw.settingsWindow = nil
		sw.updateSystemTrayMenu()
	})

	sw.settingsWindow.Show()
}

func (sw *Spotiwake) quit() {
	sw.sched.Stop()
	sw.app.Quit()
}

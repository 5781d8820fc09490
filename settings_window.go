package main

import (
	"fmt"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"spotiwake/pkg/models"
	"spotiwake/pkg/scheduler"
	"spotiwake/pkg/store"
)

// SettingsWindow hosts alarm CRUD and the general options.
type SettingsWindow struct {
	window fyne.Window
	app    fyne.App
	config *Config
	store  *store.AlarmStore
	sched  *scheduler.Scheduler
	onSave func(*Config)

	alarmList *fyne.Container
}

func NewSettingsWindow(app fyne.App, config *Config, alarmStore *store.AlarmStore, sched *scheduler.Scheduler, onSave func(*Config)) *SettingsWindow {
	sws := &SettingsWindow{
		app:    app,
		config: config,
		store:  alarmStore,
		sched:  sched,
		onSave: onSave,
	}

	sws.window = app.NewWindow("Spotiwake Alarms")
	sws.window.Resize(fyne.NewSize(520, 600))
	sws.buildUI()
	return sws
}

func (sws *SettingsWindow) buildUI() {
	sws.alarmList = container.NewVBox()
	sws.refreshAlarmList()

	addButton := widget.NewButton("Add Alarm", func() {
		sws.showAlarmForm(nil)
	})

	exportButton := widget.NewButton("Export Schedule", func() {
		dialog.ShowFileSave(func(writer fyne.URIWriteCloser, err error) {
			if err != nil || writer == nil {
				return
			}
			defer writer.Close()
			data, err := ExportICal(sws.store.List(), time.Now())
			if err != nil {
				dialog.ShowError(err, sws.window)
				return
			}
			if _, err := writer.Write(data); err != nil {
				dialog.ShowError(err, sws.window)
			}
		}, sws.window)
	})

	snoozeEntry := widget.NewEntry()
	snoozeEntry.SetText(strconv.Itoa(sws.config.SnoozeMinutes))
	autostartCheck := widget.NewCheck("Start at login", nil)
	autostartCheck.SetChecked(sws.config.AutoStart)

	optionsForm := widget.NewForm(
		widget.NewFormItem("Snooze minutes", snoozeEntry),
		widget.NewFormItem("", autostartCheck),
	)

	saveButton := widget.NewButton("Save Options", func() {
		newConfig := *sws.config
		if minutes, err := strconv.Atoi(snoozeEntry.Text); err == nil && minutes > 0 {
			newConfig.SnoozeMinutes = minutes
		}
		newConfig.AutoStart = autostartCheck.Checked
		sws.config = &newConfig
		if sws.onSave != nil {
			sws.onSave(&newConfig)
		}
	})

	content := container.NewBorder(
		nil,
		container.NewVBox(widget.NewSeparator(), optionsForm, saveButton),
		nil, nil,
		container.NewVScroll(container.NewVBox(sws.alarmList, container.NewHBox(addButton, exportButton))),
	)

	sws.window.SetContent(container.NewPadded(content))
}

func (sws *SettingsWindow) refreshAlarmList() {
	sws.alarmList.RemoveAll()

	for _, alarm := range sws.store.List() {
		alarm := alarm

		enabledCheck := widget.NewCheck("", func(checked bool) {
			sws.store.SetEnabled(alarm.ID, checked)
		})
		enabledCheck.SetChecked(alarm.Enabled)

		label := widget.NewLabel(fmt.Sprintf("%s  %s (%s)", alarm.Time, alarm.Label, formatDays(alarm.Days)))

		editButton := widget.NewButton("Edit", func() {
			sws.showAlarmForm(&alarm)
		})
		deleteButton := widget.NewButton("Delete", func() {
			if err := sws.store.Delete(alarm.ID); err == nil {
				sws.sched.ClearSnooze(alarm.ID)
			}
			sws.refreshAlarmList()
		})

		row := container.NewBorder(nil, nil, enabledCheck, container.NewHBox(editButton, deleteButton), label)
		sws.alarmList.Add(row)
	}

	sws.alarmList.Refresh()
}

// showAlarmForm opens the add/edit dialog. A nil alarm means "create".
func (sws *SettingsWindow) showAlarmForm(existing *models.Alarm) {
	timeEntry := widget.NewEntry()
	timeEntry.SetPlaceHolder("07:30")
	labelEntry := widget.NewEntry()
	trackNameEntry := widget.NewEntry()
	trackArtistEntry := widget.NewEntry()
	trackIDEntry := widget.NewEntry()
	trackIDEntry.SetPlaceHolder("spotify track id")

	dayChecks := make([]*widget.Check, 7)
	dayRow := container.NewHBox()
	for i := range dayChecks {
		dayChecks[i] = widget.NewCheck(dayAbbrev[i], nil)
		dayRow.Add(dayChecks[i])
	}

	if existing != nil {
		timeEntry.SetText(existing.Time)
		labelEntry.SetText(existing.Label)
		trackNameEntry.SetText(existing.Track.Name)
		trackArtistEntry.SetText(existing.Track.Artist)
		trackIDEntry.SetText(existing.Track.ID)
		for _, d := range existing.Days {
			if d >= 0 && d < 7 {
				dayChecks[d].SetChecked(true)
			}
		}
	}

	form := container.NewVBox(
		widget.NewForm(
			widget.NewFormItem("Time", timeEntry),
			widget.NewFormItem("Label", labelEntry),
			widget.NewFormItem("Track", trackNameEntry),
			widget.NewFormItem("Artist", trackArtistEntry),
			widget.NewFormItem("Track ID", trackIDEntry),
		),
		widget.NewLabel("Repeat on:"),
		dayRow,
	)

	title := "Add Alarm"
	if existing != nil {
		title = "Edit Alarm"
	}

	dialog.ShowCustomConfirm(title, "Save", "Cancel", form, func(confirmed bool) {
		if !confirmed {
			return
		}
		if !models.ValidTime(timeEntry.Text) {
			dialog.ShowError(fmt.Errorf("time must be HH:MM, got %q", timeEntry.Text), sws.window)
			return
		}

		days := []int{}
		for i, check := range dayChecks {
			if check.Checked {
				days = append(days, i)
			}
		}

		track := models.TrackRef{
			ID:     trackIDEntry.Text,
			Name:   trackNameEntry.Text,
			Artist: trackArtistEntry.Text,
		}
		if track.ID != "" {
			track.URI = "spotify:track:" + track.ID
		}

		if existing != nil {
			timeVal := timeEntry.Text
			labelVal := labelEntry.Text
			_, err := sws.store.Update(existing.ID, models.AlarmUpdate{
				Time:  &timeVal,
				Days:  &days,
				Label: &labelVal,
				Track: &track,
			})
			if err != nil {
				dialog.ShowError(err, sws.window)
			}
		} else {
			sws.store.Create(models.Alarm{
				Time:    timeEntry.Text,
				Days:    days,
				Enabled: true,
				Label:   labelEntry.Text,
				Track:   track,
			})
		}
		sws.refreshAlarmList()
	}, sws.window)
}

func (sws *SettingsWindow) Show() {
	sws.window.Show()
}

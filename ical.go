package main

import (
	"bytes"
	"strings"
	"time"

	"github.com/emersion/go-ical"

	"spotiwake/pkg/models"
	"spotiwake/pkg/scheduler"
)

var byDayCodes = []string{"SU", "MO", "TU", "WE", "TH", "FR", "SA"}

// ExportICal renders the enabled alarms as an iCalendar document, so the wake
// schedule can be imported into any calendar app. Day-scoped alarms carry a
// weekly recurrence rule; one-shot alarms are single events at their next
// occurrence.
func ExportICal(alarms []models.Alarm, now time.Time) ([]byte, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//spotiwake//alarm export//EN")

	for _, alarm := range alarms {
		if !alarm.Enabled {
			continue
		}
		occ, ok := scheduler.NextOccurrence([]models.Alarm{alarm}, now)
		if !ok {
			continue
		}

		event := ical.NewEvent()
		event.Props.SetText(ical.PropUID, alarm.ID+"@spotiwake")
		event.Props.SetDateTime(ical.PropDateTimeStamp, now)
		event.Props.SetDateTime(ical.PropDateTimeStart, occ.At)

		summary := alarm.Label
		if summary == "" {
			summary = "Wake up"
		}
		if alarm.Track.Name != "" {
			summary += " (" + alarm.Track.Name + ")"
		}
		event.Props.SetText(ical.PropSummary, summary)

		if !alarm.OneShot() {
			event.Props.SetText(ical.PropRecurrenceRule, "FREQ=WEEKLY;BYDAY="+byDayRule(alarm.Days))
		}

		cal.Children = append(cal.Children, event.Component)
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func byDayRule(days []int) string {
	codes := make([]string, 0, len(days))
	for _, d := range days {
		if d >= 0 && d < len(byDayCodes) {
			codes = append(codes, byDayCodes[d])
		}
	}
	return strings.Join(codes, ",")
}

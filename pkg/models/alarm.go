package models

import (
	"regexp"
	"strconv"
	"time"
)

// timePattern matches the persisted "HH:MM" wall-clock format.
var timePattern = regexp.MustCompile(`^\d{2}:\d{2}$`)

// TrackRef points at the streaming track an alarm should wake the user with.
// The scheduler treats it as an opaque payload; only the playback layer reads it.
type TrackRef struct {
	ID       string `json:"trackId"`
	URI      string `json:"uri"`
	Name     string `json:"name"`
	Artist   string `json:"artist"`
	ImageURL string `json:"image"`
}

// Alarm is a persisted schedule entry.
type Alarm struct {
	ID        string    `json:"id"`
	Time      string    `json:"time"`    // "HH:MM", device-local wall clock
	Days      []int     `json:"days"`    // 0=Sunday..6=Saturday; empty = one-shot
	Enabled   bool      `json:"enabled"`
	Label     string    `json:"label"`
	Track     TrackRef  `json:"track"`
	CreatedAt time.Time `json:"createdAt"`
}

// OneShot reports whether the alarm has no recurrence days. One-shot alarms
// are disabled by the scheduler as part of firing.
func (a *Alarm) OneShot() bool {
	return len(a.Days) == 0
}

// MatchesDay reports whether the alarm is eligible on the given weekday.
// An empty day set matches any day.
func (a *Alarm) MatchesDay(day time.Weekday) bool {
	if len(a.Days) == 0 {
		return true
	}
	for _, d := range a.Days {
		if d == int(day) {
			return true
		}
	}
	return false
}

// ValidTime reports whether s is a well-formed "HH:MM" wall-clock time with
// hours 0-23 and minutes 0-59. Alarms with malformed times are never matched
// by the scheduler; they are not reported as errors.
func ValidTime(s string) bool {
	if !timePattern.MatchString(s) {
		return false
	}
	h, _ := strconv.Atoi(s[:2])
	m, _ := strconv.Atoi(s[3:])
	return h <= 23 && m <= 59
}

// AlarmUpdate carries a partial update for an alarm. Nil fields are left
// unchanged.
type AlarmUpdate struct {
	Time    *string
	Days    *[]int
	Enabled *bool
	Label   *string
	Track   *TrackRef
}

// Apply copies the set fields of the update onto the alarm.
func (u AlarmUpdate) Apply(a *Alarm) {
	if u.Time != nil {
		a.Time = *u.Time
	}
	if u.Days != nil {
		a.Days = *u.Days
	}
	if u.Enabled != nil {
		a.Enabled = *u.Enabled
	}
	if u.Label != nil {
		a.Label = *u.Label
	}
	if u.Track != nil {
		a.Track = *u.Track
	}
}

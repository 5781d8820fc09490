package scheduler

import (
	"fmt"
	"strconv"
	"time"

	"spotiwake/pkg/models"
)

// Occurrence describes the soonest future firing across all enabled alarms.
type Occurrence struct {
	Alarm models.Alarm
	At    time.Time
	Until time.Duration
}

// NextOccurrence computes the soonest future firing instant over all enabled
// alarms. Day-less alarms fire at the next occurrence of their wall-clock
// time; day-scoped alarms scan the next 7 calendar days for the first eligible
// date, defaulting to tomorrow when the scan finds nothing. Returns false when
// no alarm is enabled or parseable.
func (s *Scheduler) NextOccurrence(now time.Time) (Occurrence, bool) {
	return NextOccurrence(s.source.List(), now)
}

// NextOccurrence is the pure form of Scheduler.NextOccurrence.
func NextOccurrence(alarms []models.Alarm, now time.Time) (Occurrence, bool) {
	var best Occurrence
	found := false

	for _, a := range alarms {
		if !a.Enabled {
			continue
		}
		at, ok := nextFor(&a, now)
		if !ok {
			continue
		}
		if !found || at.Before(best.At) {
			best = Occurrence{Alarm: a, At: at, Until: at.Sub(now)}
			found = true
		}
	}

	return best, found
}

func nextFor(a *models.Alarm, now time.Time) (time.Time, bool) {
	h, m, ok := parseClock(a.Time)
	if !ok {
		return time.Time{}, false
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), h, m, 0, 0, now.Location())

	if a.OneShot() {
		if today.After(now) {
			return today, true
		}
		return today.AddDate(0, 0, 1), true
	}

	for i := 0; i < 7; i++ {
		cand := today.AddDate(0, 0, i)
		if a.MatchesDay(cand.Weekday()) && cand.After(now) {
			return cand, true
		}
	}

	// No eligible day found within the week; fall back to the naive
	// "tomorrow at time" the next-occurrence display has always used.
	return today.AddDate(0, 0, 1), true
}

func parseClock(s string) (hour, minute int, ok bool) {
	if !models.ValidTime(s) {
		return 0, 0, false
	}
	hour, _ = strconv.Atoi(s[:2])
	minute, _ = strconv.Atoi(s[3:])
	return hour, minute, true
}

// FormatRelative renders a positive delta as "Nh Mm", or "Mm" when under an
// hour.
func FormatRelative(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

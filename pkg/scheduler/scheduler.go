package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"spotiwake/pkg/models"
)

// TriggerFunc is invoked with the firing alarm record, at most once per
// matching minute. It must not block; playback is started asynchronously by
// the host.
type TriggerFunc func(models.Alarm)

// AlarmSource is the slice of the alarm store the scheduler reads each tick.
type AlarmSource interface {
	List() []models.Alarm
	SetEnabled(id string, enabled bool) error
}

// PlaybackControl is what snooze and dismiss actions drive. StopTone silences
// the local synthesized tone; Pause additionally asks the remote player to
// pause, best-effort.
type PlaybackControl interface {
	StopTone()
	Pause()
}

// Scheduler evaluates the alarm list once per second and fires at most one
// alarm at the top of a matching minute. Snooze overrides and the dedup keys
// live only in memory; they are lost on restart by design.
type Scheduler struct {
	// Now is the clock source, replaceable in tests.
	Now func() time.Time

	source    AlarmSource
	playback  PlaybackControl
	onTrigger TriggerFunc
	log       zerolog.Logger

	mu               sync.Mutex
	overrides        map[string]time.Time // alarm id -> absolute wake instant
	lastMinuteKey    string
	lastTriggeredKey string

	ticker *time.Ticker
	done   chan struct{}
}

// New creates a stopped scheduler. Call Start to begin ticking.
func New(source AlarmSource, playback PlaybackControl, onTrigger TriggerFunc, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		Now:       time.Now,
		source:    source,
		playback:  playback,
		onTrigger: onTrigger,
		log:       log.With().Str("component", "scheduler").Logger(),
		overrides: make(map[string]time.Time),
	}
}

// Start begins the 1-second tick loop.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ticker != nil {
		return
	}
	s.ticker = time.NewTicker(time.Second)
	s.done = make(chan struct{})

	go func() {
		for {
			select {
			case <-s.done:
				return
			case <-s.ticker.C:
				s.Tick(s.Now())
			}
		}
	}()
}

// Stop halts the tick loop. Safe to call when not started.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ticker == nil {
		return
	}
	s.ticker.Stop()
	close(s.done)
	s.ticker = nil
}

// Tick runs one evaluation pass for the given instant. Alarms fire only when
// the instant is at the top of a minute, and never twice for the same
// minute/weekday key.
func (s *Scheduler) Tick(now time.Time) {
	fired, ok := s.evaluate(now)
	if !ok {
		return
	}
	s.log.Info().
		Str("id", fired.ID).
		Str("time", fired.Time).
		Str("label", fired.Label).
		Msg("alarm fired")
	if s.onTrigger != nil {
		s.onTrigger(fired)
	}
}

func (s *Scheduler) evaluate(now time.Time) (models.Alarm, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	currentTime := now.Format("15:04")
	currentDay := now.Weekday()
	dateStr := now.Format("2006-01-02")

	minuteKey := currentTime + "-" + dateStr
	triggerKey := fmt.Sprintf("%s-%d", minuteKey, int(currentDay))

	// Re-arm the dedup guard exactly once per minute.
	if minuteKey != s.lastMinuteKey {
		s.lastMinuteKey = minuteKey
		s.lastTriggeredKey = ""
	}

	if now.Second() != 0 || triggerKey == s.lastTriggeredKey {
		return models.Alarm{}, false
	}

	alarms := s.source.List()
	s.pruneOverrides(alarms)

	for _, a := range alarms {
		if !a.Enabled {
			continue
		}

		if wake, snoozed := s.overrides[a.ID]; snoozed {
			if wake.Format("15:04") == currentTime {
				delete(s.overrides, a.ID)
				s.lastTriggeredKey = triggerKey
				return a, true
			}
			// A pending override shields the alarm from its normal
			// time/day match until the override minute arrives.
			continue
		}

		if a.Time == currentTime && a.MatchesDay(currentDay) {
			if a.OneShot() {
				if err := s.source.SetEnabled(a.ID, false); err != nil {
					s.log.Warn().Err(err).Str("id", a.ID).Msg("failed to disable one-shot alarm")
				}
				a.Enabled = false
			}
			s.lastTriggeredKey = triggerKey
			return a, true
		}
	}

	return models.Alarm{}, false
}

// pruneOverrides drops overrides whose alarm no longer exists.
func (s *Scheduler) pruneOverrides(alarms []models.Alarm) {
	if len(s.overrides) == 0 {
		return
	}
	known := make(map[string]bool, len(alarms))
	for _, a := range alarms {
		known[a.ID] = true
	}
	for id := range s.overrides {
		if !known[id] {
			delete(s.overrides, id)
		}
	}
}

// Snooze delays the alarm's next firing to now plus the given number of
// minutes, replacing any earlier override, and silences the local tone.
func (s *Scheduler) Snooze(alarmID string, minutes int) {
	s.mu.Lock()
	wake := s.Now().Add(time.Duration(minutes) * time.Minute)
	s.overrides[alarmID] = wake
	s.mu.Unlock()

	s.log.Info().Str("id", alarmID).Time("until", wake).Msg("alarm snoozed")
	s.playback.StopTone()
}

// Dismiss acknowledges the current firing: the local tone is stopped and the
// remote player is asked to pause. One-shot alarms have already been disabled
// as part of firing, so no scheduler state changes here.
func (s *Scheduler) Dismiss() {
	s.playback.StopTone()
	s.playback.Pause()
}

// ClearSnooze drops a pending override, e.g. when its alarm is deleted.
func (s *Scheduler) ClearSnooze(alarmID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.overrides, alarmID)
}

// SnoozedUntil reports the pending override instant for an alarm, if any.
func (s *Scheduler) SnoozedUntil(alarmID string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wake, ok := s.overrides[alarmID]
	return wake, ok
}

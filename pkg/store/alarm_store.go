package store

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"spotiwake/pkg/models"
)

// alarmsKey is the single preferences key the full alarm list is serialized
// under.
const alarmsKey = "alarms"

// ErrNotFound is returned when an alarm id is absent from the store.
var ErrNotFound = errors.New("alarm not found")

// Preferences is the narrow slice of fyne.Preferences the store needs.
// Tests supply an in-memory implementation.
type Preferences interface {
	String(key string) string
	SetString(key, value string)
}

// AlarmStore manages the persisted alarm list. Every mutation rewrites the
// whole collection synchronously. A corrupt or missing backing payload is
// treated as an empty list; losing data is preferred over stalling the
// scheduler.
type AlarmStore struct {
	mu    sync.RWMutex
	prefs Preferences
	log   zerolog.Logger

	alarms []models.Alarm
}

// NewAlarmStore loads the alarm list from prefs and returns the store.
func NewAlarmStore(prefs Preferences, log zerolog.Logger) *AlarmStore {
	s := &AlarmStore{
		prefs: prefs,
		log:   log.With().Str("component", "store").Logger(),
	}
	s.load()
	return s
}

func (s *AlarmStore) load() {
	raw := s.prefs.String(alarmsKey)
	if raw == "" {
		s.alarms = []models.Alarm{}
		return
	}
	if err := json.Unmarshal([]byte(raw), &s.alarms); err != nil {
		s.log.Warn().Err(err).Msg("stored alarms unreadable, starting empty")
		s.alarms = []models.Alarm{}
	}
}

// save persists the full collection. Marshal failures are logged and dropped;
// the in-memory state stays authoritative for this process.
func (s *AlarmStore) save() {
	raw, err := json.Marshal(s.alarms)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to serialize alarms")
		return
	}
	s.prefs.SetString(alarmsKey, string(raw))
}

// List returns the alarms in stored order.
func (s *AlarmStore) List() []models.Alarm {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Alarm, len(s.alarms))
	copy(out, s.alarms)
	return out
}

// Get returns the alarm with the given id.
func (s *AlarmStore) Get(id string) (models.Alarm, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.alarms {
		if a.ID == id {
			return a, nil
		}
	}
	return models.Alarm{}, ErrNotFound
}

// Create appends a new alarm with a fresh id and creation timestamp, persists
// the collection, and returns the stored record.
func (s *AlarmStore) Create(a models.Alarm) models.Alarm {
	s.mu.Lock()
	defer s.mu.Unlock()

	a.ID = uuid.New().String()
	a.CreatedAt = time.Now()
	if a.Days == nil {
		a.Days = []int{}
	}
	s.alarms = append(s.alarms, a)
	s.save()

	s.log.Info().Str("id", a.ID).Str("time", a.Time).Msg("alarm created")
	return a
}

// Update applies a partial update to the alarm with the given id.
func (s *AlarmStore) Update(id string, upd models.AlarmUpdate) (models.Alarm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.alarms {
		if s.alarms[i].ID == id {
			upd.Apply(&s.alarms[i])
			s.save()
			return s.alarms[i], nil
		}
	}
	return models.Alarm{}, ErrNotFound
}

// Delete removes the alarm with the given id.
func (s *AlarmStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.alarms {
		if s.alarms[i].ID == id {
			s.alarms = append(s.alarms[:i], s.alarms[i+1:]...)
			s.save()
			s.log.Info().Str("id", id).Msg("alarm deleted")
			return nil
		}
	}
	return ErrNotFound
}

// SetEnabled flips the enabled flag on the alarm with the given id.
func (s *AlarmStore) SetEnabled(id string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.alarms {
		if s.alarms[i].ID == id {
			s.alarms[i].Enabled = enabled
			s.save()
			return nil
		}
	}
	return ErrNotFound
}

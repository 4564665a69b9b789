package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/balkashynov/classtimer/internal/parser"
)

// StorageKey is the key the settings live under in the key/value store.
const StorageKey = "classPeriodTimerSettings"

// DefaultDuration is used when no valid default period length is stored.
const DefaultDuration = 40 * time.Minute

// KV is the persistence the settings are read from and written to.
type KV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// Settings holds the user-configurable schedule.
type Settings struct {
	DefaultDuration time.Duration
	Schedule        []time.Duration
	VibrateOnExpire bool
}

// Defaults returns the settings used when nothing is stored.
func Defaults() Settings {
	return Settings{
		DefaultDuration: DefaultDuration,
		Schedule:        []time.Duration{},
		VibrateOnExpire: true,
	}
}

// Effective returns the schedule in force: the configured schedule, or the
// default duration as a single period.
func (s Settings) Effective() []time.Duration {
	if len(s.Schedule) > 0 {
		return append([]time.Duration(nil), s.Schedule...)
	}
	return []time.Duration{s.DefaultDuration}
}

// ScheduleMinutes returns the schedule as whole minutes.
func (s Settings) ScheduleMinutes() []int {
	minutes := make([]int, len(s.Schedule))
	for i, d := range s.Schedule {
		minutes[i] = int(d / time.Minute)
	}
	return minutes
}

func (s Settings) clone() Settings {
	s.Schedule = append([]time.Duration{}, s.Schedule...)
	return s
}

// Input is what the user typed into the settings form.
type Input struct {
	Schedule        string
	DefaultDuration string
	Vibrate         bool
}

// ValidationError rejects a save. Token is the offending raw value.
type ValidationError struct {
	Field string
	Token string
}

func (e *ValidationError) Error() string {
	if e.Field == "schedule" {
		return fmt.Sprintf("invalid duration %q in schedule: use positive numbers", e.Token)
	}
	return fmt.Sprintf("%s must be a positive number, got %q", e.Field, e.Token)
}

// storedSettings is the on-disk form; durations are whole minutes.
type storedSettings struct {
	DefaultDuration int   `json:"defaultDuration"`
	Schedule        []int `json:"schedule"`
	VibrateOnExpire bool  `json:"vibrateOnExpire"`
}

// Store loads, validates and saves Settings.
type Store struct {
	mu      sync.Mutex
	kv      KV
	current Settings
	logger  *log.Logger
}

// NewStore creates a Store holding Defaults until Load is called.
func NewStore(kv KV, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Default()
	}
	return &Store{
		kv:      kv,
		current: Defaults(),
		logger:  logger,
	}
}

// Current returns a copy of the settings in force.
func (s *Store) Current() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.clone()
}

// Load reads persisted settings. Missing or damaged fields fall back to
// their defaults one by one; Load never fails.
func (s *Store) Load() Settings {
	loaded := Defaults()

	raw, ok, err := s.kv.Get(StorageKey)
	switch {
	case err != nil:
		s.logger.Printf("settings: load failed, using defaults: %v", err)
	case !ok:
		s.logger.Printf("settings: nothing stored, using defaults")
	default:
		loaded = decodeSettings(raw, s.logger)
	}

	s.mu.Lock()
	s.current = loaded
	s.mu.Unlock()

	return loaded.clone()
}

// Save validates input and, when every value is good, persists and applies it.
// On a ValidationError nothing changes.
func (s *Store) Save(input Input) (Settings, error) {
	minutes, err := parser.ParseSchedule(input.Schedule, parser.MaxPeriods)
	if err != nil {
		return s.Current(), &ValidationError{Field: "schedule", Token: badToken(err)}
	}

	defaultMinutes, err := parser.ParseMinutes(input.DefaultDuration)
	if err != nil {
		return s.Current(), &ValidationError{Field: "default duration", Token: badToken(err)}
	}

	updated := Settings{
		DefaultDuration: time.Duration(defaultMinutes) * time.Minute,
		Schedule:        make([]time.Duration, len(minutes)),
		VibrateOnExpire: input.Vibrate,
	}
	for i, m := range minutes {
		updated.Schedule[i] = time.Duration(m) * time.Minute
	}

	serialized, err := json.Marshal(storedSettings{
		DefaultDuration: defaultMinutes,
		Schedule:        minutes,
		VibrateOnExpire: input.Vibrate,
	})
	if err != nil {
		return s.Current(), fmt.Errorf("marshal settings: %w", err)
	}
	if err := s.kv.Set(StorageKey, string(serialized)); err != nil {
		return s.Current(), fmt.Errorf("save settings: %w", err)
	}

	s.mu.Lock()
	s.current = updated
	s.mu.Unlock()

	return updated.clone(), nil
}

func badToken(err error) string {
	var tokenErr *parser.TokenError
	if errors.As(err, &tokenErr) {
		return tokenErr.Token
	}
	return err.Error()
}

// decodeSettings reads each field independently so one bad field does not
// discard the others.
func decodeSettings(raw string, logger *log.Logger) Settings {
	settings := Defaults()

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		logger.Printf("settings: stored value is corrupt, using defaults: %v", err)
		return settings
	}

	if value, ok := fields["defaultDuration"]; ok {
		if minutes, ok := positiveMinutes(value); ok {
			settings.DefaultDuration = time.Duration(minutes) * time.Minute
		} else {
			logger.Printf("settings: invalid default duration %s, using %v", value, DefaultDuration)
		}
	}

	if value, ok := fields["schedule"]; ok {
		var entries []json.RawMessage
		if err := json.Unmarshal(value, &entries); err != nil {
			logger.Printf("settings: schedule is not a list, ignoring it")
		}
		for _, entry := range entries {
			if len(settings.Schedule) == parser.MaxPeriods {
				break
			}
			minutes, ok := positiveMinutes(entry)
			if !ok {
				logger.Printf("settings: dropping schedule entry %s", entry)
				continue
			}
			settings.Schedule = append(settings.Schedule, time.Duration(minutes)*time.Minute)
		}
	}

	if value, ok := fields["vibrateOnExpire"]; ok {
		var vibrate bool
		if err := json.Unmarshal(value, &vibrate); err == nil {
			settings.VibrateOnExpire = vibrate
		}
	}

	return settings
}

// positiveMinutes accepts a JSON number or numeric string and truncates it to
// whole minutes.
func positiveMinutes(value json.RawMessage) (int, bool) {
	var number float64
	if err := json.Unmarshal(value, &number); err != nil {
		var text string
		if err := json.Unmarshal(value, &text); err != nil {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return 0, false
		}
		number = parsed
	}

	minutes := math.Trunc(number)
	if math.IsNaN(minutes) || minutes < 1 || minutes > parser.MaxMinutes {
		return 0, false
	}
	return int(minutes), true
}

package timer

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// SessionKey is the key the in-flight session is persisted under.
const SessionKey = "classPeriodTimerState"

var errIncompleteSession = errors.New("stored session is missing fields")

// Session is the persisted record of the period in progress.
type Session struct {
	PeriodIndex int
	// PeriodDuration is snapshotted when the period starts so settings edits
	// never stretch or shrink a running period.
	PeriodDuration time.Duration
	// StartedAt is zero until the first start after a reset.
	StartedAt time.Time
	// Remaining is authoritative only while paused or right after a restore.
	Remaining time.Duration
	Paused    bool
}

// RemainingAt derives the time left at now, clamped to [0, PeriodDuration].
func (s Session) RemainingAt(now time.Time) time.Duration {
	return clampDuration(s.StartedAt.Add(s.PeriodDuration).Sub(now), s.PeriodDuration)
}

func clampDuration(d, max time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	if d > max {
		return max
	}
	return d
}

// storedSession uses pointers so a missing field can be told apart from a zero.
// Durations and the epoch are milliseconds.
type storedSession struct {
	PeriodIndex    *int   `json:"periodIndex"`
	PeriodDuration *int64 `json:"periodDuration"`
	StartedAtEpoch *int64 `json:"startedAtEpoch"`
	Remaining      *int64 `json:"remaining"`
	Paused         *bool  `json:"paused"`
}

func encodeSession(s Session) (string, error) {
	var epoch int64
	if !s.StartedAt.IsZero() {
		epoch = s.StartedAt.UnixMilli()
	}
	duration := s.PeriodDuration.Milliseconds()
	remaining := s.Remaining.Milliseconds()

	serialized, err := json.Marshal(storedSession{
		PeriodIndex:    &s.PeriodIndex,
		PeriodDuration: &duration,
		StartedAtEpoch: &epoch,
		Remaining:      &remaining,
		Paused:         &s.Paused,
	})
	if err != nil {
		return "", fmt.Errorf("marshal session: %w", err)
	}
	return string(serialized), nil
}

func decodeSession(raw string) (Session, error) {
	var stored storedSession
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return Session{}, fmt.Errorf("parse session: %w", err)
	}

	if stored.PeriodIndex == nil || stored.PeriodDuration == nil ||
		stored.StartedAtEpoch == nil || stored.Remaining == nil || stored.Paused == nil {
		return Session{}, errIncompleteSession
	}
	if *stored.PeriodDuration <= 0 || *stored.Remaining < 0 || *stored.StartedAtEpoch < 0 {
		return Session{}, fmt.Errorf("stored session has out of range values: %s", raw)
	}

	session := Session{
		PeriodIndex:    *stored.PeriodIndex,
		PeriodDuration: time.Duration(*stored.PeriodDuration) * time.Millisecond,
		Remaining:      time.Duration(*stored.Remaining) * time.Millisecond,
		Paused:         *stored.Paused,
	}
	if *stored.StartedAtEpoch != 0 {
		session.StartedAt = time.UnixMilli(*stored.StartedAtEpoch)
	}
	session.Remaining = clampDuration(session.Remaining, session.PeriodDuration)

	return session, nil
}

package parser

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxPeriods is the longest schedule a user can configure
const MaxPeriods = 8

// MaxMinutes caps a single period at one day
const MaxMinutes = 24 * 60

// TokenError reports the raw token that could not be read as a duration
type TokenError struct {
	Token string
}

func (e *TokenError) Error() string {
	return fmt.Sprintf("invalid duration %q: use positive whole minutes", e.Token)
}

// ParseMinutes parses a single positive whole-minute value.
// Accepts formats like:
// - "40", " 25 " -> 40, 25
// Anything else, including "0", "-5", "2.5" and values above MaxMinutes, is rejected.
func ParseMinutes(token string) (int, error) {
	trimmed := strings.TrimSpace(token)

	minutes, err := strconv.Atoi(trimmed)
	if err != nil || minutes <= 0 || minutes > MaxMinutes {
		return 0, &TokenError{Token: trimmed}
	}

	return minutes, nil
}

// ParseSchedule parses a comma-separated list of period lengths in minutes.
// Only the first max entries are read; the first bad entry aborts the parse.
// An empty or blank input means no schedule.
func ParseSchedule(raw string, max int) ([]int, error) {
	if strings.TrimSpace(raw) == "" {
		return []int{}, nil
	}

	parts := strings.Split(raw, ",")
	if max > 0 && len(parts) > max {
		parts = parts[:max]
	}

	schedule := make([]int, 0, len(parts))
	for _, part := range parts {
		minutes, err := ParseMinutes(part)
		if err != nil {
			return nil, err
		}
		schedule = append(schedule, minutes)
	}

	return schedule, nil
}

// FormatSchedule renders minutes back into the comma-separated form ParseSchedule reads
func FormatSchedule(minutes []int) string {
	parts := make([]string, len(minutes))
	for i, m := range minutes {
		parts[i] = strconv.Itoa(m)
	}
	return strings.Join(parts, ",")
}

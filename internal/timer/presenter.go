package timer

import (
	"fmt"
	"time"
)

// VibrationPattern is the on/off rhythm requested when a period expires.
var VibrationPattern = []time.Duration{
	200 * time.Millisecond,
	100 * time.Millisecond,
	200 * time.Millisecond,
}

// Frame is one display update.
type Frame struct {
	State     State
	Remaining time.Duration
	Minutes   int
	Seconds   int
	// Progress is the share of the period still left, 0-100.
	Progress     float64
	Period       int
	TotalPeriods int
}

// Clock renders the remaining time as MM:SS.
func (f Frame) Clock() string {
	return formatClock(f.Minutes, f.Seconds)
}

// Presenter renders frames and carries out notifications.
// Implementations must not block and must not call back into the Engine.
type Presenter interface {
	Render(frame Frame)
	PlayAlert() error
	Vibrate(pattern []time.Duration) error
	ShowToast(message string, duration time.Duration)
	ShowExpiry(visible bool)
}

func newFrame(state State, session Session, totalPeriods int) Frame {
	seconds := int(session.Remaining / time.Second)
	if seconds < 0 {
		seconds = 0
	}

	var progress float64
	if session.PeriodDuration > 0 {
		progress = float64(session.Remaining) / float64(session.PeriodDuration) * 100
	}

	return Frame{
		State:        state,
		Remaining:    session.Remaining,
		Minutes:      seconds / 60,
		Seconds:      seconds % 60,
		Progress:     progress,
		Period:       session.PeriodIndex + 1,
		TotalPeriods: totalPeriods,
	}
}

func formatClock(minutes, seconds int) string {
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

package timer

import "time"

// Timer is a scheduled callback that can be cancelled.
type Timer interface {
	Stop() bool
}

// Clock tells the time and schedules callbacks.
// Tests substitute a manual clock so ticks fire on demand.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// SystemClock is the default Clock backed by the time package.
var SystemClock Clock = systemClock{}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// idleClock never fires callbacks. One-shot commands use it so that a
// transition is persisted without leaving a tick loop behind.
type idleClock struct{}

// IdleClock reports real time but drops every scheduled callback.
var IdleClock Clock = idleClock{}

func (idleClock) Now() time.Time {
	return time.Now()
}

func (idleClock) AfterFunc(time.Duration, func()) Timer {
	return stoppedTimer{}
}

type stoppedTimer struct{}

func (stoppedTimer) Stop() bool { return false }

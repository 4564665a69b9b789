package timer

// State is the engine's position in the countdown lifecycle.
type State int

const (
	// StateIdle shows a full, never-started period.
	StateIdle State = iota
	StateRunning
	StatePaused
	// StateExpired is held only between a period reaching zero and the next
	// period starting.
	StateExpired
	// StateAllComplete follows the last period of the schedule.
	StateAllComplete
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateExpired:
		return "expired"
	case StateAllComplete:
		return "complete"
	default:
		return "unknown"
	}
}

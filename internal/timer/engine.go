package timer

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/balkashynov/classtimer/internal/settings"
)

const (
	DefaultFrameInterval = 100 * time.Millisecond
	DefaultChainDelay    = 2 * time.Second
	DefaultCompleteDelay = 3 * time.Second
)

// KV is the string store the session is persisted in.
type KV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}

// SettingsStore supplies the schedule and accepts edits to it.
type SettingsStore interface {
	Current() settings.Settings
	Save(input settings.Input) (settings.Settings, error)
}

// Config contains runtime options for Engine.
type Config struct {
	// FrameInterval is the tick cadence while running.
	FrameInterval time.Duration
	// ChainDelay separates an expired period from the automatic start of the next.
	ChainDelay time.Duration
	// CompleteDelay is how long the expiry banner stays after the last period.
	CompleteDelay time.Duration
	Clock         Clock
	Logger        *log.Logger
}

// Snapshot is a point-in-time copy of the engine state.
type Snapshot struct {
	State        State
	Session      Session
	TotalPeriods int
}

// Engine is the countdown state machine for a schedule of class periods.
// Every transition runs to completion under one lock; scheduled ticks carry
// a token so a tick that fires after its loop was stopped does nothing.
type Engine struct {
	mu        sync.Mutex
	settings  SettingsStore
	kv        KV
	presenter Presenter
	options   Config
	logger    *log.Logger

	state         State
	session       Session
	expiryVisible bool

	tick         Timer
	tickToken    uint64
	pending      Timer
	pendingToken uint64
}

// New creates an Engine. Call Restore before delivering any other event.
func New(store SettingsStore, kv KV, presenter Presenter, options Config) *Engine {
	if options.FrameInterval <= 0 {
		options.FrameInterval = DefaultFrameInterval
	}
	if options.ChainDelay <= 0 {
		options.ChainDelay = DefaultChainDelay
	}
	if options.CompleteDelay <= 0 {
		options.CompleteDelay = DefaultCompleteDelay
	}
	if options.Clock == nil {
		options.Clock = SystemClock
	}
	if options.Logger == nil {
		options.Logger = log.Default()
	}

	return &Engine{
		settings:  store,
		kv:        kv,
		presenter: presenter,
		options:   options,
		logger:    options.Logger,
		state:     StateIdle,
	}
}

// Restore rehydrates the persisted session. Anything unreadable, or a period
// index the current schedule no longer has, falls back to Reset.
func (e *Engine) Restore() {
	e.mu.Lock()
	defer e.mu.Unlock()

	raw, ok, err := e.kv.Get(SessionKey)
	if err != nil {
		e.logger.Printf("timer: load session failed, resetting: %v", err)
		e.resetLocked()
		return
	}
	if !ok {
		e.resetLocked()
		return
	}

	session, err := decodeSession(raw)
	if err != nil {
		e.logger.Printf("timer: discarding stored session: %v", err)
		e.resetLocked()
		return
	}

	total := len(e.effectiveLocked())
	if session.PeriodIndex < 0 || session.PeriodIndex >= total {
		e.logger.Printf("timer: stored period %d is out of bounds for %d periods, resetting", session.PeriodIndex+1, total)
		e.resetLocked()
		return
	}

	e.stopTickLocked()
	e.cancelPendingLocked()
	e.session = session

	if session.Paused {
		e.state = StatePaused
		e.renderLocked()
		return
	}
	if session.StartedAt.IsZero() {
		e.logger.Printf("timer: stored session is running but was never started, resetting")
		e.resetLocked()
		return
	}

	// startedAt is still a valid anchor, so the loop resumes without re-anchoring.
	e.logger.Printf("timer: resuming period %d of %d", session.PeriodIndex+1, total)
	e.state = StateRunning
	e.tickLocked()
}

// Start begins the current period, or resumes it when paused.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == StateRunning {
		return
	}
	// The user takes over from any pending chain or banner timeout.
	e.cancelPendingLocked()
	e.hideExpiryLocked()
	e.startLocked()
}

// Pause freezes the countdown.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateRunning {
		return
	}

	e.stopTickLocked()
	e.cancelPendingLocked()
	e.session.Remaining = e.session.RemainingAt(e.options.Clock.Now())
	if e.session.Remaining == 0 {
		e.expireLocked()
		return
	}

	e.session.Paused = true
	e.state = StatePaused
	e.persistLocked()
	e.renderLocked()
	e.logger.Printf("timer: paused with %v left", e.session.Remaining.Round(time.Second))
}

// Reset abandons the session and shows the first period at full length.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resetLocked()
}

// UpdateSettings saves new settings and, on success, resets the timer so the
// countdown matches the new schedule.
func (e *Engine) UpdateSettings(input settings.Input) (settings.Settings, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	updated, err := e.settings.Save(input)
	if err != nil {
		e.presenter.ShowToast(err.Error(), 3*time.Second)
		return updated, err
	}

	e.presenter.ShowToast("Settings saved!", 2*time.Second)
	e.resetLocked()
	return updated, nil
}

// Snapshot returns a copy of the current state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	return Snapshot{
		State:        e.state,
		Session:      e.session,
		TotalPeriods: len(e.effectiveLocked()),
	}
}

// Close stops scheduled callbacks. The persisted session is left alone so the
// next Restore picks it up.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopTickLocked()
	e.cancelPendingLocked()
}

func (e *Engine) startLocked() {
	if e.state == StateRunning {
		return
	}

	schedule := e.effectiveLocked()
	now := e.options.Clock.Now()

	if e.session.Paused && !e.session.StartedAt.IsZero() && e.session.Remaining > 0 {
		// Re-anchor so elapsed time continues where it stopped.
		e.session.StartedAt = now.Add(-(e.session.PeriodDuration - e.session.Remaining))
	} else {
		index := clampIndex(e.session.PeriodIndex, len(schedule))
		e.session.PeriodIndex = index
		e.session.PeriodDuration = schedule[index]
		e.session.StartedAt = now
		e.session.Remaining = schedule[index]
	}
	e.session.Paused = false
	e.state = StateRunning

	e.logger.Printf("timer: period %d of %d running, %v left",
		e.session.PeriodIndex+1, len(schedule), e.session.Remaining.Round(time.Second))
	e.persistLocked()
	e.tickLocked()
}

func (e *Engine) resetLocked() {
	e.stopTickLocked()
	e.cancelPendingLocked()
	e.clearPersistedLocked()
	e.hideExpiryLocked()

	schedule := e.effectiveLocked()
	e.session = Session{
		PeriodIndex:    0,
		PeriodDuration: schedule[0],
		Remaining:      schedule[0],
	}
	e.state = StateIdle
	e.renderLocked()
}

// tickLocked recomputes remaining time and either keeps the loop going or expires.
func (e *Engine) tickLocked() {
	e.session.Remaining = e.session.RemainingAt(e.options.Clock.Now())
	if e.session.Remaining == 0 {
		e.expireLocked()
		return
	}

	e.renderLocked()
	e.persistLocked()
	e.scheduleTickLocked()
}

func (e *Engine) scheduleTickLocked() {
	e.tickToken++
	token := e.tickToken
	e.tick = e.options.Clock.AfterFunc(e.options.FrameInterval, func() {
		e.onTick(token)
	})
}

func (e *Engine) onTick(token uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if token != e.tickToken || e.state != StateRunning {
		return
	}
	e.tick = nil
	e.tickLocked()
}

func (e *Engine) stopTickLocked() {
	if e.tick != nil {
		e.tick.Stop()
		e.tick = nil
	}
	e.tickToken++
}

// afterLocked runs fn under the lock after d unless cancelled first.
// Only one delayed callback is outstanding at a time.
func (e *Engine) afterLocked(d time.Duration, fn func()) {
	e.cancelPendingLocked()
	token := e.pendingToken
	e.pending = e.options.Clock.AfterFunc(d, func() {
		e.mu.Lock()
		defer e.mu.Unlock()

		if token != e.pendingToken {
			return
		}
		e.pending = nil
		fn()
	})
}

func (e *Engine) cancelPendingLocked() {
	if e.pending != nil {
		e.pending.Stop()
		e.pending = nil
	}
	e.pendingToken++
}

func (e *Engine) expireLocked() {
	e.stopTickLocked()
	e.clearPersistedLocked()

	current := e.settings.Current()
	schedule := current.Effective()

	e.state = StateExpired
	e.session.Remaining = 0
	e.session.Paused = false
	e.renderLocked()
	e.notifyLocked(current.VibrateOnExpire)

	finished := e.session.PeriodIndex + 1
	next := finished
	if next < len(schedule) {
		e.presenter.ShowToast(fmt.Sprintf("Period %d complete. Next: %s.", finished, describeDuration(schedule[next])), 4*time.Second)
		e.logger.Printf("timer: period %d of %d complete, next starts in %v", finished, len(schedule), e.options.ChainDelay)
		e.session.PeriodIndex = next
		e.afterLocked(e.options.ChainDelay, func() {
			if e.state != StateExpired {
				return
			}
			e.hideExpiryLocked()
			e.startLocked()
		})
		return
	}

	e.presenter.ShowToast("All periods complete!", 5*time.Second)
	e.logger.Printf("timer: all %d periods complete", len(schedule))
	e.session = Session{
		PeriodIndex:    0,
		PeriodDuration: current.DefaultDuration,
	}
	e.state = StateAllComplete
	e.renderLocked()
	e.afterLocked(e.options.CompleteDelay, e.hideExpiryLocked)
}

// notifyLocked fires the expiry notifications. Failures are logged only.
func (e *Engine) notifyLocked(vibrate bool) {
	if err := e.presenter.PlayAlert(); err != nil {
		e.logger.Printf("timer: alert sound failed: %v", err)
	}
	if vibrate {
		if err := e.presenter.Vibrate(VibrationPattern); err != nil {
			e.logger.Printf("timer: vibration failed: %v", err)
		}
	}
	e.presenter.ShowExpiry(true)
	e.expiryVisible = true
}

func (e *Engine) hideExpiryLocked() {
	if !e.expiryVisible {
		return
	}
	e.presenter.ShowExpiry(false)
	e.expiryVisible = false
}

func (e *Engine) renderLocked() {
	e.presenter.Render(newFrame(e.state, e.session, len(e.effectiveLocked())))
}

func (e *Engine) persistLocked() {
	serialized, err := encodeSession(e.session)
	if err != nil {
		e.logger.Printf("timer: %v", err)
		return
	}
	if err := e.kv.Set(SessionKey, serialized); err != nil {
		e.logger.Printf("timer: save session failed: %v", err)
	}
}

func (e *Engine) clearPersistedLocked() {
	if err := e.kv.Delete(SessionKey); err != nil {
		e.logger.Printf("timer: clear session failed: %v", err)
	}
}

func (e *Engine) effectiveLocked() []time.Duration {
	return e.settings.Current().Effective()
}

func clampIndex(index, length int) int {
	if index < 0 {
		return 0
	}
	if index >= length {
		return length - 1
	}
	return index
}

// describeDuration prints whole minutes as "N minutes" and anything else as a Go duration.
func describeDuration(d time.Duration) string {
	if d%time.Minute == 0 {
		minutes := int(d / time.Minute)
		if minutes == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", minutes)
	}
	return d.String()
}

package timer

import (
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/balkashynov/classtimer/internal/settings"
)

// manualClock only moves when Advance is called and fires due callbacks in order.
type manualClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*manualTimer
}

type manualTimer struct {
	clock   *manualClock
	at      time.Time
	fn      func()
	stopped bool
	fired   bool
}

func newManualClock() *manualClock {
	return &manualClock{now: time.UnixMilli(1_700_000_000_000)}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := &manualTimer{clock: c, at: c.now.Add(d), fn: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

// Advance moves time forward by d, running callbacks as their deadline passes.
func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		var next *manualTimer
		for _, t := range c.timers {
			if t.stopped || t.fired || t.at.After(target) {
				continue
			}
			if next == nil || t.at.Before(next.at) {
				next = t
			}
		}
		if next == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		if next.at.After(c.now) {
			c.now = next.at
		}
		next.fired = true
		c.mu.Unlock()

		next.fn()
	}
}

// pending counts callbacks that are scheduled and not yet fired or stopped.
func (c *manualClock) pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

type memoryKV struct {
	mu     sync.Mutex
	values map[string]string
}

func newMemoryKV() *memoryKV {
	return &memoryKV{values: make(map[string]string)}
}

func (m *memoryKV) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.values[key]
	return value, ok, nil
}

func (m *memoryKV) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *memoryKV) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

func (m *memoryKV) has(key string) bool {
	_, ok, _ := m.Get(key)
	return ok
}

type staticSettings struct {
	current settings.Settings
}

func (s *staticSettings) Current() settings.Settings {
	copied := s.current
	copied.Schedule = append([]time.Duration{}, s.current.Schedule...)
	return copied
}

func (s *staticSettings) Save(settings.Input) (settings.Settings, error) {
	return s.current, nil
}

type toast struct {
	message  string
	duration time.Duration
}

type recordingPresenter struct {
	mu         sync.Mutex
	frames     []Frame
	toasts     []toast
	alerts     int
	vibrations int
	expiry     bool
	alertErr   error
	vibrateErr error
}

func (p *recordingPresenter) Render(frame Frame) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.frames = append(p.frames, frame)
}

func (p *recordingPresenter) PlayAlert() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.alerts++
	return p.alertErr
}

func (p *recordingPresenter) Vibrate([]time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.vibrations++
	return p.vibrateErr
}

func (p *recordingPresenter) ShowToast(message string, duration time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.toasts = append(p.toasts, toast{message: message, duration: duration})
}

func (p *recordingPresenter) ShowExpiry(visible bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.expiry = visible
}

func (p *recordingPresenter) lastFrame() Frame {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.frames) == 0 {
		return Frame{}
	}
	return p.frames[len(p.frames)-1]
}

func (p *recordingPresenter) frameCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.frames)
}

func (p *recordingPresenter) lastToast() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.toasts) == 0 {
		return ""
	}
	return p.toasts[len(p.toasts)-1].message
}

type harness struct {
	engine    *Engine
	clock     *manualClock
	kv        *memoryKV
	presenter *recordingPresenter
	settings  *staticSettings
}

func newHarness(t *testing.T, schedule ...time.Duration) *harness {
	t.Helper()

	h := &harness{
		clock:     newManualClock(),
		kv:        newMemoryKV(),
		presenter: &recordingPresenter{},
		settings: &staticSettings{current: settings.Settings{
			DefaultDuration: 40 * time.Minute,
			Schedule:        schedule,
			VibrateOnExpire: true,
		}},
	}
	h.engine = New(h.settings, h.kv, h.presenter, Config{
		Clock:  h.clock,
		Logger: log.New(io.Discard, "", 0),
	})
	t.Cleanup(h.engine.Close)

	return h
}

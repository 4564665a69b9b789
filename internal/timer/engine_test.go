package timer

import (
	"errors"
	"io"
	"log"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/balkashynov/classtimer/internal/settings"
)

func TestResetShowsFirstPeriod(t *testing.T) {
	tests := []struct {
		name     string
		schedule []time.Duration
		want     time.Duration
		total    int
	}{
		{name: "default duration", schedule: nil, want: 40 * time.Minute, total: 1},
		{name: "schedule", schedule: []time.Duration{25 * time.Minute, 5 * time.Minute}, want: 25 * time.Minute, total: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, tt.schedule...)
			h.engine.Start()
			h.clock.Advance(time.Minute)

			h.engine.Reset()

			snap := h.engine.Snapshot()
			if snap.State != StateIdle {
				t.Fatalf("state = %v want idle", snap.State)
			}
			if snap.Session.PeriodIndex != 0 {
				t.Fatalf("period index = %d", snap.Session.PeriodIndex)
			}
			if snap.Session.PeriodDuration != tt.want || snap.Session.Remaining != tt.want {
				t.Fatalf("duration/remaining = %v/%v want %v", snap.Session.PeriodDuration, snap.Session.Remaining, tt.want)
			}
			if !snap.Session.StartedAt.IsZero() {
				t.Fatalf("startedAt should be zero after reset")
			}
			if h.kv.has(SessionKey) {
				t.Fatalf("reset should clear the stored session")
			}

			frame := h.presenter.lastFrame()
			if frame.Period != 1 || frame.TotalPeriods != tt.total {
				t.Fatalf("frame period = %d of %d", frame.Period, frame.TotalPeriods)
			}
			if frame.Progress != 100 {
				t.Fatalf("frame progress = %v want 100", frame.Progress)
			}
		})
	}
}

func TestPauseResumeKeepsElapsedTime(t *testing.T) {
	h := newHarness(t, 60*time.Second)
	h.engine.Restore()

	h.engine.Start()
	h.clock.Advance(10 * time.Second)
	h.engine.Pause()

	snap := h.engine.Snapshot()
	if snap.State != StatePaused {
		t.Fatalf("state = %v want paused", snap.State)
	}
	if snap.Session.Remaining != 50*time.Second {
		t.Fatalf("remaining after pause = %v want 50s", snap.Session.Remaining)
	}

	frames := h.presenter.frameCount()
	h.clock.Advance(5 * time.Second)
	if h.presenter.frameCount() != frames {
		t.Fatalf("frames rendered while paused")
	}
	if h.clock.pending() != 0 {
		t.Fatalf("tick still scheduled while paused")
	}
	if got := h.engine.Snapshot().Session.Remaining; got != 50*time.Second {
		t.Fatalf("remaining drifted while paused: %v", got)
	}

	h.engine.Start()

	snap = h.engine.Snapshot()
	if snap.Session.Remaining != 50*time.Second {
		t.Fatalf("remaining after resume = %v want 50s", snap.Session.Remaining)
	}
	if want := h.clock.Now().Add(-10 * time.Second); !snap.Session.StartedAt.Equal(want) {
		t.Fatalf("startedAt = %v want %v", snap.Session.StartedAt, want)
	}

	h.clock.Advance(20 * time.Second)
	if got := h.engine.Snapshot().Session.Remaining; got != 30*time.Second {
		t.Fatalf("remaining 20s after resume = %v want 30s", got)
	}
}

func TestStartWhileRunningIsNoop(t *testing.T) {
	h := newHarness(t, 60*time.Second)
	h.engine.Start()
	h.clock.Advance(time.Second)

	before := h.engine.Snapshot()
	h.engine.Start()
	after := h.engine.Snapshot()

	if !after.Session.StartedAt.Equal(before.Session.StartedAt) ||
		after.Session.PeriodDuration != before.Session.PeriodDuration ||
		after.Session.PeriodIndex != before.Session.PeriodIndex {
		t.Fatalf("second start changed session: %+v -> %+v", before.Session, after.Session)
	}
	if h.clock.pending() != 1 {
		t.Fatalf("pending callbacks = %d want exactly one tick", h.clock.pending())
	}
}

func TestExpiryChainsToNextPeriod(t *testing.T) {
	h := newHarness(t, time.Minute, time.Minute)
	h.engine.Start()

	h.clock.Advance(time.Minute)

	snap := h.engine.Snapshot()
	if snap.State != StateExpired {
		t.Fatalf("state = %v want expired", snap.State)
	}
	if snap.Session.PeriodIndex != 1 {
		t.Fatalf("period index = %d want 1", snap.Session.PeriodIndex)
	}
	if h.kv.has(SessionKey) {
		t.Fatalf("expiry should clear the stored session")
	}
	if h.presenter.alerts != 1 || h.presenter.vibrations != 1 {
		t.Fatalf("alerts/vibrations = %d/%d", h.presenter.alerts, h.presenter.vibrations)
	}
	if !h.presenter.expiry {
		t.Fatalf("expiry banner should be visible")
	}
	if got := h.presenter.lastToast(); got != "Period 1 complete. Next: 1 minute." {
		t.Fatalf("toast = %q", got)
	}

	h.clock.Advance(DefaultChainDelay)

	snap = h.engine.Snapshot()
	if snap.State != StateRunning {
		t.Fatalf("state after chain delay = %v want running", snap.State)
	}
	if snap.Session.PeriodIndex != 1 || snap.Session.Remaining != time.Minute {
		t.Fatalf("second period = %+v", snap.Session)
	}
	if h.presenter.expiry {
		t.Fatalf("expiry banner should be hidden once the next period starts")
	}
	if frame := h.presenter.lastFrame(); frame.Period != 2 || frame.TotalPeriods != 2 {
		t.Fatalf("frame period = %d of %d", frame.Period, frame.TotalPeriods)
	}
}

func TestScheduleExhaustion(t *testing.T) {
	h := newHarness(t, time.Minute)
	h.engine.Start()

	h.clock.Advance(time.Minute)

	snap := h.engine.Snapshot()
	if snap.State != StateAllComplete {
		t.Fatalf("state = %v want complete", snap.State)
	}
	if snap.Session.PeriodIndex != 0 {
		t.Fatalf("period index = %d want 0", snap.Session.PeriodIndex)
	}
	if snap.Session.PeriodDuration != 40*time.Minute {
		t.Fatalf("period duration = %v want default", snap.Session.PeriodDuration)
	}
	if got := h.presenter.lastToast(); got != "All periods complete!" {
		t.Fatalf("toast = %q", got)
	}
	frame := h.presenter.lastFrame()
	if frame.State != StateAllComplete || frame.Clock() != "00:00" {
		t.Fatalf("frame = %+v", frame)
	}

	h.clock.Advance(DefaultCompleteDelay)
	if h.presenter.expiry {
		t.Fatalf("expiry banner should hide after the complete delay")
	}
	if h.engine.Snapshot().State != StateAllComplete {
		t.Fatalf("engine should wait for a manual start")
	}

	h.engine.Start()
	snap = h.engine.Snapshot()
	if snap.State != StateRunning || snap.Session.PeriodDuration != time.Minute {
		t.Fatalf("restart = %v %+v", snap.State, snap.Session)
	}
}

func TestResetCancelsAutoChain(t *testing.T) {
	h := newHarness(t, time.Minute, time.Minute)
	h.engine.Start()
	h.clock.Advance(time.Minute)

	h.engine.Reset()
	h.clock.Advance(10 * time.Second)

	snap := h.engine.Snapshot()
	if snap.State != StateIdle || snap.Session.PeriodIndex != 0 {
		t.Fatalf("after reset = %v index %d", snap.State, snap.Session.PeriodIndex)
	}
	if h.presenter.expiry {
		t.Fatalf("reset should dismiss the expiry banner")
	}
	if h.clock.pending() != 0 {
		t.Fatalf("pending callbacks = %d", h.clock.pending())
	}
}

func TestStartDuringChainDelay(t *testing.T) {
	h := newHarness(t, time.Minute, time.Minute)
	h.engine.Start()
	h.clock.Advance(time.Minute)

	h.engine.Start()
	started := h.engine.Snapshot().Session.StartedAt

	h.clock.Advance(DefaultChainDelay)

	snap := h.engine.Snapshot()
	if snap.State != StateRunning || snap.Session.PeriodIndex != 1 {
		t.Fatalf("state = %v index %d", snap.State, snap.Session.PeriodIndex)
	}
	if !snap.Session.StartedAt.Equal(started) {
		t.Fatalf("auto-chain restarted a period that was already running")
	}
}

func TestPauseDuringChainDelayStaysPaused(t *testing.T) {
	h := newHarness(t, time.Minute, time.Minute)
	h.engine.Start()
	h.clock.Advance(time.Minute)

	h.engine.Start()
	if h.presenter.expiry {
		t.Fatalf("starting the next period should hide the banner")
	}
	h.clock.Advance(500 * time.Millisecond)
	h.engine.Pause()

	h.clock.Advance(DefaultChainDelay)

	snap := h.engine.Snapshot()
	if snap.State != StatePaused || !snap.Session.Paused {
		t.Fatalf("after chain delay: state = %v paused = %v want paused", snap.State, snap.Session.Paused)
	}
	if got := snap.Session.Remaining; got != time.Minute-500*time.Millisecond {
		t.Fatalf("remaining = %v want %v", got, time.Minute-500*time.Millisecond)
	}
}

func TestPauseWithNoTimeLeftExpires(t *testing.T) {
	h := newHarness(t, time.Minute, time.Minute)
	h.engine.Start()

	// Jump past the deadline without letting the tick fire first.
	h.clock.mu.Lock()
	h.clock.now = h.clock.now.Add(2 * time.Minute)
	h.clock.mu.Unlock()

	h.engine.Pause()

	snap := h.engine.Snapshot()
	if snap.State != StateExpired || snap.Session.PeriodIndex != 1 {
		t.Fatalf("state = %v index %d", snap.State, snap.Session.PeriodIndex)
	}
}

func TestStaleTickIsIgnored(t *testing.T) {
	h := newHarness(t, time.Minute)
	h.engine.Start()

	h.engine.mu.Lock()
	stale := h.engine.tickToken
	h.engine.mu.Unlock()

	h.clock.Advance(5 * time.Second)
	h.engine.Pause()
	before := h.engine.Snapshot()
	frames := h.presenter.frameCount()

	h.clock.mu.Lock()
	h.clock.now = h.clock.now.Add(30 * time.Second)
	h.clock.mu.Unlock()
	h.engine.onTick(stale)

	after := h.engine.Snapshot()
	if after.State != StatePaused || after.Session.Remaining != before.Session.Remaining {
		t.Fatalf("stale tick mutated state: %+v -> %+v", before, after)
	}
	if h.presenter.frameCount() != frames {
		t.Fatalf("stale tick rendered a frame")
	}
}

func TestSessionPersistedWhileRunningAndPaused(t *testing.T) {
	h := newHarness(t, time.Minute)
	h.engine.Start()
	h.clock.Advance(15 * time.Second)

	raw, ok, _ := h.kv.Get(SessionKey)
	if !ok {
		t.Fatalf("expected running session to be stored")
	}
	stored, err := decodeSession(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stored.Paused || stored.Remaining != 45*time.Second {
		t.Fatalf("stored running session = %+v", stored)
	}
	if frame := h.presenter.lastFrame(); frame.Progress != 75 || frame.Clock() != "00:45" {
		t.Fatalf("frame = %+v", frame)
	}

	h.engine.Pause()
	raw, _, _ = h.kv.Get(SessionKey)
	stored, err = decodeSession(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !stored.Paused || stored.Remaining != 45*time.Second {
		t.Fatalf("stored paused session = %+v", stored)
	}
}

func TestRestoreWithoutSessionResets(t *testing.T) {
	h := newHarness(t, 25*time.Minute, 5*time.Minute)
	h.engine.Restore()

	snap := h.engine.Snapshot()
	if snap.State != StateIdle || snap.Session.Remaining != 25*time.Minute {
		t.Fatalf("restore = %v %+v", snap.State, snap.Session)
	}
}

func TestRestoreDiscardsOutOfBoundsIndex(t *testing.T) {
	h := newHarness(t, time.Minute, time.Minute)
	h.kv.values[SessionKey] = `{"periodIndex":3,"periodDuration":60000,"startedAtEpoch":1700000000000,"remaining":30000,"paused":true}`

	h.engine.Restore()

	snap := h.engine.Snapshot()
	if snap.State != StateIdle || snap.Session.PeriodIndex != 0 {
		t.Fatalf("restore = %v index %d", snap.State, snap.Session.PeriodIndex)
	}
	if h.kv.has(SessionKey) {
		t.Fatalf("stale session should be deleted")
	}
}

func TestRestoreDiscardsCorruptSession(t *testing.T) {
	for _, raw := range []string{
		"{bad",
		`{"periodIndex":0}`,
		`{"periodIndex":0,"periodDuration":0,"startedAtEpoch":0,"remaining":0,"paused":true}`,
		`{"periodIndex":0,"periodDuration":60000,"startedAtEpoch":0,"remaining":60000,"paused":false}`,
	} {
		h := newHarness(t, time.Minute)
		h.kv.values[SessionKey] = raw

		h.engine.Restore()

		if snap := h.engine.Snapshot(); snap.State != StateIdle {
			t.Fatalf("restore(%s) state = %v want idle", raw, snap.State)
		}
	}
}

func TestRestoreRunningSessionKeepsAnchor(t *testing.T) {
	h := newHarness(t, time.Minute)
	started := h.clock.Now().Add(-10 * time.Second)
	encoded, err := encodeSession(Session{
		PeriodDuration: time.Minute,
		StartedAt:      started,
		Remaining:      time.Minute,
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	h.kv.values[SessionKey] = encoded

	h.engine.Restore()

	snap := h.engine.Snapshot()
	if snap.State != StateRunning {
		t.Fatalf("state = %v want running", snap.State)
	}
	if !snap.Session.StartedAt.Equal(started) {
		t.Fatalf("startedAt = %v want %v", snap.Session.StartedAt, started)
	}
	if snap.Session.Remaining != 50*time.Second {
		t.Fatalf("remaining = %v want 50s", snap.Session.Remaining)
	}
}

func TestRestoreRunningSessionThatElapsedExpires(t *testing.T) {
	h := newHarness(t, time.Minute, time.Minute)
	encoded, _ := encodeSession(Session{
		PeriodDuration: time.Minute,
		StartedAt:      h.clock.Now().Add(-90 * time.Second),
		Remaining:      20 * time.Second,
	})
	h.kv.values[SessionKey] = encoded

	h.engine.Restore()

	if snap := h.engine.Snapshot(); snap.State != StateExpired || snap.Session.PeriodIndex != 1 {
		t.Fatalf("restore = %v index %d", snap.State, snap.Session.PeriodIndex)
	}

	h.clock.Advance(DefaultChainDelay)
	if snap := h.engine.Snapshot(); snap.State != StateRunning || snap.Session.PeriodIndex != 1 {
		t.Fatalf("after chain = %v index %d", snap.State, snap.Session.PeriodIndex)
	}
}

func TestRestorePausedSession(t *testing.T) {
	h := newHarness(t, time.Minute)
	encoded, _ := encodeSession(Session{
		PeriodDuration: time.Minute,
		StartedAt:      h.clock.Now().Add(-time.Hour),
		Remaining:      30 * time.Second,
		Paused:         true,
	})
	h.kv.values[SessionKey] = encoded

	h.engine.Restore()

	if snap := h.engine.Snapshot(); snap.State != StatePaused || snap.Session.Remaining != 30*time.Second {
		t.Fatalf("restore = %v %+v", snap.State, snap.Session)
	}
	if frame := h.presenter.lastFrame(); frame.Clock() != "00:30" {
		t.Fatalf("frame clock = %s", frame.Clock())
	}
	if h.clock.pending() != 0 {
		t.Fatalf("paused restore scheduled a tick")
	}

	h.engine.Start()
	if got := h.engine.Snapshot().Session.Remaining; got != 30*time.Second {
		t.Fatalf("remaining after resume = %v", got)
	}
}

func TestNotificationFailuresDoNotBlockChaining(t *testing.T) {
	h := newHarness(t, time.Minute, time.Minute)
	h.presenter.alertErr = errors.New("no audio device")
	h.presenter.vibrateErr = errors.New("vibration unsupported")

	h.engine.Start()
	h.clock.Advance(time.Minute + DefaultChainDelay)

	if snap := h.engine.Snapshot(); snap.State != StateRunning || snap.Session.PeriodIndex != 1 {
		t.Fatalf("state = %v index %d", snap.State, snap.Session.PeriodIndex)
	}
}

func TestVibrationFollowsSetting(t *testing.T) {
	h := newHarness(t, time.Minute)
	h.settings.current.VibrateOnExpire = false

	h.engine.Start()
	h.clock.Advance(time.Minute)

	if h.presenter.vibrations != 0 {
		t.Fatalf("vibrated with vibration disabled")
	}
	if h.presenter.alerts != 1 {
		t.Fatalf("alerts = %d", h.presenter.alerts)
	}
}

func TestUpdateSettingsResetsTimer(t *testing.T) {
	kv := newMemoryKV()
	discard := log.New(io.Discard, "", 0)
	store := settings.NewStore(kv, discard)
	store.Load()
	clock := newManualClock()
	presenter := &recordingPresenter{}
	engine := New(store, kv, presenter, Config{Clock: clock, Logger: discard})
	defer engine.Close()

	engine.Restore()
	engine.Start()
	clock.Advance(time.Minute)

	if _, err := engine.UpdateSettings(settings.Input{Schedule: "25,5", DefaultDuration: "40", Vibrate: true}); err != nil {
		t.Fatalf("update: %v", err)
	}

	snap := engine.Snapshot()
	if snap.State != StateIdle || snap.TotalPeriods != 2 || snap.Session.PeriodDuration != 25*time.Minute {
		t.Fatalf("after update = %v %d %+v", snap.State, snap.TotalPeriods, snap.Session)
	}
	if presenter.lastToast() != "Settings saved!" {
		t.Fatalf("toast = %q", presenter.lastToast())
	}

	engine.Start()
	clock.Advance(time.Minute)

	_, err := engine.UpdateSettings(settings.Input{Schedule: "25,abc,5", DefaultDuration: "40"})
	var validationErr *settings.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("err = %v want ValidationError", err)
	}
	if !strings.Contains(presenter.lastToast(), "abc") {
		t.Fatalf("toast = %q should name the bad token", presenter.lastToast())
	}
	if snap := engine.Snapshot(); snap.State != StateRunning || snap.TotalPeriods != 2 {
		t.Fatalf("rejected save changed the timer: %v %d", snap.State, snap.TotalPeriods)
	}
}

func TestRemainingStaysInBounds(t *testing.T) {
	h := newHarness(t, 3*time.Second, 2*time.Second)
	h.engine.Restore()
	r := rand.New(rand.NewSource(7))

	check := func(step int) {
		snap := h.engine.Snapshot()
		if snap.Session.Remaining < 0 || snap.Session.Remaining > snap.Session.PeriodDuration {
			t.Fatalf("step %d: remaining %v outside [0,%v]", step, snap.Session.Remaining, snap.Session.PeriodDuration)
		}
		frame := h.presenter.lastFrame()
		if frame.Remaining < 0 || frame.Progress < 0 || frame.Progress > 100 {
			t.Fatalf("step %d: frame out of bounds %+v", step, frame)
		}
	}

	for step := 0; step < 500; step++ {
		switch r.Intn(4) {
		case 0:
			h.engine.Start()
		case 1:
			h.engine.Pause()
		case 2:
			if r.Intn(5) == 0 {
				h.engine.Reset()
			}
		case 3:
			h.clock.Advance(time.Duration(r.Intn(1500)) * time.Millisecond)
		}
		check(step)
	}
}

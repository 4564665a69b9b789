package tui

import (
	"errors"
	"sync"
	"time"

	"github.com/balkashynov/classtimer/internal/timer"
)

// ErrVibrationUnsupported is returned for vibration requests; terminals cannot vibrate.
var ErrVibrationUnsupported = errors.New("vibration is not supported in a terminal")

// Display is the timer.Presenter behind the TUI.
// The engine writes into it from whatever goroutine fires a tick and the
// bubbletea model reads it on its own refresh tick, so nothing blocks either side.
// Nothing here writes to the terminal; the model renders everything, the bell included.
type Display struct {
	mu  sync.Mutex
	now func() time.Time

	frame      timer.Frame
	hasFrame   bool
	toast      string
	toastUntil time.Time
	expiry     bool
	bell       bool
}

// DisplayState is what the view draws from
type DisplayState struct {
	Frame    timer.Frame
	HasFrame bool
	Toast    string
	Expiry   bool
	// Bell is set once per PlayAlert
	Bell bool
}

// NewDisplay creates an empty Display
func NewDisplay() *Display {
	return &Display{now: time.Now}
}

func (d *Display) Render(frame timer.Frame) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.frame = frame
	d.hasFrame = true
}

// PlayAlert queues a terminal bell for the next render
func (d *Display) PlayAlert() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.bell = true
	return nil
}

func (d *Display) Vibrate([]time.Duration) error {
	return ErrVibrationUnsupported
}

func (d *Display) ShowToast(message string, duration time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.toast = message
	d.toastUntil = d.now().Add(duration)
}

func (d *Display) ShowExpiry(visible bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.expiry = visible
}

// State returns the latest frame, dropping a toast whose time is up.
// A queued bell is handed out once.
func (d *Display) State() DisplayState {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.toast != "" && !d.now().Before(d.toastUntil) {
		d.toast = ""
	}

	state := DisplayState{
		Frame:    d.frame,
		HasFrame: d.hasFrame,
		Toast:    d.toast,
		Expiry:   d.expiry,
		Bell:     d.bell,
	}
	d.bell = false
	return state
}

package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/balkashynov/classtimer/internal/timer"
	"github.com/balkashynov/classtimer/internal/tui"
)

// linePresenter prints engine output as plain lines for commands that run without the TUI.
// The engine serializes its calls, so it needs no lock of its own.
type linePresenter struct {
	out    io.Writer
	frames bool
	last   string
}

func newLinePresenter(out io.Writer, frames bool) *linePresenter {
	return &linePresenter{out: out, frames: frames}
}

// Render prints a frame when the clock text or state changes
func (p *linePresenter) Render(frame timer.Frame) {
	if !p.frames {
		return
	}
	line := fmt.Sprintf("[%d/%d] %s %s", frame.Period, frame.TotalPeriods, frame.Clock(), frame.State)
	if line == p.last {
		return
	}
	p.last = line
	fmt.Fprintln(p.out, line)
}

func (p *linePresenter) PlayAlert() error {
	_, err := io.WriteString(p.out, "\a")
	return err
}

func (p *linePresenter) Vibrate([]time.Duration) error {
	return tui.ErrVibrationUnsupported
}

func (p *linePresenter) ShowToast(message string, _ time.Duration) {
	fmt.Fprintf(p.out, "🔔 %s\n", message)
}

func (p *linePresenter) ShowExpiry(visible bool) {
	if visible && p.frames {
		fmt.Fprintln(p.out, "⏰ TIME'S UP")
	}
}

package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/balkashynov/classtimer/internal/timer"
)

// RunTimerTUI starts the interactive countdown. The engine must already be
// wired to display and restored.
func RunTimerTUI(engine Engine, display *Display, source SettingsSource, themes ThemeStore) error {
	model := NewTimerModel(engine, display, source, themes)

	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()

	// Handle exit messages after TUI closes
	if err != nil {
		return err
	}

	snapshot := engine.Snapshot()
	switch snapshot.State {
	case timer.StateRunning:
		fmt.Printf("⏱️  Period %d of %d still running, %s left. Run 'classtimer run' to pick it up.\n",
			snapshot.Session.PeriodIndex+1, snapshot.TotalPeriods, formatRemaining(snapshot))
	case timer.StatePaused:
		fmt.Printf("⏸️  Period %d of %d paused with %s left.\n",
			snapshot.Session.PeriodIndex+1, snapshot.TotalPeriods, formatRemaining(snapshot))
	}

	return nil
}

func formatRemaining(snapshot timer.Snapshot) string {
	seconds := int(snapshot.Session.Remaining.Seconds())
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

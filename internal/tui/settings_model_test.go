package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/balkashynov/classtimer/internal/settings"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestSettingsModelPrefill(t *testing.T) {
	current := settings.Settings{
		DefaultDuration: 45 * time.Minute,
		Schedule:        []time.Duration{25 * time.Minute, 5 * time.Minute, 30 * time.Minute},
		VibrateOnExpire: false,
	}

	input := NewSettingsModel(current, DarkPalette).Input()

	if input.Schedule != "25,5,30" {
		t.Fatalf("schedule = %q want 25,5,30", input.Schedule)
	}
	if input.DefaultDuration != "45" {
		t.Fatalf("default = %q want 45", input.DefaultDuration)
	}
	if input.Vibrate {
		t.Fatalf("vibrate should be off")
	}
}

func TestSettingsModelTypingAndSubmit(t *testing.T) {
	form := NewSettingsModel(settings.Defaults(), DarkPalette)

	form, _ = form.Update(runes("25,5,25"))
	if got := form.Input().Schedule; got != "25,5,25" {
		t.Fatalf("schedule = %q want 25,5,25", got)
	}

	form, _ = form.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	if !form.Submitted() {
		t.Fatalf("ctrl+s should submit")
	}
}

func TestSettingsModelVibrateToggle(t *testing.T) {
	form := NewSettingsModel(settings.Defaults(), DarkPalette)

	form, _ = form.Update(tea.KeyMsg{Type: tea.KeyTab})
	form, _ = form.Update(tea.KeyMsg{Type: tea.KeyTab})
	if form.focus != FieldVibrate {
		t.Fatalf("focus = %v want vibrate", form.focus)
	}

	form, _ = form.Update(tea.KeyMsg{Type: tea.KeySpace})
	if form.Input().Vibrate {
		t.Fatalf("space should turn vibrate off")
	}
	form, _ = form.Update(runes("y"))
	if !form.Input().Vibrate {
		t.Fatalf("y should turn vibrate on")
	}

	form, _ = form.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !form.Submitted() {
		t.Fatalf("enter on the last field should submit")
	}
}

func TestSettingsModelFocusWraps(t *testing.T) {
	form := NewSettingsModel(settings.Defaults(), DarkPalette)

	form, _ = form.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	if form.focus != FieldVibrate {
		t.Fatalf("shift+tab from the first field = %v want vibrate", form.focus)
	}
	form, _ = form.Update(tea.KeyMsg{Type: tea.KeyTab})
	if form.focus != FieldSchedule {
		t.Fatalf("tab from the last field = %v want schedule", form.focus)
	}
}

func TestSettingsModelCancel(t *testing.T) {
	form := NewSettingsModel(settings.Defaults(), DarkPalette)

	form, _ = form.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if !form.Cancelled() || form.Submitted() {
		t.Fatalf("esc should cancel without submitting")
	}
}

func TestSettingsModelRejected(t *testing.T) {
	form := NewSettingsModel(settings.Defaults(), DarkPalette)
	form, _ = form.Update(tea.KeyMsg{Type: tea.KeyCtrlS})

	form = form.Rejected(&settings.ValidationError{Field: "default duration", Token: "0"})

	if form.Submitted() {
		t.Fatalf("rejected form should no longer be submitted")
	}
	if form.focus != FieldDefault {
		t.Fatalf("focus = %v want default", form.focus)
	}
	if !strings.Contains(form.View(80), "default duration") {
		t.Fatalf("view should show the validation error")
	}

	form, _ = form.Update(runes("5"))
	if strings.Contains(form.View(80), "✗") {
		t.Fatalf("typing should clear the validation error")
	}
}

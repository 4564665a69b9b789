package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/balkashynov/classtimer/internal/parser"
	"github.com/balkashynov/classtimer/internal/settings"
)

// Field identifies the focused row of the settings form
type Field int

const (
	FieldSchedule Field = iota
	FieldDefault
	FieldVibrate
	fieldCount
)

// SettingsModel is the form for editing the schedule
type SettingsModel struct {
	inputs  []textinput.Model
	vibrate bool
	focus   Field
	palette Palette

	validationErr string
	submitted     bool
	cancelled     bool
}

// NewSettingsModel creates the form prefilled with current
func NewSettingsModel(current settings.Settings, palette Palette) SettingsModel {
	inputs := make([]textinput.Model, 2)

	for i := range inputs {
		inputs[i] = textinput.New()
		inputs[i].Width = 40
		inputs[i].TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(palette.PrimaryText))
		inputs[i].PlaceholderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(palette.SecondaryText))
		inputs[i].Cursor.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(palette.AccentBright))
	}

	inputs[FieldSchedule].Placeholder = "Minutes per period, e.g. 40,40,30 (empty = single period)"
	inputs[FieldSchedule].CharLimit = 64
	inputs[FieldSchedule].SetValue(parser.FormatSchedule(current.ScheduleMinutes()))
	inputs[FieldSchedule].Focus()

	inputs[FieldDefault].Placeholder = "Single period minutes"
	inputs[FieldDefault].CharLimit = 4
	inputs[FieldDefault].SetValue(strconv.Itoa(int(current.DefaultDuration / time.Minute)))

	return SettingsModel{
		inputs:  inputs,
		vibrate: current.VibrateOnExpire,
		focus:   FieldSchedule,
		palette: palette,
	}
}

// Input returns the raw values for settings.Store.Save
func (m SettingsModel) Input() settings.Input {
	return settings.Input{
		Schedule:        m.inputs[FieldSchedule].Value(),
		DefaultDuration: m.inputs[FieldDefault].Value(),
		Vibrate:         m.vibrate,
	}
}

// Submitted reports that the user asked to save
func (m SettingsModel) Submitted() bool { return m.submitted }

// Cancelled reports that the user closed the form without saving
func (m SettingsModel) Cancelled() bool { return m.cancelled }

// Rejected shows a failed save and reopens the form for editing
func (m SettingsModel) Rejected(err error) SettingsModel {
	m.submitted = false
	m.validationErr = err.Error()
	if strings.Contains(m.validationErr, "default duration") {
		return m.setFocus(FieldDefault)
	}
	return m.setFocus(FieldSchedule)
}

// Update handles messages
func (m SettingsModel) Update(msg tea.Msg) (SettingsModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m.updateFocusedInput(msg)
	}

	switch keyMsg.String() {
	case "esc":
		m.cancelled = true
		return m, nil
	case "ctrl+s":
		m.submitted = true
		return m, nil
	case "tab", "down":
		return m.setFocus((m.focus + 1) % fieldCount), nil
	case "shift+tab", "up":
		return m.setFocus((m.focus + fieldCount - 1) % fieldCount), nil
	case "enter":
		if m.focus == FieldVibrate {
			m.submitted = true
			return m, nil
		}
		return m.setFocus(m.focus + 1), nil
	case " ", "y", "n":
		if m.focus == FieldVibrate {
			switch keyMsg.String() {
			case "y":
				m.vibrate = true
			case "n":
				m.vibrate = false
			default:
				m.vibrate = !m.vibrate
			}
			return m, nil
		}
	}

	m.validationErr = ""
	return m.updateFocusedInput(msg)
}

func (m SettingsModel) updateFocusedInput(msg tea.Msg) (SettingsModel, tea.Cmd) {
	if m.focus == FieldVibrate {
		return m, nil
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m SettingsModel) setFocus(field Field) SettingsModel {
	m.focus = field
	for i := range m.inputs {
		if Field(i) == field {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
	return m
}

// View renders the form inside a bordered card of the given width
func (m SettingsModel) View(width int) string {
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.palette.SecondaryText))
	activeLabelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.palette.AccentBright)).Bold(true)

	label := func(field Field, text string) string {
		if m.focus == field {
			return activeLabelStyle.Render("▸ " + text)
		}
		return labelStyle.Render("  " + text)
	}

	vibrateValue := "off"
	if m.vibrate {
		vibrateValue = "on"
	}
	vibrateStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.palette.PrimaryText)).Bold(m.focus == FieldVibrate)

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(m.palette.AccentMain)).Bold(true).Render("SETTINGS"))
	b.WriteString("\n\n")
	b.WriteString(label(FieldSchedule, fmt.Sprintf("Schedule (up to %d periods)", parser.MaxPeriods)))
	b.WriteString("\n  " + m.inputs[FieldSchedule].View() + "\n\n")
	b.WriteString(label(FieldDefault, "Default period (minutes)"))
	b.WriteString("\n  " + m.inputs[FieldDefault].View() + "\n\n")
	b.WriteString(label(FieldVibrate, "Vibrate on expiry"))
	b.WriteString("\n  " + vibrateStyle.Render("["+vibrateValue+"]") + "\n")

	if m.validationErr != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(m.palette.Error)).Render("✗ " + m.validationErr))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(m.palette.HelpText)).Italic(true).
		Render("tab next · ctrl+s save · space toggle · esc cancel"))

	cardWidth := width - 4
	if cardWidth > 70 {
		cardWidth = 70
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.palette.AccentMain)).
		Padding(1, 2).
		Width(cardWidth).
		Render(b.String())
}

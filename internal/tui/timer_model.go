package tui

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/balkashynov/classtimer/internal/settings"
	"github.com/balkashynov/classtimer/internal/timer"
)

// refreshInterval is how often the view pulls the latest frame from the Display
const refreshInterval = 100 * time.Millisecond

// Engine is the part of timer.Engine the TUI drives
type Engine interface {
	Start()
	Pause()
	Reset()
	UpdateSettings(input settings.Input) (settings.Settings, error)
	Snapshot() timer.Snapshot
}

// SettingsSource provides the values the settings form opens with
type SettingsSource interface {
	Current() settings.Settings
}

type keyMap struct {
	Start    key.Binding
	Pause    key.Binding
	Reset    key.Binding
	Settings key.Binding
	Theme    key.Binding
	Quit     key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Start, k.Pause, k.Reset, k.Settings, k.Theme, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

func newKeyMap() keyMap {
	return keyMap{
		Start:    key.NewBinding(key.WithKeys(" ", "s"), key.WithHelp("space/s", "start")),
		Pause:    key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pause")),
		Reset:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
		Settings: key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "settings")),
		Theme:    key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "theme")),
		Quit:     key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// TimerModel represents the TUI model for the class period countdown
type TimerModel struct {
	width  int
	height int

	engine   Engine
	display  *Display
	settings SettingsSource
	themes   ThemeStore

	theme    Theme
	palette  Palette
	keys     keyMap
	help     help.Model
	progress progress.Model
	shimmer  *ShimmerState

	state DisplayState
	now   func() time.Time
	// bell rings with the next rendered frame
	bell bool

	// form is non-nil while the settings form is open
	form *SettingsModel

	exiting bool
}

// refreshMsg asks the model to pull the latest display state
type refreshMsg struct{}

// NewTimerModel creates a new timer TUI model
func NewTimerModel(engine Engine, display *Display, source SettingsSource, themes ThemeStore) TimerModel {
	theme := LoadTheme(themes)
	m := TimerModel{
		engine:   engine,
		display:  display,
		settings: source,
		themes:   themes,
		keys:     newKeyMap(),
		help:     help.New(),
		shimmer:  NewShimmerState(DefaultShimmerConfig()),
		now:      time.Now,
	}
	m = m.withTheme(theme)
	m = m.pullState()
	return m
}

// pullState copies the latest display state into the model
func (m TimerModel) pullState() TimerModel {
	m.state = m.display.State()
	if m.state.Bell {
		m.bell = true
	}
	return m
}

func (m TimerModel) withTheme(theme Theme) TimerModel {
	m.theme = theme
	m.palette = PaletteFor(theme)
	width := m.progress.Width
	m.progress = progress.New(
		progress.WithGradient(m.palette.AccentMain, m.palette.AccentBright),
		progress.WithoutPercentage(),
	)
	if width > 0 {
		m.progress.Width = width
	}
	m.help.Styles.ShortKey = lipgloss.NewStyle().Foreground(lipgloss.Color(m.palette.SecondaryText))
	m.help.Styles.ShortDesc = lipgloss.NewStyle().Foreground(lipgloss.Color(m.palette.HelpText))
	return m
}

func refresh() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg {
		return refreshMsg{}
	})
}

// Init initializes the timer model
func (m TimerModel) Init() tea.Cmd {
	return refresh()
}

// Update handles messages
func (m TimerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case refreshMsg:
		m.bell = false
		m = m.pullState()
		if m.state.Expiry {
			m.shimmer.Advance(m.now(), utf8.RuneCountInString(bannerText))
		} else {
			m.shimmer.Reset()
		}
		if m.exiting {
			return m, nil
		}
		return m, refresh()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = min(msg.Width-8, 60)
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if m.form != nil {
			return m.updateForm(msg)
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			m.exiting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Start):
			m.engine.Start()
		case key.Matches(msg, m.keys.Pause):
			m.engine.Pause()
		case key.Matches(msg, m.keys.Reset):
			m.engine.Reset()
		case key.Matches(msg, m.keys.Settings):
			form := NewSettingsModel(m.settings.Current(), m.palette)
			m.form = &form
			return m, nil
		case key.Matches(msg, m.keys.Theme):
			m = m.withTheme(m.theme.Toggle())
			if err := SaveTheme(m.themes, m.theme); err != nil {
				log.Printf("tui: %v", err)
			}
		}
		m = m.pullState()
		return m, nil
	}

	if m.form != nil {
		form, cmd := m.form.Update(msg)
		m.form = &form
		return m, cmd
	}
	return m, nil
}

func (m TimerModel) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.exiting = true
		return m, tea.Quit
	}

	form, cmd := m.form.Update(msg)

	switch {
	case form.Cancelled():
		m.form = nil
		return m, nil
	case form.Submitted():
		if _, err := m.engine.UpdateSettings(form.Input()); err != nil {
			var validationErr *settings.ValidationError
			if !errors.As(err, &validationErr) {
				log.Printf("tui: save settings: %v", err)
			}
			form = form.Rejected(err)
			m.form = &form
			return m, nil
		}
		m.form = nil
		m = m.pullState()
		return m, nil
	}

	m.form = &form
	return m, cmd
}

// View renders the timer TUI
func (m TimerModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	helpBar := lipgloss.NewStyle().Width(m.width).Align(lipgloss.Center).Render(m.help.View(m.keys))
	contentHeight := m.height - 2

	var content string
	if m.form != nil {
		content = m.form.View(m.width)
	} else {
		content = m.renderTimerPanel(m.width)
	}

	panel := lipgloss.NewStyle().
		Width(m.width).
		Height(contentHeight).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)

	view := lipgloss.JoinVertical(lipgloss.Left, panel, helpBar)
	if m.bell {
		// Sent with the frame so the renderer is the only writer
		view += "\a"
	}
	return view
}

const bannerText = "⏰  TIME'S UP  ⏰"

// renderTimerPanel renders the countdown
func (m TimerModel) renderTimerPanel(width int) string {
	frame := m.state.Frame
	var components []string

	center := lipgloss.NewStyle().Align(lipgloss.Center).Width(width)

	headerStyle := center.
		Foreground(lipgloss.Color(m.palette.AccentBright)).
		Bold(true)
	components = append(components, headerStyle.Render("CLASS PERIOD TIMER"))

	periodStyle := center.Foreground(lipgloss.Color(m.palette.SecondaryText))
	components = append(components, periodStyle.Render(fmt.Sprintf("Period %d of %d", max(frame.Period, 1), max(frame.TotalPeriods, 1))))

	clockStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.palette.AccentBright)).
		Bold(true)
	if frame.State == timer.StateExpired || frame.State == timer.StateAllComplete {
		clockStyle = clockStyle.Foreground(lipgloss.Color(m.palette.Warning))
	}
	var clockLines []string
	for _, line := range strings.Split(renderBigClock(frame.Clock(), clockStyle), "\n") {
		clockLines = append(clockLines, center.Render(line))
	}
	components = append(components, strings.Join(clockLines, "\n"))

	components = append(components, center.Render(m.progress.ViewAs(frame.Progress/100)))

	components = append(components, center.Foreground(lipgloss.Color(m.stateColor(frame.State))).
		Italic(true).
		Render(stateLabel(frame.State)))

	if m.state.Expiry {
		components = append(components, center.Render(
			m.shimmer.Render(bannerText, m.palette.Warning, m.palette.PrimaryText)))
	}

	if m.state.Toast != "" {
		toastStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color(m.palette.PrimaryText)).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(m.palette.Border)).
			Padding(0, 1)
		components = append(components, center.Render(toastStyle.Render(m.state.Toast)))
	}

	return strings.Join(components, "\n\n")
}

func (m TimerModel) stateColor(state timer.State) string {
	switch state {
	case timer.StateRunning:
		return m.palette.Success
	case timer.StatePaused:
		return m.palette.Warning
	case timer.StateExpired, timer.StateAllComplete:
		return m.palette.Error
	default:
		return m.palette.DisabledText
	}
}

func stateLabel(state timer.State) string {
	switch state {
	case timer.StateRunning:
		return "running · p to pause"
	case timer.StatePaused:
		return "paused · space to resume"
	case timer.StateExpired:
		return "time's up · next period starting"
	case timer.StateAllComplete:
		return "all periods complete · space to start again"
	default:
		return "ready · space to start"
	}
}

// bigDigits is 5-line ASCII art for the clock glyphs
var bigDigits = map[rune][5]string{
	'0': {" ███ ", "█   █", "█   █", "█   █", " ███ "},
	'1': {"  █  ", " ██  ", "  █  ", "  █  ", "█████"},
	'2': {" ███ ", "█   █", "   █ ", "  █  ", "█████"},
	'3': {" ███ ", "█   █", "  ██ ", "█   █", " ███ "},
	'4': {"█   █", "█   █", "█████", "    █", "    █"},
	'5': {"█████", "█    ", "████ ", "    █", "████ "},
	'6': {" ███ ", "█    ", "████ ", "█   █", " ███ "},
	'7': {"█████", "    █", "   █ ", "  █  ", " █   "},
	'8': {" ███ ", "█   █", " ███ ", "█   █", " ███ "},
	'9': {" ███ ", "█   █", " ████", "    █", " ███ "},
	':': {"     ", "  █  ", "     ", "  █  ", "     "},
}

// renderBigClock renders text such as "12:34" as ASCII art
func renderBigClock(text string, style lipgloss.Style) string {
	var lines [5]strings.Builder

	for _, char := range text {
		art, ok := bigDigits[char]
		if !ok {
			continue
		}
		for i := range art {
			lines[i].WriteString(art[i])
			lines[i].WriteString(" ") // Space between digits
		}
	}

	rendered := make([]string, len(lines))
	for i := range lines {
		rendered[i] = style.Render(lines[i].String())
	}
	return strings.Join(rendered, "\n")
}

package tui

import (
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// ShimmerConfig holds configuration for the sweeping highlight on the time's up banner
type ShimmerConfig struct {
	Speed      float64       // glyphs per second
	WidthRatio float64       // highlight width as a share of the text
	Pause      time.Duration // rest between sweeps
}

// DefaultShimmerConfig returns default shimmer configuration
func DefaultShimmerConfig() ShimmerConfig {
	return ShimmerConfig{
		Speed:      24,
		WidthRatio: 0.25,
		Pause:      400 * time.Millisecond,
	}
}

// ShimmerState is the position of the highlight
type ShimmerState struct {
	Config     ShimmerConfig
	center     float64
	lastUpdate time.Time
	pausedAt   time.Time
}

// NewShimmerState creates a new shimmer state
func NewShimmerState(config ShimmerConfig) *ShimmerState {
	return &ShimmerState{Config: config}
}

// Advance moves the highlight along a text of visibleLen glyphs
func (s *ShimmerState) Advance(now time.Time, visibleLen int) {
	if visibleLen <= 0 {
		return
	}
	if s.lastUpdate.IsZero() {
		s.lastUpdate = now
		s.center = -float64(visibleLen) * s.Config.WidthRatio
		return
	}

	elapsed := now.Sub(s.lastUpdate)
	s.lastUpdate = now

	if !s.pausedAt.IsZero() {
		if now.Sub(s.pausedAt) < s.Config.Pause {
			return
		}
		// Start before the beginning of the text
		s.pausedAt = time.Time{}
		s.center = -float64(visibleLen) * s.Config.WidthRatio
		return
	}

	s.center += s.Config.Speed * elapsed.Seconds()

	maxCenter := float64(visibleLen) * (1 + s.Config.WidthRatio)
	if s.center >= maxCenter {
		s.center = maxCenter
		s.pausedAt = now
	}
}

// Reset puts the highlight back before the text
func (s *ShimmerState) Reset() {
	s.center = 0
	s.lastUpdate = time.Time{}
	s.pausedAt = time.Time{}
}

// Render colors each glyph by its distance from the highlight center
func (s *ShimmerState) Render(text, baseHex, highlightHex string) string {
	glyphs := []rune(text)
	if len(glyphs) == 0 {
		return ""
	}

	base, err := colorful.Hex(baseHex)
	if err != nil {
		return lipgloss.NewStyle().Bold(true).Render(text)
	}
	highlight, err := colorful.Hex(highlightHex)
	if err != nil {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(baseHex)).Bold(true).Render(text)
	}

	// Bell curve width
	sigma := s.Config.WidthRatio * float64(len(glyphs)) / 2
	if sigma < 1 {
		sigma = 1
	}

	var b strings.Builder
	for i, glyph := range glyphs {
		dx := float64(i) - s.center
		weight := math.Exp(-(dx * dx) / (2 * sigma * sigma))
		blended := base.BlendLab(highlight, weight).Clamped()

		b.WriteString(lipgloss.NewStyle().
			Foreground(lipgloss.Color(blended.Hex())).
			Bold(true).
			Render(string(glyph)))
	}

	return b.String()
}

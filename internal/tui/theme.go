package tui

import "fmt"

// ThemeKey is where the theme choice is persisted
const ThemeKey = "themePreference"

// Theme is the color scheme the timer is drawn in
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// ThemeStore persists the theme preference
type ThemeStore interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// LoadTheme returns the stored theme, dark when nothing valid is stored
func LoadTheme(store ThemeStore) Theme {
	value, ok, err := store.Get(ThemeKey)
	if err != nil || !ok {
		return ThemeDark
	}
	if Theme(value) == ThemeLight {
		return ThemeLight
	}
	return ThemeDark
}

// SaveTheme persists theme
func SaveTheme(store ThemeStore, theme Theme) error {
	if err := store.Set(ThemeKey, string(theme)); err != nil {
		return fmt.Errorf("save theme: %w", err)
	}
	return nil
}

// Toggle switches between dark and light
func (t Theme) Toggle() Theme {
	if t == ThemeLight {
		return ThemeDark
	}
	return ThemeLight
}

package tui

// Palette is the set of colors a theme renders with
type Palette struct {
	Border        string
	PrimaryText   string
	SecondaryText string
	DisabledText  string
	HelpText      string

	AccentMain   string // Logo, clock, active borders
	AccentBright string // Highlights, current field

	Error   string
	Success string
	Warning string
}

// DarkPalette is the default purple-on-dark theme
var DarkPalette = Palette{
	Border:        "#3A3F55", // Grey-blue
	PrimaryText:   "#E6EAF2",
	SecondaryText: "#B1B8C7", // Subtle purple-tinted grey
	DisabledText:  "#6D7383",
	HelpText:      "240", // Dark grey

	AccentMain:   "#7C3AED",
	AccentBright: "#A78BFA",

	Error:   "#EF4444",
	Success: "#22C55E",
	Warning: "#F59E0B",
}

// LightPalette keeps the purple accents readable on light terminals
var LightPalette = Palette{
	Border:        "#C7CBD6",
	PrimaryText:   "#1B1530",
	SecondaryText: "#4B5163",
	DisabledText:  "#9AA0AE",
	HelpText:      "245",

	AccentMain:   "#6D28D9",
	AccentBright: "#7C3AED",

	Error:   "#B91C1C",
	Success: "#15803D",
	Warning: "#B45309",
}

// PaletteFor returns the palette of a theme
func PaletteFor(theme Theme) Palette {
	if theme == ThemeLight {
		return LightPalette
	}
	return DarkPalette
}

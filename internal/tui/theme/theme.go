// Package theme defines color themes for the receiptia TUI dashboard.
package theme

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme defines the color roles used throughout the TUI.
type Theme struct {
	Name          string
	Background    lipgloss.Color // Main app background
	Surface       lipgloss.Color // Card/panel backgrounds
	SurfaceHover  lipgloss.Color // Selected row
	SurfaceBright lipgloss.Color // Extra bright surface for emphasis
	Border        lipgloss.Color
	BorderBright  lipgloss.Color
	BorderAccent  lipgloss.Color // Focus borders
	TextDim       lipgloss.Color // Hints, disabled
	TextMuted     lipgloss.Color // Labels, metadata
	TextPrimary   lipgloss.Color
	Accent        lipgloss.Color
	AccentBright  lipgloss.Color
	AccentDim     lipgloss.Color
	Green         lipgloss.Color // Spending less, savings
	GreenBright   lipgloss.Color
	Orange        lipgloss.Color // Spending more
	Red           lipgloss.Color // Over budget
	Blue          lipgloss.Color
	BlueBright    lipgloss.Color
	Yellow        lipgloss.Color
	Magenta       lipgloss.Color
	Cyan          lipgloss.Color
}

// Active is the currently selected theme.
var Active = Receiptia

// Receiptia is the default near-black theme with teal and neon green accents.
var Receiptia = Theme{
	Name:          "receiptia",
	Background:    lipgloss.Color("#0A0A0A"),
	Surface:       lipgloss.Color("#1A1A1A"),
	SurfaceHover:  lipgloss.Color("#252525"),
	SurfaceBright: lipgloss.Color("#2A2A2A"),
	Border:        lipgloss.Color("#333333"),
	BorderBright:  lipgloss.Color("#666666"),
	BorderAccent:  lipgloss.Color("#00D9C0"),
	TextDim:       lipgloss.Color("#666666"),
	TextMuted:     lipgloss.Color("#999999"),
	TextPrimary:   lipgloss.Color("#FFFFFF"),
	Accent:        lipgloss.Color("#00D9C0"),
	AccentBright:  lipgloss.Color("#00FF88"),
	AccentDim:     lipgloss.Color("#0F2E2A"),
	Green:         lipgloss.Color("#00CC6A"),
	GreenBright:   lipgloss.Color("#00FF88"),
	Orange:        lipgloss.Color("#FF6B6B"),
	Red:           lipgloss.Color("#FF4444"),
	Blue:          lipgloss.Color("#4ECDC4"),
	BlueBright:    lipgloss.Color("#7FE3DC"),
	Yellow:        lipgloss.Color("#FFD700"),
	Magenta:       lipgloss.Color("#6B5B95"),
	Cyan:          lipgloss.Color("#00D9C0"),
}

// FlexokiDark is a warm, paper-inspired dark theme.
var FlexokiDark = Theme{
	Name:          "flexoki-dark",
	Background:    lipgloss.Color("#100F0F"),
	Surface:       lipgloss.Color("#1C1B1A"),
	SurfaceHover:  lipgloss.Color("#282726"),
	SurfaceBright: lipgloss.Color("#343331"),
	Border:        lipgloss.Color("#403E3C"),
	BorderBright:  lipgloss.Color("#575653"),
	BorderAccent:  lipgloss.Color("#3AA99F"),
	TextDim:       lipgloss.Color("#575653"),
	TextMuted:     lipgloss.Color("#878580"),
	TextPrimary:   lipgloss.Color("#FFFCF0"),
	Accent:        lipgloss.Color("#3AA99F"),
	AccentBright:  lipgloss.Color("#5BC8BE"),
	AccentDim:     lipgloss.Color("#1A3533"),
	Green:         lipgloss.Color("#879A39"),
	GreenBright:   lipgloss.Color("#A3B859"),
	Orange:        lipgloss.Color("#DA702C"),
	Red:           lipgloss.Color("#D14D41"),
	Blue:          lipgloss.Color("#4385BE"),
	BlueBright:    lipgloss.Color("#6BA3D6"),
	Yellow:        lipgloss.Color("#D0A215"),
	Magenta:       lipgloss.Color("#CE5D97"),
	Cyan:          lipgloss.Color("#24837B"),
}

// CatppuccinMocha is a soft pastel theme.
var CatppuccinMocha = Theme{
	Name:          "catppuccin-mocha",
	Background:    lipgloss.Color("#1E1E2E"),
	Surface:       lipgloss.Color("#313244"),
	SurfaceHover:  lipgloss.Color("#45475A"),
	SurfaceBright: lipgloss.Color("#585B70"),
	Border:        lipgloss.Color("#585B70"),
	BorderBright:  lipgloss.Color("#7F849C"),
	BorderAccent:  lipgloss.Color("#89B4FA"),
	TextDim:       lipgloss.Color("#6C7086"),
	TextMuted:     lipgloss.Color("#A6ADC8"),
	TextPrimary:   lipgloss.Color("#CDD6F4"),
	Accent:        lipgloss.Color("#89B4FA"),
	AccentBright:  lipgloss.Color("#B4D0FB"),
	AccentDim:     lipgloss.Color("#293147"),
	Green:         lipgloss.Color("#A6E3A1"),
	GreenBright:   lipgloss.Color("#C6F6C1"),
	Orange:        lipgloss.Color("#FAB387"),
	Red:           lipgloss.Color("#F38BA8"),
	Blue:          lipgloss.Color("#89B4FA"),
	BlueBright:    lipgloss.Color("#B4D0FB"),
	Yellow:        lipgloss.Color("#F9E2AF"),
	Magenta:       lipgloss.Color("#F5C2E7"),
	Cyan:          lipgloss.Color("#94E2D5"),
}

// Terminal uses ANSI 16 colors only.
var Terminal = Theme{
	Name:          "terminal",
	Background:    lipgloss.Color("0"),
	Surface:       lipgloss.Color("0"),
	SurfaceHover:  lipgloss.Color("8"),
	SurfaceBright: lipgloss.Color("8"),
	Border:        lipgloss.Color("8"),
	BorderBright:  lipgloss.Color("7"),
	BorderAccent:  lipgloss.Color("6"),
	TextDim:       lipgloss.Color("8"),
	TextMuted:     lipgloss.Color("7"),
	TextPrimary:   lipgloss.Color("15"),
	Accent:        lipgloss.Color("6"),
	AccentBright:  lipgloss.Color("14"),
	AccentDim:     lipgloss.Color("0"),
	Green:         lipgloss.Color("2"),
	GreenBright:   lipgloss.Color("10"),
	Orange:        lipgloss.Color("3"),
	Red:           lipgloss.Color("1"),
	Blue:          lipgloss.Color("4"),
	BlueBright:    lipgloss.Color("12"),
	Yellow:        lipgloss.Color("3"),
	Magenta:       lipgloss.Color("5"),
	Cyan:          lipgloss.Color("6"),
}

// All available themes.
var All = []Theme{Receiptia, FlexokiDark, CatppuccinMocha, Terminal}

// Names returns the theme names in display order.
func Names() []string {
	names := make([]string, len(All))
	for i, t := range All {
		names[i] = t.Name
	}
	return names
}

// ByName returns a theme by its name, defaulting to Receiptia.
func ByName(name string) Theme {
	for _, t := range All {
		if t.Name == name {
			return t
		}
	}
	return Receiptia
}

// ForProfile picks the named theme, downgrading to Terminal when the
// output cannot render more than 16 colors.
func ForProfile(name string, profile termenv.Profile) Theme {
	if profile == termenv.ANSI || profile == termenv.Ascii {
		return Terminal
	}
	return ByName(name)
}

// SetActive sets the active theme by name, honouring the terminal's
// color profile (NO_COLOR and CLICOLOR_FORCE included).
func SetActive(name string) {
	Active = ForProfile(name, termenv.EnvColorProfile())
}

package theme

import "github.com/charmbracelet/lipgloss"

// ---------------------------------------------------------------------------
// Color palette: ANSI 0-15 plus one 256-color surface
// ---------------------------------------------------------------------------

var (
	Text       = lipgloss.Color("7")
	TextMuted  = lipgloss.Color("8")
	TextBright = lipgloss.Color("15")

	Primary       = lipgloss.Color("4")   // blue
	Secondary     = lipgloss.Color("6")   // cyan
	Accent        = lipgloss.Color("5")   // magenta
	Success       = lipgloss.Color("2")   // green
	Warning       = lipgloss.Color("3")   // yellow
	Danger        = lipgloss.Color("1")   // red
	Surface       = lipgloss.Color("236") // dark bg
	Border        = lipgloss.Color("8")   // dim
	BorderFocused = lipgloss.Color("4")   // blue
)

// ---------------------------------------------------------------------------
// Semantic text styles
// ---------------------------------------------------------------------------

var (
	Title    = lipgloss.NewStyle().Bold(true).Foreground(Primary)
	Subtitle = lipgloss.NewStyle().Bold(true).Foreground(Secondary)
	Muted    = lipgloss.NewStyle().Foreground(TextMuted)
	Bold     = lipgloss.NewStyle().Bold(true)

	Error = lipgloss.NewStyle().Bold(true).Foreground(Danger)
	Warn  = lipgloss.NewStyle().Bold(true).Foreground(Warning)
	Ok    = lipgloss.NewStyle().Bold(true).Foreground(Success)

	Member   = lipgloss.NewStyle().Foreground(Secondary)
	Label    = lipgloss.NewStyle().Foreground(Accent)
	Archived = lipgloss.NewStyle().Foreground(TextMuted).Italic(true)
	Done     = lipgloss.NewStyle().Foreground(TextMuted)
)

// ---------------------------------------------------------------------------
// Reusable component helpers
// ---------------------------------------------------------------------------

var (
	ModalBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(1, 2)

	ModalTitle = lipgloss.NewStyle().Bold(true).Foreground(Warning)

	ModalHelp = lipgloss.NewStyle().Foreground(TextMuted)

	StatusBar = lipgloss.NewStyle().
			Foreground(TextMuted).
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(Border)

	HelpHint = lipgloss.NewStyle().Foreground(TextMuted)
)

// namedColors maps the color names the board service uses onto the palette
var namedColors = map[string]lipgloss.Color{
	"red":    Danger,
	"green":  Success,
	"yellow": Warning,
	"blue":   Primary,
	"purple": Accent,
	"cyan":   Secondary,
	"orange": lipgloss.Color("208"),
	"pink":   lipgloss.Color("205"),
	"gray":   TextMuted,
}

// Named resolves a service color name or a "#rrggbb" value. Unknown names
// fall back to the muted text color.
func Named(name string) lipgloss.Color {
	if c, ok := namedColors[name]; ok {
		return c
	}
	if len(name) == 7 && name[0] == '#' {
		return lipgloss.Color(name)
	}
	return TextMuted
}

// Chip renders a label name on its color
func Chip(name, color string) string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("16")).
		Background(Named(color)).
		Padding(0, 1).
		Render(name)
}

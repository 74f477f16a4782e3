package shared

import (
	"strings"

	"corkboard/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// HelpBind is a single key and what it does
type HelpBind struct {
	Key  string
	Desc string
}

// HelpSection groups related binds under a heading
type HelpSection struct {
	Title string
	Binds []HelpBind
}

var (
	helpKeyStyle  = lipgloss.NewStyle().Bold(true).Foreground(theme.Secondary).Width(14)
	helpDescStyle = lipgloss.NewStyle().Foreground(theme.Text)
)

// RenderHelpPopup renders title and sections in a centered box. Sections are
// laid out in two columns when the terminal is wide enough.
func RenderHelpPopup(title string, sections []HelpSection, width, height int) string {
	blocks := make([]string, len(sections))
	for i, section := range sections {
		var b strings.Builder
		b.WriteString(theme.Title.Render(section.Title))
		for _, bind := range section.Binds {
			b.WriteString("\n  " + helpKeyStyle.Render(bind.Key) + helpDescStyle.Render(bind.Desc))
		}
		blocks[i] = b.String()
	}

	var body string
	if half := (len(blocks) + 1) / 2; width >= 100 && len(blocks) > 1 {
		left := lipgloss.JoinVertical(lipgloss.Left, spaced(blocks[:half])...)
		right := lipgloss.JoinVertical(lipgloss.Left, spaced(blocks[half:])...)
		body = lipgloss.JoinHorizontal(lipgloss.Top, left, "    ", right)
	} else {
		body = lipgloss.JoinVertical(lipgloss.Left, spaced(blocks)...)
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		theme.ModalTitle.Render(title),
		"",
		body,
		theme.ModalHelp.Render("Press any key to close"),
	)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, theme.ModalBox.Render(content))
}

func spaced(blocks []string) []string {
	out := make([]string, len(blocks))
	for i, b := range blocks {
		out[i] = b + "\n"
	}
	return out
}

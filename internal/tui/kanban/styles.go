package kanban

import (
	"corkboard/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

const (
	// Layout constants
	columnWidth             = 36
	columnPaddingHorizontal = 1
	cardPaddingHorizontal   = 1
	cardBorderWidth         = 1
)

var (
	titleStyle = theme.Title.Padding(0, 1)

	// Column styles
	columnStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, columnPaddingHorizontal).
			Width(columnWidth)

	selectedColumnStyle = columnStyle.
				BorderForeground(theme.BorderFocused)

	movingColumnStyle = columnStyle.
				BorderForeground(theme.Warning)

	columnTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(theme.Primary).
				Align(lipgloss.Center)

	selectedColumnTitleStyle = lipgloss.NewStyle().
					Bold(true).
					Foreground(theme.Warning).
					Background(theme.Surface).
					Underline(true).
					Align(lipgloss.Center)

	// Card styles
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), false, false, false, true).
			BorderForeground(theme.Border).
			Padding(0, cardPaddingHorizontal).
			MarginBottom(1)

	selectedCardStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder(), false, false, false, true).
				BorderForeground(theme.BorderFocused).
				Background(theme.Surface).
				Padding(0, cardPaddingHorizontal).
				MarginBottom(1).
				Bold(true)

	moveSelectedCardStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder(), false, false, false, true).
				BorderForeground(theme.Warning).
				Background(lipgloss.Color("54")).
				Padding(0, cardPaddingHorizontal).
				MarginBottom(1).
				Bold(true)

	cardTitleStyle = lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true)

	cardPreviewStyle = lipgloss.NewStyle().
				Foreground(theme.TextMuted)

	helpStyle = theme.Muted.Padding(0, 1)

	// List styles
	listItemStyle = lipgloss.NewStyle().
			Foreground(theme.Text).
			Padding(0, 2)

	selectedListItemStyle = lipgloss.NewStyle().
				Foreground(theme.Warning).
				Bold(true).
				Padding(0, 2)

	errorStyle   = theme.Error
	warningStyle = theme.Warn
	successStyle = theme.Ok

	// Selector modal styles
	selectorBoxStyle   = theme.ModalBox.Width(50)
	selectorTitleStyle = theme.ModalTitle

	selectorItemStyle = lipgloss.NewStyle().
				Foreground(theme.Text)

	selectorCheckedStyle = lipgloss.NewStyle().
				Foreground(theme.Secondary).
				Bold(true)

	selectorHighlightStyle = lipgloss.NewStyle().
				Background(theme.Surface).
				Foreground(theme.Warning)

	// Card detail styles
	detailBoxStyle = theme.ModalBox.Width(70)

	// Due date calendar
	calendarMonthStyle  = lipgloss.NewStyle().Bold(true).Foreground(theme.Accent)
	calendarHeaderStyle = theme.Muted.Bold(true)
	calendarTodayStyle  = lipgloss.NewStyle().Bold(true).Foreground(theme.Primary)
	calendarPastStyle   = theme.Muted
	calendarCursorStyle = lipgloss.NewStyle().
				Background(theme.Warning).
				Foreground(lipgloss.Color("0")).
				Bold(true)

	scrollIndicatorStyle = lipgloss.NewStyle().
				Foreground(theme.Primary).
				Italic(true).
				Align(lipgloss.Center)

	pathStyle = theme.Muted

	filterIndicatorStyle = lipgloss.NewStyle().
				Foreground(theme.Warning).
				Bold(true)
)

// modeIndicatorStyle returns a bold style with the given foreground color for mode badges.
func modeIndicatorStyle(color lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(color)
}

// dueStyle colors a due badge by its status
func dueStyle(overdue, soon bool) lipgloss.Style {
	switch {
	case overdue:
		return lipgloss.NewStyle().Bold(true).Foreground(theme.Danger)
	case soon:
		return lipgloss.NewStyle().Bold(true).Foreground(theme.Warning)
	default:
		return lipgloss.NewStyle().Foreground(theme.Success)
	}
}

package kanban

import (
	"corkboard/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// selectorItem is one row of a selector. Checked rows are the ones
// currently attached to the card.
type selectorItem struct {
	ID      string
	Name    string
	Color   string
	Checked bool
}

// SelectorModel is a toggle list used for a card's labels and members.
// Each enter toggles the row under the cursor and keeps the modal open.
type SelectorModel struct {
	title  string
	items  []selectorItem
	cursor int
	width  int
	height int
}

func newSelectorModel(title string, items []selectorItem) SelectorModel {
	return SelectorModel{title: title, items: items}
}

// Empty returns true when there is nothing to choose from.
func (m SelectorModel) Empty() bool {
	return len(m.items) == 0
}

// Update handles key events. Returns (model, toggledID, done).
// toggledID is non-empty when a row was toggled; done is true on esc.
func (m SelectorModel) Update(msg tea.KeyMsg) (SelectorModel, string, bool) {
	switch msg.String() {
	case "j", "down":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "enter", " ":
		if m.cursor < len(m.items) {
			m.items[m.cursor].Checked = !m.items[m.cursor].Checked
			return m, m.items[m.cursor].ID, false
		}
	case "esc", "q":
		return m, "", true
	}
	return m, "", false
}

// View renders the selector as a centered modal.
func (m SelectorModel) View() string {
	var lines []string

	lines = append(lines, selectorTitleStyle.Render(m.title))
	lines = append(lines, "")

	for i, item := range m.items {
		mark := "[ ] "
		style := selectorItemStyle
		if item.Checked {
			mark = "[x] "
			style = selectorCheckedStyle
		}
		if i == m.cursor {
			style = selectorHighlightStyle
		}
		name := item.Name
		if item.Color != "" {
			name = theme.Chip(item.Name, item.Color)
		}
		lines = append(lines, style.Render(mark)+name)
	}

	lines = append(lines, "")
	lines = append(lines, helpStyle.Render("j/k: navigate • enter: toggle • esc: done"))

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	boxed := selectorBoxStyle.Render(content)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, boxed)
}

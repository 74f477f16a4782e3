package kanban

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"corkboard/internal/board/models"
	"corkboard/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type editorFinishedMsg struct {
	cardID      string
	description string
	changed     bool
	err         error
}

// openEditor edits a card description in $EDITOR through a temp file
func openEditor(card models.Card) tea.Cmd {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vim"
	}

	f, err := os.CreateTemp("", "corkboard-*.md")
	if err != nil {
		return func() tea.Msg { return editorFinishedMsg{err: err} }
	}
	path := f.Name()
	_, err = f.WriteString(card.Description)
	f.Close()
	if err != nil {
		os.Remove(path)
		return func() tea.Msg { return editorFinishedMsg{err: err} }
	}

	c := exec.Command(editor, path)
	return tea.ExecProcess(c, func(err error) tea.Msg {
		defer os.Remove(path)
		if err != nil {
			return editorFinishedMsg{err: err}
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return editorFinishedMsg{err: err}
		}
		desc := strings.TrimRight(string(data), "\n")
		return editorFinishedMsg{cardID: card.ID, description: desc, changed: desc != card.Description}
	})
}

// detailRow is one selectable checklist item in the detail view
type detailRow struct {
	checklist int
	item      int // -1 for the checklist header
}

func (m *BoardModel) detailCard() (models.Card, bool) {
	li, ci := m.board.FindCard(m.detailCardID)
	if li < 0 {
		return models.Card{}, false
	}
	return m.board.Lists[li].Cards[ci], true
}

func detailRows(card models.Card) []detailRow {
	var rows []detailRow
	for ci, cl := range card.Checklists {
		rows = append(rows, detailRow{checklist: ci, item: -1})
		for ii := range cl.Items {
			rows = append(rows, detailRow{checklist: ci, item: ii})
		}
	}
	return rows
}

// detailChecklist is the checklist under the cursor, or the last one
func (m *BoardModel) detailChecklist() (models.Checklist, bool) {
	card, ok := m.detailCard()
	if !ok || len(card.Checklists) == 0 {
		return models.Checklist{}, false
	}
	rows := detailRows(card)
	if m.detailCursor < len(rows) {
		return card.Checklists[rows[m.detailCursor].checklist], true
	}
	return card.Checklists[len(card.Checklists)-1], true
}

func (m BoardModel) updateDetail(msg tea.KeyMsg) (BoardModel, tea.Cmd) {
	m.err = nil
	card, ok := m.detailCard()
	if !ok {
		// Deleted or reverted away underneath us
		m.mode = boardModeNormal
		return m, nil
	}
	rows := detailRows(card)

	switch msg.String() {
	case "esc", "q", "enter":
		m.mode = boardModeNormal
		m.focusCard(card.ID)

	case "j", "down":
		if m.detailCursor < len(rows)-1 {
			m.detailCursor++
		}

	case "k", "up":
		if m.detailCursor > 0 {
			m.detailCursor--
		}

	case " ", "x":
		if m.detailCursor < len(rows) {
			row := rows[m.detailCursor]
			if row.item >= 0 {
				item := card.Checklists[row.checklist].Items[row.item]
				return m.submit("item updated", m.coord.ToggleChecklistItem(item.ID))
			}
		}

	case "X":
		if m.detailCursor < len(rows) {
			row := rows[m.detailCursor]
			cl := card.Checklists[row.checklist]
			if row.item >= 0 {
				m, cmd := m.submit("item deleted", m.coord.DeleteChecklistItem(cl.Items[row.item].ID))
				m.detailCursor = max(0, m.detailCursor-1)
				return m, cmd
			}
			m, cmd := m.submit("checklist deleted", m.coord.DeleteChecklist(cl.ID))
			m.detailCursor = 0
			return m, cmd
		}

	case "c":
		return m.startInput(inputNewChecklist, "checklist title...", "")

	case "a":
		if _, ok := m.detailChecklist(); ok {
			return m.startInput(inputNewItem, "item text...", "")
		}
		m.err = fmt.Errorf("add a checklist first (c)")

	case "d":
		m.duePicker = newDuePicker(card.DueDate, m.now)
		m.duePicker.width, m.duePicker.height = m.width, m.height
		m.mode = boardModeDue
		return m, nil

	case "e":
		return m, openEditor(card)
	}

	return m, nil
}

func (m BoardModel) viewDetail() string {
	card, ok := m.detailCard()
	if !ok {
		return ""
	}

	var lines []string
	lines = append(lines, titleStyle.Render(card.Title))
	if li, _ := m.board.FindCard(card.ID); li >= 0 {
		lines = append(lines, pathStyle.Render("  in "+m.board.Lists[li].Title))
	}
	lines = append(lines, "")

	if badges := m.cardBadges(card); badges != "" {
		lines = append(lines, badges, "")
	}

	if card.Description != "" {
		desc := lipgloss.NewStyle().Width(62).Render(card.Description)
		lines = append(lines, desc, "")
	} else {
		lines = append(lines, cardPreviewStyle.Render("(no description)"), "")
	}

	for i, row := range detailRows(card) {
		cl := card.Checklists[row.checklist]
		var line string
		if row.item < 0 {
			done, total := 0, len(cl.Items)
			for _, it := range cl.Items {
				if it.Completed {
					done++
				}
			}
			line = theme.Subtitle.Render(fmt.Sprintf("%s %d/%d", cl.Title, done, total))
		} else {
			item := cl.Items[row.item]
			mark := "[ ] "
			style := selectorItemStyle
			if item.Completed {
				mark = "[x] "
				style = theme.Done
			}
			line = "  " + style.Render(mark+item.Text)
		}
		if i == m.detailCursor {
			line = selectorHighlightStyle.Render("► ") + line
		} else {
			line = "  " + line
		}
		lines = append(lines, line)
	}

	lines = append(lines, "")
	if m.mode == boardModeInput {
		lines = append(lines, m.input.View())
	} else if m.err != nil {
		lines = append(lines, errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}
	lines = append(lines, helpStyle.Render("j/k: navigate • space: toggle • a: add item • c: new checklist • X: delete • d: due date • e: edit description • esc: back"))

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, detailBoxStyle.Render(content))
}

func (m BoardModel) updateDue(msg tea.KeyMsg) (BoardModel, tea.Cmd) {
	var choice dueChoice
	var done bool
	m.duePicker, choice, done = m.duePicker.Update(msg)
	if !done {
		return m, nil
	}
	m.mode = boardModeDetail
	if choice.cancelled {
		return m, nil
	}
	op := "due date set"
	if choice.patch.ClearDue {
		op = "due date cleared"
	}
	return m.submit(op, m.coord.PatchCard(m.detailCardID, choice.patch))
}

package kanban

import (
	"fmt"
	"strings"
	"time"

	"corkboard/internal/board/fs"
	"corkboard/internal/board/models"
	"corkboard/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

const (
	boardHeaderLines = 3
	statusLines      = 3
	marginLines      = 2
	columnOverhead   = 6
)

func (m BoardModel) View() string {
	switch m.mode {
	case boardModeSelect:
		return m.selector.View()
	case boardModeDue:
		return m.duePicker.View()
	}
	if m.mode == boardModeDetail || (m.mode == boardModeInput && m.detailInput()) {
		return m.viewDetail()
	}

	var s strings.Builder

	title := m.board.Title
	if m.board.Background != "" {
		title += " " + pathStyle.Render("("+m.board.Background+")")
	}
	s.WriteString(titleStyle.Render(title))
	if m.inflight > 0 {
		s.WriteString(" " + warningStyle.Render(fmt.Sprintf("syncing %d…", m.inflight)))
	}
	s.WriteString("\n")

	// Filter bar
	switch {
	case m.mode == boardModeFilter:
		s.WriteString("  / " + m.filterInput.View())
	case m.filtering() || m.showArchived:
		s.WriteString("  " + m.filterSummary())
	}
	s.WriteString("\n")

	fixedHeight := m.columnHeight()

	startCol, endCol := m.calculateVisibleColumns()
	var views []string

	if startCol > 0 {
		views = append(views, m.renderScrollIndicator("◀", fixedHeight))
	} else {
		views = append(views, m.renderScrollIndicator(" ", fixedHeight))
	}
	for i := startCol; i < endCol; i++ {
		views = append(views, m.renderColumn(i, fixedHeight))
	}
	if endCol < len(m.board.Lists) {
		views = append(views, m.renderScrollIndicator("▶", fixedHeight))
	} else {
		views = append(views, m.renderScrollIndicator(" ", fixedHeight))
	}

	if len(m.board.Lists) == 0 {
		s.WriteString(cardPreviewStyle.Render("  No lists yet. Press N to add one."))
	} else {
		columns := lipgloss.JoinHorizontal(lipgloss.Top, views...)
		s.WriteString(lipgloss.Place(m.width, 0, lipgloss.Center, lipgloss.Top, columns))
	}
	s.WriteString("\n")

	if m.err != nil {
		s.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		s.WriteString("\n")
	} else if m.message != "" {
		s.WriteString(successStyle.Render(m.message))
		s.WriteString("\n")
	}

	switch m.mode {
	case boardModeMove:
		s.WriteString(modeIndicatorStyle(theme.Warning).Render("MOVE") + " ")
		s.WriteString(helpStyle.Render("h/l: move to list • j/k: reorder • esc: done"))
	case boardModeConfirmDelete:
		s.WriteString(warningStyle.Render("Delete this card? (y/n)"))
	case boardModeFilter:
		s.WriteString(helpStyle.Render("type to filter • enter: keep filter • esc: clear"))
	case boardModeInput:
		s.WriteString(m.input.View())
	default:
		s.WriteString(helpStyle.Render("hjkl: navigate • m: move • </>: move list • enter: open • n/N: new card/list • e/E: rename • t: labels • @: members • a: archive • D: delete • /: filter • d: due • 1-9: label • u: member • A: archived • r: reload • q: back"))
	}

	return s.String()
}

func (m BoardModel) detailInput() bool {
	switch m.inputPurpose {
	case inputNewChecklist, inputNewItem:
		return true
	}
	return false
}

func (m BoardModel) filterSummary() string {
	var parts []string
	if m.query != "" {
		parts = append(parts, fmt.Sprintf("%q", m.query))
	}
	for _, id := range m.criteria.LabelIDs {
		if l, ok := m.board.GetLabel(id); ok {
			parts = append(parts, theme.Chip(l.Name, l.Color))
		}
	}
	if m.memberFilter >= 0 && m.memberFilter < len(m.members) {
		parts = append(parts, theme.Member.Render("@"+m.members[m.memberFilter].Name))
	}
	if m.criteria.Due != "" {
		parts = append(parts, "due:"+string(m.criteria.Due))
	}
	if m.showArchived {
		parts = append(parts, theme.Archived.Render("+archived"))
	}
	return filterIndicatorStyle.Render("Filter: ") + strings.Join(parts, " ")
}

func (m BoardModel) columnHeight() int {
	h := m.height - boardHeaderLines - statusLines - marginLines
	if h < 10 {
		h = 10
	}
	return h
}

func (m BoardModel) renderColumn(index, fixedHeight int) string {
	list := m.board.Lists[index]
	vis := m.visible(index)
	var s strings.Builder

	titleStyle := columnTitleStyle
	if index == m.selectedCol {
		titleStyle = selectedColumnTitleStyle
	}
	heading := fmt.Sprintf("%s (%d)", list.Title, len(vis))
	if list.Color != "" {
		heading = lipgloss.NewStyle().Foreground(theme.Named(list.Color)).Render("● ") + heading
	}
	s.WriteString(titleStyle.Render(heading))
	s.WriteString("\n")

	style := columnStyle
	if index == m.selectedCol {
		style = selectedColumnStyle
		if m.mode == boardModeMove {
			style = movingColumnStyle
		}
	}

	if len(vis) == 0 {
		s.WriteString("\n")
		s.WriteString(cardPreviewStyle.Render("(empty)"))
		return style.Height(fixedHeight).Render(s.String())
	}

	scrollOffset := 0
	if index < len(m.columnScrollOffsets) {
		scrollOffset = min(m.columnScrollOffsets[index], len(vis)-1)
	}
	if scrollOffset > 0 {
		s.WriteString(scrollIndicatorStyle.Render(fmt.Sprintf("▲ +%d above", scrollOffset)))
	}
	s.WriteString("\n")

	available := fixedHeight - columnOverhead
	rendered, used := 0, 0
	for vi := scrollOffset; vi < len(vis); vi++ {
		view := m.renderCard(index, vi, list.Cards[vis[vi]])
		h := lipgloss.Height(view)
		if rendered > 0 && used+h > available {
			break
		}
		s.WriteString(view)
		s.WriteString("\n")
		rendered++
		used += h
	}

	if below := len(vis) - scrollOffset - rendered; below > 0 {
		s.WriteString(scrollIndicatorStyle.Render(fmt.Sprintf("▼ +%d below", below)))
	}

	return style.Height(fixedHeight).Render(s.String())
}

func (m BoardModel) renderCard(colIndex, visIndex int, card models.Card) string {
	maxWidth := columnWidth - (2 * columnPaddingHorizontal) - cardBorderWidth - (2 * cardPaddingHorizontal) - 2

	var lines []string

	titleStyle := cardTitleStyle
	if card.Archived {
		titleStyle = theme.Archived
	}
	lines = append(lines, titleStyle.Render(truncate(card.Title, maxWidth)))

	if preview := fs.Preview(card.Description); preview != "" {
		lines = append(lines, cardPreviewStyle.Render(truncate(preview, maxWidth)))
	}

	if badges := m.cardBadges(card); badges != "" {
		lines = append(lines, badges)
	}

	style := cardStyle
	if colIndex == m.selectedCol && visIndex == m.selectedCard {
		style = selectedCardStyle
		if m.mode == boardModeMove {
			style = moveSelectedCardStyle
		}
	}
	return style.Width(maxWidth + 2*cardPaddingHorizontal).Render(strings.Join(lines, "\n"))
}

// cardBadges renders labels, members, due date and checklist progress
func (m BoardModel) cardBadges(card models.Card) string {
	var parts []string

	for _, id := range card.LabelIDs {
		if l, ok := m.board.GetLabel(id); ok {
			parts = append(parts, theme.Chip(l.Name, l.Color))
		}
	}

	for _, id := range card.MemberIDs {
		for _, mem := range m.members {
			if mem.ID == id {
				parts = append(parts, theme.Member.Render("@"+mem.Initials))
			}
		}
	}

	if card.DueDate != nil {
		status := card.DueStatusAt(m.now())
		text := "due " + card.DueDate.In(time.Local).Format("Jan 2")
		parts = append(parts, dueStyle(status == models.DueOverdue, status == models.DueSoon).Render(text))
	}

	if p, ok := card.ChecklistProgress(); ok {
		text := fmt.Sprintf("☑ %d/%d", p.Completed, p.Total)
		if p.IsComplete() {
			parts = append(parts, theme.Ok.Render(text))
		} else {
			parts = append(parts, theme.Muted.Render(text))
		}
	}

	if card.Archived {
		parts = append(parts, theme.Archived.Render("archived"))
	}

	return strings.Join(parts, " ")
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}

// adjustScrollPosition ensures the selected card is visible by adjusting scroll offset
func (m *BoardModel) adjustScrollPosition() {
	if m.selectedCol >= len(m.board.Lists) || m.selectedCol >= len(m.columnScrollOffsets) {
		return
	}
	vis := m.visible(m.selectedCol)
	if len(vis) == 0 {
		m.columnScrollOffsets[m.selectedCol] = 0
		return
	}

	available := m.columnHeight() - columnOverhead
	offset := m.columnScrollOffsets[m.selectedCol]

	if m.selectedCard < offset {
		offset = m.selectedCard
	} else {
		cards := m.board.Lists[m.selectedCol].Cards
		fits, used := 0, 0
		for vi := offset; vi < len(vis); vi++ {
			h := lipgloss.Height(m.renderCard(m.selectedCol, vi, cards[vis[vi]]))
			if fits > 0 && used+h > available {
				break
			}
			used += h
			fits++
		}
		fits = max(fits, 1)
		if m.selectedCard >= offset+fits {
			offset = m.selectedCard - fits + 1
		}
	}

	m.columnScrollOffsets[m.selectedCol] = min(max(offset, 0), len(vis)-1)
}

// calculateVisibleColumns determines which columns fit in terminal width
func (m *BoardModel) calculateVisibleColumns() (startCol, endCol int) {
	columnTotalWidth := columnWidth + 2
	indicatorWidth := 3

	startCol = m.columnHorizontalOffset
	visibleCount := max((m.width-2*indicatorWidth)/columnTotalWidth, 1)

	endCol = min(startCol+visibleCount, len(m.board.Lists))
	if endCol <= startCol && len(m.board.Lists) > 0 {
		startCol = max(0, len(m.board.Lists)-visibleCount)
		endCol = len(m.board.Lists)
	}
	return startCol, endCol
}

// renderScrollIndicator renders ◀ and ▶ indicators for horizontal scrolling
func (m *BoardModel) renderScrollIndicator(symbol string, height int) string {
	indicator := lipgloss.NewStyle().
		Foreground(theme.Warning).
		Bold(true).
		Render(symbol)
	return lipgloss.NewStyle().
		Width(3).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(indicator)
}

// adjustHorizontalScrollPosition ensures the selected column is visible
func (m *BoardModel) adjustHorizontalScrollPosition() {
	if len(m.board.Lists) == 0 {
		m.columnHorizontalOffset = 0
		return
	}

	startCol, endCol := m.calculateVisibleColumns()

	if m.selectedCol < startCol {
		m.columnHorizontalOffset = m.selectedCol
		return
	}
	if m.selectedCol >= endCol {
		m.columnHorizontalOffset = max(0, m.selectedCol-(endCol-startCol)+1)
	}
}

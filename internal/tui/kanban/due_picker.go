package kanban

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"corkboard/internal/board/models"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// DuePickerModel is a month calendar for choosing a card's due date, with a
// typed fallback for relative dates.
type DuePickerModel struct {
	typing    bool
	hadDue    bool
	cursor    time.Time // local midnight of the highlighted day
	viewMonth time.Time
	textInput textinput.Model
	now       func() time.Time
	err       error
	width     int
	height    int
}

// dueChoice is what the picker settled on when it closes
type dueChoice struct {
	patch     models.CardPatch
	cancelled bool
}

func newDuePicker(current *time.Time, now func() time.Time) DuePickerModel {
	cursor := localDay(now())
	if current != nil {
		cursor = localDay(*current)
	}

	ti := textinput.New()
	ti.Placeholder = "2026-03-15, 03-15, +5, tomorrow"
	ti.CharLimit = 20
	ti.Width = 30

	return DuePickerModel{
		hadDue:    current != nil,
		cursor:    cursor,
		viewMonth: firstOfMonth(cursor),
		textInput: ti,
		now:       now,
	}
}

func localDay(t time.Time) time.Time {
	t = t.In(time.Local)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.Local)
}

// Update returns done once the user saved, cleared or cancelled
func (m DuePickerModel) Update(msg tea.KeyMsg) (DuePickerModel, dueChoice, bool) {
	if m.typing {
		return m.updateTyping(msg)
	}

	switch msg.String() {
	case "esc", "q":
		return m, dueChoice{cancelled: true}, true
	case "enter":
		due := m.cursor
		return m, dueChoice{patch: models.CardPatch{DueDate: &due}}, true
	case "c", "x":
		if !m.hadDue {
			return m, dueChoice{cancelled: true}, true
		}
		return m, dueChoice{patch: models.CardPatch{ClearDue: true}}, true
	case "i":
		m.typing = true
		m.err = nil
		m.textInput.SetValue("")
		m.textInput.Focus()
	case "t":
		m.moveTo(localDay(m.now()))
	case "h", "left":
		m.moveTo(m.cursor.AddDate(0, 0, -1))
	case "l", "right":
		m.moveTo(m.cursor.AddDate(0, 0, 1))
	case "k", "up":
		m.moveTo(m.cursor.AddDate(0, 0, -7))
	case "j", "down":
		m.moveTo(m.cursor.AddDate(0, 0, 7))
	case "-", "H":
		m.moveTo(m.cursor.AddDate(0, -1, 0))
	case "+", "=", "L":
		m.moveTo(m.cursor.AddDate(0, 1, 0))
	}
	return m, dueChoice{}, false
}

func (m DuePickerModel) updateTyping(msg tea.KeyMsg) (DuePickerModel, dueChoice, bool) {
	switch msg.String() {
	case "esc":
		m.typing = false
		m.err = nil
		return m, dueChoice{}, false
	case "enter":
		due, err := parseDueInput(m.textInput.Value(), m.now())
		if err != nil {
			m.err = err
			return m, dueChoice{}, false
		}
		return m, dueChoice{patch: models.CardPatch{DueDate: &due}}, true
	}
	m.textInput, _ = m.textInput.Update(msg)
	return m, dueChoice{}, false
}

func (m *DuePickerModel) moveTo(day time.Time) {
	m.cursor = day
	m.viewMonth = firstOfMonth(day)
}

// parseDueInput reads absolute or relative dates as local midnight
func parseDueInput(input string, now time.Time) (time.Time, error) {
	input = strings.ToLower(strings.TrimSpace(input))
	today := localDay(now)

	switch input {
	case "today":
		return today, nil
	case "tomorrow":
		return today.AddDate(0, 0, 1), nil
	}

	if strings.HasPrefix(input, "+") || strings.HasPrefix(input, "-") {
		days, err := strconv.Atoi(input)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid offset %q", input)
		}
		return today.AddDate(0, 0, days), nil
	}

	if d, err := time.ParseInLocation("2006-01-02", input, time.Local); err == nil {
		return d, nil
	}
	if d, err := time.ParseInLocation("01-02", input, time.Local); err == nil {
		return time.Date(today.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.Local), nil
	}
	return time.Time{}, fmt.Errorf("due date must look like 2026-03-12, 03-12, +3 or tomorrow")
}

func (m DuePickerModel) View() string {
	var s strings.Builder

	s.WriteString(selectorTitleStyle.Render("Due Date"))
	s.WriteString("\n\n")

	if m.typing {
		s.WriteString(m.textInput.View())
		s.WriteString("\n\n")
		if m.err != nil {
			s.WriteString(errorStyle.Render(m.err.Error()))
			s.WriteString("\n\n")
		}
		s.WriteString(helpStyle.Render("enter: save • esc: back to calendar"))
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, selectorBoxStyle.Render(s.String()))
	}

	s.WriteString(calendarMonthStyle.Render(m.viewMonth.Format("January 2006")))
	s.WriteString("\n\n")
	for _, day := range []string{"Su", "Mo", "Tu", "We", "Th", "Fr", "Sa"} {
		s.WriteString(calendarHeaderStyle.Render(day) + " ")
	}
	s.WriteString("\n")

	today := localDay(m.now())
	daysInMonth := m.viewMonth.AddDate(0, 1, -1).Day()
	day := 1 - int(m.viewMonth.Weekday())
	for day <= daysInMonth {
		for weekday := 0; weekday < 7; weekday++ {
			if day < 1 || day > daysInMonth {
				s.WriteString("  ")
			} else {
				date := time.Date(m.viewMonth.Year(), m.viewMonth.Month(), day, 0, 0, 0, 0, time.Local)
				cell := fmt.Sprintf("%2d", day)
				switch {
				case date.Equal(m.cursor):
					s.WriteString(calendarCursorStyle.Render(cell))
				case date.Equal(today):
					s.WriteString(calendarTodayStyle.Render(cell))
				case date.Before(today):
					s.WriteString(calendarPastStyle.Render(cell))
				default:
					s.WriteString(cell)
				}
			}
			s.WriteString(" ")
			day++
		}
		s.WriteString("\n")
	}

	s.WriteString("\n")
	s.WriteString(helpStyle.Render("hjkl: move • +/-: month • t: today • i: type • c: clear • enter: save • esc: cancel"))

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, selectorBoxStyle.Render(s.String()))
}

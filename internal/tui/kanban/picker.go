package kanban

import (
	"context"
	"fmt"

	"corkboard/internal/board/models"
	"corkboard/internal/client"
	"corkboard/internal/tui/messages"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"
)

type pickerMode int

const (
	modeList pickerMode = iota
	modeSearch
	modeCreate
)

// BoardsLoadedMsg carries the result of a board list fetch
type BoardsLoadedMsg struct {
	Boards []models.BoardSummary
	Err    error
}

// LoadBoards fetches the board list in the background
func LoadBoards(c *client.Client) tea.Cmd {
	return func() tea.Msg {
		boards, err := c.Boards(context.Background())
		return BoardsLoadedMsg{Boards: boards, Err: err}
	}
}

type boardCreatedMsg struct {
	board models.Board
	err   error
}

// PickerModel is the board switcher
type PickerModel struct {
	client      *client.Client
	boards      []models.BoardSummary
	filtered    []int // indices into boards
	selected    int
	mode        pickerMode
	textInput   textinput.Model
	searchQuery string
	loading     bool
	width       int
	height      int
	err         error
}

func NewPickerModel(c *client.Client) PickerModel {
	ti := textinput.New()
	ti.Placeholder = "Enter board name..."
	ti.CharLimit = 100
	ti.Width = 40

	return PickerModel{
		client:    c,
		mode:      modeList,
		textInput: ti,
		loading:   true,
	}
}

// SetSize updates the view dimensions
func (m *PickerModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// IsTyping returns true when the picker is in create or search mode with active text input
func (m PickerModel) IsTyping() bool {
	return m.mode == modeCreate || m.mode == modeSearch
}

// HintText returns the raw hint string for the current picker mode.
func (m PickerModel) HintText() string {
	switch m.mode {
	case modeSearch:
		return "type to filter  enter:confirm  esc:cancel"
	case modeCreate:
		return "enter:create  esc:cancel"
	default:
		return "j/k:navigate  /:search  enter:open  n:new board  r:reload  ?:help  q:quit"
	}
}

// SetBoards updates the boards list
func (m *PickerModel) SetBoards(boards []models.BoardSummary) {
	m.boards = boards
	m.loading = false
	m.applyFilter()
}

// Selected returns the highlighted board
func (m PickerModel) Selected() (models.BoardSummary, bool) {
	if m.selected >= len(m.filtered) {
		return models.BoardSummary{}, false
	}
	return m.boards[m.filtered[m.selected]], true
}

func (m *PickerModel) applyFilter() {
	if m.searchQuery == "" {
		m.filtered = make([]int, len(m.boards))
		for i := range m.boards {
			m.filtered[i] = i
		}
	} else {
		names := make([]string, len(m.boards))
		for i, b := range m.boards {
			names[i] = b.Title
		}
		matches := fuzzy.Find(m.searchQuery, names)
		m.filtered = make([]int, len(matches))
		for i, match := range matches {
			m.filtered[i] = match.Index
		}
	}
	if m.selected >= len(m.filtered) {
		m.selected = max(0, len(m.filtered)-1)
	}
}

func (m PickerModel) Init() tea.Cmd {
	return LoadBoards(m.client)
}

// Update handles picker events, returns (PickerModel, tea.Cmd) as a child view
func (m PickerModel) Update(msg tea.Msg) (PickerModel, tea.Cmd) {
	switch msg := msg.(type) {
	case BoardsLoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		m.err = nil
		m.SetBoards(msg.Boards)
		return m, nil

	case boardCreatedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.mode = modeList
		m.textInput.SetValue("")
		m.boards = append(m.boards, models.BoardSummary{ID: msg.board.ID, Title: msg.board.Title, Background: msg.board.Background})
		m.applyFilter()
		return m, messages.OpenBoard(msg.board.ID)

	case tea.KeyMsg:
		switch m.mode {
		case modeList:
			return m.updateList(msg)
		case modeSearch:
			return m.updateSearch(msg)
		case modeCreate:
			return m.updateCreate(msg)
		}
	}

	return m, nil
}

func (m PickerModel) updateList(msg tea.KeyMsg) (PickerModel, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "esc":
		if m.searchQuery != "" {
			m.searchQuery = ""
			m.applyFilter()
		}
		return m, nil

	case "/":
		m.mode = modeSearch
		m.textInput.Placeholder = "Search boards..."
		m.textInput.SetValue(m.searchQuery)
		m.textInput.Focus()
		return m, textinput.Blink

	case "j", "down":
		if len(m.filtered) > 0 && m.selected < len(m.filtered)-1 {
			m.selected++
		}

	case "k", "up":
		if m.selected > 0 {
			m.selected--
		}

	case "r":
		m.loading = true
		return m, messages.Refresh()

	case "n":
		m.mode = modeCreate
		m.err = nil
		m.textInput.Placeholder = "Enter board name..."
		m.textInput.SetValue("")
		m.textInput.Focus()
		return m, textinput.Blink

	case "enter":
		if board, ok := m.Selected(); ok {
			return m, messages.OpenBoard(board.ID)
		}
		if len(m.boards) == 0 {
			m.mode = modeCreate
			m.textInput.Focus()
			return m, textinput.Blink
		}
	}

	return m, nil
}

func (m PickerModel) updateSearch(msg tea.KeyMsg) (PickerModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeList
		m.searchQuery = ""
		m.textInput.SetValue("")
		m.applyFilter()
		return m, nil

	case "enter":
		m.searchQuery = m.textInput.Value()
		m.mode = modeList
		m.applyFilter()
		return m, nil
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	m.searchQuery = m.textInput.Value()
	m.applyFilter()
	return m, cmd
}

func (m PickerModel) updateCreate(msg tea.KeyMsg) (PickerModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeList
		m.textInput.SetValue("")
		m.err = nil
		return m, nil

	case "enter":
		title, err := models.ValidateTitle(m.textInput.Value())
		if err != nil {
			m.err = err
			return m, nil
		}
		c := m.client
		return m, func() tea.Msg {
			board, err := c.CreateBoard(context.Background(), title, "")
			return boardCreatedMsg{board: board, err: err}
		}
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m PickerModel) View() string {
	switch m.mode {
	case modeSearch:
		return m.viewSearch()
	case modeCreate:
		return m.viewCreate()
	default:
		return m.viewList()
	}
}

func (m PickerModel) viewSearch() string {
	var lines []string
	lines = append(lines, titleStyle.Render("Search Boards"))
	lines = append(lines, "")
	lines = append(lines, "  "+m.textInput.View())
	lines = append(lines, "")

	if len(m.filtered) > 0 {
		show := min(8, len(m.filtered))
		for i := 0; i < show; i++ {
			board := m.boards[m.filtered[i]]
			prefix := "  "
			if i == m.selected {
				prefix = "► "
			}
			lines = append(lines, listItemStyle.Render(prefix+board.Title))
		}
		if len(m.filtered) > show {
			lines = append(lines, pathStyle.Render(fmt.Sprintf("  ... %d more", len(m.filtered)-show)))
		}
	} else {
		lines = append(lines, listItemStyle.Render("  No matches"))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m PickerModel) viewList() string {
	var lines []string

	lines = append(lines, titleStyle.Render("Boards"))
	lines = append(lines, "")

	if m.searchQuery != "" {
		lines = append(lines, filterIndicatorStyle.Render("  Filter: ")+pathStyle.Render(m.searchQuery))
		lines = append(lines, "")
	}

	switch {
	case m.loading:
		lines = append(lines, listItemStyle.Render("Loading boards..."), "")
	case len(m.filtered) == 0 && len(m.boards) == 0:
		lines = append(lines, listItemStyle.Render("No boards yet. Press 'n' to create one."), "")
	case len(m.filtered) == 0:
		lines = append(lines, listItemStyle.Render("No matching boards."), "")
	default:
		for i, idx := range m.filtered {
			board := m.boards[idx]
			style := listItemStyle
			prefix := "  "
			if i == m.selected {
				style = selectedListItemStyle
				prefix = "► "
			}
			line := style.Render(prefix + board.Title)
			if board.Background != "" {
				line += " " + pathStyle.Render(board.Background)
			}
			lines = append(lines, line)
		}
		lines = append(lines, "")
	}

	if m.err != nil {
		lines = append(lines, errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		lines = append(lines, "")
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m PickerModel) viewCreate() string {
	var lines []string

	lines = append(lines, titleStyle.Render("Create New Board"))
	lines = append(lines, "")
	lines = append(lines, m.textInput.View())
	lines = append(lines, "")

	if m.err != nil {
		lines = append(lines, errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		lines = append(lines, "")
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

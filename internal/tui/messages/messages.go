package messages

import tea "github.com/charmbracelet/bubbletea"

// ViewType represents the different views in the application
type ViewType int

const (
	ViewBoardPicker ViewType = iota
	ViewBoard
)

// SwitchViewMsg is sent by child views to switch to a different view
type SwitchViewMsg struct {
	View ViewType
}

// OpenBoardMsg requests opening a board by id
type OpenBoardMsg struct {
	BoardID string
}

// DataRefreshMsg signals that the board list should be reloaded
type DataRefreshMsg struct{}

func SwitchView(v ViewType) tea.Cmd {
	return func() tea.Msg {
		return SwitchViewMsg{View: v}
	}
}

func OpenBoard(id string) tea.Cmd {
	return func() tea.Msg {
		return OpenBoardMsg{BoardID: id}
	}
}

// Refresh asks the app to drop cached data and reload the board list
func Refresh() tea.Cmd {
	return func() tea.Msg {
		return DataRefreshMsg{}
	}
}

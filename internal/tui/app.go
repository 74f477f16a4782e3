package tui

import (
	"context"
	"fmt"

	"corkboard/internal/board/models"
	"corkboard/internal/board/reconcile"
	"corkboard/internal/client"
	"corkboard/internal/config"
	"corkboard/internal/logs"
	kanbanview "corkboard/internal/tui/kanban"
	"corkboard/internal/tui/shared"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// boardOpenedMsg carries a freshly loaded coordinator and the member roster
type boardOpenedMsg struct {
	coord   *reconcile.Coordinator
	members []models.Member
	err     error
}

// AppModel is the root model that dispatches to child views
type AppModel struct {
	cfg         *config.Config
	client      *client.Client
	roster      *client.Roster
	currentView ViewType
	pickerView  kanbanview.PickerModel
	boardView   kanbanview.BoardModel
	boardLoaded bool // true when boardView has a live coordinator
	opening     string
	showHelp    bool
	width       int
	height      int
	ready       bool
	err         error
}

// NewAppModel creates the root application model
func NewAppModel(cfg *config.Config, c *client.Client) AppModel {
	return AppModel{
		cfg:         cfg,
		client:      c,
		roster:      client.NewRoster(c, cfg.MemberCacheTTL),
		currentView: ViewBoardPicker,
		pickerView:  kanbanview.NewPickerModel(c),
	}
}

func (m AppModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.pickerView.Init()}
	if m.cfg.DefaultView == "board" && m.cfg.BoardID != "" {
		cmds = append(cmds, m.openBoard(m.cfg.BoardID))
	}
	return tea.Batch(cmds...)
}

// openBoard loads the board and the member roster side by side
func (m AppModel) openBoard(id string) tea.Cmd {
	c, roster, cfg := m.client, m.roster, m.cfg
	return func() tea.Msg {
		var (
			coord   *reconcile.Coordinator
			members []models.Member
		)
		g, ctx := errgroup.WithContext(context.Background())
		g.Go(func() error {
			var err error
			coord, err = reconcile.Open(ctx, c, id, reconcile.Options{SerializeWrites: cfg.SerializeWrites})
			return err
		})
		g.Go(func() error {
			var err error
			members, err = roster.All(ctx)
			if err != nil {
				// Cards still render without initials
				logs.Logger.WithError(err).Warn("member roster unavailable")
			}
			return nil
		})
		if err := g.Wait(); err != nil {
			return boardOpenedMsg{err: err}
		}
		return boardOpenedMsg{coord: coord, members: members}
	}
}

// Close releases the open board, if any
func (m AppModel) Close() {
	if m.boardLoaded {
		m.boardView.Coordinator().Close()
	}
}

func (m AppModel) contentHeight() int {
	return m.height - 3 // status bar
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.pickerView.SetSize(msg.Width, m.contentHeight())
		if m.boardLoaded {
			m.boardView.SetSize(msg.Width, m.contentHeight())
		}
		return m, nil

	case OpenBoardMsg:
		m.err = nil
		m.opening = msg.BoardID
		logs.Logger.WithField("board", msg.BoardID).Info("opening board")
		return m, m.openBoard(msg.BoardID)

	case boardOpenedMsg:
		m.opening = ""
		if msg.err != nil {
			logs.Logger.WithError(msg.err).Error("open board failed")
			m.err = fmt.Errorf("could not open board: %w", msg.err)
			return m, nil
		}
		if m.boardLoaded {
			old := m.boardView.Coordinator()
			go old.Close()
		}
		m.boardView = kanbanview.NewBoardModel(msg.coord, msg.members)
		m.boardView.SetSize(m.width, m.contentHeight())
		m.boardLoaded = true
		m.currentView = ViewBoard
		logs.Logger.WithFields(logrus.Fields{
			"board": msg.coord.BoardID(),
			"lists": len(m.boardView.Board().Lists),
		}).Info("board opened")
		return m, nil

	case SwitchViewMsg:
		m.currentView = msg.View
		if msg.View == ViewBoardPicker {
			return m, kanbanview.LoadBoards(m.client)
		}
		return m, nil

	case DataRefreshMsg:
		m.roster.Invalidate()
		return m, kanbanview.LoadBoards(m.client)

	case tea.KeyMsg:
		// ctrl+c always quits
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		// Dismiss help overlay on any key
		if m.showHelp {
			m.showHelp = false
			return m, nil
		}

		typing := m.pickerView.IsTyping()
		if m.currentView == ViewBoard {
			typing = m.boardView.IsModal()
		}
		if !typing && msg.String() == "?" {
			m.showHelp = true
			return m, nil
		}
		m.err = nil
	}

	var cmd tea.Cmd
	switch m.currentView {
	case ViewBoardPicker:
		m.pickerView, cmd = m.pickerView.Update(msg)
	case ViewBoard:
		if m.boardLoaded {
			m.boardView, cmd = m.boardView.Update(msg)
		}
	}
	return m, cmd
}

func (m AppModel) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.showHelp {
		return shared.RenderHelpPopup("Corkboard - Keyboard Shortcuts", m.helpSections(), m.width, m.height)
	}

	var content string
	switch m.currentView {
	case ViewBoard:
		if m.boardLoaded {
			content = m.boardView.View()
		} else {
			content = m.renderPlaceholder("Board", "No board loaded")
		}
	default:
		content = m.pickerView.View()
	}

	var statusText string
	switch {
	case m.err != nil:
		statusText = m.err.Error()
	case m.opening != "":
		statusText = "Opening board " + m.opening + "..."
	case m.currentView == ViewBoard:
		statusText = "Board | " + m.client.BaseURL() + " | ?: help | q: boards"
	default:
		statusText = m.pickerView.HintText()
	}

	status := HelpStyle.Render(statusText)
	if m.currentView == ViewBoard && m.boardLoaded && m.boardView.Inflight() > 0 {
		status += "  " + SyncStyle.Render(fmt.Sprintf("%d pending", m.boardView.Inflight()))
	}
	statusBar := StatusBarStyle.Width(m.width).Render(status)

	return lipgloss.JoinVertical(lipgloss.Left, content, statusBar)
}

func (m AppModel) helpSections() []shared.HelpSection {
	return []shared.HelpSection{
		{Title: "Boards", Binds: []shared.HelpBind{
			{Key: "j / k", Desc: "Navigate boards"},
			{Key: "/", Desc: "Fuzzy search"},
			{Key: "enter", Desc: "Open board"},
			{Key: "n", Desc: "New board"},
			{Key: "r", Desc: "Reload"},
			{Key: "q", Desc: "Quit"},
		}},
		{Title: "Board", Binds: []shared.HelpBind{
			{Key: "h j k l", Desc: "Navigate lists and cards"},
			{Key: "m / space", Desc: "Move mode (hjkl moves the card)"},
			{Key: "< / >", Desc: "Move list left / right"},
			{Key: "n / N", Desc: "New card / new list"},
			{Key: "e / E", Desc: "Rename card / list"},
			{Key: "enter", Desc: "Card details and checklists"},
			{Key: "t / @", Desc: "Toggle labels / members"},
			{Key: "a", Desc: "Archive or restore card"},
			{Key: "D", Desc: "Delete card"},
			{Key: "r", Desc: "Reload from server"},
		}},
		{Title: "Filters", Binds: []shared.HelpBind{
			{Key: "/", Desc: "Filter by text"},
			{Key: "1-9", Desc: "Toggle label filter"},
			{Key: "u", Desc: "Cycle member filter"},
			{Key: "d", Desc: "Cycle due bucket"},
			{Key: "A", Desc: "Show archived cards"},
			{Key: "c", Desc: "Clear filters"},
		}},
		{Title: "Global", Binds: []shared.HelpBind{
			{Key: "?", Desc: "Show this help"},
			{Key: "ctrl+c", Desc: "Force quit"},
		}},
	}
}

func (m AppModel) renderPlaceholder(title, subtitle string) string {
	titleStr := TitleStyle.Render(title)
	subtitleStr := HelpStyle.Render(subtitle)
	content := lipgloss.JoinVertical(lipgloss.Center, titleStr, subtitleStr)
	return lipgloss.Place(m.width, m.contentHeight(), lipgloss.Center, lipgloss.Center, content)
}

package kanban

import (
	"time"

	"corkboard/internal/board/filter"
	"corkboard/internal/board/gesture"
	"corkboard/internal/board/models"
	"corkboard/internal/board/reconcile"
	"corkboard/internal/tui/messages"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type boardMode int

const (
	boardModeNormal boardMode = iota
	boardModeMove
	boardModeConfirmDelete
	boardModeFilter
	boardModeInput
	boardModeSelect
	boardModeDetail
	boardModeDue
)

// inputPurpose says what the title input is collecting
type inputPurpose int

const (
	inputNewCard inputPurpose = iota
	inputNewList
	inputRenameCard
	inputRenameList
	inputNewChecklist
	inputNewItem
)

type selectKind int

const (
	selectLabels selectKind = iota
	selectMembers
)

// BoardModel renders one open board and turns keys into coordinator calls
type BoardModel struct {
	coord   *reconcile.Coordinator
	board   models.Board
	members []models.Member
	now     func() time.Time

	selectedCol  int
	selectedCard int // index into the visible cards of selectedCol
	mode         boardMode
	width        int
	height       int
	err          error
	message      string
	inflight     int

	columnScrollOffsets    []int
	columnHorizontalOffset int

	filterInput  textinput.Model
	query        string
	criteria     filter.Criteria
	showArchived bool
	memberFilter int // index into members of the single-member filter, -1 for none

	input        textinput.Model
	inputPurpose inputPurpose

	selector     SelectorModel
	selectorKind selectKind

	detailCardID string
	detailCursor int
	duePicker    DuePickerModel
}

func NewBoardModel(coord *reconcile.Coordinator, members []models.Member) BoardModel {
	board := coord.Snapshot()
	return BoardModel{
		coord:               coord,
		board:               board,
		members:             members,
		now:                 time.Now,
		mode:                boardModeNormal,
		memberFilter:        -1,
		columnScrollOffsets: make([]int, len(board.Lists)),
	}
}

// SetSize updates the view dimensions
func (m *BoardModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.selector.width, m.selector.height = width, height
	m.duePicker.width, m.duePicker.height = width, height
	m.adjustScrollPosition()
	m.adjustHorizontalScrollPosition()
}

// Coordinator returns the coordinator the view writes through
func (m BoardModel) Coordinator() *reconcile.Coordinator {
	return m.coord
}

// Board returns the snapshot currently on screen
func (m BoardModel) Board() models.Board {
	return m.board
}

// Inflight reports how many writes have not settled yet
func (m BoardModel) Inflight() int {
	return m.inflight
}

// IsModal returns true if the board is capturing keys (typing, picking, etc.)
func (m BoardModel) IsModal() bool {
	return m.mode != boardModeNormal
}

func (m BoardModel) Init() tea.Cmd {
	return nil
}

// Update handles board events as a child view
func (m BoardModel) Update(msg tea.Msg) (BoardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case pendingSettledMsg:
		m.inflight--
		m.refresh()
		if msg.err != nil {
			m.err = describeError(msg.op, msg.err)
			m.message = ""
		}
		return m, nil

	case editorFinishedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		if !msg.changed {
			return m, nil
		}
		return m.submit("description saved", m.coord.PatchCard(msg.cardID, models.CardPatch{Description: &msg.description}))

	case tea.KeyMsg:
		switch m.mode {
		case boardModeNormal:
			return m.updateNormal(msg)
		case boardModeMove:
			return m.updateMove(msg)
		case boardModeConfirmDelete:
			return m.updateConfirmDelete(msg)
		case boardModeFilter:
			return m.updateFilter(msg)
		case boardModeInput:
			return m.updateInput(msg)
		case boardModeSelect:
			return m.updateSelect(msg)
		case boardModeDetail:
			return m.updateDetail(msg)
		case boardModeDue:
			return m.updateDue(msg)
		}
	}

	return m, nil
}

// submit applies the optimistic result to the view at once and settles later
func (m BoardModel) submit(op string, p *reconcile.Pending) (BoardModel, tea.Cmd) {
	m.inflight++
	m.refresh()
	m.err = nil
	m.message = op
	return m, awaitPending(op, p)
}

func (m BoardModel) updateNormal(msg tea.KeyMsg) (BoardModel, tea.Cmd) {
	m.message = ""
	m.err = nil

	switch msg.String() {
	case "q", "b":
		return m, messages.SwitchView(messages.ViewBoardPicker)

	case "esc":
		if m.filtering() {
			m.clearFilters()
			return m, nil
		}
		return m, messages.SwitchView(messages.ViewBoardPicker)

	case "/":
		ti := textinput.New()
		ti.Placeholder = "filter by title..."
		ti.CharLimit = 100
		ti.Width = 40
		ti.SetValue(m.query)
		ti.Focus()
		m.filterInput = ti
		m.mode = boardModeFilter
		return m, textinput.Blink

	case "h", "left":
		if m.selectedCol > 0 {
			m.selectCol(m.selectedCol - 1)
		}

	case "l", "right":
		if m.selectedCol < len(m.board.Lists)-1 {
			m.selectCol(m.selectedCol + 1)
		}

	case "j", "down":
		if m.selectedCard < len(m.visible(m.selectedCol))-1 {
			m.selectedCard++
			m.adjustScrollPosition()
		}

	case "k", "up":
		if m.selectedCard > 0 {
			m.selectedCard--
			m.adjustScrollPosition()
		}

	case "m", " ":
		if _, ok := m.currentCard(); ok {
			m.mode = boardModeMove
		}

	case "<", ",":
		return m.moveList(-1)

	case ">", ".":
		return m.moveList(1)

	case "n":
		if len(m.board.Lists) > 0 {
			return m.startInput(inputNewCard, "card title...", "")
		}

	case "N":
		return m.startInput(inputNewList, "list title...", "")

	case "e":
		if card, ok := m.currentCard(); ok {
			return m.startInput(inputRenameCard, "card title...", card.Title)
		}

	case "E":
		if m.selectedCol < len(m.board.Lists) {
			return m.startInput(inputRenameList, "list title...", m.board.Lists[m.selectedCol].Title)
		}

	case "enter":
		if card, ok := m.currentCard(); ok {
			m.detailCardID = card.ID
			m.detailCursor = 0
			m.mode = boardModeDetail
		}

	case "t":
		if card, ok := m.currentCard(); ok {
			m.openSelector(selectLabels, card)
		}

	case "@":
		if card, ok := m.currentCard(); ok {
			m.openSelector(selectMembers, card)
		}

	case "a":
		if card, ok := m.currentCard(); ok {
			op := "card archived"
			if card.Archived {
				op = "card restored"
			}
			return m.submit(op, m.coord.ArchiveCard(card.ID, !card.Archived))
		}

	case "A":
		m.showArchived = !m.showArchived
		m.clampCursor()

	case "D":
		if _, ok := m.currentCard(); ok {
			m.mode = boardModeConfirmDelete
		}

	case "d":
		m.criteria.Due = nextBucket(m.criteria.Due)
		m.clampCursor()

	case "u":
		m.cycleMemberFilter()

	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		idx := int(msg.String()[0] - '1')
		if idx < len(m.board.Labels) {
			m.criteria.LabelIDs = toggleID(m.criteria.LabelIDs, m.board.Labels[idx].ID)
			m.clampCursor()
		}

	case "c":
		m.clearFilters()

	case "r":
		return m.submit("board reloaded", m.coord.Resync())
	}

	return m, nil
}

// updateMove turns each key into a finished gesture. The card keeps the
// cursor so several steps can be chained before leaving move mode.
func (m BoardModel) updateMove(msg tea.KeyMsg) (BoardModel, tea.Cmd) {
	card, ok := m.currentCard()
	if !ok {
		m.mode = boardModeNormal
		return m, nil
	}
	src := m.board.Lists[m.selectedCol]
	from := m.realIndex(m.selectedCol, m.selectedCard)

	var dst *gesture.Location
	switch msg.String() {
	case "esc", "q", "enter", "m", " ":
		m.mode = boardModeNormal
		return m, nil

	case "h", "left":
		if m.selectedCol > 0 {
			target := m.board.Lists[m.selectedCol-1]
			dst = &gesture.Location{ContainerID: target.ID, Index: len(target.Cards)}
		}

	case "l", "right":
		if m.selectedCol < len(m.board.Lists)-1 {
			target := m.board.Lists[m.selectedCol+1]
			dst = &gesture.Location{ContainerID: target.ID, Index: len(target.Cards)}
		}

	case "j", "down":
		if vis := m.visible(m.selectedCol); m.selectedCard < len(vis)-1 {
			dst = &gesture.Location{ContainerID: src.ID, Index: vis[m.selectedCard+1]}
		}

	case "k", "up":
		if vis := m.visible(m.selectedCol); m.selectedCard > 0 {
			dst = &gesture.Location{ContainerID: src.ID, Index: vis[m.selectedCard-1]}
		}
	}

	intent, ok := gesture.Translate(m.board, gesture.Gesture{
		Kind:        gesture.KindCard,
		Source:      gesture.Location{ContainerID: src.ID, Index: from},
		Destination: dst,
	})
	if !ok {
		return m, nil
	}

	m, cmd := m.submit("card moved", m.coord.Dispatch(intent))
	m.focusCard(card.ID)
	return m, cmd
}

func (m BoardModel) moveList(delta int) (BoardModel, tea.Cmd) {
	to := m.selectedCol + delta
	if to < 0 || to >= len(m.board.Lists) {
		return m, nil
	}
	listID := m.board.Lists[m.selectedCol].ID
	intent, ok := gesture.Translate(m.board, gesture.Gesture{
		Kind:        gesture.KindList,
		Source:      gesture.Location{ContainerID: m.board.ID, Index: m.selectedCol},
		Destination: &gesture.Location{ContainerID: m.board.ID, Index: to},
	})
	if !ok {
		return m, nil
	}
	m, cmd := m.submit("list moved", m.coord.Dispatch(intent))
	if i := m.board.GetListIndex(listID); i >= 0 {
		m.selectCol(i)
	}
	return m, cmd
}

func (m BoardModel) updateConfirmDelete(msg tea.KeyMsg) (BoardModel, tea.Cmd) {
	switch msg.String() {
	case "y":
		m.mode = boardModeNormal
		if card, ok := m.currentCard(); ok {
			return m.submit("card deleted", m.coord.DeleteCard(card.ID))
		}
	case "n", "esc":
		m.mode = boardModeNormal
	}
	return m, nil
}

func (m BoardModel) updateFilter(msg tea.KeyMsg) (BoardModel, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.query = m.filterInput.Value()
		m.mode = boardModeNormal
		m.clampCursor()
		return m, nil

	case "esc":
		m.query = ""
		m.mode = boardModeNormal
		m.clampCursor()
		return m, nil
	}

	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	m.query = m.filterInput.Value()
	m.clampCursor()
	return m, cmd
}

func (m BoardModel) startInput(purpose inputPurpose, placeholder, value string) (BoardModel, tea.Cmd) {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = models.MaxTitleLength
	ti.Width = 40
	ti.SetValue(value)
	ti.Focus()
	m.input = ti
	m.inputPurpose = purpose
	m.mode = boardModeInput
	return m, textinput.Blink
}

func (m BoardModel) updateInput(msg tea.KeyMsg) (BoardModel, tea.Cmd) {
	back := boardModeNormal
	if m.detailInput() {
		back = boardModeDetail
	}

	switch msg.String() {
	case "esc":
		m.mode = back
		return m, nil
	case "enter":
		m.mode = back
		return m.commitInput(m.input.Value())
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m BoardModel) commitInput(value string) (BoardModel, tea.Cmd) {
	switch m.inputPurpose {
	case inputNewCard:
		list := m.board.Lists[m.selectedCol]
		m, cmd := m.submit("card added", m.coord.CreateCard(list.ID, value))
		if vis := m.visible(m.selectedCol); len(vis) > 0 {
			m.selectedCard = len(vis) - 1
			m.adjustScrollPosition()
		}
		return m, cmd

	case inputNewList:
		m, cmd := m.submit("list added", m.coord.CreateList(value))
		m.selectCol(len(m.board.Lists) - 1)
		return m, cmd

	case inputRenameCard:
		if card, ok := m.currentCard(); ok {
			return m.submit("card renamed", m.coord.PatchCard(card.ID, models.CardPatch{Title: &value}))
		}

	case inputRenameList:
		if m.selectedCol < len(m.board.Lists) {
			title, err := models.ValidateTitle(value)
			if err != nil {
				m.err = err
				return m, nil
			}
			return m.submit("list renamed", m.coord.PatchList(m.board.Lists[m.selectedCol].ID, models.ListPatch{Title: &title}))
		}

	case inputNewChecklist:
		return m.submit("checklist added", m.coord.AddChecklist(m.detailCardID, value))

	case inputNewItem:
		if cl, ok := m.detailChecklist(); ok {
			return m.submit("item added", m.coord.AddChecklistItem(cl.ID, value))
		}
	}
	return m, nil
}

func (m *BoardModel) openSelector(kind selectKind, card models.Card) {
	var items []selectorItem
	title := "Labels"
	switch kind {
	case selectLabels:
		for _, l := range m.board.Labels {
			items = append(items, selectorItem{ID: l.ID, Name: l.Name, Color: l.Color, Checked: card.HasLabel(l.ID)})
		}
	case selectMembers:
		title = "Members"
		for _, mem := range m.members {
			items = append(items, selectorItem{ID: mem.ID, Name: mem.Name, Checked: card.HasMember(mem.ID)})
		}
	}
	m.selector = newSelectorModel(title, items)
	m.selector.width, m.selector.height = m.width, m.height
	m.selectorKind = kind
	m.mode = boardModeSelect
}

func (m BoardModel) updateSelect(msg tea.KeyMsg) (BoardModel, tea.Cmd) {
	var toggled string
	var done bool
	m.selector, toggled, done = m.selector.Update(msg)
	if done {
		m.mode = boardModeNormal
		return m, nil
	}
	card, ok := m.currentCard()
	if toggled == "" || !ok {
		return m, nil
	}
	if m.selectorKind == selectLabels {
		return m.submit("labels updated", m.coord.ToggleCardLabel(card.ID, toggled))
	}
	return m.submit("members updated", m.coord.ToggleCardMember(card.ID, toggled))
}

// refresh re-reads the store snapshot and keeps the cursor in range
func (m *BoardModel) refresh() {
	m.board = m.coord.Snapshot()
	if len(m.columnScrollOffsets) != len(m.board.Lists) {
		offsets := make([]int, len(m.board.Lists))
		copy(offsets, m.columnScrollOffsets)
		m.columnScrollOffsets = offsets
	}
	if m.selectedCol >= len(m.board.Lists) {
		m.selectedCol = max(0, len(m.board.Lists)-1)
	}
	m.clampCursor()
	m.adjustHorizontalScrollPosition()
}

func (m *BoardModel) selectCol(col int) {
	m.selectedCol = col
	m.clampCursor()
	m.adjustHorizontalScrollPosition()
}

func (m *BoardModel) clampCursor() {
	n := len(m.visible(m.selectedCol))
	if m.selectedCard >= n {
		m.selectedCard = max(0, n-1)
	}
	if m.selectedCol < len(m.columnScrollOffsets) && m.columnScrollOffsets[m.selectedCol] > m.selectedCard {
		m.columnScrollOffsets[m.selectedCol] = m.selectedCard
	}
	m.adjustScrollPosition()
}

// focusCard moves the cursor onto the card wherever it now lives
func (m *BoardModel) focusCard(id string) {
	li, ci := m.board.FindCard(id)
	if li < 0 {
		return
	}
	m.selectedCol = li
	for vi, real := range m.visible(li) {
		if real == ci {
			m.selectedCard = vi
			break
		}
	}
	m.adjustScrollPosition()
	m.adjustHorizontalScrollPosition()
}

// visible returns the real indices of the cards shown in list li
func (m *BoardModel) visible(li int) []int {
	if li < 0 || li >= len(m.board.Lists) {
		return nil
	}
	cards := m.board.Lists[li].Cards
	var out []int
	for _, i := range filter.Indices(cards, m.query, m.criteria, m.now()) {
		if m.showArchived || !cards[i].Archived {
			out = append(out, i)
		}
	}
	return out
}

// realIndex maps a visible row back to its index in the list
func (m *BoardModel) realIndex(li, vi int) int {
	vis := m.visible(li)
	if vi < 0 || vi >= len(vis) {
		return -1
	}
	return vis[vi]
}

func (m *BoardModel) currentCard() (models.Card, bool) {
	ci := m.realIndex(m.selectedCol, m.selectedCard)
	if ci < 0 {
		return models.Card{}, false
	}
	return m.board.Lists[m.selectedCol].Cards[ci], true
}

func (m *BoardModel) filtering() bool {
	return m.query != "" || m.criteria.Active()
}

func (m *BoardModel) clearFilters() {
	m.query = ""
	m.criteria = filter.Criteria{}
	m.memberFilter = -1
	m.clampCursor()
}

func (m *BoardModel) cycleMemberFilter() {
	if len(m.members) == 0 {
		return
	}
	m.memberFilter++
	if m.memberFilter >= len(m.members) {
		m.memberFilter = -1
		m.criteria.MemberIDs = nil
	} else {
		m.criteria.MemberIDs = []string{m.members[m.memberFilter].ID}
	}
	m.clampCursor()
}

func nextBucket(b filter.Bucket) filter.Bucket {
	if b == filter.BucketAny {
		return filter.Buckets[0]
	}
	for i, cur := range filter.Buckets {
		if cur == b && i+1 < len(filter.Buckets) {
			return filter.Buckets[i+1]
		}
	}
	return filter.BucketAny
}

func toggleID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i:i], ids[i+1:]...)
		}
	}
	return append(ids, id)
}

package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"corkboard/internal/board/models"
)

var (
	errUnavailable = errors.New("service unavailable")
	errBadOrder    = errors.New("invalid order")
)

type call struct {
	op   string
	args []string
}

// fakeService keeps the authoritative board and records every call.
// Operations named in fail return errUnavailable without changing state.
// gate holds back every call; gates holds back single operations.
type fakeService struct {
	mu     sync.Mutex
	board  models.Board
	calls  []call
	fail   map[string]bool
	gate   chan struct{}
	gates  map[string]chan struct{}
	nextID int
}

func newFakeService(b models.Board) *fakeService {
	// Generated ids start past the fixture's c1..c4 and L1..L2
	return &fakeService{board: b.Clone(), fail: map[string]bool{}, gates: map[string]chan struct{}{}, nextID: 100}
}

// hold blocks op until the returned channel is closed
func (f *fakeService) hold(op string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.gates[op] = ch
	return ch
}

func (f *fakeService) record(op string, args ...string) error {
	gate := f.gate
	if gate != nil {
		<-gate
	}
	f.mu.Lock()
	opGate := f.gates[op]
	f.mu.Unlock()
	if opGate != nil {
		<-opGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{op: op, args: args})
	if f.fail[op] {
		return errUnavailable
	}
	return nil
}

func (f *fakeService) failOn(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[op] = true
}

func (f *fakeService) callsTo(op string) []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []call
	for _, c := range f.calls {
		if c.op == op {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeService) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.op != "board" {
			n++
		}
	}
	return n
}

func (f *fakeService) id(prefix string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	return fmt.Sprintf("%s%d", prefix, f.nextID)
}

func (f *fakeService) Board(ctx context.Context, id string) (models.Board, error) {
	if err := f.record("board", id); err != nil {
		return models.Board{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if id != f.board.ID {
		return models.Board{}, errors.New("not found")
	}
	return f.board.Clone(), nil
}

func (f *fakeService) UpdateBoard(ctx context.Context, id string, patch models.BoardPatch) (models.BoardSummary, error) {
	if err := f.record("update-board", id); err != nil {
		return models.BoardSummary{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	patch.Apply(&f.board)
	return models.BoardSummary{ID: f.board.ID, Title: f.board.Title}, nil
}

func (f *fakeService) CreateList(ctx context.Context, boardID, title string) (models.List, error) {
	if err := f.record("create-list", boardID, title); err != nil {
		return models.List{}, err
	}
	list := models.List{ID: f.id("L"), BoardID: boardID, Title: title, Cards: []models.Card{}}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.board.Lists = append(f.board.Lists, list)
	return list, nil
}

func (f *fakeService) UpdateList(ctx context.Context, id string, patch models.ListPatch) (models.List, error) {
	if err := f.record("update-list", id); err != nil {
		return models.List{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	list := f.board.GetList(id)
	if list == nil {
		return models.List{}, errors.New("not found")
	}
	patch.Apply(list)
	return list.Clone(), nil
}

func (f *fakeService) DeleteList(ctx context.Context, id string) error {
	if err := f.record("delete-list", id); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if i := f.board.GetListIndex(id); i >= 0 {
		f.board.Lists = append(f.board.Lists[:i], f.board.Lists[i+1:]...)
	}
	return nil
}

func (f *fakeService) ReorderLists(ctx context.Context, boardID string, listIDs []string) error {
	if err := f.record("reorder-lists", listIDs...); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(listIDs) != len(f.board.Lists) {
		return fmt.Errorf("%w: expected %d list ids, got %d", errBadOrder, len(f.board.Lists), len(listIDs))
	}
	lists := make([]models.List, 0, len(listIDs))
	for _, id := range listIDs {
		l := f.board.GetList(id)
		if l == nil {
			return fmt.Errorf("%w: unknown list %s", errBadOrder, id)
		}
		lists = append(lists, *l)
	}
	f.board.Lists = lists
	return nil
}

func (f *fakeService) CreateCard(ctx context.Context, listID, title string) (models.Card, error) {
	if err := f.record("create-card", listID, title); err != nil {
		return models.Card{}, err
	}
	card := models.Card{ID: f.id("c"), ListID: listID, Title: title}
	f.mu.Lock()
	defer f.mu.Unlock()
	list := f.board.GetList(listID)
	if list == nil {
		return models.Card{}, errors.New("not found")
	}
	list.Cards = append(list.Cards, card)
	return card, nil
}

func (f *fakeService) UpdateCard(ctx context.Context, id string, patch models.CardPatch) (models.Card, error) {
	if err := f.record("update-card", id); err != nil {
		return models.Card{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	li, ci := f.board.FindCard(id)
	if li < 0 {
		return models.Card{}, errors.New("not found")
	}
	patch.Apply(&f.board.Lists[li].Cards[ci])
	return f.board.Lists[li].Cards[ci].Clone(), nil
}

func (f *fakeService) DeleteCard(ctx context.Context, id string) error {
	if err := f.record("delete-card", id); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if li, ci := f.board.FindCard(id); li >= 0 {
		cards := f.board.Lists[li].Cards
		f.board.Lists[li].Cards = append(cards[:ci], cards[ci+1:]...)
	}
	return nil
}

func (f *fakeService) ArchiveCard(ctx context.Context, id string, archived bool) error {
	return f.record("archive-card", id)
}

func (f *fakeService) ReorderCards(ctx context.Context, sourceListID, destListID string, cardIDs []string) error {
	args := append([]string{sourceListID, destListID}, cardIDs...)
	if err := f.record("reorder-cards", args...); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	byID := map[string]models.Card{}
	for _, l := range f.board.Lists {
		for _, c := range l.Cards {
			byID[c.ID] = c
		}
	}
	if dst := f.board.GetList(destListID); dst != nil {
		listed := map[string]bool{}
		for _, id := range cardIDs {
			listed[id] = true
		}
		for _, c := range dst.Cards {
			if !listed[c.ID] {
				return fmt.Errorf("%w: card %s missing from order", errBadOrder, c.ID)
			}
		}
	}
	moved := map[string]bool{}
	dest := make([]models.Card, 0, len(cardIDs))
	for _, id := range cardIDs {
		c, ok := byID[id]
		if !ok {
			return fmt.Errorf("%w: unknown card %s", errBadOrder, id)
		}
		c.ListID = destListID
		dest = append(dest, c)
		moved[id] = true
	}
	for i := range f.board.Lists {
		list := &f.board.Lists[i]
		if list.ID == destListID {
			list.Cards = dest
			continue
		}
		kept := list.Cards[:0]
		for _, c := range list.Cards {
			if !moved[c.ID] {
				kept = append(kept, c)
			}
		}
		list.Cards = kept
	}
	return nil
}

func (f *fakeService) CreateChecklist(ctx context.Context, cardID, title string) (models.Checklist, error) {
	if err := f.record("create-checklist", cardID, title); err != nil {
		return models.Checklist{}, err
	}
	return models.Checklist{ID: f.id("cl"), CardID: cardID, Title: title}, nil
}

func (f *fakeService) DeleteChecklist(ctx context.Context, id string) error {
	return f.record("delete-checklist", id)
}

func (f *fakeService) AddChecklistItem(ctx context.Context, checklistID, text string) (models.ChecklistItem, error) {
	if err := f.record("create-checklist-item", checklistID, text); err != nil {
		return models.ChecklistItem{}, err
	}
	return models.ChecklistItem{ID: f.id("i"), ChecklistID: checklistID, Text: text}, nil
}

func (f *fakeService) UpdateChecklistItem(ctx context.Context, itemID string, patch models.ItemPatch) (models.ChecklistItem, error) {
	if err := f.record("update-checklist-item", itemID); err != nil {
		return models.ChecklistItem{}, err
	}
	return models.ChecklistItem{ID: itemID}, nil
}

func (f *fakeService) DeleteChecklistItem(ctx context.Context, itemID string) error {
	return f.record("delete-checklist-item", itemID)
}

func (f *fakeService) CreateLabel(ctx context.Context, boardID, name, color string) (models.Label, error) {
	if err := f.record("create-label", name, color); err != nil {
		return models.Label{}, err
	}
	return models.Label{ID: f.id("lb"), BoardID: boardID, Name: name, Color: color}, nil
}

func (f *fakeService) UpdateLabel(ctx context.Context, id string, patch models.LabelPatch) (models.Label, error) {
	if err := f.record("update-label", id); err != nil {
		return models.Label{}, err
	}
	return models.Label{ID: id}, nil
}

func (f *fakeService) DeleteLabel(ctx context.Context, id string) error {
	return f.record("delete-label", id)
}

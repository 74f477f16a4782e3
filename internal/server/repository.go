package server

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"corkboard/internal/board/filter"
	"corkboard/internal/board/models"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("not found")
	ErrInvalid  = errors.New("invalid request")
)

// Repository is the in-memory board service state. Every method returns
// copies; callers never hold references into the repository.
type Repository struct {
	mu      sync.RWMutex
	boards  []*models.Board
	members []models.Member
	newID   func() string
}

// NewRepository returns an empty repository
func NewRepository() *Repository {
	return &Repository{newID: uuid.NewString}
}

// SearchHit is a card matched by Search together with its board
type SearchHit struct {
	BoardID    string      `json:"boardId"`
	BoardTitle string      `json:"boardTitle"`
	ListTitle  string      `json:"listTitle"`
	Card       models.Card `json:"card"`
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

func validTitle(title string) (string, error) {
	title, err := models.ValidateTitle(title)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return title, nil
}

// Lookups. Callers hold r.mu.

func (r *Repository) board(id string) *models.Board {
	for _, b := range r.boards {
		if b.ID == id {
			return b
		}
	}
	return nil
}

func (r *Repository) list(id string) (*models.Board, *models.List) {
	for _, b := range r.boards {
		if l := b.GetList(id); l != nil {
			return b, l
		}
	}
	return nil, nil
}

func (r *Repository) card(id string) (*models.Board, *models.Card) {
	for _, b := range r.boards {
		if li, ci := b.FindCard(id); li >= 0 {
			return b, &b.Lists[li].Cards[ci]
		}
	}
	return nil, nil
}

func (r *Repository) checklist(id string) *models.Checklist {
	for _, b := range r.boards {
		for li := range b.Lists {
			for ci := range b.Lists[li].Cards {
				card := &b.Lists[li].Cards[ci]
				for k := range card.Checklists {
					if card.Checklists[k].ID == id {
						return &card.Checklists[k]
					}
				}
			}
		}
	}
	return nil
}

func (r *Repository) item(id string) (*models.Checklist, int) {
	for _, b := range r.boards {
		for li := range b.Lists {
			for ci := range b.Lists[li].Cards {
				card := &b.Lists[li].Cards[ci]
				for k := range card.Checklists {
					cl := &card.Checklists[k]
					for i := range cl.Items {
						if cl.Items[i].ID == id {
							return cl, i
						}
					}
				}
			}
		}
	}
	return nil, -1
}

func (r *Repository) hasMember(id string) bool {
	for _, m := range r.members {
		if m.ID == id {
			return true
		}
	}
	return false
}

// Boards

// Boards lists every board in creation order
func (r *Repository) Boards() []models.BoardSummary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.BoardSummary, 0, len(r.boards))
	for _, b := range r.boards {
		out = append(out, models.BoardSummary{ID: b.ID, Title: b.Title, Background: b.Background})
	}
	return out
}

// Board returns the full tree of one board
func (r *Repository) Board(id string) (models.Board, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b := r.board(id)
	if b == nil {
		return models.Board{}, notFound("board", id)
	}
	return b.Clone(), nil
}

// CreateBoard adds an empty board
func (r *Repository) CreateBoard(title, background string) (models.Board, error) {
	title, err := validTitle(title)
	if err != nil {
		return models.Board{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	b := &models.Board{
		ID:         r.newID(),
		Title:      title,
		Background: background,
		Lists:      []models.List{},
		Labels:     []models.Label{},
	}
	r.boards = append(r.boards, b)
	return b.Clone(), nil
}

// UpdateBoard applies a header patch
func (r *Repository) UpdateBoard(id string, patch models.BoardPatch) (models.BoardSummary, error) {
	if patch.Title != nil {
		title, err := validTitle(*patch.Title)
		if err != nil {
			return models.BoardSummary{}, err
		}
		patch.Title = &title
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	b := r.board(id)
	if b == nil {
		return models.BoardSummary{}, notFound("board", id)
	}
	patch.Apply(b)
	return models.BoardSummary{ID: b.ID, Title: b.Title, Background: b.Background}, nil
}

// DeleteBoard removes a board and everything it owns
func (r *Repository) DeleteBoard(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, b := range r.boards {
		if b.ID == id {
			r.boards = append(r.boards[:i], r.boards[i+1:]...)
			return nil
		}
	}
	return notFound("board", id)
}

// Labels returns the labels of a board
func (r *Repository) Labels(boardID string) ([]models.Label, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b := r.board(boardID)
	if b == nil {
		return nil, notFound("board", boardID)
	}
	return append([]models.Label{}, b.Labels...), nil
}

// Lists

// CreateList appends a list to the board
func (r *Repository) CreateList(boardID, title string) (models.List, error) {
	title, err := validTitle(title)
	if err != nil {
		return models.List{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	b := r.board(boardID)
	if b == nil {
		return models.List{}, notFound("board", boardID)
	}
	list := models.List{ID: r.newID(), BoardID: boardID, Title: title, Cards: []models.Card{}}
	b.Lists = append(b.Lists, list)
	return list.Clone(), nil
}

// UpdateList applies a patch to a list
func (r *Repository) UpdateList(id string, patch models.ListPatch) (models.List, error) {
	if patch.Title != nil {
		title, err := validTitle(*patch.Title)
		if err != nil {
			return models.List{}, err
		}
		patch.Title = &title
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, l := r.list(id)
	if l == nil {
		return models.List{}, notFound("list", id)
	}
	patch.Apply(l)
	return l.Clone(), nil
}

// DeleteList removes a list with its cards
func (r *Repository) DeleteList(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, _ := r.list(id)
	if b == nil {
		return notFound("list", id)
	}
	i := b.GetListIndex(id)
	b.Lists = append(b.Lists[:i], b.Lists[i+1:]...)
	return nil
}

// ReorderLists sets the board's list order. listIDs must be a permutation of
// the board's current lists.
func (r *Repository) ReorderLists(boardID string, listIDs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	b := r.board(boardID)
	if b == nil {
		return notFound("board", boardID)
	}
	if len(listIDs) != len(b.Lists) {
		return invalidf("expected %d list ids, got %d", len(b.Lists), len(listIDs))
	}

	seen := make(map[string]bool, len(listIDs))
	lists := make([]models.List, 0, len(listIDs))
	for _, id := range listIDs {
		l := b.GetList(id)
		if l == nil || seen[id] {
			return invalidf("list %s is not a distinct list of board %s", id, boardID)
		}
		seen[id] = true
		lists = append(lists, *l)
	}
	b.Lists = lists
	return nil
}

// Cards

// Card returns a single card
func (r *Repository) Card(id string) (models.Card, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, c := r.card(id)
	if c == nil {
		return models.Card{}, notFound("card", id)
	}
	return c.Clone(), nil
}

// CreateCard appends a card to the list
func (r *Repository) CreateCard(listID, title string) (models.Card, error) {
	title, err := validTitle(title)
	if err != nil {
		return models.Card{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, l := r.list(listID)
	if l == nil {
		return models.Card{}, notFound("list", listID)
	}
	card := models.Card{
		ID:         r.newID(),
		ListID:     listID,
		Title:      title,
		LabelIDs:   []string{},
		MemberIDs:  []string{},
		Checklists: []models.Checklist{},
	}
	l.Cards = append(l.Cards, card)
	return card.Clone(), nil
}

// UpdateCard applies a patch. Label references must name labels of the
// card's board and member references must name known members.
func (r *Repository) UpdateCard(id string, patch models.CardPatch) (models.Card, error) {
	if patch.Title != nil {
		title, err := validTitle(*patch.Title)
		if err != nil {
			return models.Card{}, err
		}
		patch.Title = &title
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	b, c := r.card(id)
	if c == nil {
		return models.Card{}, notFound("card", id)
	}
	for _, labelID := range patch.LabelIDs {
		if _, ok := b.GetLabel(labelID); !ok {
			return models.Card{}, invalidf("label %s does not belong to board %s", labelID, b.ID)
		}
	}
	for _, memberID := range patch.MemberIDs {
		if !r.hasMember(memberID) {
			return models.Card{}, invalidf("unknown member %s", memberID)
		}
	}
	patch.Apply(c)
	return c.Clone(), nil
}

// ArchiveCard sets the archived flag
func (r *Repository) ArchiveCard(id string, archived bool) (models.Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, c := r.card(id)
	if c == nil {
		return models.Card{}, notFound("card", id)
	}
	c.Archived = archived
	return c.Clone(), nil
}

// DeleteCard removes a card
func (r *Repository) DeleteCard(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, c := r.card(id)
	if c == nil {
		return notFound("card", id)
	}
	li, ci := b.FindCard(id)
	cards := b.Lists[li].Cards
	b.Lists[li].Cards = append(cards[:ci], cards[ci+1:]...)
	return nil
}

// ReorderCards makes cardIDs the full order of the destination list. Every
// card currently in the destination must appear; any other id must be a card
// of the source list, which is moved over.
func (r *Repository) ReorderCards(sourceListID, destListID string, cardIDs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	srcBoard, src := r.list(sourceListID)
	if src == nil {
		return notFound("list", sourceListID)
	}
	dstBoard, dst := r.list(destListID)
	if dst == nil {
		return notFound("list", destListID)
	}
	if srcBoard.ID != dstBoard.ID {
		return invalidf("lists %s and %s belong to different boards", sourceListID, destListID)
	}

	byID := make(map[string]models.Card, len(dst.Cards)+len(src.Cards))
	inDest := make(map[string]bool, len(dst.Cards))
	for _, c := range dst.Cards {
		byID[c.ID] = c
		inDest[c.ID] = true
	}
	for _, c := range src.Cards {
		byID[c.ID] = c
	}

	seen := make(map[string]bool, len(cardIDs))
	moved := map[string]bool{}
	ordered := make([]models.Card, 0, len(cardIDs))
	for _, id := range cardIDs {
		c, ok := byID[id]
		if !ok || seen[id] {
			return invalidf("card %s is not a distinct card of list %s or %s", id, sourceListID, destListID)
		}
		seen[id] = true
		if !inDest[id] {
			moved[id] = true
		}
		c.ListID = destListID
		ordered = append(ordered, c)
	}
	for id := range inDest {
		if !seen[id] {
			return invalidf("card %s of list %s is missing from the order", id, destListID)
		}
	}

	if src != dst {
		kept := make([]models.Card, 0, len(src.Cards))
		for _, c := range src.Cards {
			if !moved[c.ID] {
				kept = append(kept, c)
			}
		}
		src.Cards = kept
	}
	dst.Cards = ordered
	return nil
}

// Search returns cards whose title contains query, across every board
func (r *Repository) Search(query string) []SearchHit {
	r.mu.RLock()
	defer r.mu.RUnlock()

	hits := []SearchHit{}
	if strings.TrimSpace(query) == "" {
		return hits
	}
	for _, b := range r.boards {
		for _, l := range b.Lists {
			for _, c := range filter.Cards(l.Cards, query, filter.Criteria{}) {
				hits = append(hits, SearchHit{BoardID: b.ID, BoardTitle: b.Title, ListTitle: l.Title, Card: c.Clone()})
			}
		}
	}
	return hits
}

// Labels

// CreateLabel adds a label to the board
func (r *Repository) CreateLabel(boardID, name, color string) (models.Label, error) {
	name, err := validTitle(name)
	if err != nil {
		return models.Label{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	b := r.board(boardID)
	if b == nil {
		return models.Label{}, notFound("board", boardID)
	}
	label := models.Label{ID: r.newID(), BoardID: boardID, Name: name, Color: color}
	b.Labels = append(b.Labels, label)
	return label, nil
}

// UpdateLabel applies a patch to a label
func (r *Repository) UpdateLabel(id string, patch models.LabelPatch) (models.Label, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, b := range r.boards {
		for i := range b.Labels {
			if b.Labels[i].ID == id {
				patch.Apply(&b.Labels[i])
				return b.Labels[i], nil
			}
		}
	}
	return models.Label{}, notFound("label", id)
}

// DeleteLabel removes a label and every card reference to it
func (r *Repository) DeleteLabel(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, b := range r.boards {
		for i := range b.Labels {
			if b.Labels[i].ID != id {
				continue
			}
			b.Labels = append(b.Labels[:i], b.Labels[i+1:]...)
			for li := range b.Lists {
				for ci := range b.Lists[li].Cards {
					card := &b.Lists[li].Cards[ci]
					card.LabelIDs = removeID(card.LabelIDs, id)
				}
			}
			return nil
		}
	}
	return notFound("label", id)
}

// Members

// Members returns the roster
func (r *Repository) Members() []models.Member {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]models.Member{}, r.members...)
}

// Member returns one roster entry
func (r *Repository) Member(id string) (models.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, m := range r.members {
		if m.ID == id {
			return m, nil
		}
	}
	return models.Member{}, notFound("member", id)
}

// AddMember registers a roster entry
func (r *Repository) AddMember(name, initials, color string) models.Member {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := models.Member{ID: r.newID(), Name: name, Initials: initials, AvatarColor: color}
	if m.Initials == "" {
		m.Initials = initialsOf(name)
	}
	r.members = append(r.members, m)
	return m
}

// Checklists

// CreateChecklist appends an empty checklist to the card
func (r *Repository) CreateChecklist(cardID, title string) (models.Checklist, error) {
	title, err := validTitle(title)
	if err != nil {
		return models.Checklist{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, c := r.card(cardID)
	if c == nil {
		return models.Checklist{}, notFound("card", cardID)
	}
	cl := models.Checklist{ID: r.newID(), CardID: cardID, Title: title, Items: []models.ChecklistItem{}}
	c.Checklists = append(c.Checklists, cl)
	return cl, nil
}

// UpdateChecklist renames a checklist
func (r *Repository) UpdateChecklist(id, title string) (models.Checklist, error) {
	title, err := validTitle(title)
	if err != nil {
		return models.Checklist{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cl := r.checklist(id)
	if cl == nil {
		return models.Checklist{}, notFound("checklist", id)
	}
	cl.Title = title
	out := *cl
	out.Items = append([]models.ChecklistItem{}, cl.Items...)
	return out, nil
}

// DeleteChecklist removes a checklist with its items
func (r *Repository) DeleteChecklist(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cl := r.checklist(id)
	if cl == nil {
		return notFound("checklist", id)
	}
	_, c := r.card(cl.CardID)
	for i := range c.Checklists {
		if c.Checklists[i].ID == id {
			c.Checklists = append(c.Checklists[:i], c.Checklists[i+1:]...)
			break
		}
	}
	return nil
}

// AddChecklistItem appends an unchecked item
func (r *Repository) AddChecklistItem(checklistID, text string) (models.ChecklistItem, error) {
	text, err := validTitle(text)
	if err != nil {
		return models.ChecklistItem{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cl := r.checklist(checklistID)
	if cl == nil {
		return models.ChecklistItem{}, notFound("checklist", checklistID)
	}
	item := models.ChecklistItem{ID: r.newID(), ChecklistID: checklistID, Text: text}
	cl.Items = append(cl.Items, item)
	return item, nil
}

// UpdateChecklistItem applies a patch to an item
func (r *Repository) UpdateChecklistItem(itemID string, patch models.ItemPatch) (models.ChecklistItem, error) {
	if patch.Text != nil {
		text, err := validTitle(*patch.Text)
		if err != nil {
			return models.ChecklistItem{}, err
		}
		patch.Text = &text
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cl, i := r.item(itemID)
	if cl == nil {
		return models.ChecklistItem{}, notFound("checklist item", itemID)
	}
	patch.Apply(&cl.Items[i])
	return cl.Items[i], nil
}

// DeleteChecklistItem removes an item
func (r *Repository) DeleteChecklistItem(itemID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cl, i := r.item(itemID)
	if cl == nil {
		return notFound("checklist item", itemID)
	}
	cl.Items = append(cl.Items[:i], cl.Items[i+1:]...)
	return nil
}

func removeID(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func initialsOf(name string) string {
	var b strings.Builder
	for _, word := range strings.Fields(name) {
		b.WriteString(strings.ToUpper(word[:1]))
		if b.Len() == 2 {
			break
		}
	}
	return b.String()
}

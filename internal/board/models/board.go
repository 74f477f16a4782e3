package models

import "strings"

// Board is the root of the tree: it owns its lists and its labels
type Board struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Background string  `json:"background,omitempty"`
	Lists      []List  `json:"lists"`
	Labels     []Label `json:"labels"`
}

// List is an ordered container of cards within a board
type List struct {
	ID      string `json:"id"`
	BoardID string `json:"boardId"`
	Title   string `json:"title"`
	Color   string `json:"color,omitempty"`
	Cards   []Card `json:"cards"`
}

// Label belongs to a board; cards reference it by id
type Label struct {
	ID      string `json:"id"`
	BoardID string `json:"boardId"`
	Name    string `json:"name"`
	Color   string `json:"color"`
}

// Member is an entry in the process-wide roster; cards reference it by id
type Member struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Initials    string `json:"initials,omitempty"`
	AvatarColor string `json:"avatarColor,omitempty"`
}

// BoardSummary is the lightweight form returned when listing boards
type BoardSummary struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Background string `json:"background,omitempty"`
}

// GetList returns a pointer to the list with the given id
func (b *Board) GetList(id string) *List {
	for i := range b.Lists {
		if b.Lists[i].ID == id {
			return &b.Lists[i]
		}
	}
	return nil
}

// GetListIndex returns the position of the list with the given id, or -1
func (b *Board) GetListIndex(id string) int {
	for i := range b.Lists {
		if b.Lists[i].ID == id {
			return i
		}
	}
	return -1
}

// FindCard locates a card anywhere on the board.
// Returns the list index and card index, or -1, -1.
func (b *Board) FindCard(id string) (int, int) {
	for li := range b.Lists {
		for ci := range b.Lists[li].Cards {
			if b.Lists[li].Cards[ci].ID == id {
				return li, ci
			}
		}
	}
	return -1, -1
}

// GetLabel returns the label with the given id
func (b *Board) GetLabel(id string) (Label, bool) {
	for _, l := range b.Labels {
		if l.ID == id {
			return l, true
		}
	}
	return Label{}, false
}

// ListIDs projects the list order onto an id sequence
func (b *Board) ListIDs() []string {
	ids := make([]string, len(b.Lists))
	for i, l := range b.Lists {
		ids[i] = l.ID
	}
	return ids
}

// CardIDs projects the card order onto an id sequence
func (l *List) CardIDs() []string {
	ids := make([]string, len(l.Cards))
	for i, c := range l.Cards {
		ids[i] = c.ID
	}
	return ids
}

// Clone returns a deep copy of the board
func (b Board) Clone() Board {
	out := b
	out.Labels = append([]Label(nil), b.Labels...)
	out.Lists = make([]List, len(b.Lists))
	for i, l := range b.Lists {
		out.Lists[i] = l.Clone()
	}
	return out
}

// Clone returns a deep copy of the list
func (l List) Clone() List {
	out := l
	out.Cards = make([]Card, len(l.Cards))
	for i, c := range l.Cards {
		out.Cards[i] = c.Clone()
	}
	return out
}

// LabelNames resolves the card's label references against the board
func (b *Board) LabelNames(card Card) []string {
	var names []string
	for _, id := range card.LabelIDs {
		if l, ok := b.GetLabel(id); ok {
			names = append(names, l.Name)
		}
	}
	return names
}

// MaxTitleLength bounds board, list, card and checklist titles
const MaxTitleLength = 512

// ValidateTitle trims a title and checks its length
func ValidateTitle(title string) (string, error) {
	trimmed := strings.TrimSpace(title)

	if trimmed == "" {
		return "", ErrEmptyTitle
	}

	if len(trimmed) > MaxTitleLength {
		return "", ErrTitleTooLong
	}

	return trimmed, nil
}

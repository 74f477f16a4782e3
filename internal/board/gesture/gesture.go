// Package gesture turns completed drag-and-drop gestures into structural
// intents. It only reads the board; applying and persisting is left to the
// reconcile package.
package gesture

import "corkboard/internal/board/models"

// Kind is the type of item being dragged
type Kind string

const (
	KindList Kind = "LIST"
	KindCard Kind = "CARD"
)

// Location is a position inside a droppable container. For lists the
// container is the board; for cards it is the list id.
type Location struct {
	ContainerID string
	Index       int
}

// Gesture is a finished drag. A nil Destination means the item was dropped
// outside any container.
type Gesture struct {
	Kind        Kind
	Source      Location
	Destination *Location
}

// Intent is a structural mutation request
type Intent interface {
	intent()
}

// ListReorder moves a list within the board
type ListReorder struct {
	FromIndex int
	ToIndex   int
}

// CardMove moves a card within or across lists
type CardMove struct {
	CardID     string
	FromListID string
	ToListID   string
	FromIndex  int
	ToIndex    int
}

func (ListReorder) intent() {}
func (CardMove) intent()    {}

// SameList reports whether the move reorders within one list
func (m CardMove) SameList() bool {
	return m.FromListID == m.ToListID
}

// Translate returns the intent implied by g against board, or false when the
// gesture was abandoned, ended where it started, or references a card that
// no longer exists.
func Translate(board models.Board, g Gesture) (Intent, bool) {
	if g.Destination == nil {
		return nil, false
	}
	dst := *g.Destination
	if g.Source.ContainerID == dst.ContainerID && g.Source.Index == dst.Index {
		return nil, false
	}

	switch g.Kind {
	case KindList:
		return ListReorder{FromIndex: g.Source.Index, ToIndex: dst.Index}, true

	case KindCard:
		src := board.GetList(g.Source.ContainerID)
		if src == nil || g.Source.Index < 0 || g.Source.Index >= len(src.Cards) {
			return nil, false
		}
		return CardMove{
			CardID:     src.Cards[g.Source.Index].ID,
			FromListID: g.Source.ContainerID,
			ToListID:   dst.ContainerID,
			FromIndex:  g.Source.Index,
			ToIndex:    dst.Index,
		}, true
	}

	return nil, false
}

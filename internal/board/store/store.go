package store

import (
	"errors"
	"fmt"
	"sync"

	"corkboard/internal/board/models"
)

var (
	ErrClosed        = errors.New("store is closed")
	ErrBoardMismatch = errors.New("snapshot belongs to a different board")
)

// Store owns the Board→List→Card tree of one active board.
// Every mutation is atomic; none of them perform I/O.
type Store struct {
	mu      sync.RWMutex
	boardID string
	board   models.Board
	loaded  bool
	closed  bool
	version uint64
}

// New creates an empty store bound to boardID
func New(boardID string) *Store {
	return &Store{boardID: boardID}
}

// BoardID returns the id of the board this store is bound to
func (s *Store) BoardID() string {
	return s.boardID
}

// Close tears the store down. Later mutations, including Replace, are ignored.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// Replace swaps the whole tree for snapshot. There is no merge with the
// previous state.
func (s *Store) Replace(snapshot models.Board) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if snapshot.ID != s.boardID {
		return fmt.Errorf("%w: want %s, got %s", ErrBoardMismatch, s.boardID, snapshot.ID)
	}

	s.board = snapshot.Clone()
	for li := range s.board.Lists {
		list := &s.board.Lists[li]
		for ci := range list.Cards {
			list.Cards[ci].ListID = list.ID
		}
	}
	s.loaded = true
	s.version++
	return nil
}

// Loaded reports whether a snapshot has been installed
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Version increases on every applied mutation
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Snapshot returns a deep copy of the current tree
func (s *Store) Snapshot() models.Board {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.board.Clone()
}

// ListIDs returns the board's list order
func (s *Store) ListIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.board.ListIDs()
}

// CardIDs returns the card order of a list, or nil if the list is unknown
func (s *Store) CardIDs(listID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.board.GetList(listID)
	if list == nil {
		return nil
	}
	return list.CardIDs()
}

// Card returns a copy of the card wherever it currently resides
func (s *Store) Card(cardID string) (models.Card, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	li, ci := s.board.FindCard(cardID)
	if li < 0 {
		return models.Card{}, false
	}
	return s.board.Lists[li].Cards[ci].Clone(), true
}

// List returns a copy of the list
func (s *Store) List(listID string) (models.List, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.board.GetList(listID)
	if list == nil {
		return models.List{}, false
	}
	return list.Clone(), true
}

// mutate runs fn under the write lock and bumps the version when fn applied
// a change
func (s *Store) mutate(fn func(b *models.Board) bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || !s.loaded {
		return false
	}
	if !fn(&s.board) {
		return false
	}
	s.version++
	return true
}

func clamp(i, lo, hi int) int {
	if i < lo {
		return lo
	}
	if i > hi {
		return hi
	}
	return i
}

// MoveCard removes the card at fromIndex in fromListID and inserts it at
// toIndex (clamped) in toListID, updating its list membership. It is a no-op
// when a list is missing, fromIndex is out of range, or cardID is non-empty
// and does not match the card found at fromIndex. A same-list move that
// clamps back onto fromIndex changes nothing and also reports false.
func (s *Store) MoveCard(cardID, fromListID, toListID string, fromIndex, toIndex int) bool {
	return s.mutate(func(b *models.Board) bool {
		from := b.GetList(fromListID)
		to := b.GetList(toListID)
		if from == nil || to == nil {
			return false
		}
		if fromIndex < 0 || fromIndex >= len(from.Cards) {
			return false
		}

		card := from.Cards[fromIndex]
		if cardID != "" && card.ID != cardID {
			return false
		}
		if from == to && clamp(toIndex, 0, len(from.Cards)-1) == fromIndex {
			return false
		}

		from.Cards = append(from.Cards[:fromIndex], from.Cards[fromIndex+1:]...)

		card.ListID = to.ID
		toIndex = clamp(toIndex, 0, len(to.Cards))
		to.Cards = append(to.Cards[:toIndex], append([]models.Card{card}, to.Cards[toIndex:]...)...)
		return true
	})
}

// MoveList removes the list at fromIndex and reinserts it at toIndex
// (clamped). It reports false when the list would land where it already is.
func (s *Store) MoveList(fromIndex, toIndex int) bool {
	return s.mutate(func(b *models.Board) bool {
		if fromIndex < 0 || fromIndex >= len(b.Lists) {
			return false
		}
		if clamp(toIndex, 0, len(b.Lists)-1) == fromIndex {
			return false
		}

		list := b.Lists[fromIndex]
		b.Lists = append(b.Lists[:fromIndex], b.Lists[fromIndex+1:]...)

		toIndex = clamp(toIndex, 0, len(b.Lists))
		b.Lists = append(b.Lists[:toIndex], append([]models.List{list}, b.Lists[toIndex:]...)...)
		return true
	})
}

// PatchCard merges patch into the card wherever it resides
func (s *Store) PatchCard(cardID string, patch models.CardPatch) bool {
	return s.mutate(func(b *models.Board) bool {
		li, ci := b.FindCard(cardID)
		if li < 0 {
			return false
		}
		patch.Apply(&b.Lists[li].Cards[ci])
		return true
	})
}

// PatchList merges patch into the list
func (s *Store) PatchList(listID string, patch models.ListPatch) bool {
	return s.mutate(func(b *models.Board) bool {
		list := b.GetList(listID)
		if list == nil {
			return false
		}
		patch.Apply(list)
		return true
	})
}

// PatchBoard merges patch into the board header
func (s *Store) PatchBoard(patch models.BoardPatch) bool {
	return s.mutate(func(b *models.Board) bool {
		patch.Apply(b)
		return true
	})
}

// RemoveCard deletes the card from whichever list holds it
func (s *Store) RemoveCard(cardID string) bool {
	return s.mutate(func(b *models.Board) bool {
		li, ci := b.FindCard(cardID)
		if li < 0 {
			return false
		}
		list := &b.Lists[li]
		list.Cards = append(list.Cards[:ci], list.Cards[ci+1:]...)
		return true
	})
}

// RemoveList deletes the list and every card it owns
func (s *Store) RemoveList(listID string) bool {
	return s.mutate(func(b *models.Board) bool {
		idx := b.GetListIndex(listID)
		if idx < 0 {
			return false
		}
		b.Lists = append(b.Lists[:idx], b.Lists[idx+1:]...)
		return true
	})
}

// InsertCard places card at index (clamped) in the list.
// A negative index appends.
func (s *Store) InsertCard(listID string, index int, card models.Card) bool {
	return s.mutate(func(b *models.Board) bool {
		list := b.GetList(listID)
		if list == nil {
			return false
		}
		if li, _ := b.FindCard(card.ID); li >= 0 {
			return false
		}
		card = card.Clone()
		card.ListID = list.ID
		if index < 0 {
			index = len(list.Cards)
		}
		index = clamp(index, 0, len(list.Cards))
		list.Cards = append(list.Cards[:index], append([]models.Card{card}, list.Cards[index:]...)...)
		return true
	})
}

// InsertList places list at index (clamped). A negative index appends.
func (s *Store) InsertList(index int, list models.List) bool {
	return s.mutate(func(b *models.Board) bool {
		if b.GetList(list.ID) != nil {
			return false
		}
		list = list.Clone()
		list.BoardID = b.ID
		for i := range list.Cards {
			list.Cards[i].ListID = list.ID
		}
		if index < 0 {
			index = len(b.Lists)
		}
		index = clamp(index, 0, len(b.Lists))
		b.Lists = append(b.Lists[:index], append([]models.List{list}, b.Lists[index:]...)...)
		return true
	})
}

// ReplaceCard swaps the card stored under oldID for card, keeping its position.
// Used when a provisional card is confirmed by the service.
func (s *Store) ReplaceCard(oldID string, card models.Card) bool {
	return s.mutate(func(b *models.Board) bool {
		li, ci := b.FindCard(oldID)
		if li < 0 {
			return false
		}
		card = card.Clone()
		card.ListID = b.Lists[li].ID
		b.Lists[li].Cards[ci] = card
		return true
	})
}

// ReplaceListHeader swaps the id and header fields of the list stored under
// oldID, keeping its position and its cards.
func (s *Store) ReplaceListHeader(oldID string, list models.List) bool {
	return s.mutate(func(b *models.Board) bool {
		existing := b.GetList(oldID)
		if existing == nil {
			return false
		}
		existing.ID = list.ID
		existing.Title = list.Title
		existing.Color = list.Color
		for i := range existing.Cards {
			existing.Cards[i].ListID = list.ID
		}
		return true
	})
}

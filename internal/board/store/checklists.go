package store

import "corkboard/internal/board/models"

func findChecklist(b *models.Board, checklistID string) *models.Checklist {
	for li := range b.Lists {
		for ci := range b.Lists[li].Cards {
			card := &b.Lists[li].Cards[ci]
			for i := range card.Checklists {
				if card.Checklists[i].ID == checklistID {
					return &card.Checklists[i]
				}
			}
		}
	}
	return nil
}

// AddChecklist appends a checklist to the card
func (s *Store) AddChecklist(cardID string, checklist models.Checklist) bool {
	return s.mutate(func(b *models.Board) bool {
		li, ci := b.FindCard(cardID)
		if li < 0 {
			return false
		}
		card := &b.Lists[li].Cards[ci]
		checklist.CardID = card.ID
		checklist.Items = append([]models.ChecklistItem{}, checklist.Items...)
		card.Checklists = append(card.Checklists, checklist)
		return true
	})
}

// RemoveChecklist deletes a checklist from whichever card owns it
func (s *Store) RemoveChecklist(checklistID string) bool {
	return s.mutate(func(b *models.Board) bool {
		for li := range b.Lists {
			for ci := range b.Lists[li].Cards {
				card := &b.Lists[li].Cards[ci]
				for i := range card.Checklists {
					if card.Checklists[i].ID == checklistID {
						card.Checklists = append(card.Checklists[:i], card.Checklists[i+1:]...)
						return true
					}
				}
			}
		}
		return false
	})
}

// ReplaceChecklistID swaps a provisional checklist id for the service's id
func (s *Store) ReplaceChecklistID(oldID, newID string) bool {
	return s.mutate(func(b *models.Board) bool {
		cl := findChecklist(b, oldID)
		if cl == nil {
			return false
		}
		cl.ID = newID
		for i := range cl.Items {
			cl.Items[i].ChecklistID = newID
		}
		return true
	})
}

// ChecklistCard returns the id of the card owning the checklist
func (s *Store) ChecklistCard(checklistID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cl := findChecklist(&s.board, checklistID)
	if cl == nil {
		return "", false
	}
	return cl.CardID, true
}

// AddChecklistItem appends an item to the checklist
func (s *Store) AddChecklistItem(checklistID string, item models.ChecklistItem) bool {
	return s.mutate(func(b *models.Board) bool {
		cl := findChecklist(b, checklistID)
		if cl == nil {
			return false
		}
		item.ChecklistID = cl.ID
		cl.Items = append(cl.Items, item)
		return true
	})
}

// PatchChecklistItem merges patch into the item
func (s *Store) PatchChecklistItem(itemID string, patch models.ItemPatch) bool {
	return s.mutateItem(itemID, func(cl *models.Checklist, i int) {
		patch.Apply(&cl.Items[i])
	})
}

// RemoveChecklistItem deletes the item
func (s *Store) RemoveChecklistItem(itemID string) bool {
	return s.mutateItem(itemID, func(cl *models.Checklist, i int) {
		cl.Items = append(cl.Items[:i], cl.Items[i+1:]...)
	})
}

// ReplaceChecklistItemID swaps a provisional item id for the service's id
func (s *Store) ReplaceChecklistItemID(oldID, newID string) bool {
	return s.mutateItem(oldID, func(cl *models.Checklist, i int) {
		cl.Items[i].ID = newID
	})
}

// ChecklistItem returns a copy of the item
func (s *Store) ChecklistItem(itemID string) (models.ChecklistItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, list := range s.board.Lists {
		for _, card := range list.Cards {
			for _, cl := range card.Checklists {
				for _, item := range cl.Items {
					if item.ID == itemID {
						return item, true
					}
				}
			}
		}
	}
	return models.ChecklistItem{}, false
}

func (s *Store) mutateItem(itemID string, fn func(cl *models.Checklist, i int)) bool {
	return s.mutate(func(b *models.Board) bool {
		for li := range b.Lists {
			for ci := range b.Lists[li].Cards {
				card := &b.Lists[li].Cards[ci]
				for k := range card.Checklists {
					cl := &card.Checklists[k]
					for i := range cl.Items {
						if cl.Items[i].ID == itemID {
							fn(cl, i)
							return true
						}
					}
				}
			}
		}
		return false
	})
}

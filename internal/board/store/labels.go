package store

import "corkboard/internal/board/models"

// PutLabel inserts the label, or replaces the one with the same id.
// Cards reference labels by id, so an edit is visible everywhere at once.
func (s *Store) PutLabel(label models.Label) bool {
	return s.mutate(func(b *models.Board) bool {
		label.BoardID = b.ID
		for i := range b.Labels {
			if b.Labels[i].ID == label.ID {
				b.Labels[i] = label
				return true
			}
		}
		b.Labels = append(b.Labels, label)
		return true
	})
}

// PatchLabel merges patch into the label
func (s *Store) PatchLabel(labelID string, patch models.LabelPatch) bool {
	return s.mutate(func(b *models.Board) bool {
		for i := range b.Labels {
			if b.Labels[i].ID == labelID {
				patch.Apply(&b.Labels[i])
				return true
			}
		}
		return false
	})
}

// RemoveLabel deletes the label and drops every card's reference to it
func (s *Store) RemoveLabel(labelID string) bool {
	return s.mutate(func(b *models.Board) bool {
		idx := -1
		for i := range b.Labels {
			if b.Labels[i].ID == labelID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return false
		}
		b.Labels = append(b.Labels[:idx], b.Labels[idx+1:]...)

		for li := range b.Lists {
			for ci := range b.Lists[li].Cards {
				b.Lists[li].Cards[ci].LabelIDs = without(b.Lists[li].Cards[ci].LabelIDs, labelID)
			}
		}
		return true
	})
}

// ReplaceLabelID swaps a provisional label id for the service's id,
// including every card reference
func (s *Store) ReplaceLabelID(oldID, newID string) bool {
	return s.mutate(func(b *models.Board) bool {
		found := false
		for i := range b.Labels {
			if b.Labels[i].ID == oldID {
				b.Labels[i].ID = newID
				found = true
			}
		}
		if !found {
			return false
		}
		for li := range b.Lists {
			for ci := range b.Lists[li].Cards {
				ids := b.Lists[li].Cards[ci].LabelIDs
				for k := range ids {
					if ids[k] == oldID {
						ids[k] = newID
					}
				}
			}
		}
		return true
	})
}

func without(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

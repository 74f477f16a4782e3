package reconcile

import (
	"context"

	"corkboard/internal/board/models"

	"github.com/sirupsen/logrus"
)

// AddChecklist appends a checklist to the card under a provisional id
func (c *Coordinator) AddChecklist(cardID, title string) *Pending {
	title, err := models.ValidateTitle(title)
	if err != nil {
		return invalid(err)
	}

	tempID := provisionalID()
	checklist := models.Checklist{ID: tempID, Title: title}
	c.track(tempID)
	if !c.apply(func() bool { return c.store.AddChecklist(cardID, checklist) }) {
		c.settle(tempID, "")
		return resolved(ErrStale)
	}

	return c.persist("create-checklist", logrus.Fields{"card": cardID}, func(ctx context.Context) error {
		created, err := c.createChecklist(ctx, cardID, title)
		if err != nil {
			c.settle(tempID, "")
			return err
		}
		return c.created("checklist", tempID, created.ID, func() bool { return c.store.ReplaceChecklistID(tempID, created.ID) })
	})
}

func (c *Coordinator) createChecklist(ctx context.Context, cardID, title string) (models.Checklist, error) {
	id, err := c.target(ctx, "card", cardID)
	if err != nil {
		return models.Checklist{}, err
	}
	return c.svc.CreateChecklist(ctx, id, title)
}

// DeleteChecklist removes a checklist and its items
func (c *Coordinator) DeleteChecklist(checklistID string) *Pending {
	if !c.apply(func() bool { return c.store.RemoveChecklist(checklistID) }) {
		return resolved(ErrStale)
	}
	return c.persist("delete-checklist", logrus.Fields{"checklist": checklistID}, func(ctx context.Context) error {
		id, err := c.target(ctx, "checklist", checklistID)
		if err != nil {
			return err
		}
		return c.svc.DeleteChecklist(ctx, id)
	})
}

// AddChecklistItem appends an item under a provisional id
func (c *Coordinator) AddChecklistItem(checklistID, text string) *Pending {
	text, err := models.ValidateTitle(text)
	if err != nil {
		return invalid(err)
	}

	tempID := provisionalID()
	item := models.ChecklistItem{ID: tempID, Text: text}
	c.track(tempID)
	if !c.apply(func() bool { return c.store.AddChecklistItem(checklistID, item) }) {
		c.settle(tempID, "")
		return resolved(ErrStale)
	}

	return c.persist("create-checklist-item", logrus.Fields{"checklist": checklistID}, func(ctx context.Context) error {
		created, err := c.addChecklistItem(ctx, checklistID, text)
		if err != nil {
			c.settle(tempID, "")
			return err
		}
		return c.created("item", tempID, created.ID, func() bool { return c.store.ReplaceChecklistItemID(tempID, created.ID) })
	})
}

func (c *Coordinator) addChecklistItem(ctx context.Context, checklistID, text string) (models.ChecklistItem, error) {
	id, err := c.target(ctx, "checklist", checklistID)
	if err != nil {
		return models.ChecklistItem{}, err
	}
	return c.svc.AddChecklistItem(ctx, id, text)
}

// ToggleChecklistItem flips an item's completion
func (c *Coordinator) ToggleChecklistItem(itemID string) *Pending {
	var patch models.ItemPatch
	ok := c.apply(func() bool {
		item, found := c.store.ChecklistItem(itemID)
		if !found {
			return false
		}
		patch.Completed = models.Ptr(!item.Completed)
		return c.store.PatchChecklistItem(itemID, patch)
	})
	if !ok {
		return resolved(ErrStale)
	}
	return c.persist("update-checklist-item", logrus.Fields{"item": itemID}, func(ctx context.Context) error {
		id, err := c.target(ctx, "item", itemID)
		if err != nil {
			return err
		}
		_, err = c.svc.UpdateChecklistItem(ctx, id, patch)
		return err
	})
}

// DeleteChecklistItem removes the item
func (c *Coordinator) DeleteChecklistItem(itemID string) *Pending {
	if !c.apply(func() bool { return c.store.RemoveChecklistItem(itemID) }) {
		return resolved(ErrStale)
	}
	return c.persist("delete-checklist-item", logrus.Fields{"item": itemID}, func(ctx context.Context) error {
		id, err := c.target(ctx, "item", itemID)
		if err != nil {
			return err
		}
		return c.svc.DeleteChecklistItem(ctx, id)
	})
}

// CreateLabel adds a board label under a provisional id
func (c *Coordinator) CreateLabel(name, color string) *Pending {
	name, err := models.ValidateTitle(name)
	if err != nil {
		return invalid(err)
	}

	tempID := provisionalID()
	c.track(tempID)
	if !c.apply(func() bool { return c.store.PutLabel(models.Label{ID: tempID, Name: name, Color: color}) }) {
		c.settle(tempID, "")
		return resolved(ErrStale)
	}

	return c.persist("create-label", logrus.Fields{"label": tempID}, func(ctx context.Context) error {
		created, err := c.svc.CreateLabel(ctx, c.boardID, name, color)
		if err != nil {
			c.settle(tempID, "")
			return err
		}
		return c.created("label", tempID, created.ID, func() bool { return c.store.ReplaceLabelID(tempID, created.ID) })
	})
}

// UpdateLabel edits a label; every card referencing it sees the change
func (c *Coordinator) UpdateLabel(labelID string, patch models.LabelPatch) *Pending {
	if !c.apply(func() bool { return c.store.PatchLabel(labelID, patch) }) {
		return resolved(ErrStale)
	}
	return c.persist("update-label", logrus.Fields{"label": labelID}, func(ctx context.Context) error {
		id, err := c.target(ctx, "label", labelID)
		if err != nil {
			return err
		}
		_, err = c.svc.UpdateLabel(ctx, id, patch)
		return err
	})
}

// DeleteLabel removes a label and every card reference to it
func (c *Coordinator) DeleteLabel(labelID string) *Pending {
	if !c.apply(func() bool { return c.store.RemoveLabel(labelID) }) {
		return resolved(ErrStale)
	}
	return c.persist("delete-label", logrus.Fields{"label": labelID}, func(ctx context.Context) error {
		id, err := c.target(ctx, "label", labelID)
		if err != nil {
			return err
		}
		return c.svc.DeleteLabel(ctx, id)
	})
}

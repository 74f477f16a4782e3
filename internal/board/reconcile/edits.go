package reconcile

import (
	"context"
	"fmt"

	"corkboard/internal/board/models"

	"github.com/sirupsen/logrus"
)

func invalid(err error) *Pending {
	return resolved(fmt.Errorf("%w: %w", ErrInvalid, err))
}

// PatchBoard edits the board header
func (c *Coordinator) PatchBoard(patch models.BoardPatch) *Pending {
	if patch.Title != nil {
		title, err := models.ValidateTitle(*patch.Title)
		if err != nil {
			return invalid(err)
		}
		patch.Title = &title
	}
	if !c.apply(func() bool { return c.store.PatchBoard(patch) }) {
		return resolved(ErrStale)
	}
	return c.persist("update-board", nil, func(ctx context.Context) error {
		_, err := c.svc.UpdateBoard(ctx, c.boardID, patch)
		return err
	})
}

// CreateList appends a list under a provisional id and swaps in the
// service's id once it is confirmed
func (c *Coordinator) CreateList(title string) *Pending {
	title, err := models.ValidateTitle(title)
	if err != nil {
		return invalid(err)
	}

	tempID := provisionalID()
	list := models.List{ID: tempID, Title: title, Cards: []models.Card{}}
	c.track(tempID)
	if !c.apply(func() bool { return c.store.InsertList(-1, list) }) {
		c.settle(tempID, "")
		return resolved(ErrStale)
	}

	return c.persist("create-list", logrus.Fields{"list": tempID}, func(ctx context.Context) error {
		created, err := c.svc.CreateList(ctx, c.boardID, title)
		if err != nil {
			c.settle(tempID, "")
			return err
		}
		return c.created("list", tempID, created.ID, func() bool { return c.store.ReplaceListHeader(tempID, created) })
	})
}

// PatchList edits a list's title or color
func (c *Coordinator) PatchList(listID string, patch models.ListPatch) *Pending {
	if patch.Title != nil {
		title, err := models.ValidateTitle(*patch.Title)
		if err != nil {
			return invalid(err)
		}
		patch.Title = &title
	}
	if !c.apply(func() bool { return c.store.PatchList(listID, patch) }) {
		return resolved(ErrStale)
	}
	return c.persist("update-list", logrus.Fields{"list": listID}, func(ctx context.Context) error {
		id, err := c.target(ctx, "list", listID)
		if err != nil {
			return err
		}
		_, err = c.svc.UpdateList(ctx, id, patch)
		return err
	})
}

// DeleteList removes a list and its cards before the service confirms
func (c *Coordinator) DeleteList(listID string) *Pending {
	if !c.apply(func() bool { return c.store.RemoveList(listID) }) {
		return resolved(ErrStale)
	}
	return c.persist("delete-list", logrus.Fields{"list": listID}, func(ctx context.Context) error {
		id, err := c.target(ctx, "list", listID)
		if err != nil {
			return err
		}
		return c.svc.DeleteList(ctx, id)
	})
}

// CreateCard appends a card to the list under a provisional id
func (c *Coordinator) CreateCard(listID, title string) *Pending {
	title, err := models.ValidateTitle(title)
	if err != nil {
		return invalid(err)
	}

	tempID := provisionalID()
	card := models.Card{ID: tempID, Title: title, LabelIDs: []string{}, MemberIDs: []string{}, Checklists: []models.Checklist{}}
	c.track(tempID)
	if !c.apply(func() bool { return c.store.InsertCard(listID, -1, card) }) {
		c.settle(tempID, "")
		return resolved(ErrStale)
	}

	return c.persist("create-card", logrus.Fields{"list": listID, "card": tempID}, func(ctx context.Context) error {
		created, err := c.createCard(ctx, listID, title)
		if err != nil {
			c.settle(tempID, "")
			return err
		}
		return c.created("card", tempID, created.ID, func() bool { return c.store.ReplaceCard(tempID, created) })
	})
}

func (c *Coordinator) createCard(ctx context.Context, listID, title string) (models.Card, error) {
	id, err := c.target(ctx, "list", listID)
	if err != nil {
		return models.Card{}, err
	}
	return c.svc.CreateCard(ctx, id, title)
}

// PatchCard edits card fields. The payload is the patch itself, with any
// provisional label ids confirmed; no order is recomputed.
func (c *Coordinator) PatchCard(cardID string, patch models.CardPatch) *Pending {
	if patch.IsEmpty() {
		return resolved(nil)
	}
	if patch.Title != nil {
		title, err := models.ValidateTitle(*patch.Title)
		if err != nil {
			return invalid(err)
		}
		patch.Title = &title
	}
	if !c.apply(func() bool { return c.store.PatchCard(cardID, patch) }) {
		return resolved(ErrStale)
	}
	return c.persist("update-card", logrus.Fields{"card": cardID}, func(ctx context.Context) error {
		id, err := c.target(ctx, "card", cardID)
		if err != nil {
			return err
		}
		sent := patch
		sent.LabelIDs = c.confirmedIDs(ctx, patch.LabelIDs)
		_, err = c.svc.UpdateCard(ctx, id, sent)
		return err
	})
}

// ToggleCardLabel adds the label reference if missing, removes it otherwise
func (c *Coordinator) ToggleCardLabel(cardID, labelID string) *Pending {
	card, ok := c.store.Card(cardID)
	if !ok {
		return resolved(ErrStale)
	}
	return c.PatchCard(cardID, models.CardPatch{LabelIDs: toggle(card.LabelIDs, labelID)})
}

// ToggleCardMember adds the member reference if missing, removes it otherwise
func (c *Coordinator) ToggleCardMember(cardID, memberID string) *Pending {
	card, ok := c.store.Card(cardID)
	if !ok {
		return resolved(ErrStale)
	}
	return c.PatchCard(cardID, models.CardPatch{MemberIDs: toggle(card.MemberIDs, memberID)})
}

// ArchiveCard flips the archived flag through the dedicated endpoint
func (c *Coordinator) ArchiveCard(cardID string, archived bool) *Pending {
	patch := models.CardPatch{Archived: &archived}
	if !c.apply(func() bool { return c.store.PatchCard(cardID, patch) }) {
		return resolved(ErrStale)
	}
	return c.persist("archive-card", logrus.Fields{"card": cardID, "archived": archived}, func(ctx context.Context) error {
		id, err := c.target(ctx, "card", cardID)
		if err != nil {
			return err
		}
		return c.svc.ArchiveCard(ctx, id, archived)
	})
}

// DeleteCard removes the card before the service confirms
func (c *Coordinator) DeleteCard(cardID string) *Pending {
	if !c.apply(func() bool { return c.store.RemoveCard(cardID) }) {
		return resolved(ErrStale)
	}
	return c.persist("delete-card", logrus.Fields{"card": cardID}, func(ctx context.Context) error {
		id, err := c.target(ctx, "card", cardID)
		if err != nil {
			return err
		}
		return c.svc.DeleteCard(ctx, id)
	})
}

func toggle(ids []string, id string) []string {
	out := make([]string, 0, len(ids)+1)
	found := false
	for _, v := range ids {
		if v == id {
			found = true
			continue
		}
		out = append(out, v)
	}
	if !found {
		out = append(out, id)
	}
	return out
}

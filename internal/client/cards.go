package client

import (
	"context"
	"net/http"
	"net/url"

	"corkboard/internal/board/models"
)

// Card fetches a single card
func (c *Client) Card(ctx context.Context, id string) (models.Card, error) {
	var card models.Card
	if err := c.do(ctx, http.MethodGet, "/cards/"+url.PathEscape(id), nil, &card); err != nil {
		return models.Card{}, err
	}
	return card, nil
}

// CreateCard appends a card to a list
func (c *Client) CreateCard(ctx context.Context, listID, title string) (models.Card, error) {
	body := map[string]string{"title": title, "listId": listID}
	var card models.Card
	if err := c.do(ctx, http.MethodPost, "/cards", body, &card); err != nil {
		return models.Card{}, err
	}
	return card, nil
}

// UpdateCard sends the changed fields of a card
func (c *Client) UpdateCard(ctx context.Context, id string, patch models.CardPatch) (models.Card, error) {
	var card models.Card
	if err := c.do(ctx, http.MethodPut, "/cards/"+url.PathEscape(id), patch, &card); err != nil {
		return models.Card{}, err
	}
	return card, nil
}

// DeleteCard removes a card
func (c *Client) DeleteCard(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/cards/"+url.PathEscape(id), nil, nil)
}

// ArchiveCard sets or clears the archived flag
func (c *Client) ArchiveCard(ctx context.Context, id string, archived bool) error {
	body := map[string]bool{"archived": archived}
	return c.do(ctx, http.MethodPut, "/cards/"+url.PathEscape(id)+"/archive", body, nil)
}

// ReorderCards sends the destination list's full card order. When the lists
// differ, cards not yet in the destination are moved over from the source.
func (c *Client) ReorderCards(ctx context.Context, sourceListID, destListID string, cardIDs []string) error {
	body := struct {
		SourceListID      string   `json:"sourceListId"`
		DestinationListID string   `json:"destinationListId"`
		CardIDs           []string `json:"cardIds"`
	}{sourceListID, destListID, cardIDs}
	return c.do(ctx, http.MethodPut, "/cards/reorder", body, nil)
}

package client

import (
	"context"
	"net/http"
	"net/url"

	"corkboard/internal/board/models"
)

func (c *Client) CreateChecklist(ctx context.Context, cardID, title string) (models.Checklist, error) {
	body := map[string]string{"cardId": cardID, "title": title}
	var cl models.Checklist
	if err := c.do(ctx, http.MethodPost, "/checklists", body, &cl); err != nil {
		return models.Checklist{}, err
	}
	return cl, nil
}

func (c *Client) UpdateChecklist(ctx context.Context, id, title string) (models.Checklist, error) {
	body := map[string]string{"title": title}
	var cl models.Checklist
	if err := c.do(ctx, http.MethodPut, "/checklists/"+url.PathEscape(id), body, &cl); err != nil {
		return models.Checklist{}, err
	}
	return cl, nil
}

func (c *Client) DeleteChecklist(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/checklists/"+url.PathEscape(id), nil, nil)
}

func (c *Client) AddChecklistItem(ctx context.Context, checklistID, text string) (models.ChecklistItem, error) {
	body := map[string]string{"text": text}
	var item models.ChecklistItem
	if err := c.do(ctx, http.MethodPost, "/checklists/"+url.PathEscape(checklistID)+"/items", body, &item); err != nil {
		return models.ChecklistItem{}, err
	}
	return item, nil
}

func (c *Client) UpdateChecklistItem(ctx context.Context, itemID string, patch models.ItemPatch) (models.ChecklistItem, error) {
	var item models.ChecklistItem
	if err := c.do(ctx, http.MethodPut, "/checklists/items/"+url.PathEscape(itemID), patch, &item); err != nil {
		return models.ChecklistItem{}, err
	}
	return item, nil
}

func (c *Client) DeleteChecklistItem(ctx context.Context, itemID string) error {
	return c.do(ctx, http.MethodDelete, "/checklists/items/"+url.PathEscape(itemID), nil, nil)
}

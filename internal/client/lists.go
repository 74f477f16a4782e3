package client

import (
	"context"
	"net/http"
	"net/url"

	"corkboard/internal/board/models"
)

// CreateList appends a list to a board
func (c *Client) CreateList(ctx context.Context, boardID, title string) (models.List, error) {
	body := map[string]string{"title": title, "boardId": boardID}
	var l models.List
	if err := c.do(ctx, http.MethodPost, "/lists", body, &l); err != nil {
		return models.List{}, err
	}
	return l, nil
}

// UpdateList changes a list's title or color
func (c *Client) UpdateList(ctx context.Context, id string, patch models.ListPatch) (models.List, error) {
	var l models.List
	if err := c.do(ctx, http.MethodPut, "/lists/"+url.PathEscape(id), patch, &l); err != nil {
		return models.List{}, err
	}
	return l, nil
}

// DeleteList removes a list and its cards
func (c *Client) DeleteList(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/lists/"+url.PathEscape(id), nil, nil)
}

// ReorderLists sends the board's full list order
func (c *Client) ReorderLists(ctx context.Context, boardID string, listIDs []string) error {
	body := struct {
		BoardID string   `json:"boardId"`
		ListIDs []string `json:"listIds"`
	}{boardID, listIDs}
	return c.do(ctx, http.MethodPut, "/lists/reorder", body, nil)
}

package client

import (
	"context"
	"net/http"
	"net/url"

	"corkboard/internal/board/models"
)

// CreateLabel defines a label on a board
func (c *Client) CreateLabel(ctx context.Context, boardID, name, color string) (models.Label, error) {
	body := map[string]string{"boardId": boardID, "name": name, "color": color}
	var l models.Label
	if err := c.do(ctx, http.MethodPost, "/labels", body, &l); err != nil {
		return models.Label{}, err
	}
	return l, nil
}

// UpdateLabel renames or recolors a label
func (c *Client) UpdateLabel(ctx context.Context, id string, patch models.LabelPatch) (models.Label, error) {
	var l models.Label
	if err := c.do(ctx, http.MethodPut, "/labels/"+url.PathEscape(id), patch, &l); err != nil {
		return models.Label{}, err
	}
	return l, nil
}

// DeleteLabel removes a label from its board
func (c *Client) DeleteLabel(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/labels/"+url.PathEscape(id), nil, nil)
}

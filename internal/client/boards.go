package client

import (
	"context"
	"net/http"
	"net/url"

	"corkboard/internal/board/models"
)

// SearchHit is a card matched by Search together with its board
type SearchHit struct {
	BoardID    string      `json:"boardId"`
	BoardTitle string      `json:"boardTitle"`
	ListTitle  string      `json:"listTitle"`
	Card       models.Card `json:"card"`
}

// Boards lists every board
func (c *Client) Boards(ctx context.Context) ([]models.BoardSummary, error) {
	var boards []models.BoardSummary
	if err := c.do(ctx, http.MethodGet, "/boards", nil, &boards); err != nil {
		return nil, err
	}
	return boards, nil
}

// Board fetches a board with its lists, cards and labels
func (c *Client) Board(ctx context.Context, id string) (models.Board, error) {
	var b models.Board
	if err := c.do(ctx, http.MethodGet, "/boards/"+url.PathEscape(id), nil, &b); err != nil {
		return models.Board{}, err
	}
	return b, nil
}

// CreateBoard creates an empty board
func (c *Client) CreateBoard(ctx context.Context, title, background string) (models.Board, error) {
	body := map[string]string{"title": title, "background": background}
	var b models.Board
	if err := c.do(ctx, http.MethodPost, "/boards", body, &b); err != nil {
		return models.Board{}, err
	}
	return b, nil
}

// UpdateBoard changes the board title or background
func (c *Client) UpdateBoard(ctx context.Context, id string, patch models.BoardPatch) (models.BoardSummary, error) {
	var s models.BoardSummary
	if err := c.do(ctx, http.MethodPut, "/boards/"+url.PathEscape(id), patch, &s); err != nil {
		return models.BoardSummary{}, err
	}
	return s, nil
}

// DeleteBoard removes a board
func (c *Client) DeleteBoard(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/boards/"+url.PathEscape(id), nil, nil)
}

// Labels returns the labels defined on a board
func (c *Client) Labels(ctx context.Context, boardID string) ([]models.Label, error) {
	var labels []models.Label
	if err := c.do(ctx, http.MethodGet, "/boards/"+url.PathEscape(boardID)+"/labels", nil, &labels); err != nil {
		return nil, err
	}
	return labels, nil
}

// Search finds cards by title across all boards
func (c *Client) Search(ctx context.Context, query string) ([]SearchHit, error) {
	var hits []SearchHit
	if err := c.do(ctx, http.MethodGet, "/search?q="+url.QueryEscape(query), nil, &hits); err != nil {
		return nil, err
	}
	return hits, nil
}

// Package server is an in-memory board service speaking the same REST
// contract the client consumes. It backs `corkboard serve` and the client
// integration tests.
package server

import (
	"errors"
	"io"
	"net/http"
	"time"

	"corkboard/internal/board/models"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"
)

const maxBodySize = 1 << 20

// New returns an echo instance with every route registered under /api
func New(repo *Repository, logger *log.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))
	e.Use(requestLogger(logger))
	e.HTTPErrorHandler = errorHandler

	Register(e.Group("/api"), repo)
	return e
}

// Register wires up all API routes on the group
func Register(g *echo.Group, repo *Repository) {
	h := &handlers{repo: repo}

	g.GET("/boards", h.listBoards)
	g.POST("/boards", h.createBoard)
	g.GET("/boards/:id", h.getBoard)
	g.PUT("/boards/:id", h.updateBoard)
	g.DELETE("/boards/:id", h.deleteBoard)
	g.GET("/boards/:id/labels", h.boardLabels)

	g.POST("/lists", h.createList)
	g.PUT("/lists/reorder", h.reorderLists)
	g.PUT("/lists/:id", h.updateList)
	g.DELETE("/lists/:id", h.deleteList)

	g.POST("/cards", h.createCard)
	g.PUT("/cards/reorder", h.reorderCards)
	g.GET("/cards/:id", h.getCard)
	g.PUT("/cards/:id", h.updateCard)
	g.PUT("/cards/:id/archive", h.archiveCard)
	g.DELETE("/cards/:id", h.deleteCard)

	g.POST("/labels", h.createLabel)
	g.PUT("/labels/:id", h.updateLabel)
	g.DELETE("/labels/:id", h.deleteLabel)

	g.GET("/members", h.listMembers)
	g.GET("/members/:id", h.getMember)

	g.POST("/checklists", h.createChecklist)
	g.PUT("/checklists/items/:itemId", h.updateChecklistItem)
	g.DELETE("/checklists/items/:itemId", h.deleteChecklistItem)
	g.PUT("/checklists/:id", h.updateChecklist)
	g.DELETE("/checklists/:id", h.deleteChecklist)
	g.POST("/checklists/:id/items", h.addChecklistItem)

	g.GET("/search", h.search)
}

type errorBody struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// errorHandler renders every failure as {"error":{"message":...}}
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := err.Error()

	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		status = he.Code
		if m, ok := he.Message.(string); ok {
			message = m
		}
	case errors.Is(err, ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ErrInvalid):
		status = http.StatusBadRequest
	}

	var body errorBody
	body.Error.Message = message
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	_ = c.JSON(status, body)
}

func requestLogger(logger *log.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			logger.WithFields(log.Fields{
				"method":   c.Request().Method,
				"path":     c.Path(),
				"status":   c.Response().Status,
				"duration": time.Since(start),
			}).Debug("request")
			return nil
		}
	}
}

// decode reads a JSON body into v
func decode(c echo.Context, v any) error {
	lr := io.LimitReader(c.Request().Body, maxBodySize)
	if err := sonic.ConfigStd.NewDecoder(lr).Decode(v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	return nil
}

type handlers struct {
	repo *Repository
}

// Boards

func (h *handlers) listBoards(c echo.Context) error {
	return c.JSON(http.StatusOK, h.repo.Boards())
}

func (h *handlers) getBoard(c echo.Context) error {
	b, err := h.repo.Board(c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, b)
}

func (h *handlers) createBoard(c echo.Context) error {
	var req struct {
		Title      string `json:"title"`
		Background string `json:"background"`
	}
	if err := decode(c, &req); err != nil {
		return err
	}
	b, err := h.repo.CreateBoard(req.Title, req.Background)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, b)
}

func (h *handlers) updateBoard(c echo.Context) error {
	var patch models.BoardPatch
	if err := decode(c, &patch); err != nil {
		return err
	}
	summary, err := h.repo.UpdateBoard(c.Param("id"), patch)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summary)
}

func (h *handlers) deleteBoard(c echo.Context) error {
	if err := h.repo.DeleteBoard(c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *handlers) boardLabels(c echo.Context) error {
	labels, err := h.repo.Labels(c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, labels)
}

// Lists

func (h *handlers) createList(c echo.Context) error {
	var req struct {
		Title   string `json:"title"`
		BoardID string `json:"boardId"`
	}
	if err := decode(c, &req); err != nil {
		return err
	}
	l, err := h.repo.CreateList(req.BoardID, req.Title)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, l)
}

func (h *handlers) updateList(c echo.Context) error {
	var patch models.ListPatch
	if err := decode(c, &patch); err != nil {
		return err
	}
	l, err := h.repo.UpdateList(c.Param("id"), patch)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, l)
}

func (h *handlers) deleteList(c echo.Context) error {
	if err := h.repo.DeleteList(c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *handlers) reorderLists(c echo.Context) error {
	var req struct {
		BoardID string   `json:"boardId"`
		ListIDs []string `json:"listIds"`
	}
	if err := decode(c, &req); err != nil {
		return err
	}
	if err := h.repo.ReorderLists(req.BoardID, req.ListIDs); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Cards

func (h *handlers) getCard(c echo.Context) error {
	card, err := h.repo.Card(c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, card)
}

func (h *handlers) createCard(c echo.Context) error {
	var req struct {
		Title  string `json:"title"`
		ListID string `json:"listId"`
	}
	if err := decode(c, &req); err != nil {
		return err
	}
	card, err := h.repo.CreateCard(req.ListID, req.Title)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, card)
}

func (h *handlers) updateCard(c echo.Context) error {
	var patch models.CardPatch
	if err := decode(c, &patch); err != nil {
		return err
	}
	card, err := h.repo.UpdateCard(c.Param("id"), patch)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, card)
}

func (h *handlers) archiveCard(c echo.Context) error {
	var req struct {
		Archived bool `json:"archived"`
	}
	if err := decode(c, &req); err != nil {
		return err
	}
	card, err := h.repo.ArchiveCard(c.Param("id"), req.Archived)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, card)
}

func (h *handlers) deleteCard(c echo.Context) error {
	if err := h.repo.DeleteCard(c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *handlers) reorderCards(c echo.Context) error {
	var req struct {
		SourceListID      string   `json:"sourceListId"`
		DestinationListID string   `json:"destinationListId"`
		CardIDs           []string `json:"cardIds"`
	}
	if err := decode(c, &req); err != nil {
		return err
	}
	if err := h.repo.ReorderCards(req.SourceListID, req.DestinationListID, req.CardIDs); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *handlers) search(c echo.Context) error {
	return c.JSON(http.StatusOK, h.repo.Search(c.QueryParam("q")))
}

// Labels

func (h *handlers) createLabel(c echo.Context) error {
	var req struct {
		BoardID string `json:"boardId"`
		Name    string `json:"name"`
		Color   string `json:"color"`
	}
	if err := decode(c, &req); err != nil {
		return err
	}
	label, err := h.repo.CreateLabel(req.BoardID, req.Name, req.Color)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, label)
}

func (h *handlers) updateLabel(c echo.Context) error {
	var patch models.LabelPatch
	if err := decode(c, &patch); err != nil {
		return err
	}
	label, err := h.repo.UpdateLabel(c.Param("id"), patch)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, label)
}

func (h *handlers) deleteLabel(c echo.Context) error {
	if err := h.repo.DeleteLabel(c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Members

func (h *handlers) listMembers(c echo.Context) error {
	return c.JSON(http.StatusOK, h.repo.Members())
}

func (h *handlers) getMember(c echo.Context) error {
	m, err := h.repo.Member(c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, m)
}

// Checklists

func (h *handlers) createChecklist(c echo.Context) error {
	var req struct {
		CardID string `json:"cardId"`
		Title  string `json:"title"`
	}
	if err := decode(c, &req); err != nil {
		return err
	}
	cl, err := h.repo.CreateChecklist(req.CardID, req.Title)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, cl)
}

func (h *handlers) updateChecklist(c echo.Context) error {
	var req struct {
		Title string `json:"title"`
	}
	if err := decode(c, &req); err != nil {
		return err
	}
	cl, err := h.repo.UpdateChecklist(c.Param("id"), req.Title)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cl)
}

func (h *handlers) deleteChecklist(c echo.Context) error {
	if err := h.repo.DeleteChecklist(c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *handlers) addChecklistItem(c echo.Context) error {
	var req struct {
		Text string `json:"text"`
	}
	if err := decode(c, &req); err != nil {
		return err
	}
	item, err := h.repo.AddChecklistItem(c.Param("id"), req.Text)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, item)
}

func (h *handlers) updateChecklistItem(c echo.Context) error {
	var patch models.ItemPatch
	if err := decode(c, &patch); err != nil {
		return err
	}
	item, err := h.repo.UpdateChecklistItem(c.Param("itemId"), patch)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, item)
}

func (h *handlers) deleteChecklistItem(c echo.Context) error {
	if err := h.repo.DeleteChecklistItem(c.Param("itemId")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

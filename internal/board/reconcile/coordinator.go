// Package reconcile applies board mutations optimistically, persists them
// through the board service and resynchronizes from the service whenever a
// call fails.
package reconcile

import (
	"context"
	"fmt"
	"sync"

	"corkboard/internal/board/gesture"
	"corkboard/internal/board/models"
	"corkboard/internal/board/store"
	"corkboard/internal/logs"

	"github.com/sirupsen/logrus"
)

// Service is the slice of the board service the coordinator persists through
type Service interface {
	Board(ctx context.Context, id string) (models.Board, error)
	UpdateBoard(ctx context.Context, id string, patch models.BoardPatch) (models.BoardSummary, error)

	CreateList(ctx context.Context, boardID, title string) (models.List, error)
	UpdateList(ctx context.Context, id string, patch models.ListPatch) (models.List, error)
	DeleteList(ctx context.Context, id string) error
	ReorderLists(ctx context.Context, boardID string, listIDs []string) error

	CreateCard(ctx context.Context, listID, title string) (models.Card, error)
	UpdateCard(ctx context.Context, id string, patch models.CardPatch) (models.Card, error)
	DeleteCard(ctx context.Context, id string) error
	ArchiveCard(ctx context.Context, id string, archived bool) error
	ReorderCards(ctx context.Context, sourceListID, destListID string, cardIDs []string) error

	CreateChecklist(ctx context.Context, cardID, title string) (models.Checklist, error)
	DeleteChecklist(ctx context.Context, id string) error
	AddChecklistItem(ctx context.Context, checklistID, text string) (models.ChecklistItem, error)
	UpdateChecklistItem(ctx context.Context, itemID string, patch models.ItemPatch) (models.ChecklistItem, error)
	DeleteChecklistItem(ctx context.Context, itemID string) error

	CreateLabel(ctx context.Context, boardID, name, color string) (models.Label, error)
	UpdateLabel(ctx context.Context, id string, patch models.LabelPatch) (models.Label, error)
	DeleteLabel(ctx context.Context, id string) error
}

// Options tunes the coordinator
type Options struct {
	// SerializeWrites sends persistence calls one at a time, in submission
	// order. Off by default: every change is sent as soon as it is applied.
	SerializeWrites bool
}

// Coordinator owns the store of one open board
type Coordinator struct {
	svc     Service
	store   *store.Store
	boardID string

	applyMu sync.Mutex
	serial  bool
	queueMu sync.Mutex
	tail    chan struct{}
	idsMu   sync.Mutex
	ids     map[string]*confirmation
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
	log     *logrus.Entry
}

// Open fetches the board and returns a coordinator bound to it
func Open(ctx context.Context, svc Service, boardID string, opts Options) (*Coordinator, error) {
	board, err := svc.Board(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("load board %s: %w", boardID, err)
	}

	s := store.New(boardID)
	if err := s.Replace(board); err != nil {
		return nil, err
	}

	bg, cancel := context.WithCancel(context.Background())
	c := &Coordinator{
		svc:     svc,
		store:   s,
		boardID: boardID,
		ctx:     bg,
		cancel:  cancel,
		serial:  opts.SerializeWrites,
		ids:     make(map[string]*confirmation),
		log:     logs.Logger.WithField("board", boardID),
	}

	c.log.Debug("board opened")
	return c, nil
}

// Close waits for in-flight persistence to settle and tears down the store
func (c *Coordinator) Close() {
	c.wg.Wait()
	c.cancel()
	c.store.Close()
	c.log.Debug("board closed")
}

// BoardID returns the id of the open board
func (c *Coordinator) BoardID() string {
	return c.boardID
}

// Store exposes the underlying store for read access
func (c *Coordinator) Store() *store.Store {
	return c.store
}

// Snapshot returns a copy of the current board
func (c *Coordinator) Snapshot() models.Board {
	return c.store.Snapshot()
}

// apply runs a store mutation and the payload derivation that depends on it
// without letting a concurrent resync slip in between
func (c *Coordinator) apply(fn func() bool) bool {
	c.applyMu.Lock()
	defer c.applyMu.Unlock()
	return fn()
}

// persist runs call in the background. On failure the store is replaced by
// a fresh fetch before the returned Pending resolves.
func (c *Coordinator) persist(op string, fields logrus.Fields, call func(ctx context.Context) error) *Pending {
	p := newPending()
	entry := c.log.WithField("op", op).WithFields(fields)
	prev, done := c.enqueue()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		err := c.send(prev, done, call)
		if err == nil {
			entry.Debug("persisted")
			p.resolve(nil)
			return
		}

		entry.WithError(err).Warn("persist failed, resyncing")
		if rerr := c.resync(); rerr != nil {
			entry.WithError(rerr).Error("resync failed")
			p.resolve(fmt.Errorf("%w: %s: %w (resync: %v)", ErrReverted, op, err, rerr))
			return
		}
		p.resolve(fmt.Errorf("%w: %s: %w", ErrReverted, op, err))
	}()

	return p
}

// enqueue reserves the next slot in submission order. Without
// SerializeWrites both channels are nil.
func (c *Coordinator) enqueue() (prev <-chan struct{}, done chan struct{}) {
	if !c.serial {
		return nil, nil
	}
	c.queueMu.Lock()
	defer c.queueMu.Unlock()
	prev = c.tail
	done = make(chan struct{})
	c.tail = done
	return prev, done
}

func (c *Coordinator) send(prev <-chan struct{}, done chan struct{}, call func(ctx context.Context) error) error {
	if done != nil {
		defer close(done)
	}
	if prev != nil {
		<-prev
	}
	return call(c.ctx)
}

func (c *Coordinator) resync() error {
	board, err := c.svc.Board(c.ctx, c.boardID)
	if err != nil {
		return err
	}

	c.applyMu.Lock()
	defer c.applyMu.Unlock()
	return c.store.Replace(board)
}

// Resync discards local state and reloads the board from the service
func (c *Coordinator) Resync() *Pending {
	p := newPending()
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		p.resolve(c.resync())
	}()
	return p
}

// Dispatch applies a structural intent produced by the gesture translator
func (c *Coordinator) Dispatch(intent gesture.Intent) *Pending {
	switch in := intent.(type) {
	case gesture.ListReorder:
		return c.MoveList(in.FromIndex, in.ToIndex)
	case gesture.CardMove:
		return c.MoveCard(in)
	default:
		return resolved(fmt.Errorf("%w: unsupported intent %T", ErrInvalid, intent))
	}
}

// MoveList reorders lists and persists the full list order. A move that
// lands the list where it already is settles at once without a call.
func (c *Coordinator) MoveList(fromIndex, toIndex int) *Pending {
	var ids []string
	var unchanged bool
	ok := c.apply(func() bool {
		if !c.store.MoveList(fromIndex, toIndex) {
			unchanged = fromIndex >= 0 && fromIndex < len(c.store.ListIDs())
			return false
		}
		ids = c.store.ListIDs()
		return true
	})
	if unchanged {
		return resolved(nil)
	}
	if !ok {
		return resolved(ErrStale)
	}

	return c.persist("reorder-lists", logrus.Fields{"from": fromIndex, "to": toIndex}, func(ctx context.Context) error {
		return c.svc.ReorderLists(ctx, c.boardID, c.confirmedIDs(ctx, ids))
	})
}

// MoveCard moves a card and persists the destination list's full card order.
// Ids still provisional when the call is sent are swapped for the service's
// ids once their create settles, or left out if it failed.
func (c *Coordinator) MoveCard(m gesture.CardMove) *Pending {
	var ids []string
	var unchanged bool
	ok := c.apply(func() bool {
		if !c.store.MoveCard(m.CardID, m.FromListID, m.ToListID, m.FromIndex, m.ToIndex) {
			unchanged = m.SameList() && cardAt(c.store.CardIDs(m.FromListID), m.FromIndex, m.CardID)
			return false
		}
		ids = c.store.CardIDs(m.ToListID)
		return true
	})
	if unchanged {
		return resolved(nil)
	}
	if !ok {
		return resolved(ErrStale)
	}

	fields := logrus.Fields{"card": m.CardID, "from": m.FromListID, "to": m.ToListID}
	return c.persist("reorder-cards", fields, func(ctx context.Context) error {
		from, err := c.target(ctx, "list", m.FromListID)
		if err != nil {
			return err
		}
		to, err := c.target(ctx, "list", m.ToListID)
		if err != nil {
			return err
		}
		return c.svc.ReorderCards(ctx, from, to, c.confirmedIDs(ctx, ids))
	})
}

func cardAt(ids []string, i int, cardID string) bool {
	return i >= 0 && i < len(ids) && (cardID == "" || ids[i] == cardID)
}

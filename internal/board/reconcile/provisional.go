package reconcile

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

const provisionalPrefix = "tmp-"

// provisionalID names an entity until the service assigns its real id
func provisionalID() string {
	return provisionalPrefix + uuid.NewString()
}

func isProvisional(id string) bool {
	return strings.HasPrefix(id, provisionalPrefix)
}

// confirmation settles once the create behind a provisional id returns.
// id is empty when the create failed.
type confirmation struct {
	done chan struct{}
	id   string
}

// track registers a provisional id. It must be called before the id
// becomes visible in the store.
func (c *Coordinator) track(tempID string) {
	c.idsMu.Lock()
	defer c.idsMu.Unlock()
	c.ids[tempID] = &confirmation{done: make(chan struct{})}
}

// settle records the service's id for tempID, or "" when the create failed
func (c *Coordinator) settle(tempID, realID string) {
	c.idsMu.Lock()
	defer c.idsMu.Unlock()
	conf, ok := c.ids[tempID]
	if !ok {
		return
	}
	select {
	case <-conf.done:
		return
	default:
	}
	conf.id = realID
	close(conf.done)
}

// confirmedID maps an id captured at apply time to the id the service
// knows. Provisional ids wait for their create; ok is false when the create
// failed or ctx ended first.
func (c *Coordinator) confirmedID(ctx context.Context, id string) (string, bool) {
	if !isProvisional(id) {
		return id, true
	}
	c.idsMu.Lock()
	conf, ok := c.ids[id]
	c.idsMu.Unlock()
	if !ok {
		return "", false
	}

	select {
	case <-conf.done:
		return conf.id, conf.id != ""
	case <-ctx.Done():
		return "", false
	}
}

// confirmedIDs maps every id and drops the ones whose create failed
func (c *Coordinator) confirmedIDs(ctx context.Context, ids []string) []string {
	if ids == nil {
		return nil
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if got, ok := c.confirmedID(ctx, id); ok {
			out = append(out, got)
		}
	}
	return out
}

// target resolves the id a call is addressed to
func (c *Coordinator) target(ctx context.Context, kind, id string) (string, error) {
	got, ok := c.confirmedID(ctx, id)
	if !ok {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		return "", &unconfirmedError{kind: kind, id: id}
	}
	return got, nil
}

type unconfirmedError struct {
	kind, id string
}

func (e *unconfirmedError) Error() string {
	return e.kind + " " + e.id + " was never created"
}

// created swaps a confirmed id into the store. When the provisional entity
// is already gone, because a resync ran while the create was in flight, the
// board is fetched again so the store holds what the service now has.
func (c *Coordinator) created(kind, tempID, realID string, swap func() bool) error {
	c.settle(tempID, realID)
	if c.apply(swap) {
		return nil
	}
	c.log.WithField(kind, realID).Debug("provisional entity gone, resyncing")
	return c.resync()
}

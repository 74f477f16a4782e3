package reconcile

import (
	"context"
	"errors"
)

var (
	// ErrReverted wraps every persistence failure. When it is returned the
	// store already holds a freshly fetched snapshot.
	ErrReverted = errors.New("change reverted")

	// ErrStale means the intent referenced something that no longer exists;
	// nothing was applied and nothing was sent.
	ErrStale = errors.New("stale reference")

	// ErrInvalid means the intent was rejected before any optimistic apply
	ErrInvalid = errors.New("invalid change")
)

// Pending tracks one in-flight persistence call
type Pending struct {
	done chan struct{}
	err  error
}

func newPending() *Pending {
	return &Pending{done: make(chan struct{})}
}

func resolved(err error) *Pending {
	p := newPending()
	p.resolve(err)
	return p
}

func (p *Pending) resolve(err error) {
	p.err = err
	close(p.done)
}

// Done is closed once the service confirmed the change, or once the store
// was resynced after a failure
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Err returns the outcome. It is only meaningful after Done is closed.
func (p *Pending) Err() error {
	select {
	case <-p.done:
		return p.err
	default:
		return nil
	}
}

// Wait blocks until the change settles or ctx ends
func (p *Pending) Wait(ctx context.Context) error {
	select {
	case <-p.done:
		return p.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

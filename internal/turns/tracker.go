// Package turns tracks the in-flight turn of every session. Starting a turn
// cancels the previous one for the same session, and only the newest turn
// may deliver or record its reply.
package turns

import (
	"context"
	"sync"

	"go.uber.org/fx"
)

// Tracker is safe for concurrent use by every transport.
type Tracker struct {
	mu     sync.Mutex
	next   uint64
	active map[string]activeTurn
}

type activeTurn struct {
	id     uint64
	cancel context.CancelFunc
}

func NewTracker() *Tracker {
	return &Tracker{active: make(map[string]activeTurn)}
}

// Begin starts a turn for session and returns its context and id. The
// context is cancelled when a newer turn begins, on Cancel, or on Finish.
func (t *Tracker) Begin(parent context.Context, session string) (context.Context, uint64) {
	ctx, cancel := context.WithCancel(parent)

	t.mu.Lock()
	defer t.mu.Unlock()

	if prev, ok := t.active[session]; ok {
		prev.cancel()
	}
	t.next++
	t.active[session] = activeTurn{id: t.next, cancel: cancel}
	return ctx, t.next
}

// Current reports whether id is still the newest turn of session.
func (t *Tracker) Current(session string, id uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	turn, ok := t.active[session]
	return ok && turn.id == id
}

// Finish releases a turn. Finishing a superseded turn leaves the newer one alone.
func (t *Tracker) Finish(session string, id uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	turn, ok := t.active[session]
	if !ok || turn.id != id {
		return
	}
	turn.cancel()
	delete(t.active, session)
}

// Cancel aborts whatever turn session has in flight. It reports whether
// there was one.
func (t *Tracker) Cancel(session string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	turn, ok := t.active[session]
	if !ok {
		return false
	}
	turn.cancel()
	delete(t.active, session)
	return true
}

// Len returns the number of sessions with a turn in flight.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.active)
}

func Module() fx.Option {
	return fx.Module(
		"turns",
		fx.Provide(NewTracker),
	)
}

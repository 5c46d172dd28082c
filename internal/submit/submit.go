// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package submit owns a form's state and runs its submit lifecycle.
package submit

import (
	"context"
	"errors"
	"sync"

	"github.com/pdiddy/research-console/internal/client"
	"github.com/pdiddy/research-console/internal/form"
	"github.com/pdiddy/research-console/pkg/types"
)

// ErrInFlight is returned by Submit while an earlier submission is still
// outstanding.
var ErrInFlight = errors.New("a submission is already in flight")

// Poster performs the single outbound research call.
type Poster interface {
	Submit(ctx context.Context, req types.ResearchRequest) (types.ResearchResult, error)
}

// Handler holds the current form state and applies field edits and
// submissions to it. All transitions are serialized; observers see every
// intermediate state in order.
type Handler struct {
	poster Poster

	mu        sync.Mutex
	state     form.State
	observers []func(form.State)
}

// New returns a Handler starting from initial.
func New(poster Poster, initial form.State) *Handler {
	return &Handler{poster: poster, state: initial}
}

// State returns the current state.
func (h *Handler) State() form.State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Subscribe registers fn to be called after every transition. fn is called
// with the handler's lock held and must not call back into the Handler.
func (h *Handler) Subscribe(fn func(form.State)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.observers = append(h.observers, fn)
}

// Update replaces a single field. Edits are accepted while a submission is
// in flight; they do not affect the request already sent.
func (h *Handler) Update(f form.Field, value string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	next, err := h.state.WithField(f, value)
	if err != nil {
		return err
	}
	h.apply(next)
	return nil
}

// Submit sends the parameters held at the moment of the call and records
// the outcome. Loading is set before the call starts and cleared after it
// ends on every path. A second Submit while one is outstanding returns
// ErrInFlight without touching state.
func (h *Handler) Submit(ctx context.Context) (form.State, error) {
	h.mu.Lock()
	if h.state.Loading {
		h.mu.Unlock()
		return form.State{}, ErrInFlight
	}
	snapshot := h.state.Params
	h.apply(h.state.Begin())
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		h.apply(h.state.Settle())
		h.mu.Unlock()
	}()

	result, err := h.poster.Submit(ctx, snapshot)

	h.mu.Lock()
	defer h.mu.Unlock()
	if err != nil {
		h.apply(h.state.WithError(client.Message(err, form.MsgGenericFailure, form.MsgConnectivity)))
	} else {
		h.apply(h.state.WithResult(result))
	}
	return h.state.Settle(), err
}

// apply installs next and notifies observers. Callers hold h.mu.
func (h *Handler) apply(next form.State) {
	h.state = next
	for _, fn := range h.observers {
		fn(next)
	}
}

// Package visitor keeps per-visitor state objects and serializes every
// operation for the same visitor session.
package visitor

import (
	"context"
	"strings"
	"sync"
	"time"

	pkgerrors "github.com/bhargavsatvara/zyqora-storefront/pkg/errors"
)

type entry[T any] struct {
	mu    sync.Mutex
	value T
	built bool

	// guarded by Registry.mu
	stale    bool
	refs     int
	lastUsed time.Time
}

// Registry lazily builds one T per session id. Calls for the same session run
// one at a time; different sessions proceed in parallel.
type Registry[T any] struct {
	mu      sync.Mutex
	entries map[string]*entry[T]
	build   func(sessionID string) T
	now     func() time.Time
}

func NewRegistry[T any](build func(sessionID string) T) *Registry[T] {
	return &Registry[T]{
		entries: make(map[string]*entry[T]),
		build:   build,
		now:     time.Now,
	}
}

// With runs fn against the session's state while holding the session lock.
// fresh is true when the state was just built or rebuilt after Invalidate.
func (r *Registry[T]) With(ctx context.Context, sessionID string, fn func(value T, fresh bool) error) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "visitor session is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	e := r.acquire(sessionID)
	defer r.release(e)
	e.mu.Lock()
	defer e.mu.Unlock()

	fresh := false
	if r.takeStale(e) || !e.built {
		e.value = r.build(sessionID)
		e.built, fresh = true, true
	}
	return fn(e.value, fresh)
}

func (r *Registry[T]) acquire(sessionID string) *entry[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[sessionID]
	if !ok {
		e = &entry[T]{}
		r.entries[sessionID] = e
	}
	e.refs++
	e.lastUsed = r.now()
	return e
}

func (r *Registry[T]) release(e *entry[T]) {
	r.mu.Lock()
	e.refs--
	e.lastUsed = r.now()
	r.mu.Unlock()
}

func (r *Registry[T]) takeStale(e *entry[T]) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	stale := e.stale
	e.stale = false
	return stale
}

// Invalidate forces the next call for sessionID to rebuild its state. It does
// not wait for an in-flight call to finish.
func (r *Registry[T]) Invalidate(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[sessionID]; ok {
		e.stale = true
	}
}

// Sweep drops entries idle for longer than idle that are not in use and
// returns how many were removed.
func (r *Registry[T]) Sweep(idle time.Duration) int {
	cutoff := r.now().Add(-idle)
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, e := range r.entries {
		if e.refs > 0 || e.lastUsed.After(cutoff) {
			continue
		}
		delete(r.entries, id)
		removed++
	}
	return removed
}

// Len reports how many sessions currently hold state.
func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Package flush serializes persistence per aggregate id. The original editor
// debounced whole-aggregate autosaves, which can race two writes of the same
// timeline; here a later enqueue while a write is in flight coalesces into a
// single trailing write (last one wins), so at most one write per aggregate
// is ever outstanding.
//
// A failed write never diverges silently: the in-memory state stays the
// source of truth, the failure is logged and retained, and callers retry it
// explicitly through Flush.
package flush

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// WriteFunc performs one storage round-trip for an aggregate.
type WriteFunc func(ctx context.Context) error

type entry struct {
	inflight bool
	next     WriteFunc // trailing write, replaces any previously queued one
	dirty    WriteFunc // last failed write, kept for explicit retry
	lastErr  error
}

// Serializer runs at most one write per aggregate id at a time.
type Serializer struct {
	mu      sync.Mutex
	entries map[string]*entry
	wg      sync.WaitGroup
	log     zerolog.Logger
}

// New returns an empty serializer.
func New(log zerolog.Logger) *Serializer {
	return &Serializer{entries: make(map[string]*entry), log: log}
}

// Enqueue schedules w as the next write for the aggregate. If a write for the
// same id is already in flight, w replaces any previously queued trailing
// write and runs when the in-flight one finishes.
func (s *Serializer) Enqueue(id string, w WriteFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.entries[id]
	if e == nil {
		e = &entry{}
		s.entries[id] = e
	}
	if e.inflight {
		e.next = w
		return
	}
	e.inflight = true
	s.wg.Add(1)
	go s.run(id, w)
}

func (s *Serializer) run(id string, w WriteFunc) {
	defer s.wg.Done()
	for {
		err := w(context.Background())

		s.mu.Lock()
		e := s.entries[id]
		if err != nil {
			e.dirty = w
			e.lastErr = err
			s.log.Error().Err(err).Str("aggregate", id).Msg("persist failed; in-memory state retained, retry with flush")
		} else {
			e.dirty = nil
			e.lastErr = nil
		}
		if e.next == nil {
			e.inflight = false
			s.mu.Unlock()
			return
		}
		w = e.next
		e.next = nil
		s.mu.Unlock()
	}
}

// Err reports the last failed write's error for the aggregate, if any.
func (s *Serializer) Err(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e := s.entries[id]; e != nil {
		return e.lastErr
	}
	return nil
}

// Flush synchronously retries the aggregate's failed write, if one is
// retained. It returns nil when there is nothing to retry. The retry runs as
// the aggregate's in-flight write, so an Enqueue arriving during the retry
// coalesces behind it instead of racing it. When a newer write is already in
// flight it supersedes the failed one, which is simply dropped.
func (s *Serializer) Flush(ctx context.Context, id string) error {
	s.mu.Lock()
	e := s.entries[id]
	if e == nil || e.dirty == nil {
		s.mu.Unlock()
		return nil
	}
	if e.inflight {
		e.dirty = nil
		e.lastErr = nil
		s.mu.Unlock()
		return nil
	}
	w := e.dirty
	e.inflight = true
	s.mu.Unlock()

	err := w(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		e.lastErr = err
	} else {
		e.dirty = nil
		e.lastErr = nil
	}
	if next := e.next; next != nil {
		e.next = nil
		s.wg.Add(1)
		go s.run(id, next)
	} else {
		e.inflight = false
	}
	return err
}

// Wait blocks until every in-flight write has finished. Used on shutdown and
// by tests.
func (s *Serializer) Wait() {
	s.wg.Wait()
}

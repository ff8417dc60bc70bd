// Package memory provides an in-memory Store used by tests and local
// development. Values are deep-copied on the way in and out so callers can
// never mutate stored state through a returned pointer.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/recovera/timeline-service/internal/model"
	"github.com/recovera/timeline-service/internal/store"
)

// memStore keys every map on "<workspaceID>/<id>".
type memStore struct {
	mu        sync.RWMutex
	timelines map[string]*model.Timeline
	library   map[string]*model.Action
	customers map[string]*model.Customer
	segments  map[string]*model.CustomerSegment
	events    map[string]*model.CustomerTimelineEvent
}

// New returns an empty in-memory store.
func New() store.Store {
	return &memStore{
		timelines: make(map[string]*model.Timeline),
		library:   make(map[string]*model.Action),
		customers: make(map[string]*model.Customer),
		segments:  make(map[string]*model.CustomerSegment),
		events:    make(map[string]*model.CustomerTimelineEvent),
	}
}

func key(workspaceID, id string) string { return workspaceID + "/" + id }

func (s *memStore) Timelines() store.Timelines { return (*timelines)(s) }
func (s *memStore) Library() store.Library     { return (*library)(s) }
func (s *memStore) Customers() store.Customers { return (*customers)(s) }
func (s *memStore) Segments() store.Segments   { return (*segments)(s) }
func (s *memStore) Events() store.Events       { return (*events)(s) }

// Ping implements store.Pinger.
func (s *memStore) Ping(ctx context.Context) error { return nil }

// --- Timelines ---

type timelines memStore

func (t *timelines) Put(_ context.Context, tl *model.Timeline) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.timelines[key(tl.WorkspaceID, tl.ID)] = tl.DeepCopy()
	return nil
}

func (t *timelines) Get(_ context.Context, workspaceID, timelineID string) (*model.Timeline, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	tl, ok := t.timelines[key(workspaceID, timelineID)]
	if !ok {
		return nil, fmt.Errorf("timeline %s: %w", timelineID, model.ErrNotFound)
	}
	return tl.DeepCopy(), nil
}

func (t *timelines) List(_ context.Context, workspaceID string) ([]*model.Timeline, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []*model.Timeline
	for _, tl := range t.timelines {
		if tl.WorkspaceID == workspaceID {
			out = append(out, tl.DeepCopy())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (t *timelines) Delete(_ context.Context, workspaceID, timelineID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	k := key(workspaceID, timelineID)
	if _, ok := t.timelines[k]; !ok {
		return fmt.Errorf("timeline %s: %w", timelineID, model.ErrNotFound)
	}
	delete(t.timelines, k)
	return nil
}

// --- Library ---

type library memStore

func (l *library) Put(_ context.Context, workspaceID string, a *model.Action) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	cp := a.DeepCopy()
	l.library[key(workspaceID, a.ID)] = &cp
	return nil
}

func (l *library) Get(_ context.Context, workspaceID, actionID string) (*model.Action, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	a, ok := l.library[key(workspaceID, actionID)]
	if !ok {
		return nil, fmt.Errorf("library action %s: %w", actionID, model.ErrNotFound)
	}
	cp := a.DeepCopy()
	return &cp, nil
}

func (l *library) List(_ context.Context, workspaceID string) ([]*model.Action, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []*model.Action
	for k, a := range l.library {
		if hasWorkspace(k, workspaceID) {
			cp := a.DeepCopy()
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (l *library) Delete(_ context.Context, workspaceID, actionID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	k := key(workspaceID, actionID)
	if _, ok := l.library[k]; !ok {
		return fmt.Errorf("library action %s: %w", actionID, model.ErrNotFound)
	}
	delete(l.library, k)
	return nil
}

// --- Customers ---

type customers memStore

func (c *customers) Put(_ context.Context, m *model.Customer) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := *m
	cp.Addresses = append([]model.CustomerAddress(nil), m.Addresses...)
	cp.Phones = append([]model.CustomerPhone(nil), m.Phones...)
	cp.Emails = append([]model.CustomerEmail(nil), m.Emails...)
	c.customers[key(m.WorkspaceID, m.ID)] = &cp
	return nil
}

func (c *customers) Get(_ context.Context, workspaceID, customerID string) (*model.Customer, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.customers[key(workspaceID, customerID)]
	if !ok {
		return nil, fmt.Errorf("customer %s: %w", customerID, model.ErrNotFound)
	}
	cp := *m
	return &cp, nil
}

func (c *customers) List(_ context.Context, workspaceID string) ([]*model.Customer, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []*model.Customer
	for _, m := range c.customers {
		if m.WorkspaceID == workspaceID {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, nil
}

func (c *customers) Delete(_ context.Context, workspaceID, customerID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := key(workspaceID, customerID)
	if _, ok := c.customers[k]; !ok {
		return fmt.Errorf("customer %s: %w", customerID, model.ErrNotFound)
	}
	delete(c.customers, k)
	return nil
}

// --- Segments ---

type segments memStore

func (s *segments) Put(_ context.Context, m *model.CustomerSegment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *m
	cp.Rules = append([]model.CustomerSegmentRule(nil), m.Rules...)
	s.segments[key(m.WorkspaceID, m.ID)] = &cp
	return nil
}

func (s *segments) Get(_ context.Context, workspaceID, segmentID string) (*model.CustomerSegment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.segments[key(workspaceID, segmentID)]
	if !ok {
		return nil, fmt.Errorf("segment %s: %w", segmentID, model.ErrNotFound)
	}
	cp := *m
	return &cp, nil
}

func (s *segments) List(_ context.Context, workspaceID string) ([]*model.CustomerSegment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*model.CustomerSegment
	for _, m := range s.segments {
		if m.WorkspaceID == workspaceID {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	return out, nil
}

func (s *segments) Delete(_ context.Context, workspaceID, segmentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key(workspaceID, segmentID)
	if _, ok := s.segments[k]; !ok {
		return fmt.Errorf("segment %s: %w", segmentID, model.ErrNotFound)
	}
	delete(s.segments, k)
	return nil
}

// --- Events ---

type events memStore

func (e *events) Put(_ context.Context, m *model.CustomerTimelineEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	cp := *m
	e.events[key(m.WorkspaceID, m.ID)] = &cp
	return nil
}

func (e *events) ListByCustomer(_ context.Context, workspaceID, customerID string) ([]*model.CustomerTimelineEvent, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	var out []*model.CustomerTimelineEvent
	for _, m := range e.events {
		if m.WorkspaceID == workspaceID && m.CustomerID == customerID {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func hasWorkspace(k, workspaceID string) bool {
	return len(k) > len(workspaceID) && k[:len(workspaceID)] == workspaceID && k[len(workspaceID)] == '/'
}

// Package diskv implements the store contract on a plain directory tree via
// peterbourgon/diskv. Each record is one JSON file under
// <base>/<collection>/<workspace>/<id>. No server process is needed, which
// makes it the drop-in for single-operator installs.
package diskv

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	dv "github.com/peterbourgon/diskv/v3"

	"github.com/recovera/timeline-service/internal/model"
	"github.com/recovera/timeline-service/internal/store"
)

const (
	colTimelines = "timelines"
	colLibrary   = "library"
	colCustomers = "customers"
	colSegments  = "segments"
	colEvents    = "events"
)

// New returns a file-backed store rooted at basePath.
func New(basePath string) store.Store {
	d := dv.New(dv.Options{
		BasePath:          basePath,
		AdvancedTransform: keyToPath,
		InverseTransform:  pathToKey,
		CacheSizeMax:      1024 * 1024, // 1MB
	})
	return &fileStore{d: d}
}

// Keys are "<collection>/<workspace>/<id>"; the final segment becomes the
// file name.
func keyToPath(key string) *dv.PathKey {
	parts := strings.Split(key, "/")
	return &dv.PathKey{
		Path:     parts[:len(parts)-1],
		FileName: parts[len(parts)-1],
	}
}

func pathToKey(pk *dv.PathKey) string {
	return strings.Join(append(append([]string(nil), pk.Path...), pk.FileName), "/")
}

type fileStore struct{ d *dv.Diskv }

func (s *fileStore) Timelines() store.Timelines { return &timelines{s} }
func (s *fileStore) Library() store.Library     { return &library{s} }
func (s *fileStore) Customers() store.Customers { return &customers{s} }
func (s *fileStore) Segments() store.Segments   { return &segments{s} }
func (s *fileStore) Events() store.Events       { return &events{s} }

// Ping implements store.Pinger by probing the base directory through a
// write/erase round-trip.
func (s *fileStore) Ping(ctx context.Context) error {
	key := "ping/ping/ping"
	if err := s.d.Write(key, []byte("ok")); err != nil {
		return fmt.Errorf("diskv ping: %v: %w", err, model.ErrStorage)
	}
	return s.d.Erase(key)
}

func (s *fileStore) key(collection, workspaceID, id string) string {
	return collection + "/" + workspaceID + "/" + id
}

func (s *fileStore) write(collection, workspaceID, id string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("diskv encode: %v: %w", err, model.ErrStorage)
	}
	if err := s.d.Write(s.key(collection, workspaceID, id), data); err != nil {
		return fmt.Errorf("diskv write: %v: %w", err, model.ErrStorage)
	}
	return nil
}

func (s *fileStore) read(collection, workspaceID, id string, v interface{}, notFound error) error {
	key := s.key(collection, workspaceID, id)
	if !s.d.Has(key) {
		return notFound
	}
	data, err := s.d.Read(key)
	if err != nil {
		return fmt.Errorf("diskv read: %v: %w", err, model.ErrStorage)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("diskv decode: %v: %w", err, model.ErrStorage)
	}
	return nil
}

func (s *fileStore) erase(collection, workspaceID, id string, notFound error) error {
	key := s.key(collection, workspaceID, id)
	if !s.d.Has(key) {
		return notFound
	}
	if err := s.d.Erase(key); err != nil {
		return fmt.Errorf("diskv erase: %v: %w", err, model.ErrStorage)
	}
	return nil
}

// list visits every record in a workspace's collection. The cancel channel
// stops diskv's key walker when a record fails to read or decode, so an early
// return does not strand its goroutine.
func (s *fileStore) list(collection, workspaceID string, visit func(data []byte) error) error {
	prefix := collection + "/" + workspaceID + "/"
	cancel := make(chan struct{})
	defer close(cancel)
	for key := range s.d.Keys(cancel) {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		data, err := s.d.Read(key)
		if err != nil {
			return fmt.Errorf("diskv read %s: %v: %w", key, err, model.ErrStorage)
		}
		if err := visit(data); err != nil {
			return fmt.Errorf("diskv decode %s: %v: %w", key, err, model.ErrStorage)
		}
	}
	return nil
}

// --- Timelines ---

type timelines struct{ s *fileStore }

func (t *timelines) Put(_ context.Context, tl *model.Timeline) error {
	return t.s.write(colTimelines, tl.WorkspaceID, tl.ID, tl)
}

func (t *timelines) Get(_ context.Context, workspaceID, timelineID string) (*model.Timeline, error) {
	var out model.Timeline
	err := t.s.read(colTimelines, workspaceID, timelineID, &out,
		fmt.Errorf("timeline %s: %w", timelineID, model.ErrNotFound))
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (t *timelines) List(_ context.Context, workspaceID string) ([]*model.Timeline, error) {
	var out []*model.Timeline
	err := t.s.list(colTimelines, workspaceID, func(data []byte) error {
		var tl model.Timeline
		if err := json.Unmarshal(data, &tl); err != nil {
			return err
		}
		out = append(out, &tl)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (t *timelines) Delete(_ context.Context, workspaceID, timelineID string) error {
	return t.s.erase(colTimelines, workspaceID, timelineID,
		fmt.Errorf("timeline %s: %w", timelineID, model.ErrNotFound))
}

// --- Library ---

type library struct{ s *fileStore }

func (l *library) Put(_ context.Context, workspaceID string, a *model.Action) error {
	return l.s.write(colLibrary, workspaceID, a.ID, a)
}

func (l *library) Get(_ context.Context, workspaceID, actionID string) (*model.Action, error) {
	key := l.s.key(colLibrary, workspaceID, actionID)
	if !l.s.d.Has(key) {
		return nil, fmt.Errorf("library action %s: %w", actionID, model.ErrNotFound)
	}
	data, err := l.s.d.Read(key)
	if err != nil {
		return nil, fmt.Errorf("diskv read: %v: %w", err, model.ErrStorage)
	}
	a, err := model.DecodeActionPayload(data)
	if err != nil {
		return nil, fmt.Errorf("diskv decode: %v: %w", err, model.ErrStorage)
	}
	return &a, nil
}

func (l *library) List(_ context.Context, workspaceID string) ([]*model.Action, error) {
	var out []*model.Action
	err := l.s.list(colLibrary, workspaceID, func(data []byte) error {
		a, err := model.DecodeActionPayload(data)
		if err != nil {
			return err
		}
		out = append(out, &a)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (l *library) Delete(_ context.Context, workspaceID, actionID string) error {
	return l.s.erase(colLibrary, workspaceID, actionID,
		fmt.Errorf("library action %s: %w", actionID, model.ErrNotFound))
}

// --- Customers ---

type customers struct{ s *fileStore }

func (c *customers) Put(_ context.Context, m *model.Customer) error {
	return c.s.write(colCustomers, m.WorkspaceID, m.ID, m)
}

func (c *customers) Get(_ context.Context, workspaceID, customerID string) (*model.Customer, error) {
	var out model.Customer
	err := c.s.read(colCustomers, workspaceID, customerID, &out,
		fmt.Errorf("customer %s: %w", customerID, model.ErrNotFound))
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *customers) List(_ context.Context, workspaceID string) ([]*model.Customer, error) {
	var out []*model.Customer
	err := c.s.list(colCustomers, workspaceID, func(data []byte) error {
		var m model.Customer
		if err := json.Unmarshal(data, &m); err != nil {
			return err
		}
		out = append(out, &m)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, nil
}

func (c *customers) Delete(_ context.Context, workspaceID, customerID string) error {
	return c.s.erase(colCustomers, workspaceID, customerID,
		fmt.Errorf("customer %s: %w", customerID, model.ErrNotFound))
}

// --- Segments ---

type segments struct{ s *fileStore }

func (sg *segments) Put(_ context.Context, m *model.CustomerSegment) error {
	return sg.s.write(colSegments, m.WorkspaceID, m.ID, m)
}

func (sg *segments) Get(_ context.Context, workspaceID, segmentID string) (*model.CustomerSegment, error) {
	var out model.CustomerSegment
	err := sg.s.read(colSegments, workspaceID, segmentID, &out,
		fmt.Errorf("segment %s: %w", segmentID, model.ErrNotFound))
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (sg *segments) List(_ context.Context, workspaceID string) ([]*model.CustomerSegment, error) {
	var out []*model.CustomerSegment
	err := sg.s.list(colSegments, workspaceID, func(data []byte) error {
		var m model.CustomerSegment
		if err := json.Unmarshal(data, &m); err != nil {
			return err
		}
		out = append(out, &m)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	return out, nil
}

func (sg *segments) Delete(_ context.Context, workspaceID, segmentID string) error {
	return sg.s.erase(colSegments, workspaceID, segmentID,
		fmt.Errorf("segment %s: %w", segmentID, model.ErrNotFound))
}

// --- Events ---

type events struct{ s *fileStore }

func (e *events) Put(_ context.Context, m *model.CustomerTimelineEvent) error {
	return e.s.write(colEvents, m.WorkspaceID, m.ID, m)
}

func (e *events) ListByCustomer(_ context.Context, workspaceID, customerID string) ([]*model.CustomerTimelineEvent, error) {
	var out []*model.CustomerTimelineEvent
	err := e.s.list(colEvents, workspaceID, func(data []byte) error {
		var m model.CustomerTimelineEvent
		if err := json.Unmarshal(data, &m); err != nil {
			return err
		}
		if m.CustomerID == customerID {
			out = append(out, &m)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

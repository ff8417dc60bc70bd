package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/recovera/timeline-service/internal/api/validate"
	"github.com/recovera/timeline-service/internal/flush"
	"github.com/recovera/timeline-service/internal/model"
	"github.com/recovera/timeline-service/internal/store"
)

// TimelineService owns the timeline aggregate: lifecycle, placement edits,
// day activation, condition edits and export. Every mutation re-checks the
// aggregate's invariants before it is written, so the store only ever holds
// consistent timelines.
type TimelineService struct {
	store   store.Store
	flusher *flush.Serializer

	dayFrom, dayTo int

	now   func() time.Time
	newID func() string
}

// NewTimelineService builds a service creating timelines over the inclusive
// [dayFrom, dayTo] offset range.
func NewTimelineService(s store.Store, dayFrom, dayTo int) *TimelineService {
	return &TimelineService{
		store:   s,
		dayFrom: dayFrom,
		dayTo:   dayTo,
		now:     time.Now,
		newID:   func() string { return uuid.New().String() },
	}
}

// WithSerializer routes whole-aggregate saves through f instead of writing
// synchronously. Placement edits still write directly.
func (s *TimelineService) WithSerializer(f *flush.Serializer) *TimelineService {
	s.flusher = f
	return s
}

// Create builds and persists a new timeline. An empty name falls back to the
// default placeholder.
func (s *TimelineService) Create(ctx context.Context, workspaceID, name string) (*model.Timeline, error) {
	t := model.NewTimeline(s.newID(), workspaceID, name, s.dayFrom, s.dayTo, s.now().UTC())
	if err := s.store.Timelines().Put(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// List returns the workspace's timelines as list-view summaries, oldest first.
func (s *TimelineService) List(ctx context.Context, workspaceID string) ([]model.TimelineSummary, error) {
	ts, err := s.store.Timelines().List(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	out := make([]model.TimelineSummary, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.Summary())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Get loads the full aggregate.
func (s *TimelineService) Get(ctx context.Context, workspaceID, timelineID string) (*model.Timeline, error) {
	return s.store.Timelines().Get(ctx, workspaceID, timelineID)
}

// Rename updates the timeline's name.
func (s *TimelineService) Rename(ctx context.Context, workspaceID, timelineID, name string) (*model.Timeline, error) {
	if err := validate.NonEmpty("name", name); err != nil {
		return nil, err
	}
	t, err := s.store.Timelines().Get(ctx, workspaceID, timelineID)
	if err != nil {
		return nil, err
	}
	t.Name = name
	if err := s.store.Timelines().Put(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Delete removes the aggregate. Conditions only ever reference actions within
// the same workspace's editing context, so no cross-timeline scan is needed.
func (s *TimelineService) Delete(ctx context.Context, workspaceID, timelineID string) error {
	return s.store.Timelines().Delete(ctx, workspaceID, timelineID)
}

// Duplicate deep-copies a timeline under a fresh id with " (Copy)" appended
// to the name. Action ids inside the copy are kept: aggregates are
// independent and placement ids never collide across them.
func (s *TimelineService) Duplicate(ctx context.Context, workspaceID, timelineID string) (*model.Timeline, error) {
	t, err := s.store.Timelines().Get(ctx, workspaceID, timelineID)
	if err != nil {
		return nil, err
	}
	cp := t.DeepCopy()
	cp.ID = s.newID()
	cp.Name = t.Name + " (Copy)"
	cp.CreatedAt = s.now().UTC()
	if err := s.store.Timelines().Put(ctx, cp); err != nil {
		return nil, err
	}
	return cp, nil
}

// Export renders the display-oriented configuration document: active days
// only, plus the workspace library. Inactive days and their actions are
// dropped entirely; the export is not a backup format.
func (s *TimelineService) Export(ctx context.Context, workspaceID, timelineID string) (*model.ExportDocument, error) {
	t, err := s.store.Timelines().Get(ctx, workspaceID, timelineID)
	if err != nil {
		return nil, err
	}
	lib, err := s.store.Library().List(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	doc := &model.ExportDocument{Name: t.Name, Days: []model.Day{}, LibraryActions: []model.Action{}}
	for _, d := range t.Days {
		if d.Active {
			doc.Days = append(doc.Days, d.DeepCopy())
		}
	}
	for _, a := range lib {
		doc.LibraryActions = append(doc.LibraryActions, a.DeepCopy())
	}
	return doc, nil
}

// SaveAggregate accepts a whole timeline state, as produced by an editor
// session, and persists it. The aggregate must already exist and must pass
// the full invariant check. When a serializer is configured the write is
// enqueued and coalesced per timeline; otherwise it is synchronous.
func (s *TimelineService) SaveAggregate(ctx context.Context, workspaceID string, t *model.Timeline) error {
	if t.ID == "" {
		return fmt.Errorf("%w: timeline id is required", model.ErrValidation)
	}
	if _, err := s.store.Timelines().Get(ctx, workspaceID, t.ID); err != nil {
		return err
	}
	lib, err := s.store.Library().List(ctx, workspaceID)
	if err != nil {
		return err
	}
	t.WorkspaceID = workspaceID
	if err := checkTimeline(t, lib, s.dayFrom, s.dayTo); err != nil {
		return err
	}
	if s.flusher == nil {
		return s.store.Timelines().Put(ctx, t)
	}
	snapshot := t.DeepCopy()
	s.flusher.Enqueue(flushKey(workspaceID, t.ID), func(ctx context.Context) error {
		return s.store.Timelines().Put(ctx, snapshot)
	})
	return nil
}

// FlushTimeline retries a previously failed aggregate write. It reports nil
// when there is nothing pending.
func (s *TimelineService) FlushTimeline(ctx context.Context, workspaceID, timelineID string) error {
	if s.flusher == nil {
		return nil
	}
	return s.flusher.Flush(ctx, flushKey(workspaceID, timelineID))
}

// SaveError reports the retained error of the timeline's last failed
// aggregate write, if any.
func (s *TimelineService) SaveError(workspaceID, timelineID string) error {
	if s.flusher == nil {
		return nil
	}
	return s.flusher.Err(flushKey(workspaceID, timelineID))
}

func flushKey(workspaceID, timelineID string) string {
	return workspaceID + "/" + timelineID
}

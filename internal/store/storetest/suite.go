// Package storetest exercises a compliance suite against a store.Store
// implementation. Backends call Run from their own tests with a clean,
// isolated store.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/recovera/timeline-service/internal/model"
	"github.com/recovera/timeline-service/internal/store"
)

// Run verifies put/get/list/delete semantics for every collection, including
// upsert-on-put, workspace scoping and ErrNotFound on unknown ids.
func Run(t *testing.T, makeStore func(t *testing.T) store.Store) {
	t.Helper()

	s := makeStore(t)
	ctx := context.Background()
	ws := "ws-" + uuid.New().String()

	// Timelines
	tl := model.NewTimeline("tl-"+uuid.New().String(), ws, "Card Recovery", -10, 90, time.Now().UTC())
	if err := s.Timelines().Put(ctx, tl); err != nil {
		t.Fatalf("Timelines.Put: %v", err)
	}
	got, err := s.Timelines().Get(ctx, ws, tl.ID)
	if err != nil {
		t.Fatalf("Timelines.Get: %v", err)
	}
	if got.Name != "Card Recovery" || len(got.Days) != 101 {
		t.Fatalf("Timelines.Get: name=%q days=%d", got.Name, len(got.Days))
	}

	// Put is an upsert: mutate and write again under the same id.
	got.Name = "Card Recovery v2"
	got.DayByID(model.DayID(3)).Active = true
	if err := s.Timelines().Put(ctx, got); err != nil {
		t.Fatalf("Timelines.Put (upsert): %v", err)
	}
	got2, err := s.Timelines().Get(ctx, ws, tl.ID)
	if err != nil {
		t.Fatalf("Timelines.Get after upsert: %v", err)
	}
	if got2.Name != "Card Recovery v2" || !got2.DayByID(model.DayID(3)).Active {
		t.Fatalf("upsert not applied: %+v", got2.Summary())
	}

	if lst, err := s.Timelines().List(ctx, ws); err != nil || len(lst) != 1 {
		t.Fatalf("Timelines.List: n=%d err=%v", len(lst), err)
	}
	if lst, err := s.Timelines().List(ctx, "ws-other"); err != nil || len(lst) != 0 {
		t.Fatalf("Timelines.List other workspace: n=%d err=%v", len(lst), err)
	}
	if _, err := s.Timelines().Get(ctx, ws, "missing"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("Timelines.Get missing: want ErrNotFound, got %v", err)
	}

	// Library
	act := &model.Action{
		ID:         "act-" + uuid.New().String(),
		Type:       model.ActionEmail,
		Name:       "Welcome",
		Subject:    "Hi",
		Message:    "body",
		Conditions: []model.Condition{},
	}
	if err := s.Library().Put(ctx, ws, act); err != nil {
		t.Fatalf("Library.Put: %v", err)
	}
	if la, err := s.Library().Get(ctx, ws, act.ID); err != nil || la.Name != "Welcome" {
		t.Fatalf("Library.Get: got=%+v err=%v", la, err)
	}
	if lst, err := s.Library().List(ctx, ws); err != nil || len(lst) != 1 {
		t.Fatalf("Library.List: n=%d err=%v", len(lst), err)
	}
	if err := s.Library().Delete(ctx, ws, act.ID); err != nil {
		t.Fatalf("Library.Delete: %v", err)
	}
	if _, err := s.Library().Get(ctx, ws, act.ID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("Library.Get deleted: want ErrNotFound, got %v", err)
	}
	if err := s.Library().Delete(ctx, ws, act.ID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("Library.Delete deleted: want ErrNotFound, got %v", err)
	}

	// Customers
	cust := &model.Customer{
		ID:          "cust-" + uuid.New().String(),
		WorkspaceID: ws,
		FullName:    "Maria Silva",
		Document:    "123.456.789-00",
		Status:      "normal",
	}
	if err := s.Customers().Put(ctx, cust); err != nil {
		t.Fatalf("Customers.Put: %v", err)
	}
	if c, err := s.Customers().Get(ctx, ws, cust.ID); err != nil || c.FullName != "Maria Silva" {
		t.Fatalf("Customers.Get: got=%+v err=%v", c, err)
	}
	if lst, err := s.Customers().List(ctx, ws); err != nil || len(lst) != 1 {
		t.Fatalf("Customers.List: n=%d err=%v", len(lst), err)
	}

	// Segments
	seg := &model.CustomerSegment{
		ID:          "seg-" + uuid.New().String(),
		WorkspaceID: ws,
		Name:        "Late payers",
		Priority:    1,
	}
	if err := s.Segments().Put(ctx, seg); err != nil {
		t.Fatalf("Segments.Put: %v", err)
	}
	if g, err := s.Segments().Get(ctx, ws, seg.ID); err != nil || g.Name != "Late payers" {
		t.Fatalf("Segments.Get: got=%+v err=%v", g, err)
	}
	if err := s.Segments().Delete(ctx, ws, seg.ID); err != nil {
		t.Fatalf("Segments.Delete: %v", err)
	}

	// Events ordered by date
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i, off := range []time.Duration{48 * time.Hour, 0, 24 * time.Hour} {
		ev := &model.CustomerTimelineEvent{
			ID:          uuid.New().String(),
			WorkspaceID: ws,
			CustomerID:  cust.ID,
			Type:        "email_sent",
			Date:        base.Add(off),
			Title:       "sent",
		}
		if err := s.Events().Put(ctx, ev); err != nil {
			t.Fatalf("Events.Put %d: %v", i, err)
		}
	}
	evs, err := s.Events().ListByCustomer(ctx, ws, cust.ID)
	if err != nil || len(evs) != 3 {
		t.Fatalf("Events.ListByCustomer: n=%d err=%v", len(evs), err)
	}
	for i := 1; i < len(evs); i++ {
		if evs[i].Date.Before(evs[i-1].Date) {
			t.Fatalf("events not sorted by date: %v before %v", evs[i].Date, evs[i-1].Date)
		}
	}

	// Timeline delete
	if err := s.Timelines().Delete(ctx, ws, tl.ID); err != nil {
		t.Fatalf("Timelines.Delete: %v", err)
	}
	if _, err := s.Timelines().Get(ctx, ws, tl.ID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("Timelines.Get deleted: want ErrNotFound, got %v", err)
	}
}

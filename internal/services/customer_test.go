package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recovera/timeline-service/internal/model"
	"github.com/recovera/timeline-service/internal/store/memory"
)

func TestCustomerCRUD(t *testing.T) {
	svc := NewCustomerService(memory.New())
	ctx := context.Background()

	_, err := svc.Create(ctx, testWS, model.Customer{})
	require.ErrorIs(t, err, model.ErrValidation)

	c, err := svc.Create(ctx, testWS, model.Customer{FullName: "Maria Souza", Document: "123.456.789-00"})
	require.NoError(t, err)
	require.NotEmpty(t, c.ID)
	assert.Equal(t, testWS, c.WorkspaceID)

	c.CollectionStatus = "late"
	got, err := svc.Update(ctx, testWS, c.ID, c)
	require.NoError(t, err)
	assert.Equal(t, "late", got.CollectionStatus)

	all, err := svc.List(ctx, testWS)
	require.NoError(t, err)
	require.Len(t, all, 1)

	require.NoError(t, svc.Delete(ctx, testWS, c.ID))
	_, err = svc.Get(ctx, testWS, c.ID)
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestRecordEvent(t *testing.T) {
	svc := NewCustomerService(memory.New())
	ctx := context.Background()

	_, err := svc.RecordEvent(ctx, testWS, "missing", model.CustomerTimelineEvent{Type: "send", Title: "x"})
	require.ErrorIs(t, err, model.ErrNotFound)

	c, err := svc.Create(ctx, testWS, model.Customer{FullName: "João Lima"})
	require.NoError(t, err)

	at := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return at }

	first, err := svc.RecordEvent(ctx, testWS, c.ID, model.CustomerTimelineEvent{
		Type: "email_sent", Title: "Reminder sent",
	})
	require.NoError(t, err)
	assert.Equal(t, at, first.Date)

	_, err = svc.RecordEvent(ctx, testWS, c.ID, model.CustomerTimelineEvent{
		Type: "email_opened", Title: "Reminder opened",
		Date: at.Add(2 * time.Hour),
	})
	require.NoError(t, err)

	events, err := svc.Events(ctx, testWS, c.ID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "email_sent", events[0].Type, "history is ordered by date")
}

func TestSegmentCRUDAndBlockedDelete(t *testing.T) {
	st := memory.New()
	segs := NewSegmentService(st)
	customers := NewCustomerService(st)
	ctx := context.Background()

	seg, err := segs.Create(ctx, testWS, model.CustomerSegment{Name: "High risk", Priority: 1})
	require.NoError(t, err)

	seg.Description = "score < 300"
	got, err := segs.Update(ctx, testWS, seg.ID, seg)
	require.NoError(t, err)
	assert.Equal(t, "score < 300", got.Description)

	c, err := customers.Create(ctx, testWS, model.Customer{FullName: "Ana Dias", SegmentID: seg.ID})
	require.NoError(t, err)

	err = segs.Delete(ctx, testWS, seg.ID)
	require.ErrorIs(t, err, model.ErrConflict)

	require.NoError(t, customers.Delete(ctx, testWS, c.ID))
	require.NoError(t, segs.Delete(ctx, testWS, seg.ID))
}

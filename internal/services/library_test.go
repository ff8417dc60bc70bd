package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recovera/timeline-service/internal/model"
	"github.com/recovera/timeline-service/internal/store/memory"
)

func TestLibraryAdd(t *testing.T) {
	lib := NewLibraryService(memory.New())
	ctx := context.Background()

	a, err := lib.Add(ctx, testWS, emailAction("template"))
	require.NoError(t, err)
	assert.NotEmpty(t, a.ID)
	assert.Nil(t, a.DayID)
	assert.NotNil(t, a.Conditions)
	assert.Empty(t, a.Conditions)

	_, err = lib.Add(ctx, testWS, model.Action{Type: "carrier-pigeon", Name: "x"})
	require.ErrorIs(t, err, model.ErrValidation)
}

func TestLibraryUpdateKeepsIDAndConditions(t *testing.T) {
	st := memory.New()
	lib := NewLibraryService(st)
	svc := NewTimelineService(st, -10, 90)
	ctx := context.Background()

	owner, err := lib.Add(ctx, testWS, emailAction("holder"))
	require.NoError(t, err)
	prev, err := lib.Add(ctx, testWS, emailAction("prev"))
	require.NoError(t, err)
	then, err := lib.Add(ctx, testWS, emailAction("then"))
	require.NoError(t, err)

	tl, err := svc.Create(ctx, testWS, "t")
	require.NoError(t, err)
	_, _, err = svc.SaveCondition(ctx, testWS, tl.ID, owner.ID, ConditionRequest{
		Type: model.ConditionOpened, PreviousActionID: prev.ID, ThenActionID: then.ID,
	})
	require.NoError(t, err)

	got, err := lib.Update(ctx, testWS, owner.ID, emailAction("renamed"))
	require.NoError(t, err)
	assert.Equal(t, owner.ID, got.ID)
	assert.Equal(t, "renamed", got.Name)
	require.Len(t, got.Conditions, 1, "update does not touch conditions")
}

func TestLibraryUpdateRejectsIncompatibleTypeChange(t *testing.T) {
	st := memory.New()
	lib := NewLibraryService(st)
	svc := NewTimelineService(st, -10, 90)
	ctx := context.Background()

	prev, err := lib.Add(ctx, testWS, emailAction("prev"))
	require.NoError(t, err)
	then, err := lib.Add(ctx, testWS, emailAction("then"))
	require.NoError(t, err)
	holder, err := lib.Add(ctx, testWS, emailAction("holder"))
	require.NoError(t, err)

	tl, err := svc.Create(ctx, testWS, "t")
	require.NoError(t, err)
	_, _, err = svc.SaveCondition(ctx, testWS, tl.ID, holder.ID, ConditionRequest{
		Type: model.ConditionOpened, PreviousActionID: prev.ID, ThenActionID: then.ID,
	})
	require.NoError(t, err)

	// SMS cannot produce "opened", so the condition would go ineligible
	next := smsAction("prev")
	_, err = lib.Update(ctx, testWS, prev.ID, next)
	require.ErrorIs(t, err, model.ErrConflict)

	// a delivery-only outcome survives the change
	_, _, err = svc.SaveCondition(ctx, testWS, tl.ID, holder.ID, ConditionRequest{
		ID:   mustOnlyCondition(t, ctx, lib, holder.ID).ID,
		Type: model.ConditionDelivered, PreviousActionID: prev.ID, ThenActionID: then.ID,
	})
	require.NoError(t, err)
	_, err = lib.Update(ctx, testWS, prev.ID, next)
	require.NoError(t, err)
}

func mustOnlyCondition(t *testing.T, ctx context.Context, lib *LibraryService, actionID string) model.Condition {
	t.Helper()
	a, err := lib.Get(ctx, testWS, actionID)
	require.NoError(t, err)
	require.Len(t, a.Conditions, 1)
	return a.Conditions[0]
}

func TestLibraryDeleteBlockedByTimelineReference(t *testing.T) {
	st := memory.New()
	lib := NewLibraryService(st)
	svc := NewTimelineService(st, -10, 90)
	ctx := context.Background()

	prev, err := lib.Add(ctx, testWS, emailAction("referenced"))
	require.NoError(t, err)

	tl, err := svc.Create(ctx, testWS, "t")
	require.NoError(t, err)
	then, _, err := svc.UpsertDayAction(ctx, testWS, tl.ID, model.DayID(0), emailAction("then"))
	require.NoError(t, err)
	holder, _, err := svc.UpsertDayAction(ctx, testWS, tl.ID, model.DayID(5), emailAction("holder"))
	require.NoError(t, err)
	_, _, err = svc.SaveCondition(ctx, testWS, tl.ID, holder.ID, ConditionRequest{
		Type: model.ConditionDelivered, PreviousActionID: prev.ID, ThenActionID: then.ID,
	})
	require.NoError(t, err)

	err = lib.Delete(ctx, testWS, prev.ID)
	var refErr *model.ReferenceError
	require.ErrorAs(t, err, &refErr)
	assert.Equal(t, []string{holder.ID}, refErr.ReferencedBy)

	// unreferenced actions delete cleanly
	free, err := lib.Add(ctx, testWS, emailAction("free"))
	require.NoError(t, err)
	require.NoError(t, lib.Delete(ctx, testWS, free.ID))
	_, err = lib.Get(ctx, testWS, free.ID)
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestLibraryClone(t *testing.T) {
	st := memory.New()
	lib := NewLibraryService(st)
	svc := NewTimelineService(st, -10, 90)
	ctx := context.Background()

	orig, err := lib.Add(ctx, testWS, emailAction("holder"))
	require.NoError(t, err)
	prev, err := lib.Add(ctx, testWS, emailAction("prev"))
	require.NoError(t, err)
	then, err := lib.Add(ctx, testWS, emailAction("then"))
	require.NoError(t, err)

	tl, err := svc.Create(ctx, testWS, "t")
	require.NoError(t, err)
	_, _, err = svc.SaveCondition(ctx, testWS, tl.ID, orig.ID, ConditionRequest{
		Type: model.ConditionOpened, PreviousActionID: prev.ID, ThenActionID: then.ID,
	})
	require.NoError(t, err)

	cp, err := lib.Clone(ctx, testWS, orig.ID)
	require.NoError(t, err)
	assert.NotEqual(t, orig.ID, cp.ID)
	assert.Equal(t, "holder (Copy)", cp.Name)
	assert.Empty(t, cp.Conditions, "clones never carry conditions")
}

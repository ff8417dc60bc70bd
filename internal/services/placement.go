package services

import (
	"context"
	"fmt"

	"github.com/recovera/timeline-service/internal/api/validate"
	"github.com/recovera/timeline-service/internal/model"
)

// UpsertDayAction creates or replaces an action on a day. A request without
// an id creates the action; a request whose id is already on the day replaces
// it in place, keeping its position. Placing an id that already lives on a
// different day is a conflict: placement is unique per aggregate, and moves
// go through MoveAction.
func (s *TimelineService) UpsertDayAction(ctx context.Context, workspaceID, timelineID, dayID string, a model.Action) (model.Action, model.Change, error) {
	if err := validate.Action(a); err != nil {
		return model.Action{}, model.Change{}, err
	}
	t, err := s.store.Timelines().Get(ctx, workspaceID, timelineID)
	if err != nil {
		return model.Action{}, model.Change{}, err
	}
	day := t.DayByID(dayID)
	if day == nil {
		return model.Action{}, model.Change{}, fmt.Errorf("%w: day %s", model.ErrNotFound, dayID)
	}
	lib, err := s.store.Library().List(ctx, workspaceID)
	if err != nil {
		return model.Action{}, model.Change{}, err
	}

	if a.ID == "" {
		a.ID = s.newID()
	}
	if a.Conditions == nil {
		a.Conditions = []model.Condition{}
	}
	a.DayID = &day.ID

	kind := model.ChangeActionAdded
	if existing := day.ActionByID(a.ID); existing != nil {
		// Replace in place but keep the conditions the payload does not
		// carry; condition edits have their own operations.
		if len(a.Conditions) == 0 {
			a.Conditions = existing.Conditions
		}
		*existing = a
		kind = model.ChangeActionUpdated
	} else {
		if other, where := t.ActionByID(a.ID); other != nil {
			return model.Action{}, model.Change{}, fmt.Errorf("%w: action %s is already placed on %s", model.ErrConflict, a.ID, where.ID)
		}
		day.Actions = append(day.Actions, a)
	}

	if err := checkTimeline(t, lib, s.dayFrom, s.dayTo); err != nil {
		return model.Action{}, model.Change{}, err
	}
	if err := s.store.Timelines().Put(ctx, t); err != nil {
		return model.Action{}, model.Change{}, err
	}
	return a, model.Change{Kind: kind, TimelineID: t.ID, DayID: day.ID, ActionID: a.ID}, nil
}

// RemoveDayAction deletes an action from its day. The delete is blocked with
// a ReferenceError while any visible condition still references the action,
// listing the holders so the caller can surface them.
func (s *TimelineService) RemoveDayAction(ctx context.Context, workspaceID, timelineID, dayID, actionID string) (model.Change, error) {
	t, err := s.store.Timelines().Get(ctx, workspaceID, timelineID)
	if err != nil {
		return model.Change{}, err
	}
	day := t.DayByID(dayID)
	if day == nil {
		return model.Change{}, fmt.Errorf("%w: day %s", model.ErrNotFound, dayID)
	}
	if day.ActionByID(actionID) == nil {
		return model.Change{}, fmt.Errorf("%w: action %s on day %s", model.ErrNotFound, actionID, dayID)
	}
	lib, err := s.store.Library().List(ctx, workspaceID)
	if err != nil {
		return model.Change{}, err
	}
	if holders := referencesTo(t, lib, actionID); len(holders) > 0 {
		return model.Change{}, &model.ReferenceError{ActionID: actionID, ReferencedBy: holders}
	}

	kept := day.Actions[:0]
	for _, a := range day.Actions {
		if a.ID != actionID {
			kept = append(kept, a)
		}
	}
	day.Actions = kept

	if err := s.store.Timelines().Put(ctx, t); err != nil {
		return model.Change{}, err
	}
	return model.Change{Kind: model.ChangeActionRemoved, TimelineID: t.ID, DayID: day.ID, ActionID: actionID}, nil
}

// MoveAction relocates an action onto a day. The origin decides the
// semantics: a nil fromDayID means the action comes from the library, which
// clones it under a derived id and leaves the library untouched; a day origin
// moves the action, and dropping it back onto its own day is a silent no-op.
func (s *TimelineService) MoveAction(ctx context.Context, workspaceID, timelineID, actionID string, fromDayID *string, toDayID string) (model.Action, model.Change, error) {
	t, err := s.store.Timelines().Get(ctx, workspaceID, timelineID)
	if err != nil {
		return model.Action{}, model.Change{}, err
	}
	target := t.DayByID(toDayID)
	if target == nil {
		return model.Action{}, model.Change{}, fmt.Errorf("%w: day %s", model.ErrNotFound, toDayID)
	}
	lib, err := s.store.Library().List(ctx, workspaceID)
	if err != nil {
		return model.Action{}, model.Change{}, err
	}

	if fromDayID == nil {
		src, err := s.store.Library().Get(ctx, workspaceID, actionID)
		if err != nil {
			return model.Action{}, model.Change{}, err
		}
		cp := src.DeepCopy()
		cp.ID = fmt.Sprintf("%s-copy-%d", src.ID, s.now().UnixMilli())
		cp.DayID = &target.ID
		target.Actions = append(target.Actions, cp)
		if err := checkTimeline(t, lib, s.dayFrom, s.dayTo); err != nil {
			return model.Action{}, model.Change{}, err
		}
		if err := s.store.Timelines().Put(ctx, t); err != nil {
			return model.Action{}, model.Change{}, err
		}
		return cp, model.Change{
			Kind: model.ChangeActionCloned, TimelineID: t.ID, DayID: target.ID, ActionID: cp.ID,
			Detail: fmt.Sprintf("cloned from library action %s", src.ID),
		}, nil
	}

	src := t.DayByID(*fromDayID)
	if src == nil {
		return model.Action{}, model.Change{}, fmt.Errorf("%w: day %s", model.ErrNotFound, *fromDayID)
	}
	moved := src.ActionByID(actionID)
	if moved == nil {
		return model.Action{}, model.Change{}, fmt.Errorf("%w: action %s on day %s", model.ErrNotFound, actionID, *fromDayID)
	}
	if src.ID == target.ID {
		return *moved, model.Change{Kind: model.ChangeNoop, TimelineID: t.ID, DayID: target.ID, ActionID: actionID}, nil
	}

	a := moved.DeepCopy()
	a.DayID = &target.ID
	kept := src.Actions[:0]
	for _, sa := range src.Actions {
		if sa.ID != actionID {
			kept = append(kept, sa)
		}
	}
	src.Actions = kept
	target.Actions = append(target.Actions, a)

	if err := checkTimeline(t, lib, s.dayFrom, s.dayTo); err != nil {
		return model.Action{}, model.Change{}, err
	}
	if err := s.store.Timelines().Put(ctx, t); err != nil {
		return model.Action{}, model.Change{}, err
	}
	return a, model.Change{Kind: model.ChangeActionMoved, TimelineID: t.ID, DayID: target.ID, ActionID: actionID}, nil
}

// ToggleDay flips a day's active flag. Deactivating hides the day from views
// and exports but keeps its actions intact for when it is reactivated.
func (s *TimelineService) ToggleDay(ctx context.Context, workspaceID, timelineID, dayID string) (model.Day, model.Change, error) {
	t, err := s.store.Timelines().Get(ctx, workspaceID, timelineID)
	if err != nil {
		return model.Day{}, model.Change{}, err
	}
	day := t.DayByID(dayID)
	if day == nil {
		return model.Day{}, model.Change{}, fmt.Errorf("%w: day %s", model.ErrNotFound, dayID)
	}
	day.Active = !day.Active
	if err := s.store.Timelines().Put(ctx, t); err != nil {
		return model.Day{}, model.Change{}, err
	}
	detail := "deactivated"
	if day.Active {
		detail = "activated"
	}
	return day.DeepCopy(), model.Change{Kind: model.ChangeDayToggled, TimelineID: t.ID, DayID: day.ID, Detail: detail}, nil
}

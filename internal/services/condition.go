package services

import (
	"context"
	"fmt"

	"github.com/recovera/timeline-service/internal/editor"
	"github.com/recovera/timeline-service/internal/model"
)

// ConditionRequest carries the three selections of the condition editor. An
// id marks an update of an existing condition; without one a new condition is
// created.
type ConditionRequest struct {
	ID               string              `json:"id,omitempty"`
	Type             model.ConditionType `json:"type"`
	PreviousActionID string              `json:"previousActionId"`
	ThenActionID     string              `json:"thenActionId"`
}

// SaveCondition runs the selections through the condition builder and
// attaches the result to the owning action. The owner may sit on a day of the
// timeline or in the workspace library; either way the full dependency graph
// is re-checked before anything is written.
func (s *TimelineService) SaveCondition(ctx context.Context, workspaceID, timelineID, actionID string, req ConditionRequest) (model.Condition, model.Change, error) {
	t, err := s.store.Timelines().Get(ctx, workspaceID, timelineID)
	if err != nil {
		return model.Condition{}, model.Change{}, err
	}
	lib, err := s.store.Library().List(ctx, workspaceID)
	if err != nil {
		return model.Condition{}, model.Change{}, err
	}

	owner, _ := t.ActionByID(actionID)
	var libOwner *model.Action
	if owner == nil {
		for _, a := range lib {
			if a.ID == actionID {
				libOwner = a
				owner = a
				break
			}
		}
	}
	if owner == nil {
		return model.Condition{}, model.Change{}, fmt.Errorf("%w: action %s", model.ErrNotFound, actionID)
	}

	var b *editor.Builder
	if req.ID != "" {
		existing := conditionByID(owner, req.ID)
		if existing == nil {
			return model.Condition{}, model.Change{}, fmt.Errorf("%w: condition %s on action %s", model.ErrNotFound, req.ID, actionID)
		}
		// replaying the stored selections validates them against the
		// current editing context before the new ones are applied
		b, err = editor.NewEditor(actionID, visibleActions(t, lib), *existing)
		if err != nil {
			return model.Condition{}, model.Change{}, err
		}
	} else {
		b = editor.NewBuilder(actionID, visibleActions(t, lib))
	}
	if err := b.SelectPrevious(req.PreviousActionID); err != nil {
		return model.Condition{}, model.Change{}, err
	}
	if err := b.SelectOutcome(req.Type); err != nil {
		return model.Condition{}, model.Change{}, err
	}
	if err := b.SelectThen(req.ThenActionID); err != nil {
		return model.Condition{}, model.Change{}, err
	}
	cond, err := b.Save()
	if err != nil {
		return model.Condition{}, model.Change{}, err
	}

	replaced := false
	for i := range owner.Conditions {
		if owner.Conditions[i].ID == cond.ID {
			owner.Conditions[i] = cond
			replaced = true
			break
		}
	}
	if !replaced {
		owner.Conditions = append(owner.Conditions, cond)
	}

	if err := checkTimeline(t, lib, s.dayFrom, s.dayTo); err != nil {
		return model.Condition{}, model.Change{}, err
	}
	if libOwner != nil {
		if err := s.store.Library().Put(ctx, workspaceID, libOwner); err != nil {
			return model.Condition{}, model.Change{}, err
		}
	} else if err := s.store.Timelines().Put(ctx, t); err != nil {
		return model.Condition{}, model.Change{}, err
	}
	return cond, model.Change{Kind: model.ChangeConditionSaved, TimelineID: t.ID, ActionID: actionID, Detail: string(cond.Type)}, nil
}

// DeleteCondition removes a condition from its owning action. Conditions are
// leaves of the dependency graph, so deleting one never dangles a reference.
func (s *TimelineService) DeleteCondition(ctx context.Context, workspaceID, timelineID, actionID, conditionID string) (model.Change, error) {
	t, err := s.store.Timelines().Get(ctx, workspaceID, timelineID)
	if err != nil {
		return model.Change{}, err
	}

	owner, _ := t.ActionByID(actionID)
	var libOwner *model.Action
	if owner == nil {
		la, err := s.store.Library().Get(ctx, workspaceID, actionID)
		if err != nil {
			return model.Change{}, err
		}
		libOwner = la
		owner = la
	}
	if conditionByID(owner, conditionID) == nil {
		return model.Change{}, fmt.Errorf("%w: condition %s on action %s", model.ErrNotFound, conditionID, actionID)
	}

	kept := owner.Conditions[:0]
	for _, c := range owner.Conditions {
		if c.ID != conditionID {
			kept = append(kept, c)
		}
	}
	owner.Conditions = kept

	if libOwner != nil {
		if err := s.store.Library().Put(ctx, workspaceID, libOwner); err != nil {
			return model.Change{}, err
		}
	} else if err := s.store.Timelines().Put(ctx, t); err != nil {
		return model.Change{}, err
	}
	return model.Change{Kind: model.ChangeConditionSaved, TimelineID: t.ID, ActionID: actionID, Detail: "condition removed"}, nil
}

func conditionByID(a *model.Action, id string) *model.Condition {
	for i := range a.Conditions {
		if a.Conditions[i].ID == id {
			return &a.Conditions[i]
		}
	}
	return nil
}

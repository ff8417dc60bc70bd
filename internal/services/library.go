package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/recovera/timeline-service/internal/api/validate"
	"github.com/recovera/timeline-service/internal/model"
	"github.com/recovera/timeline-service/internal/store"
)

// LibraryService manages the workspace's shared pool of reusable actions.
// Dropping a library action onto a timeline clones it, so library edits never
// reach placed copies; deletes are blocked while conditions still reference
// the action.
type LibraryService struct {
	store store.Store
	newID func() string
}

func NewLibraryService(s store.Store) *LibraryService {
	return &LibraryService{store: s, newID: func() string { return uuid.New().String() }}
}

// Add validates and stores a new library action. Conditions start empty and
// the action belongs to no day.
func (s *LibraryService) Add(ctx context.Context, workspaceID string, a model.Action) (model.Action, error) {
	if err := validate.Action(a); err != nil {
		return model.Action{}, err
	}
	if a.ID == "" {
		a.ID = s.newID()
	}
	a.Conditions = []model.Condition{}
	a.DayID = nil
	if err := s.store.Library().Put(ctx, workspaceID, &a); err != nil {
		return model.Action{}, err
	}
	return a, nil
}

// Update replaces a library action's fields, keeping its id and conditions.
// Changing the channel type is rejected while any visible condition still
// branches on an outcome the new type cannot produce.
func (s *LibraryService) Update(ctx context.Context, workspaceID, actionID string, a model.Action) (model.Action, error) {
	existing, err := s.store.Library().Get(ctx, workspaceID, actionID)
	if err != nil {
		return model.Action{}, err
	}
	a.ID = existing.ID
	a.Conditions = existing.Conditions
	a.DayID = nil
	if err := validate.Action(a); err != nil {
		return model.Action{}, err
	}
	if a.Type != existing.Type {
		if err := s.checkOutcomeCompat(ctx, workspaceID, actionID, a.Type); err != nil {
			return model.Action{}, err
		}
	}
	if err := s.store.Library().Put(ctx, workspaceID, &a); err != nil {
		return model.Action{}, err
	}
	return a, nil
}

// Delete removes a library action. Like day deletes, it is blocked with a
// ReferenceError while any condition in the workspace, on another library
// action or on any timeline, still references it.
func (s *LibraryService) Delete(ctx context.Context, workspaceID, actionID string) error {
	if _, err := s.store.Library().Get(ctx, workspaceID, actionID); err != nil {
		return err
	}
	lib, err := s.store.Library().List(ctx, workspaceID)
	if err != nil {
		return err
	}
	holders := referencesTo(nil, lib, actionID)
	ts, err := s.store.Timelines().List(ctx, workspaceID)
	if err != nil {
		return err
	}
	for _, t := range ts {
		holders = append(holders, referencesTo(t, nil, actionID)...)
	}
	if len(holders) > 0 {
		return &model.ReferenceError{ActionID: actionID, ReferencedBy: holders}
	}
	return s.store.Library().Delete(ctx, workspaceID, actionID)
}

// Clone duplicates a library action under a fresh id with " (Copy)" appended
// to the name. The clone starts with no conditions.
func (s *LibraryService) Clone(ctx context.Context, workspaceID, actionID string) (model.Action, error) {
	a, err := s.store.Library().Get(ctx, workspaceID, actionID)
	if err != nil {
		return model.Action{}, err
	}
	cp := a.Clone(s.newID())
	if err := s.store.Library().Put(ctx, workspaceID, &cp); err != nil {
		return model.Action{}, err
	}
	return cp, nil
}

// Get loads one library action.
func (s *LibraryService) Get(ctx context.Context, workspaceID, actionID string) (*model.Action, error) {
	return s.store.Library().Get(ctx, workspaceID, actionID)
}

// List returns the workspace library.
func (s *LibraryService) List(ctx context.Context, workspaceID string) ([]*model.Action, error) {
	return s.store.Library().List(ctx, workspaceID)
}

// checkOutcomeCompat scans every condition that branches on the action's
// outcome and rejects the type change if any selected outcome would no longer
// be offered.
func (s *LibraryService) checkOutcomeCompat(ctx context.Context, workspaceID, actionID string, next model.ActionType) error {
	offered := make(map[model.ConditionType]bool)
	for _, o := range model.OutcomeTypes(next) {
		offered[o] = true
	}
	check := func(holder model.Action) error {
		for _, c := range holder.Conditions {
			if c.PreviousActionID == actionID && !offered[c.Type] {
				return fmt.Errorf("%w: condition %s on action %s branches on %q, which %s actions do not offer",
					model.ErrConflict, c.ID, holder.ID, c.Type, next)
			}
		}
		return nil
	}

	lib, err := s.store.Library().List(ctx, workspaceID)
	if err != nil {
		return err
	}
	for _, a := range lib {
		if err := check(*a); err != nil {
			return err
		}
	}
	ts, err := s.store.Timelines().List(ctx, workspaceID)
	if err != nil {
		return err
	}
	for _, t := range ts {
		for _, a := range t.AllActions() {
			if err := check(a); err != nil {
				return err
			}
		}
	}
	return nil
}

// Package editor implements the stepwise condition builder: pick the previous
// action, pick an outcome its channel can produce, pick the then-action.
// The builder is pure in-memory state; nothing touches the owning action
// until Save succeeds, and Cancel discards everything.
package editor

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/recovera/timeline-service/internal/model"
)

// State is the builder's current step.
type State int

const (
	StateSelectingPreviousAction State = iota
	StateSelectingOutcomeType
	StateSelectingThenAction
	StateComplete
)

func (s State) String() string {
	switch s {
	case StateSelectingPreviousAction:
		return "selecting_previous_action"
	case StateSelectingOutcomeType:
		return "selecting_outcome_type"
	case StateSelectingThenAction:
		return "selecting_then_action"
	case StateComplete:
		return "complete"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Builder drives one condition through the three selection steps.
type Builder struct {
	ownerID  string
	visible  []model.Action
	existing *model.Condition

	prev    *model.Action
	outcome model.ConditionType
	then    *model.Action
}

// NewBuilder starts a builder for a condition on the action with ownerID.
// visible is every action in the editing context: the library plus all days'
// actions. The owner itself is excluded from every candidate list.
func NewBuilder(ownerID string, visible []model.Action) *Builder {
	return &Builder{ownerID: ownerID, visible: visible}
}

// NewEditor starts a builder pre-loaded from an existing condition; Save will
// preserve its id.
func NewEditor(ownerID string, visible []model.Action, existing model.Condition) (*Builder, error) {
	b := NewBuilder(ownerID, visible)
	c := existing
	b.existing = &c
	if err := b.SelectPrevious(existing.PreviousActionID); err != nil {
		return nil, err
	}
	if err := b.SelectOutcome(existing.Type); err != nil {
		return nil, err
	}
	if err := b.SelectThen(existing.Action.ID); err != nil {
		return nil, err
	}
	return b, nil
}

// State reports the current step.
func (b *Builder) State() State {
	switch {
	case b.prev == nil:
		return StateSelectingPreviousAction
	case b.outcome == "":
		return StateSelectingOutcomeType
	case b.then == nil:
		return StateSelectingThenAction
	default:
		return StateComplete
	}
}

// PreviousCandidates returns the actions eligible as the condition's trigger:
// every visible action except the owner (no self-reference) and except
// negativar actions, which have no delivery outcome to branch on.
func (b *Builder) PreviousCandidates() []model.Action {
	var out []model.Action
	for _, a := range b.visible {
		if a.ID == b.ownerID {
			continue
		}
		if len(model.OutcomeTypes(a.Type)) == 0 {
			continue
		}
		out = append(out, a)
	}
	return out
}

// SelectPrevious chooses the previous action by id. Changing the previous
// action resets any outcome already selected, since the offered outcome set
// depends on the previous action's type.
func (b *Builder) SelectPrevious(actionID string) error {
	if actionID == b.ownerID {
		return fmt.Errorf("%w: a condition cannot reference the action it belongs to", model.ErrValidation)
	}
	for _, a := range b.PreviousCandidates() {
		if a.ID == actionID {
			prev := a
			b.prev = &prev
			b.outcome = ""
			return nil
		}
	}
	return fmt.Errorf("%w: previous action %s is not an eligible candidate", model.ErrValidation, actionID)
}

// Outcomes returns the outcome types the chosen previous action can produce.
func (b *Builder) Outcomes() []model.ConditionType {
	if b.prev == nil {
		return nil
	}
	return model.OutcomeTypes(b.prev.Type)
}

// SelectOutcome chooses the triggering outcome. The previous action must
// already be selected and the outcome must be one its type offers.
func (b *Builder) SelectOutcome(t model.ConditionType) error {
	if b.prev == nil {
		return fmt.Errorf("%w: select a previous action first", model.ErrValidation)
	}
	for _, o := range b.Outcomes() {
		if o == t {
			b.outcome = t
			return nil
		}
	}
	return fmt.Errorf("%w: outcome %q is not offered for %s actions", model.ErrValidation, t, b.prev.Type)
}

// ThenCandidates returns the actions eligible to be performed: the visible
// set minus the owner and minus the chosen previous action (self-loops are
// not permitted).
func (b *Builder) ThenCandidates() []model.Action {
	var out []model.Action
	for _, a := range b.visible {
		if a.ID == b.ownerID {
			continue
		}
		if b.prev != nil && a.ID == b.prev.ID {
			continue
		}
		out = append(out, a)
	}
	return out
}

// SelectThen chooses the action to perform when the condition triggers.
func (b *Builder) SelectThen(actionID string) error {
	if b.outcome == "" {
		return fmt.Errorf("%w: select an outcome first", model.ErrValidation)
	}
	for _, a := range b.ThenCandidates() {
		if a.ID == actionID {
			then := a
			b.then = &then
			return nil
		}
	}
	return fmt.Errorf("%w: then action %s is not an eligible candidate", model.ErrValidation, actionID)
}

// Save emits the finished condition. The then-action is embedded by value: a
// snapshot taken now, re-taken on every edit through this builder, never a
// live reference. Editing preserves the original condition id; creating mints
// a fresh one.
func (b *Builder) Save() (model.Condition, error) {
	if b.State() != StateComplete {
		return model.Condition{}, fmt.Errorf("%w: condition is incomplete (%s)", model.ErrValidation, b.State())
	}
	id := uuid.New().String()
	if b.existing != nil {
		id = b.existing.ID
	}
	snap := b.then.DeepCopy()
	return model.Condition{
		ID:               id,
		Type:             b.outcome,
		PreviousActionID: b.prev.ID,
		Action:           snap,
	}, nil
}

// Cancel discards the in-progress selection. The owning action is never
// touched by the builder, so there is nothing else to roll back.
func (b *Builder) Cancel() {
	b.prev = nil
	b.outcome = ""
	b.then = nil
}

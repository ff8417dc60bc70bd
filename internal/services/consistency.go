package services

import (
	"fmt"
	"sort"

	"github.com/recovera/timeline-service/internal/model"
)

// visibleActions is the editing context for a timeline: the workspace library
// plus every action placed on the timeline's days.
func visibleActions(t *model.Timeline, library []*model.Action) []model.Action {
	out := make([]model.Action, 0, len(library))
	for _, a := range library {
		out = append(out, *a)
	}
	return append(out, t.AllActions()...)
}

// checkTimeline verifies the aggregate before any put: the days cover exactly
// the fixed [dayFrom, dayTo] range (the range never grows or shrinks, only
// the active flags vary), one day per offset carrying its deterministic id,
// action ids placed on at most one day, and every condition resolvable,
// eligible, ordered and acyclic. A timeline that fails here is never written.
func checkTimeline(t *model.Timeline, library []*model.Action, dayFrom, dayTo int) error {
	if want := dayTo - dayFrom + 1; len(t.Days) != want {
		return fmt.Errorf("%w: timeline has %d days, want the fixed %d-day range [%d, %d]",
			model.ErrValidation, len(t.Days), want, dayFrom, dayTo)
	}
	offsets := make(map[int]bool, len(t.Days))
	placed := make(map[string]int)
	for _, d := range t.Days {
		if d.Day < dayFrom || d.Day > dayTo {
			return fmt.Errorf("%w: day offset %d outside the fixed range [%d, %d]",
				model.ErrValidation, d.Day, dayFrom, dayTo)
		}
		if offsets[d.Day] {
			return fmt.Errorf("%w: duplicate day offset %d", model.ErrValidation, d.Day)
		}
		offsets[d.Day] = true
		if d.ID != model.DayID(d.Day) {
			return fmt.Errorf("%w: day at offset %d has id %q, want %q", model.ErrValidation, d.Day, d.ID, model.DayID(d.Day))
		}
		for _, a := range d.Actions {
			if _, dup := placed[a.ID]; dup {
				return fmt.Errorf("%w: action %s is placed on more than one day", model.ErrConflict, a.ID)
			}
			placed[a.ID] = d.Day
		}
	}
	return checkConditions(t, library, placed)
}

// checkConditions walks every condition visible from the timeline. References
// are re-validated on each put so a dangling or ineligible condition can never
// persist, whichever edit introduced it.
func checkConditions(t *model.Timeline, library []*model.Action, placed map[string]int) error {
	byID := make(map[string]model.Action)
	for _, a := range library {
		byID[a.ID] = *a
	}
	for _, a := range t.AllActions() {
		byID[a.ID] = a
	}

	check := func(holder model.Action, holderDay int, onDay bool) error {
		for _, c := range holder.Conditions {
			if c.PreviousActionID == holder.ID {
				return fmt.Errorf("%w: condition %s on %s references its own action", model.ErrValidation, c.ID, holder.ID)
			}
			prev, ok := byID[c.PreviousActionID]
			if !ok {
				return fmt.Errorf("%w: condition %s references unknown action %s", model.ErrValidation, c.ID, c.PreviousActionID)
			}
			eligible := false
			for _, o := range model.OutcomeTypes(prev.Type) {
				if o == c.Type {
					eligible = true
					break
				}
			}
			if !eligible {
				return fmt.Errorf("%w: outcome %q is not offered for %s actions", model.ErrValidation, c.Type, prev.Type)
			}
			// A placed previous action must not be scheduled after its
			// dependent: the outcome has to exist before it can branch.
			if prevDay, onPrevDay := placed[prev.ID]; onDay && onPrevDay && prevDay > holderDay {
				return fmt.Errorf("%w: condition %s depends on %s (day %d) after its own day %d",
					model.ErrValidation, c.ID, prev.ID, prevDay, holderDay)
			}
			if c.Action.ID == holder.ID {
				return fmt.Errorf("%w: condition %s would perform its own action", model.ErrValidation, c.ID)
			}
			if c.Action.ID == prev.ID {
				return fmt.Errorf("%w: condition %s loops back to its previous action", model.ErrValidation, c.ID)
			}
			if _, ok := byID[c.Action.ID]; !ok {
				return fmt.Errorf("%w: condition %s performs unknown action %s", model.ErrValidation, c.ID, c.Action.ID)
			}
		}
		return nil
	}

	for _, d := range t.Days {
		for _, a := range d.Actions {
			if err := check(a, d.Day, true); err != nil {
				return err
			}
		}
	}
	for _, a := range library {
		if err := check(*a, 0, false); err != nil {
			return err
		}
	}
	return checkAcyclic(byID)
}

// checkAcyclic rejects cycles in the previous-action dependency graph.
func checkAcyclic(byID map[string]model.Action) error {
	const (
		unseen = 0
		active = 1
		done   = 2
	)
	state := make(map[string]int, len(byID))

	var visit func(id string) error
	visit = func(id string) error {
		switch state[id] {
		case active:
			return fmt.Errorf("%w: condition chain through action %s forms a cycle", model.ErrValidation, id)
		case done:
			return nil
		}
		state[id] = active
		for _, c := range byID[id].Conditions {
			if _, ok := byID[c.PreviousActionID]; ok {
				if err := visit(c.PreviousActionID); err != nil {
					return err
				}
			}
		}
		state[id] = done
		return nil
	}

	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if err := visit(id); err != nil {
			return err
		}
	}
	return nil
}

// referencesTo returns the ids of every visible action holding a condition
// that references actionID, as the previous action or as the embedded
// then-action. Used to block deletes that would dangle.
func referencesTo(t *model.Timeline, library []*model.Action, actionID string) []string {
	var holders []string
	scan := func(a model.Action) {
		if a.ID == actionID {
			return
		}
		for _, c := range a.Conditions {
			if c.PreviousActionID == actionID || c.Action.ID == actionID {
				holders = append(holders, a.ID)
				return
			}
		}
	}
	for _, a := range library {
		scan(*a)
	}
	if t != nil {
		for _, a := range t.AllActions() {
			scan(a)
		}
	}
	sort.Strings(holders)
	return holders
}

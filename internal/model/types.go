package model

import (
	"fmt"
	"time"
)

// ActionType identifies the communication channel an action uses.
// Negativar is the credit-bureau reporting action and carries no message body.
type ActionType string

const (
	ActionEmail     ActionType = "email"
	ActionWhatsApp  ActionType = "whatsapp"
	ActionSMS       ActionType = "sms"
	ActionNegativar ActionType = "negativar"
)

// ValidActionType reports whether t is one of the closed set of action types.
func ValidActionType(t ActionType) bool {
	switch t {
	case ActionEmail, ActionWhatsApp, ActionSMS, ActionNegativar:
		return true
	}
	return false
}

// RequiresContent reports whether actions of type t must carry a subject and
// message. Negativar actions have no message concept.
func (t ActionType) RequiresContent() bool {
	return t != ActionNegativar
}

// ConditionType is the delivery outcome a condition triggers on.
type ConditionType string

const (
	ConditionDelivered    ConditionType = "delivered"
	ConditionNotDelivered ConditionType = "not_delivered"
	ConditionOpened       ConditionType = "opened"
	ConditionNotOpened    ConditionType = "not_opened"
	ConditionClicked      ConditionType = "clicked"
	ConditionNotClicked   ConditionType = "not_clicked"
)

// OutcomeTypes returns the condition types a previous action of type t can
// produce. Email unlocks all six outcomes; WhatsApp and SMS only report
// delivery. Negativar has no outcomes and is never a valid previous action.
func OutcomeTypes(t ActionType) []ConditionType {
	switch t {
	case ActionEmail:
		return []ConditionType{
			ConditionDelivered, ConditionNotDelivered,
			ConditionOpened, ConditionNotOpened,
			ConditionClicked, ConditionNotClicked,
		}
	case ActionWhatsApp, ActionSMS:
		return []ConditionType{ConditionDelivered, ConditionNotDelivered}
	default:
		return nil
	}
}

// Condition chains an action's outcome to performing another action.
// The then-action is embedded by value: a snapshot taken when the condition is
// saved, not a live reference. The ids are re-validated on every timeline put
// so a dangling PreviousActionID can never persist.
type Condition struct {
	ID               string        `json:"id"`
	Type             ConditionType `json:"type"`
	PreviousActionID string        `json:"previousActionId"`
	Action           Action        `json:"action"`
}

// Action is the atomic unit of communication placed on a day or held in the
// shared library. DayID is a back-reference only; the containing day (or the
// library) is the owner of record.
type Action struct {
	ID         string      `json:"id"`
	Type       ActionType  `json:"type"`
	Name       string      `json:"name"`
	Subject    string      `json:"subject,omitempty"`
	Message    string      `json:"message,omitempty"`
	SendTime   string      `json:"sendTime,omitempty"` // HH:mm, optional
	Conditions []Condition `json:"conditions"`
	DayID      *string     `json:"dayId,omitempty"`
}

// Clone returns a copy of a with a fresh id, an empty condition list and
// " (Copy)" appended to the name. Conditions are never carried over: they
// reference prior actions that may not exist in the clone's context.
func (a Action) Clone(newID string) Action {
	out := a
	out.ID = newID
	out.Name = a.Name + " (Copy)"
	out.Conditions = []Condition{}
	out.DayID = nil
	return out
}

// DeepCopy returns a value copy of a with its own condition slice.
func (a Action) DeepCopy() Action {
	out := a
	out.Conditions = make([]Condition, len(a.Conditions))
	for i, c := range a.Conditions {
		cc := c
		cc.Action = c.Action.DeepCopy()
		out.Conditions[i] = cc
	}
	if a.DayID != nil {
		id := *a.DayID
		out.DayID = &id
	}
	return out
}

// Day is a fixed offset-from-due-date slot within a timeline. Inactive days
// are hidden from views and excluded from exports but keep their actions.
type Day struct {
	ID      string   `json:"id"`
	Day     int      `json:"day"`
	Actions []Action `json:"actions"`
	Active  bool     `json:"active"`
}

// DayID derives the deterministic day identifier for an offset.
func DayID(offset int) string { return fmt.Sprintf("day-%d", offset) }

// Label renders the operator-facing name of the day ("Due Date", "D+7", "D-3").
func (d Day) Label() string {
	switch {
	case d.Day == 0:
		return "Due Date"
	case d.Day > 0:
		return fmt.Sprintf("D+%d", d.Day)
	default:
		return fmt.Sprintf("D%d", d.Day)
	}
}

// DeepCopy returns a value copy of d with its own action slice.
func (d Day) DeepCopy() Day {
	out := d
	out.Actions = make([]Action, len(d.Actions))
	for i, a := range d.Actions {
		out.Actions[i] = a.DeepCopy()
	}
	return out
}

// ActionByID returns a pointer into d.Actions for the given id, or nil.
func (d *Day) ActionByID(id string) *Action {
	for i := range d.Actions {
		if d.Actions[i].ID == id {
			return &d.Actions[i]
		}
	}
	return nil
}

// DefaultTimelineName is the placeholder used when a timeline is created
// without a name.
const DefaultTimelineName = "Untitled Timeline"

// Timeline is the full collection-schedule aggregate: a named, fixed range of
// days relative to the due date. The day range is pre-created at construction
// and never grows or shrinks; only the per-day active flag varies.
type Timeline struct {
	ID          string    `json:"id"`
	WorkspaceID string    `json:"workspaceId"`
	Name        string    `json:"name"`
	Days        []Day     `json:"days"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewTimeline builds a timeline with the full [from, to] day range. Only the
// due date (offset 0) starts active.
func NewTimeline(id, workspaceID, name string, from, to int, createdAt time.Time) *Timeline {
	if name == "" {
		name = DefaultTimelineName
	}
	days := make([]Day, 0, to-from+1)
	for i := from; i <= to; i++ {
		days = append(days, Day{
			ID:      DayID(i),
			Day:     i,
			Actions: []Action{},
			Active:  i == 0,
		})
	}
	return &Timeline{
		ID:          id,
		WorkspaceID: workspaceID,
		Name:        name,
		Days:        days,
		CreatedAt:   createdAt,
	}
}

// DayByID returns a pointer into t.Days for the given day id, or nil.
func (t *Timeline) DayByID(id string) *Day {
	for i := range t.Days {
		if t.Days[i].ID == id {
			return &t.Days[i]
		}
	}
	return nil
}

// ActionByID locates an action anywhere on the timeline and returns it along
// with its containing day.
func (t *Timeline) ActionByID(id string) (*Action, *Day) {
	for i := range t.Days {
		if a := t.Days[i].ActionByID(id); a != nil {
			return a, &t.Days[i]
		}
	}
	return nil, nil
}

// AllActions returns every action placed on the timeline, in day order.
func (t *Timeline) AllActions() []Action {
	var out []Action
	for _, d := range t.Days {
		out = append(out, d.Actions...)
	}
	return out
}

// DeepCopy returns an independent copy of the aggregate.
func (t *Timeline) DeepCopy() *Timeline {
	out := *t
	out.Days = make([]Day, len(t.Days))
	for i, d := range t.Days {
		out.Days[i] = d.DeepCopy()
	}
	return &out
}

// TimelineSummary is the list-view projection of a timeline.
type TimelineSummary struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	CreatedAt   time.Time `json:"createdAt"`
	ActiveDays  int       `json:"activeDays"`
	ActionCount int       `json:"actionCount"`
}

// Summary computes the list-view projection.
func (t *Timeline) Summary() TimelineSummary {
	s := TimelineSummary{ID: t.ID, Name: t.Name, CreatedAt: t.CreatedAt}
	for _, d := range t.Days {
		if d.Active {
			s.ActiveDays++
		}
		s.ActionCount += len(d.Actions)
	}
	return s
}

// ExportDocument is the lossy, display-oriented export of a timeline: active
// days only, plus the workspace library. It is not a backup format; inactive
// days and their actions are dropped entirely.
type ExportDocument struct {
	Name           string   `json:"name"`
	Days           []Day    `json:"days"`
	LibraryActions []Action `json:"libraryActions"`
}

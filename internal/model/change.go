package model

// ChangeKind names the mutation a placement operation performed. The clone vs.
// move distinction is determined solely by whether the origin was the library.
type ChangeKind string

const (
	ChangeActionAdded    ChangeKind = "action_added"
	ChangeActionUpdated  ChangeKind = "action_updated"
	ChangeActionMoved    ChangeKind = "action_moved"
	ChangeActionCloned   ChangeKind = "action_cloned"
	ChangeActionRemoved  ChangeKind = "action_removed"
	ChangeConditionSaved ChangeKind = "condition_saved"
	ChangeDayToggled     ChangeKind = "day_toggled"
	ChangeNoop           ChangeKind = "noop"
)

// Change describes the outcome of a mutation for callers that surface it
// (a toast, a log line). It is a result value, not an event stream.
type Change struct {
	Kind       ChangeKind `json:"kind"`
	TimelineID string     `json:"timelineId,omitempty"`
	DayID      string     `json:"dayId,omitempty"`
	ActionID   string     `json:"actionId,omitempty"`
	Detail     string     `json:"detail,omitempty"`
}

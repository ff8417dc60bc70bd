package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recovera/timeline-service/internal/model"
)

func visible() []model.Action {
	return []model.Action{
		{ID: "owner", Type: model.ActionEmail, Name: "owner"},
		{ID: "mail", Type: model.ActionEmail, Name: "mail"},
		{ID: "sms", Type: model.ActionSMS, Name: "sms"},
		{ID: "neg", Type: model.ActionNegativar, Name: "neg"},
	}
}

func TestBuilderWalksAllSteps(t *testing.T) {
	b := NewBuilder("owner", visible())
	assert.Equal(t, StateSelectingPreviousAction, b.State())

	require.NoError(t, b.SelectPrevious("mail"))
	assert.Equal(t, StateSelectingOutcomeType, b.State())
	assert.Len(t, b.Outcomes(), 6)

	require.NoError(t, b.SelectOutcome(model.ConditionNotOpened))
	assert.Equal(t, StateSelectingThenAction, b.State())

	require.NoError(t, b.SelectThen("sms"))
	assert.Equal(t, StateComplete, b.State())

	c, err := b.Save()
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, model.ConditionNotOpened, c.Type)
	assert.Equal(t, "mail", c.PreviousActionID)
	assert.Equal(t, "sms", c.Action.ID)
}

func TestPreviousCandidatesExcludeOwnerAndNegativar(t *testing.T) {
	b := NewBuilder("owner", visible())
	var ids []string
	for _, a := range b.PreviousCandidates() {
		ids = append(ids, a.ID)
	}
	assert.Equal(t, []string{"mail", "sms"}, ids)
}

func TestThenCandidatesExcludeOwnerAndPrevious(t *testing.T) {
	b := NewBuilder("owner", visible())
	require.NoError(t, b.SelectPrevious("mail"))
	require.NoError(t, b.SelectOutcome(model.ConditionDelivered))

	var ids []string
	for _, a := range b.ThenCandidates() {
		ids = append(ids, a.ID)
	}
	assert.Equal(t, []string{"sms", "neg"}, ids)
}

func TestChangingPreviousResetsOutcome(t *testing.T) {
	b := NewBuilder("owner", visible())
	require.NoError(t, b.SelectPrevious("mail"))
	require.NoError(t, b.SelectOutcome(model.ConditionClicked))

	// SMS does not offer "clicked", so the selection cannot survive
	require.NoError(t, b.SelectPrevious("sms"))
	assert.Equal(t, StateSelectingOutcomeType, b.State())
	assert.Len(t, b.Outcomes(), 2)
	require.ErrorIs(t, b.SelectOutcome(model.ConditionClicked), model.ErrValidation)
}

func TestStepOrderIsEnforced(t *testing.T) {
	b := NewBuilder("owner", visible())
	require.ErrorIs(t, b.SelectOutcome(model.ConditionDelivered), model.ErrValidation)
	require.ErrorIs(t, b.SelectThen("sms"), model.ErrValidation)
	_, err := b.Save()
	require.ErrorIs(t, err, model.ErrValidation)
}

func TestSelfReferenceRejected(t *testing.T) {
	b := NewBuilder("owner", visible())
	require.ErrorIs(t, b.SelectPrevious("owner"), model.ErrValidation)
}

func TestEditorPreservesID(t *testing.T) {
	existing := model.Condition{
		ID: "c1", Type: model.ConditionDelivered, PreviousActionID: "mail",
		Action: model.Action{ID: "sms"},
	}
	b, err := NewEditor("owner", visible(), existing)
	require.NoError(t, err)
	assert.Equal(t, StateComplete, b.State())

	require.NoError(t, b.SelectThen("neg"))
	c, err := b.Save()
	require.NoError(t, err)
	assert.Equal(t, "c1", c.ID)
	assert.Equal(t, "neg", c.Action.ID)
}

func TestSaveSnapshotsThenAction(t *testing.T) {
	actions := visible()
	b := NewBuilder("owner", actions)
	require.NoError(t, b.SelectPrevious("mail"))
	require.NoError(t, b.SelectOutcome(model.ConditionDelivered))
	require.NoError(t, b.SelectThen("sms"))

	c, err := b.Save()
	require.NoError(t, err)

	// later edits to the source action do not reach the saved snapshot
	actions[2].Name = "renamed"
	assert.Equal(t, "sms", c.Action.Name)
}

func TestCancelResets(t *testing.T) {
	b := NewBuilder("owner", visible())
	require.NoError(t, b.SelectPrevious("mail"))
	require.NoError(t, b.SelectOutcome(model.ConditionDelivered))
	b.Cancel()
	assert.Equal(t, StateSelectingPreviousAction, b.State())
}

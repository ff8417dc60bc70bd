package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutcomeTypes(t *testing.T) {
	assert.Len(t, OutcomeTypes(ActionEmail), 6)
	assert.Equal(t, []ConditionType{ConditionDelivered, ConditionNotDelivered}, OutcomeTypes(ActionWhatsApp))
	assert.Equal(t, []ConditionType{ConditionDelivered, ConditionNotDelivered}, OutcomeTypes(ActionSMS))
	assert.Nil(t, OutcomeTypes(ActionNegativar))
}

func TestActionClone(t *testing.T) {
	day := "day-3"
	a := Action{
		ID: "a1", Type: ActionEmail, Name: "Reminder",
		Subject: "s", Message: "m", SendTime: "10:00",
		Conditions: []Condition{{ID: "c1", Type: ConditionOpened, PreviousActionID: "a0"}},
		DayID:      &day,
	}

	cp := a.Clone("a2")
	assert.Equal(t, "a2", cp.ID)
	assert.Equal(t, "Reminder (Copy)", cp.Name)
	assert.Empty(t, cp.Conditions)
	assert.Nil(t, cp.DayID)
	assert.Equal(t, a.Subject, cp.Subject)
	assert.Equal(t, a.SendTime, cp.SendTime)
}

func TestActionDeepCopyIsIndependent(t *testing.T) {
	a := Action{
		ID:         "a1",
		Conditions: []Condition{{ID: "c1", Action: Action{ID: "then"}}},
	}
	cp := a.DeepCopy()
	cp.Conditions[0].ID = "mutated"
	assert.Equal(t, "c1", a.Conditions[0].ID)
}

func TestNewTimelineRange(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	tl := NewTimeline("t1", "ws", "", -10, 90, now)

	assert.Equal(t, DefaultTimelineName, tl.Name)
	require.Len(t, tl.Days, 101)
	for i, d := range tl.Days {
		assert.Equal(t, -10+i, d.Day)
		assert.Equal(t, DayID(d.Day), d.ID)
		assert.NotNil(t, d.Actions)
	}

	active := 0
	for _, d := range tl.Days {
		if d.Active {
			active++
			assert.Equal(t, 0, d.Day)
		}
	}
	assert.Equal(t, 1, active)
}

func TestDayLabel(t *testing.T) {
	assert.Equal(t, "Due Date", Day{Day: 0}.Label())
	assert.Equal(t, "D+7", Day{Day: 7}.Label())
	assert.Equal(t, "D-3", Day{Day: -3}.Label())
}

func TestTimelineLookups(t *testing.T) {
	tl := NewTimeline("t1", "ws", "n", -2, 2, time.Now())
	tl.Days[1].Actions = append(tl.Days[1].Actions, Action{ID: "a1", Name: "x"})

	day := tl.DayByID("day--1")
	require.NotNil(t, day)
	assert.Equal(t, -1, day.Day)
	assert.Nil(t, tl.DayByID("day-99"))

	a, d := tl.ActionByID("a1")
	require.NotNil(t, a)
	assert.Equal(t, -1, d.Day)
	a2, _ := tl.ActionByID("missing")
	assert.Nil(t, a2)

	assert.Len(t, tl.AllActions(), 1)
}

func TestTimelineSummary(t *testing.T) {
	tl := NewTimeline("t1", "ws", "n", -2, 2, time.Now())
	tl.Days[0].Active = true
	tl.Days[0].Actions = append(tl.Days[0].Actions, Action{ID: "a1"}, Action{ID: "a2"})

	s := tl.Summary()
	assert.Equal(t, 2, s.ActiveDays) // day -2 and the due date
	assert.Equal(t, 2, s.ActionCount)
}

func TestDecodeActionPayloadLegacy(t *testing.T) {
	raw := []byte(`{
		"id": "a1",
		"tipo": "whatsapp",
		"nome": "Cobrança",
		"assunto_email": "Assunto",
		"conteudo_mensagem": "Mensagem",
		"horario_envio": "14:30"
	}`)
	a, err := DecodeActionPayload(raw)
	require.NoError(t, err)
	assert.Equal(t, ActionWhatsApp, a.Type)
	assert.Equal(t, "Cobrança", a.Name)
	assert.Equal(t, "Assunto", a.Subject)
	assert.Equal(t, "Mensagem", a.Message)
	assert.Equal(t, "14:30", a.SendTime)
	assert.NotNil(t, a.Conditions)
}

func TestDecodeActionPayloadPrefersCanonical(t *testing.T) {
	raw := []byte(`{"type": "email", "tipo": "sms", "name": "New", "nome": "Old"}`)
	a, err := DecodeActionPayload(raw)
	require.NoError(t, err)
	assert.Equal(t, ActionEmail, a.Type)
	assert.Equal(t, "New", a.Name)
}

func TestReferenceErrorWrapsConflict(t *testing.T) {
	err := &ReferenceError{ActionID: "a1", ReferencedBy: []string{"a2", "a3"}}
	assert.ErrorIs(t, err, ErrConflict)
	assert.Contains(t, err.Error(), "a1")
	assert.Contains(t, err.Error(), "a2, a3")
}

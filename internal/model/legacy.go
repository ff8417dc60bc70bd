package model

import "encoding/json"

// legacyActionPayload covers the older Portuguese field names some stored
// library actions still carry. Both shapes are accepted at the storage
// boundary and collapsed to the canonical Action; the legacy fields never
// leave this package.
type legacyActionPayload struct {
	ID       string      `json:"id"`
	Type     ActionType  `json:"type"`
	Tipo     ActionType  `json:"tipo"`
	Name     string      `json:"name"`
	Nome     string      `json:"nome"`
	Subject  string      `json:"subject"`
	Assunto  string      `json:"assunto_email"`
	Message  string      `json:"message"`
	Conteudo string      `json:"conteudo_mensagem"`
	SendTime string      `json:"sendTime"`
	Horario  string      `json:"horario_envio"`
	Conds    []Condition `json:"conditions"`
	DayID    *string     `json:"dayId"`
}

// DecodeActionPayload unmarshals an action from either the canonical shape or
// the legacy dual-field shape, preferring canonical fields when both are set.
func DecodeActionPayload(raw []byte) (Action, error) {
	var p legacyActionPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Action{}, err
	}
	a := Action{
		ID:         p.ID,
		Type:       p.Type,
		Name:       p.Name,
		Subject:    p.Subject,
		Message:    p.Message,
		SendTime:   p.SendTime,
		Conditions: p.Conds,
		DayID:      p.DayID,
	}
	if a.Type == "" {
		a.Type = p.Tipo
	}
	if a.Name == "" {
		a.Name = p.Nome
	}
	if a.Subject == "" {
		a.Subject = p.Assunto
	}
	if a.Message == "" {
		a.Message = p.Conteudo
	}
	if a.SendTime == "" {
		a.SendTime = p.Horario
	}
	if a.Conditions == nil {
		a.Conditions = []Condition{}
	}
	return a, nil
}

package http

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/recovera/timeline-service/internal/api/respond"
	"github.com/recovera/timeline-service/internal/model"
	"github.com/recovera/timeline-service/internal/services"
)

// TimelineHandler is the HTTP transport over TimelineService.
type TimelineHandler struct {
	svc *services.TimelineService
}

func NewTimelineHandler(svc *services.TimelineService) *TimelineHandler {
	return &TimelineHandler{svc: svc}
}

// Create POST /api/workspaces/{workspaceId}/timelines
func (h *TimelineHandler) Create(w http.ResponseWriter, r *http.Request) {
	ws := mux.Vars(r)["workspaceId"]
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		respond.WriteBadRequest(w, "invalid JSON")
		return
	}
	t, err := h.svc.Create(r.Context(), ws, req.Name)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, t)
}

// List GET /api/workspaces/{workspaceId}/timelines
func (h *TimelineHandler) List(w http.ResponseWriter, r *http.Request) {
	ws := mux.Vars(r)["workspaceId"]
	ts, err := h.svc.List(r.Context(), ws)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"timelines": ts, "count": len(ts)})
}

// Get GET /api/workspaces/{workspaceId}/timelines/{timelineId}
func (h *TimelineHandler) Get(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	t, err := h.svc.Get(r.Context(), vars["workspaceId"], vars["timelineId"])
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, t)
}

// Save PUT /api/workspaces/{workspaceId}/timelines/{timelineId}
//
// Accepts a whole aggregate from an editor session. The write is validated
// synchronously but may be persisted asynchronously, so the response is 202.
func (h *TimelineHandler) Save(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	var t model.Timeline
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		respond.WriteBadRequest(w, "invalid JSON")
		return
	}
	t.ID = vars["timelineId"]
	if err := h.svc.SaveAggregate(r.Context(), vars["workspaceId"], &t); err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

// Flush POST /api/workspaces/{workspaceId}/timelines/{timelineId}/flush
func (h *TimelineHandler) Flush(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.svc.FlushTimeline(r.Context(), vars["workspaceId"], vars["timelineId"]); err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Rename PATCH /api/workspaces/{workspaceId}/timelines/{timelineId}
func (h *TimelineHandler) Rename(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "invalid JSON")
		return
	}
	t, err := h.svc.Rename(r.Context(), vars["workspaceId"], vars["timelineId"], req.Name)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, t)
}

// Delete DELETE /api/workspaces/{workspaceId}/timelines/{timelineId}
func (h *TimelineHandler) Delete(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.svc.Delete(r.Context(), vars["workspaceId"], vars["timelineId"]); err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Duplicate POST /api/workspaces/{workspaceId}/timelines/{timelineId}/duplicate
func (h *TimelineHandler) Duplicate(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	cp, err := h.svc.Duplicate(r.Context(), vars["workspaceId"], vars["timelineId"])
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, cp)
}

// Export GET /api/workspaces/{workspaceId}/timelines/{timelineId}/export
func (h *TimelineHandler) Export(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	doc, err := h.svc.Export(r.Context(), vars["workspaceId"], vars["timelineId"])
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, doc)
}

// UpsertDayAction PUT /api/workspaces/{workspaceId}/timelines/{timelineId}/days/{dayId}/actions
//
// The body may be the canonical action shape or the legacy field names still
// emitted by older clients.
func (h *TimelineHandler) UpsertDayAction(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		respond.WriteBadRequest(w, "unreadable body")
		return
	}
	a, err := model.DecodeActionPayload(raw)
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	out, change, err := h.svc.UpsertDayAction(r.Context(), vars["workspaceId"], vars["timelineId"], vars["dayId"], a)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	status := http.StatusOK
	if change.Kind == model.ChangeActionAdded {
		status = http.StatusCreated
	}
	respond.WriteJSON(w, status, map[string]interface{}{"action": out, "change": change})
}

// RemoveDayAction DELETE /api/workspaces/{workspaceId}/timelines/{timelineId}/days/{dayId}/actions/{actionId}
func (h *TimelineHandler) RemoveDayAction(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	change, err := h.svc.RemoveDayAction(r.Context(), vars["workspaceId"], vars["timelineId"], vars["dayId"], vars["actionId"])
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"change": change})
}

// MoveAction POST /api/workspaces/{workspaceId}/timelines/{timelineId}/actions/{actionId}/move
//
// A null fromDayId means the action is dragged out of the library.
func (h *TimelineHandler) MoveAction(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	var req struct {
		FromDayID *string `json:"fromDayId"`
		ToDayID   string  `json:"toDayId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "invalid JSON")
		return
	}
	if req.ToDayID == "" {
		respond.WriteBadRequest(w, "toDayId is required")
		return
	}
	a, change, err := h.svc.MoveAction(r.Context(), vars["workspaceId"], vars["timelineId"], vars["actionId"], req.FromDayID, req.ToDayID)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"action": a, "change": change})
}

// ToggleDay POST /api/workspaces/{workspaceId}/timelines/{timelineId}/days/{dayId}/toggle
func (h *TimelineHandler) ToggleDay(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	day, change, err := h.svc.ToggleDay(r.Context(), vars["workspaceId"], vars["timelineId"], vars["dayId"])
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"day": day, "change": change})
}

// SaveCondition PUT /api/workspaces/{workspaceId}/timelines/{timelineId}/actions/{actionId}/conditions
func (h *TimelineHandler) SaveCondition(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	var req services.ConditionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "invalid JSON")
		return
	}
	cond, change, err := h.svc.SaveCondition(r.Context(), vars["workspaceId"], vars["timelineId"], vars["actionId"], req)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"condition": cond, "change": change})
}

// DeleteCondition DELETE /api/workspaces/{workspaceId}/timelines/{timelineId}/actions/{actionId}/conditions/{conditionId}
func (h *TimelineHandler) DeleteCondition(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	change, err := h.svc.DeleteCondition(r.Context(), vars["workspaceId"], vars["timelineId"], vars["actionId"], vars["conditionId"])
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"change": change})
}

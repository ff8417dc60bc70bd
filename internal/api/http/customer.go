package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/recovera/timeline-service/internal/api/respond"
	"github.com/recovera/timeline-service/internal/model"
	"github.com/recovera/timeline-service/internal/services"
)

// CustomerHandler is the HTTP transport over CustomerService.
type CustomerHandler struct {
	svc *services.CustomerService
}

func NewCustomerHandler(svc *services.CustomerService) *CustomerHandler {
	return &CustomerHandler{svc: svc}
}

// Create POST /api/workspaces/{workspaceId}/customers
func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	ws := mux.Vars(r)["workspaceId"]
	var c model.Customer
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		respond.WriteBadRequest(w, "invalid JSON")
		return
	}
	out, err := h.svc.Create(r.Context(), ws, c)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

// List GET /api/workspaces/{workspaceId}/customers
func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	ws := mux.Vars(r)["workspaceId"]
	cs, err := h.svc.List(r.Context(), ws)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"customers": cs, "count": len(cs)})
}

// Get GET /api/workspaces/{workspaceId}/customers/{customerId}
func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	c, err := h.svc.Get(r.Context(), vars["workspaceId"], vars["customerId"])
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, c)
}

// Update PUT /api/workspaces/{workspaceId}/customers/{customerId}
func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	var c model.Customer
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		respond.WriteBadRequest(w, "invalid JSON")
		return
	}
	out, err := h.svc.Update(r.Context(), vars["workspaceId"], vars["customerId"], c)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// Delete DELETE /api/workspaces/{workspaceId}/customers/{customerId}
func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.svc.Delete(r.Context(), vars["workspaceId"], vars["customerId"]); err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RecordEvent POST /api/workspaces/{workspaceId}/customers/{customerId}/events
func (h *CustomerHandler) RecordEvent(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	var e model.CustomerTimelineEvent
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		respond.WriteBadRequest(w, "invalid JSON")
		return
	}
	out, err := h.svc.RecordEvent(r.Context(), vars["workspaceId"], vars["customerId"], e)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

// ListEvents GET /api/workspaces/{workspaceId}/customers/{customerId}/events
func (h *CustomerHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	events, err := h.svc.Events(r.Context(), vars["workspaceId"], vars["customerId"])
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"events": events, "count": len(events)})
}

// SegmentHandler is the HTTP transport over SegmentService.
type SegmentHandler struct {
	svc *services.SegmentService
}

func NewSegmentHandler(svc *services.SegmentService) *SegmentHandler {
	return &SegmentHandler{svc: svc}
}

// Create POST /api/workspaces/{workspaceId}/segments
func (h *SegmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	ws := mux.Vars(r)["workspaceId"]
	var seg model.CustomerSegment
	if err := json.NewDecoder(r.Body).Decode(&seg); err != nil {
		respond.WriteBadRequest(w, "invalid JSON")
		return
	}
	out, err := h.svc.Create(r.Context(), ws, seg)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

// List GET /api/workspaces/{workspaceId}/segments
func (h *SegmentHandler) List(w http.ResponseWriter, r *http.Request) {
	ws := mux.Vars(r)["workspaceId"]
	segs, err := h.svc.List(r.Context(), ws)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"segments": segs, "count": len(segs)})
}

// Get GET /api/workspaces/{workspaceId}/segments/{segmentId}
func (h *SegmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	seg, err := h.svc.Get(r.Context(), vars["workspaceId"], vars["segmentId"])
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, seg)
}

// Update PUT /api/workspaces/{workspaceId}/segments/{segmentId}
func (h *SegmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	var seg model.CustomerSegment
	if err := json.NewDecoder(r.Body).Decode(&seg); err != nil {
		respond.WriteBadRequest(w, "invalid JSON")
		return
	}
	out, err := h.svc.Update(r.Context(), vars["workspaceId"], vars["segmentId"], seg)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// Delete DELETE /api/workspaces/{workspaceId}/segments/{segmentId}
func (h *SegmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.svc.Delete(r.Context(), vars["workspaceId"], vars["segmentId"]); err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

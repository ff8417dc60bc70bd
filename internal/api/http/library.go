package http

import (
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/recovera/timeline-service/internal/api/respond"
	"github.com/recovera/timeline-service/internal/model"
	"github.com/recovera/timeline-service/internal/services"
)

// LibraryHandler is the HTTP transport over LibraryService.
type LibraryHandler struct {
	svc *services.LibraryService
}

func NewLibraryHandler(svc *services.LibraryService) *LibraryHandler {
	return &LibraryHandler{svc: svc}
}

func decodeAction(w http.ResponseWriter, r *http.Request) (model.Action, bool) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		respond.WriteBadRequest(w, "unreadable body")
		return model.Action{}, false
	}
	a, err := model.DecodeActionPayload(raw)
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return model.Action{}, false
	}
	return a, true
}

// Add POST /api/workspaces/{workspaceId}/library/actions
func (h *LibraryHandler) Add(w http.ResponseWriter, r *http.Request) {
	ws := mux.Vars(r)["workspaceId"]
	a, ok := decodeAction(w, r)
	if !ok {
		return
	}
	out, err := h.svc.Add(r.Context(), ws, a)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

// List GET /api/workspaces/{workspaceId}/library/actions
func (h *LibraryHandler) List(w http.ResponseWriter, r *http.Request) {
	ws := mux.Vars(r)["workspaceId"]
	actions, err := h.svc.List(r.Context(), ws)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"actions": actions, "count": len(actions)})
}

// Get GET /api/workspaces/{workspaceId}/library/actions/{actionId}
func (h *LibraryHandler) Get(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	a, err := h.svc.Get(r.Context(), vars["workspaceId"], vars["actionId"])
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, a)
}

// Update PUT /api/workspaces/{workspaceId}/library/actions/{actionId}
func (h *LibraryHandler) Update(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	a, ok := decodeAction(w, r)
	if !ok {
		return
	}
	out, err := h.svc.Update(r.Context(), vars["workspaceId"], vars["actionId"], a)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// Delete DELETE /api/workspaces/{workspaceId}/library/actions/{actionId}
func (h *LibraryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.svc.Delete(r.Context(), vars["workspaceId"], vars["actionId"]); err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Clone POST /api/workspaces/{workspaceId}/library/actions/{actionId}/clone
func (h *LibraryHandler) Clone(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	cp, err := h.svc.Clone(r.Context(), vars["workspaceId"], vars["actionId"])
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, cp)
}

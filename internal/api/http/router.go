package http

import (
	"github.com/gorilla/mux"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Timelines *TimelineHandler
	Library   *LibraryHandler
	Customers *CustomerHandler
	Segments  *SegmentHandler
	Health    *HealthHandler
}

// NewRouter mounts the full API surface under /api/workspaces/{workspaceId}.
func NewRouter(h Handlers) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", h.Health.Shallow).Methods("GET")
	r.HandleFunc("/health/deep", h.Health.Deep).Methods("GET")

	ws := r.PathPrefix("/api/workspaces/{workspaceId}").Subrouter()

	ws.HandleFunc("/timelines", h.Timelines.Create).Methods("POST")
	ws.HandleFunc("/timelines", h.Timelines.List).Methods("GET")
	ws.HandleFunc("/timelines/{timelineId}", h.Timelines.Get).Methods("GET")
	ws.HandleFunc("/timelines/{timelineId}", h.Timelines.Save).Methods("PUT")
	ws.HandleFunc("/timelines/{timelineId}", h.Timelines.Rename).Methods("PATCH")
	ws.HandleFunc("/timelines/{timelineId}", h.Timelines.Delete).Methods("DELETE")
	ws.HandleFunc("/timelines/{timelineId}/duplicate", h.Timelines.Duplicate).Methods("POST")
	ws.HandleFunc("/timelines/{timelineId}/export", h.Timelines.Export).Methods("GET")
	ws.HandleFunc("/timelines/{timelineId}/flush", h.Timelines.Flush).Methods("POST")

	ws.HandleFunc("/timelines/{timelineId}/days/{dayId}/actions", h.Timelines.UpsertDayAction).Methods("PUT")
	ws.HandleFunc("/timelines/{timelineId}/days/{dayId}/actions/{actionId}", h.Timelines.RemoveDayAction).Methods("DELETE")
	ws.HandleFunc("/timelines/{timelineId}/days/{dayId}/toggle", h.Timelines.ToggleDay).Methods("POST")
	ws.HandleFunc("/timelines/{timelineId}/actions/{actionId}/move", h.Timelines.MoveAction).Methods("POST")
	ws.HandleFunc("/timelines/{timelineId}/actions/{actionId}/conditions", h.Timelines.SaveCondition).Methods("PUT")
	ws.HandleFunc("/timelines/{timelineId}/actions/{actionId}/conditions/{conditionId}", h.Timelines.DeleteCondition).Methods("DELETE")

	ws.HandleFunc("/library/actions", h.Library.Add).Methods("POST")
	ws.HandleFunc("/library/actions", h.Library.List).Methods("GET")
	ws.HandleFunc("/library/actions/{actionId}", h.Library.Get).Methods("GET")
	ws.HandleFunc("/library/actions/{actionId}", h.Library.Update).Methods("PUT")
	ws.HandleFunc("/library/actions/{actionId}", h.Library.Delete).Methods("DELETE")
	ws.HandleFunc("/library/actions/{actionId}/clone", h.Library.Clone).Methods("POST")

	ws.HandleFunc("/customers", h.Customers.Create).Methods("POST")
	ws.HandleFunc("/customers", h.Customers.List).Methods("GET")
	ws.HandleFunc("/customers/{customerId}", h.Customers.Get).Methods("GET")
	ws.HandleFunc("/customers/{customerId}", h.Customers.Update).Methods("PUT")
	ws.HandleFunc("/customers/{customerId}", h.Customers.Delete).Methods("DELETE")
	ws.HandleFunc("/customers/{customerId}/events", h.Customers.RecordEvent).Methods("POST")
	ws.HandleFunc("/customers/{customerId}/events", h.Customers.ListEvents).Methods("GET")

	ws.HandleFunc("/segments", h.Segments.Create).Methods("POST")
	ws.HandleFunc("/segments", h.Segments.List).Methods("GET")
	ws.HandleFunc("/segments/{segmentId}", h.Segments.Get).Methods("GET")
	ws.HandleFunc("/segments/{segmentId}", h.Segments.Update).Methods("PUT")
	ws.HandleFunc("/segments/{segmentId}", h.Segments.Delete).Methods("DELETE")

	return r
}

package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recovera/timeline-service/internal/model"
	"github.com/recovera/timeline-service/internal/services"
	"github.com/recovera/timeline-service/internal/store/memory"
)

const testWS = "ws-http"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	st := memory.New()
	h := Handlers{
		Timelines: NewTimelineHandler(services.NewTimelineService(st, -10, 90)),
		Library:   NewLibraryHandler(services.NewLibraryService(st)),
		Customers: NewCustomerHandler(services.NewCustomerService(st)),
		Segments:  NewSegmentHandler(services.NewSegmentService(st)),
		Health:    NewHealthHandler(nil),
	}
	srv := httptest.NewServer(NewRouter(h))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func wsURL(srv *httptest.Server, path string, args ...interface{}) string {
	return srv.URL + "/api/workspaces/" + testWS + fmt.Sprintf(path, args...)
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/health/deep")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestTimelineLifecycleOverHTTP(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, "POST", wsURL(srv, "/timelines"), map[string]string{"name": "Q3 campaign"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var tl model.Timeline
	decodeBody(t, resp, &tl)
	assert.Equal(t, "Q3 campaign", tl.Name)
	assert.Len(t, tl.Days, 101)

	resp = doJSON(t, "PATCH", wsURL(srv, "/timelines/%s", tl.ID), map[string]string{"name": "renamed"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp, err := http.Get(wsURL(srv, "/timelines"))
	require.NoError(t, err)
	var list struct {
		Timelines []model.TimelineSummary `json:"timelines"`
		Count     int                     `json:"count"`
	}
	decodeBody(t, resp, &list)
	require.Equal(t, 1, list.Count)
	assert.Equal(t, "renamed", list.Timelines[0].Name)

	resp = doJSON(t, "POST", wsURL(srv, "/timelines/%s/duplicate", tl.ID), nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var cp model.Timeline
	decodeBody(t, resp, &cp)
	assert.Equal(t, "renamed (Copy)", cp.Name)

	resp = doJSON(t, "DELETE", wsURL(srv, "/timelines/%s", cp.ID), nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp, err = http.Get(wsURL(srv, "/timelines/%s", cp.ID))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDayActionsOverHTTP(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, "POST", wsURL(srv, "/timelines"), nil)
	var tl model.Timeline
	decodeBody(t, resp, &tl)

	resp = doJSON(t, "PUT", wsURL(srv, "/timelines/%s/days/day-0/actions", tl.ID), map[string]string{
		"type": "email", "name": "Reminder", "subject": "Your invoice", "message": "Please pay",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created struct {
		Action model.Action `json:"action"`
		Change model.Change `json:"change"`
	}
	decodeBody(t, resp, &created)
	assert.Equal(t, model.ChangeActionAdded, created.Change.Kind)
	require.NotEmpty(t, created.Action.ID)

	// legacy field names decode the same way
	resp = doJSON(t, "PUT", wsURL(srv, "/timelines/%s/days/day-3/actions", tl.ID), map[string]string{
		"tipo": "sms", "nome": "Aviso", "assunto_email": "s", "conteudo_mensagem": "m", "horario_envio": "09:30",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var legacy struct {
		Action model.Action `json:"action"`
	}
	decodeBody(t, resp, &legacy)
	assert.Equal(t, model.ActionSMS, legacy.Action.Type)
	assert.Equal(t, "09:30", legacy.Action.SendTime)

	resp = doJSON(t, "POST", wsURL(srv, "/timelines/%s/actions/%s/move", tl.ID, created.Action.ID), map[string]interface{}{
		"fromDayId": "day-0", "toDayId": "day-7",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var moved struct {
		Change model.Change `json:"change"`
	}
	decodeBody(t, resp, &moved)
	assert.Equal(t, model.ChangeActionMoved, moved.Change.Kind)

	resp = doJSON(t, "POST", wsURL(srv, "/timelines/%s/days/day-7/toggle", tl.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var toggled struct {
		Day model.Day `json:"day"`
	}
	decodeBody(t, resp, &toggled)
	assert.True(t, toggled.Day.Active)

	resp = doJSON(t, "DELETE", wsURL(srv, "/timelines/%s/days/day-7/actions/%s", tl.ID, created.Action.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestConditionConflictOverHTTP(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, "POST", wsURL(srv, "/timelines"), nil)
	var tl model.Timeline
	decodeBody(t, resp, &tl)

	addAction := func(day, name string) model.Action {
		resp := doJSON(t, "PUT", wsURL(srv, "/timelines/%s/days/%s/actions", tl.ID, day), map[string]string{
			"type": "email", "name": name, "subject": "s", "message": "m",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		var out struct {
			Action model.Action `json:"action"`
		}
		decodeBody(t, resp, &out)
		return out.Action
	}
	prev := addAction("day-0", "prev")
	then := addAction("day-3", "then")
	holder := addAction("day-5", "holder")

	resp = doJSON(t, "PUT", wsURL(srv, "/timelines/%s/actions/%s/conditions", tl.ID, holder.ID), map[string]string{
		"type": "opened", "previousActionId": prev.ID, "thenActionId": then.ID,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var saved struct {
		Condition model.Condition `json:"condition"`
	}
	decodeBody(t, resp, &saved)
	assert.Equal(t, then.ID, saved.Condition.Action.ID)

	// deleting the referenced action is a 409 naming the holder
	resp = doJSON(t, "DELETE", wsURL(srv, "/timelines/%s/days/day-0/actions/%s", tl.ID, prev.ID), nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	var conflict struct {
		ReferencedBy []string `json:"referencedBy"`
	}
	decodeBody(t, resp, &conflict)
	assert.Equal(t, []string{holder.ID}, conflict.ReferencedBy)

	// an ineligible outcome is a 400
	resp = doJSON(t, "PUT", wsURL(srv, "/timelines/%s/actions/%s/conditions", tl.ID, holder.ID), map[string]string{
		"type": "invalid-outcome", "previousActionId": prev.ID, "thenActionId": then.ID,
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, "DELETE", wsURL(srv, "/timelines/%s/actions/%s/conditions/%s", tl.ID, holder.ID, saved.Condition.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestLibraryOverHTTP(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, "POST", wsURL(srv, "/library/actions"), map[string]string{
		"type": "whatsapp", "name": "Nudge", "subject": "s", "message": "m",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var a model.Action
	decodeBody(t, resp, &a)

	resp = doJSON(t, "POST", wsURL(srv, "/library/actions/%s/clone", a.ID), nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var cp model.Action
	decodeBody(t, resp, &cp)
	assert.Equal(t, "Nudge (Copy)", cp.Name)

	// drag the library action onto a day: clone with a derived id
	resp = doJSON(t, "POST", wsURL(srv, "/timelines"), nil)
	var tl model.Timeline
	decodeBody(t, resp, &tl)
	resp = doJSON(t, "POST", wsURL(srv, "/timelines/%s/actions/%s/move", tl.ID, a.ID), map[string]interface{}{
		"fromDayId": nil, "toDayId": "day-0",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var dropped struct {
		Action model.Action `json:"action"`
		Change model.Change `json:"change"`
	}
	decodeBody(t, resp, &dropped)
	assert.Equal(t, model.ChangeActionCloned, dropped.Change.Kind)
	assert.Contains(t, dropped.Action.ID, a.ID+"-copy-")

	resp, err := http.Get(wsURL(srv, "/library/actions"))
	require.NoError(t, err)
	var list struct {
		Count int `json:"count"`
	}
	decodeBody(t, resp, &list)
	assert.Equal(t, 2, list.Count)
}

func TestCustomerAndSegmentOverHTTP(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, "POST", wsURL(srv, "/segments"), map[string]interface{}{"name": "VIP", "priority": 1})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var seg model.CustomerSegment
	decodeBody(t, resp, &seg)

	resp = doJSON(t, "POST", wsURL(srv, "/customers"), map[string]string{"full_name": "Maria Souza", "segmentId": seg.ID})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var c model.Customer
	decodeBody(t, resp, &c)

	resp = doJSON(t, "DELETE", wsURL(srv, "/segments/%s", seg.ID), nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, "POST", wsURL(srv, "/customers/%s/events", c.ID), map[string]string{
		"type": "email_sent", "title": "Reminder sent",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp, err := http.Get(wsURL(srv, "/customers/%s/events", c.ID))
	require.NoError(t, err)
	var events struct {
		Count int `json:"count"`
	}
	decodeBody(t, resp, &events)
	assert.Equal(t, 1, events.Count)
}

func TestSaveAggregateOverHTTP(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, "POST", wsURL(srv, "/timelines"), nil)
	var tl model.Timeline
	decodeBody(t, resp, &tl)

	tl.Name = "autosaved"
	resp = doJSON(t, "PUT", wsURL(srv, "/timelines/%s", tl.ID), tl)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	resp.Body.Close()

	resp, err := http.Get(wsURL(srv, "/timelines/%s", tl.ID))
	require.NoError(t, err)
	var got model.Timeline
	decodeBody(t, resp, &got)
	assert.Equal(t, "autosaved", got.Name)

	// a flush with nothing pending succeeds
	resp = doJSON(t, "POST", wsURL(srv, "/timelines/%s/flush", tl.ID), nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()
}

package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/erazemk/garderoba/internal/model"
	"github.com/erazemk/garderoba/internal/store"
)

// EventsHandler handles event endpoints.
type EventsHandler struct {
	DB *sql.DB
}

// eventView decorates an event with its status at response time.
type eventView struct {
	model.Event
	Status string `json:"status"`
}

func newEventView(e model.Event) eventView {
	return eventView{Event: e, Status: e.StatusAt(time.Now())}
}

func newEventViews(events []model.Event) []eventView {
	views := make([]eventView, 0, len(events))
	for _, e := range events {
		views = append(views, newEventView(e))
	}
	return views
}

// List handles GET /api/events.
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	events, err := store.ListEvents(r.Context(), h.DB)
	if err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, newEventViews(events))
}

// Create handles POST /api/events.
func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.Event
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	event, err := store.CreateEvent(r.Context(), h.DB, req)
	if err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusCreated, newEventView(*event))
}

// Get handles GET /api/events/{id}.
func (h *EventsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	event, err := store.GetEvent(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err)
		return
	}
	if event == nil {
		jsonError(w, http.StatusNotFound, "event not found")
		return
	}
	jsonResponse(w, http.StatusOK, newEventView(*event))
}

// Update handles PUT /api/events/{id}. The assignment list in the body
// replaces the stored one wholesale.
func (h *EventsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	var req model.Event
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.ID = id

	event, err := store.UpdateEvent(r.Context(), h.DB, req)
	if err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, newEventView(*event))
}

// Delete handles DELETE /api/events/{id}.
func (h *EventsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	if err := store.DeleteEvent(r.Context(), h.DB, id); err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "event deleted"})
}

// UploadImage handles PUT /api/events/{id}/image.
func (h *EventsHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	data, mime, ok := readImageUpload(w, r)
	if !ok {
		return
	}

	if err := store.SetEventImage(r.Context(), h.DB, id, data, mime); err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "image uploaded"})
}

// GetImage handles GET /api/events/{id}/image.
func (h *EventsHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	data, mime, err := store.GetEventImage(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err)
		return
	}
	writeImage(w, data, mime)
}

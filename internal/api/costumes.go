package api

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/erazemk/garderoba/internal/model"
	"github.com/erazemk/garderoba/internal/store"
)

// CostumesHandler handles costume endpoints.
type CostumesHandler struct {
	DB *sql.DB
}

// costumeView decorates a costume with its derived availability, so
// clients never compute pool arithmetic themselves.
type costumeView struct {
	model.Costume
	AvailableQuantity int    `json:"available_quantity"`
	Status            string `json:"status"`
}

func newCostumeView(c model.Costume) costumeView {
	return costumeView{
		Costume:           c,
		AvailableQuantity: c.AvailableQuantity(),
		Status:            c.Status(),
	}
}

func newCostumeViews(costumes []model.Costume) []costumeView {
	views := make([]costumeView, 0, len(costumes))
	for _, c := range costumes {
		views = append(views, newCostumeView(c))
	}
	return views
}

// List handles GET /api/costumes, optionally filtered by ?location_id=.
func (h *CostumesHandler) List(w http.ResponseWriter, r *http.Request) {
	locationID := uuid.Nil
	if raw := r.URL.Query().Get("location_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "invalid location_id")
			return
		}
		locationID = id
	}

	costumes, err := store.ListCostumes(r.Context(), h.DB, locationID)
	if err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, newCostumeViews(costumes))
}

// Create handles POST /api/costumes.
func (h *CostumesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.Costume
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	costume, err := store.CreateCostume(r.Context(), h.DB, req)
	if err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusCreated, newCostumeView(*costume))
}

// Get handles GET /api/costumes/{id}.
func (h *CostumesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid costume id")
		return
	}

	costume, err := store.GetCostume(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err)
		return
	}
	if costume == nil {
		jsonError(w, http.StatusNotFound, "costume not found")
		return
	}
	jsonResponse(w, http.StatusOK, newCostumeView(*costume))
}

// Update handles PUT /api/costumes/{id}.
func (h *CostumesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid costume id")
		return
	}

	var req model.Costume
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.ID = id

	costume, err := store.UpdateCostume(r.Context(), h.DB, req)
	if err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, newCostumeView(*costume))
}

// Delete handles DELETE /api/costumes/{id}.
func (h *CostumesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid costume id")
		return
	}

	if err := store.DeleteCostume(r.Context(), h.DB, id); err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "costume deleted"})
}

// CheckOut handles POST /api/costumes/{id}/checkout.
func (h *CostumesHandler) CheckOut(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid costume id")
		return
	}

	var req struct {
		CheckedOutBy string    `json:"checked_out_by"`
		Quantity     int       `json:"quantity"`
		DueDate      time.Time `json:"due_date"`
	}
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	checkOut, err := store.CheckOut(r.Context(), h.DB, id, req.CheckedOutBy, req.Quantity, req.DueDate)
	if err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusCreated, checkOut)
}

// CheckIn handles POST /api/costumes/{id}/checkin.
func (h *CostumesHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid costume id")
		return
	}

	var req struct {
		CheckOutID uuid.UUID `json:"check_out_id"`
		Quantity   int       `json:"quantity"`
	}
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := store.CheckIn(r.Context(), h.DB, id, req.CheckOutID, req.Quantity); err != nil {
		storeError(w, err)
		return
	}

	costume, err := store.GetCostume(r.Context(), h.DB, id)
	if err != nil || costume == nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	jsonResponse(w, http.StatusOK, newCostumeView(*costume))
}

// Move handles POST /api/costumes/move, relocating a batch of costumes.
func (h *CostumesHandler) Move(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CostumeIDs   []uuid.UUID `json:"costume_ids"`
		ToLocationID uuid.UUID   `json:"to_location_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	moved, err := store.MoveCostumes(r.Context(), h.DB, req.CostumeIDs, req.ToLocationID)
	if err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]int{"moved": moved})
}

// AssignedEvents handles GET /api/costumes/{id}/events.
func (h *CostumesHandler) AssignedEvents(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid costume id")
		return
	}

	events, err := store.AssignedEvents(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, newEventViews(events))
}

// UploadImage handles POST /api/costumes/{id}/images, appending to the
// costume's gallery.
func (h *CostumesHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid costume id")
		return
	}

	data, mime, ok := readImageUpload(w, r)
	if !ok {
		return
	}

	position, err := store.AddCostumeImage(r.Context(), h.DB, id, data, mime)
	if err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusCreated, map[string]int{"position": position})
}

// GetImage handles GET /api/costumes/{id}/images/{position}.
func (h *CostumesHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid costume id")
		return
	}
	position, err := strconv.Atoi(r.PathValue("position"))
	if err != nil || position < 0 {
		jsonError(w, http.StatusBadRequest, "invalid image position")
		return
	}

	data, mime, err := store.GetCostumeImage(r.Context(), h.DB, id, position)
	if err != nil {
		storeError(w, err)
		return
	}
	writeImage(w, data, mime)
}

package api

import (
	"database/sql"
	"net/http"

	"github.com/google/uuid"

	"github.com/erazemk/garderoba/internal/model"
	"github.com/erazemk/garderoba/internal/store"
)

// LocationsHandler handles storage location endpoints.
type LocationsHandler struct {
	DB *sql.DB
}

// locationView decorates a location with its derived summary line.
type locationView struct {
	model.Location
	DetailLine string `json:"detail_line"`
}

func newLocationView(l model.Location) locationView {
	return locationView{Location: l, DetailLine: l.DetailLine()}
}

type locationRequest struct {
	Name         string `json:"name"`
	Room         string `json:"room"`
	StorageType  string `json:"storage_type"`
	StorageLabel string `json:"storage_label"`
}

// List handles GET /api/locations.
func (h *LocationsHandler) List(w http.ResponseWriter, r *http.Request) {
	locations, err := store.ListLocations(r.Context(), h.DB)
	if err != nil {
		storeError(w, err)
		return
	}

	views := make([]locationView, 0, len(locations))
	for _, l := range locations {
		views = append(views, newLocationView(l))
	}
	jsonResponse(w, http.StatusOK, views)
}

// Create handles POST /api/locations.
func (h *LocationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req locationRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	location, err := store.CreateLocation(r.Context(), h.DB, req.Name, req.Room, req.StorageType, req.StorageLabel)
	if err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusCreated, newLocationView(*location))
}

// Get handles GET /api/locations/{id}. The response includes the
// costumes currently stored there, matching the detail screen.
func (h *LocationsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid location id")
		return
	}

	location, err := store.GetLocation(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err)
		return
	}
	if location == nil {
		jsonError(w, http.StatusNotFound, "location not found")
		return
	}

	costumes, err := store.ListCostumes(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err)
		return
	}

	jsonResponse(w, http.StatusOK, map[string]any{
		"location": newLocationView(*location),
		"costumes": newCostumeViews(costumes),
	})
}

// Update handles PUT /api/locations/{id}.
func (h *LocationsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid location id")
		return
	}

	var req locationRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	location, err := store.UpdateLocation(r.Context(), h.DB, id, req.Name, req.Room, req.StorageType, req.StorageLabel)
	if err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, newLocationView(*location))
}

// Delete handles DELETE /api/locations/{id}. Returns 409 while any
// costume is still stored at the location.
func (h *LocationsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid location id")
		return
	}

	if err := store.DeleteLocation(r.Context(), h.DB, id); err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "location deleted"})
}

// Reassign handles POST /api/locations/{id}/reassign, moving every
// costume at this location to another one.
func (h *LocationsHandler) Reassign(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid location id")
		return
	}

	var req struct {
		ToLocationID uuid.UUID `json:"to_location_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	moved, err := store.ReassignCostumes(r.Context(), h.DB, id, req.ToLocationID)
	if err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]int{"moved": moved})
}

// UploadImage handles PUT /api/locations/{id}/image.
func (h *LocationsHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid location id")
		return
	}

	data, mime, ok := readImageUpload(w, r)
	if !ok {
		return
	}

	if err := store.SetLocationImage(r.Context(), h.DB, id, data, mime); err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "image uploaded"})
}

// GetImage handles GET /api/locations/{id}/image.
func (h *LocationsHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid location id")
		return
	}

	data, mime, err := store.GetLocationImage(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err)
		return
	}
	writeImage(w, data, mime)
}

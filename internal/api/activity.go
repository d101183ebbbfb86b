package api

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/erazemk/garderoba/internal/model"
	"github.com/erazemk/garderoba/internal/store"
)

// ActivityHandler handles the activity log and data lifecycle endpoints.
type ActivityHandler struct {
	DB *sql.DB
}

// List handles GET /api/activity, newest first, optionally limited by
// ?limit=.
func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			jsonError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	records, err := store.ListActivity(r.Context(), h.DB, limit)
	if err != nil {
		storeError(w, err)
		return
	}
	if records == nil {
		records = []model.ActivityRecord{}
	}
	jsonResponse(w, http.StatusOK, records)
}

// LoadDemo handles POST /api/demo, replacing the inventory with the
// demo data set. Admin only.
func (h *ActivityHandler) LoadDemo(w http.ResponseWriter, r *http.Request) {
	if err := store.LoadDemoData(r.Context(), h.DB); err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "demo data loaded"})
}

// Reset handles POST /api/reset, wiping all inventory data. Admin only.
func (h *ActivityHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := store.ResetAllData(r.Context(), h.DB); err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "all data reset"})
}

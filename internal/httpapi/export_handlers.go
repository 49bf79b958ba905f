package httpapi

import (
	"database/sql"
	"net/http"

	"leadswarm/internal/store"
)

type ExportHandler struct {
	DB *sql.DB
}

// ExportCSV streams the whole lead table as a CSV snapshot.
func (h ExportHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="leads.csv"`)
	if err := store.ExportCSV(r.Context(), h.DB, w); err != nil {
		// headers are out already, all we can do is log via the access log status
		http.Error(w, err.Error(), 500)
	}
}

// ImportCSV merges an uploaded CSV into the table, deduplicating by domain.
func (h ExportHandler) ImportCSV(w http.ResponseWriter, r *http.Request) {
	added, skipped, err := store.ImportCSV(r.Context(), h.DB, r.Body)
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_csv", err.Error())
		return
	}
	writeJSON(w, map[string]any{"added": added, "skipped": skipped})
}

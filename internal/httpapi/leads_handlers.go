package httpapi

import (
	"database/sql"
	"net/http"
	"strconv"
	"strings"

	"leadswarm/internal/events"
	"leadswarm/internal/store"
)

type LeadsHandler struct {
	DB  *sql.DB
	Hub *events.Hub
}

func (h LeadsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	leads, err := store.ListLeads(r.Context(), h.DB, store.ListLeadsOpts{
		Status: q.Get("status"),
		Sort:   q.Get("sort"),
		Window: q.Get("window"),
		Limit:  50000,
	})
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, leads)
}

func (h LeadsHandler) GetByPath(w http.ResponseWriter, r *http.Request) {
	id, ok := leadID(w, r)
	if !ok {
		return
	}
	lead, err := store.GetLead(r.Context(), h.DB, id)
	if err != nil {
		WriteError(w, r, http.StatusNotFound, "not_found", err.Error())
		return
	}
	writeJSON(w, lead)
}

func (h LeadsHandler) DeleteByPath(w http.ResponseWriter, r *http.Request) {
	id, ok := leadID(w, r)
	if !ok {
		return
	}

	if err := store.DeleteLead(r.Context(), h.DB, id); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}

	reqID := RequestIDFrom(r.Context())
	h.Hub.Publish(events.MakeEvent(reqID, events.TypeLeadChanged, 1, map[string]any{"id": id, "deleted": true}))
	writeJSON(w, map[string]any{"ok": true, "id": id})
}

func leadID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	idStr := strings.TrimPrefix(r.URL.Path, "/leads/")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid id", 400)
		return 0, false
	}
	return id, true
}

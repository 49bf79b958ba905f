package httpapi

import (
	"database/sql"
	"net/http"

	"leadswarm/internal/events"
)

type HealthHandler struct {
	DB  *sql.DB
	Hub *events.Hub
}

func (h HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ok := true
	if err := h.DB.PingContext(r.Context()); err != nil {
		ok = false
	}
	writeJSON(w, map[string]any{
		"ok":          ok,
		"subscribers": h.Hub.Subscribers(),
	})
}

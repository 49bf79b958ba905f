package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"leadswarm/internal/pipeline"
)

type RunsHandler struct {
	Runner *pipeline.Runner
}

type startRunReq struct {
	Niche    string `json:"niche"`
	Location string `json:"location"`
}

func (h RunsHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.Runner.Status())
}

// Start kicks off a full scout/analyst/sniper run in the background.
func (h RunsHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req startRunReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.Niche == "" || req.Location == "" {
		WriteError(w, r, http.StatusBadRequest, "bad_request", "niche and location are required")
		return
	}

	st := h.Runner.Status()
	if st.Running {
		writeJSON(w, map[string]any{"ok": false, "msg": "already running"})
		return
	}

	go func() {
		if _, err := h.Runner.Run(context.Background(), req.Niche, req.Location); err != nil {
			if !errors.Is(err, pipeline.ErrRunInProgress) {
				log.Printf("[pipeline] background run: %v", err)
			}
		}
	}()

	writeJSON(w, map[string]any{"ok": true})
}

// Closer triggers one inbox sweep.
func (h RunsHandler) Closer(w http.ResponseWriter, r *http.Request) {
	res, err := h.Runner.RunCloser(r.Context())
	if err != nil {
		WriteError(w, r, http.StatusBadGateway, "closer_failed", err.Error())
		return
	}
	writeJSON(w, res)
}

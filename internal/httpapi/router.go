package httpapi

import "net/http"

// NewMux returns the raw mux so main() can wrap it with middleware.
func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	// Leads
	lh := LeadsHandler{DB: d.DB, Hub: d.Hub}
	mux.HandleFunc("/leads", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: lh.List,
	}))
	mux.HandleFunc("/leads/", methodMux(map[string]http.HandlerFunc{
		http.MethodGet:    lh.GetByPath,    // expects /leads/{id}
		http.MethodDelete: lh.DeleteByPath, // expects /leads/{id}
	}))

	// Pipeline runs
	rh := RunsHandler{Runner: d.Runner}
	mux.HandleFunc("/runs", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: rh.Start,
	}))
	mux.HandleFunc("/runs/status", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: rh.Status,
	}))
	mux.HandleFunc("/runs/closer", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: rh.Closer,
	}))

	// Config
	ch := ConfigHandler{
		CfgVal:      d.CfgVal,
		UserCfgPath: d.UserCfgPath,
		LoadCfg:     d.LoadCfg,
	}
	mux.HandleFunc("/config", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Get,
		http.MethodPut: ch.Put,
	}))
	mux.HandleFunc("/config/path", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Path,
	}))
	mux.HandleFunc("/config/validate", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Validate,
	}))

	// Secrets
	sh := SecretsHandler{}
	mux.HandleFunc("/secrets", methodMux(map[string]http.HandlerFunc{
		http.MethodGet:  sh.List,
		http.MethodPost: sh.Set,
	}))

	// CSV interchange
	xh := ExportHandler{DB: d.DB}
	mux.HandleFunc("/export/csv", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: xh.ExportCSV,
	}))
	mux.HandleFunc("/import/csv", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: xh.ImportCSV,
	}))

	// SSE events
	eh := EventsHandler{Hub: d.Hub}
	mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: eh.ServeSSE,
	}))

	// Health
	hh := HealthHandler{DB: d.DB, Hub: d.Hub}
	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: hh.Health,
	}))

	return mux
}

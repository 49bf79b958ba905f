package httpapi

import (
	"encoding/json"
	"net/http"
	"slices"

	"leadswarm/internal/secrets"
)

type SecretsHandler struct{}

type setSecretReq struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func (h SecretsHandler) Set(w http.ResponseWriter, r *http.Request) {
	var req setSecretReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if !slices.Contains(secrets.KnownNames(), req.Name) {
		WriteError(w, r, http.StatusBadRequest, "unknown_secret", "unknown secret name: "+req.Name)
		return
	}
	if err := secrets.Set(req.Name, req.Value); err != nil {
		http.Error(w, "failed to store secret: "+err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// List reports which secrets are present, never their values.
func (h SecretsHandler) List(w http.ResponseWriter, r *http.Request) {
	out := map[string]bool{}
	for _, name := range secrets.KnownNames() {
		v, err := secrets.Get(name)
		out[name] = err == nil && v != ""
	}
	writeJSON(w, out)
}

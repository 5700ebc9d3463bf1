package handlers

import (
	"net/http"

	"github.com/kintai-app/apiserver/internal/store"
)

// HealthResponse reports liveness and the storage backend currently
// serving writes.
type HealthResponse struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
}

// Healthz returns a liveness handler that also names the selected
// storage backend, so a degraded fallback is visible from outside.
func Healthz(chain *store.Chain) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Storage: chain.SelectedName(r.Context()),
		})
	}
}

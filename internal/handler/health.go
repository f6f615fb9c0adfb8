package handler

import (
	"encoding/json"
	"net/http"

	"github.com/patience/platform/internal/infra"
)

// HealthHandler returns a health check endpoint. Each named dependency is
// pinged; with none configured (memory store) the service reports healthy.
func HealthHandler(deps map[string]infra.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for name, p := range deps {
			if err := infra.HealthCheck(r.Context(), p); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{
					"status":     "unhealthy",
					"dependency": name,
					"error":      err.Error(),
				})
				return
			}
		}
		json.NewEncoder(w).Encode(map[string]string{
			"status": "healthy",
		})
	}
}

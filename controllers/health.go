package controllers

import (
	"context"
	"net/http"
	"time"

	"bootcamp-api/utils"
)

// HealthController reports whether the process and its database are reachable
type HealthController struct {
	// Ping checks the database; nil skips the check.
	Ping func(ctx context.Context) error
}

func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	if hc.Ping != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := hc.Ping(ctx); err != nil {
			utils.WriteError(w, r, utils.UpstreamFailure("Database unavailable", err))
			return
		}
	}
	utils.Respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/monizb/vmp/database"
	"github.com/monizb/vmp/utils"
)

var startTime = time.Now()

// Status is the public liveness endpoint.
func Status(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   "1.0.0",
	})
}

// HealthCheck reports server and database health.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   "1.0.0",
		"uptime":    time.Since(startTime).String(),
	}

	code := http.StatusOK
	if database.Client != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := database.Client.Ping(ctx, nil); err != nil {
			response["status"] = "unhealthy"
			response["database"] = "disconnected"
			code = http.StatusServiceUnavailable
		} else {
			response["database"] = "connected"
		}
	}

	utils.RespondWithJSON(w, code, response)
}

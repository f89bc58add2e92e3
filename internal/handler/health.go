package handler

import (
	"net/http"
	"time"

	"github.com/meteoryte/banana-oracle/internal/service"
)

// HealthHandler serves the liveness endpoint.
type HealthHandler struct {
	pinger service.Pinger // nil in demo mode
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(pinger service.Pinger) *HealthHandler {
	return &HealthHandler{pinger: pinger}
}

// HandleHealth serves GET /api/health. The endpoint is always 200: a down
// store means demo mode, not a dead service.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	database := "demo mode"
	if h.pinger != nil && h.pinger.Ping() == nil {
		database = "connected"
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"database":  database,
		"timestamp": time.Now(),
	})
}

package handlers

import (
	"net/http"
	"time"

	"userhub-backend/pkg/api"
)

// HealthHandler reports process liveness and uptime.
type HealthHandler struct {
	startTime   time.Time
	version     string
	environment string
}

// NewHealthHandler creates a health handler anchored at process start.
func NewHealthHandler(startTime time.Time, version, environment string) *HealthHandler {
	return &HealthHandler{
		startTime:   startTime,
		version:     version,
		environment: environment,
	}
}

type healthResponse struct {
	Status      string  `json:"status"`
	Timestamp   string  `json:"timestamp"`
	Version     string  `json:"version"`
	Uptime      float64 `json:"uptime"`
	Environment string  `json:"environment"`
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	api.JSON(w, http.StatusOK, healthResponse{
		Status:      "healthy",
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Version:     h.version,
		Uptime:      time.Since(h.startTime).Seconds(),
		Environment: h.environment,
	})
}

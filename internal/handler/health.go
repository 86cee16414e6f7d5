package handler

import (
	"net/http"
	"time"

	"poe-item-bank/pkg/response"
)

// Handler contains shared HTTP handlers.
type Handler struct {
	version   string
	startTime time.Time
}

// New creates a new handler.
func New(version string) *Handler {
	return &Handler{version: version, startTime: time.Now()}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}

// Health handles GET /api/v1/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	response.OK(w, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   h.version,
	})
}

// Ready handles GET /api/v1/ready
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]interface{}{
		"status":         "ready",
		"uptime_seconds": int64(time.Since(h.startTime).Seconds()),
	})
}

// Status handles GET /api/status
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]string{
		"service": "poe-item-bank",
		"version": h.version,
	})
}

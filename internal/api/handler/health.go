package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/darwin242209/LuminaTiktok/internal/repository"
	"github.com/darwin242209/LuminaTiktok/internal/session"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	jobRepo repository.JobRepository
	sender  session.Sender
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(jobRepo repository.JobRepository, sender session.Sender) *HealthHandler {
	return &HealthHandler{
		jobRepo: jobRepo,
		sender:  sender,
	}
}

// HealthResponse is the JSON response for health checks.
type HealthResponse struct {
	Status       string `json:"status"`
	Timestamp    string `json:"timestamp"`
	SessionReady bool   `json:"session_ready"`
}

// Live handles GET /health - liveness probe.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(HealthResponse{
		Status:       "ok",
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		SessionReady: h.sender.Ready(),
	})
}

// Ready handles GET /ready - readiness probe. The service is ready when
// the job store is reachable and the messaging session is paired and
// connected; deliveries would fail otherwise.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := http.StatusOK
	body := HealthResponse{
		Status:       "ready",
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		SessionReady: h.sender.Ready(),
	}

	if err := h.jobRepo.Ping(ctx); err != nil {
		status = http.StatusServiceUnavailable
		body.Status = "job store unavailable"
	} else if !body.SessionReady {
		status = http.StatusServiceUnavailable
		body.Status = "session not ready"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

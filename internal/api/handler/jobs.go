package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/darwin242209/LuminaTiktok/internal/domain"
	"github.com/darwin242209/LuminaTiktok/internal/repository"
)

// JobsHandler serves the pipeline job history.
type JobsHandler struct {
	jobRepo repository.JobRepository
	logger  *slog.Logger
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(jobRepo repository.JobRepository, logger *slog.Logger) *JobsHandler {
	return &JobsHandler{
		jobRepo: jobRepo,
		logger:  logger,
	}
}

// JobResponse represents a job in list/get responses.
type JobResponse struct {
	JobID       string     `json:"job_id"`
	SourceURL   string     `json:"source_url"`
	Recipient   string     `json:"recipient"`
	Status      string     `json:"status"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// ListResponse contains a paginated job list.
type ListResponse struct {
	Jobs   []JobResponse `json:"jobs"`
	Total  int           `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

// List handles GET /jobs
func (h *JobsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 50
	offset := 0

	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	jobs, total, err := h.jobRepo.List(r.Context(), limit, offset)
	if err != nil {
		h.logger.Error("list jobs failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to list jobs")
		return
	}

	response := ListResponse{
		Jobs:   make([]JobResponse, 0, len(jobs)),
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}
	for _, j := range jobs {
		response.Jobs = append(response.Jobs, toJobResponse(j))
	}

	h.writeJSON(w, http.StatusOK, response)
}

// Get handles GET /jobs/{jobID}
func (h *JobsHandler) Get(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	if jobID == "" {
		h.writeError(w, http.StatusBadRequest, "missing job ID")
		return
	}

	job, err := h.jobRepo.Get(r.Context(), domain.JobID(jobID))
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			h.writeError(w, http.StatusNotFound, "job not found")
			return
		}
		h.logger.Error("get job failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to get job")
		return
	}

	h.writeJSON(w, http.StatusOK, toJobResponse(job))
}

func toJobResponse(j *domain.Job) JobResponse {
	return JobResponse{
		JobID:       j.ID.String(),
		SourceURL:   j.SourceURL,
		Recipient:   j.Recipient.String(),
		Status:      string(j.Status),
		Error:       j.Error,
		CreatedAt:   j.CreatedAt,
		CompletedAt: j.CompletedAt,
	}
}

func (h *JobsHandler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *JobsHandler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/darwin242209/LuminaTiktok/internal/domain"
)

// Processor runs the video pipeline for one request.
type Processor interface {
	Process(ctx context.Context, req domain.VideoRequest) (domain.JobID, error)
}

// VideoHandler handles video bridge HTTP requests.
type VideoHandler struct {
	pipeline Processor
	timeout  time.Duration
	logger   *slog.Logger
}

// NewVideoHandler creates a new video handler. timeout bounds one
// pipeline run; 0 disables the deadline.
func NewVideoHandler(pipeline Processor, timeout time.Duration, logger *slog.Logger) *VideoHandler {
	return &VideoHandler{
		pipeline: pipeline,
		timeout:  timeout,
		logger:   logger,
	}
}

// VideoRequest is the JSON request body for POST /video.
type VideoRequest struct {
	VideoURL string      `json:"videoUrl"`
	Msg      *MsgRequest `json:"msg"`
}

// MsgRequest identifies the target conversation. Only the sender handle
// is read; other fields of the original message are ignored.
type MsgRequest struct {
	From string `json:"from"`
}

// Submit handles POST /video: validates the body, runs the pipeline to
// completion and reports the outcome. Internal errors are logged but
// never surfaced to the caller.
func (h *VideoHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req VideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	recipient := domain.Recipient("")
	if req.Msg != nil {
		recipient = domain.Recipient(req.Msg.From)
	}

	if req.VideoURL == "" || req.Msg == nil || recipient.Validate() != nil {
		h.writeError(w, http.StatusBadRequest, "Missing required fields in request body")
		return
	}

	ctx := r.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	jobID, err := h.pipeline.Process(ctx, domain.VideoRequest{
		SourceURL: req.VideoURL,
		Recipient: recipient,
	})
	if err != nil {
		h.logger.Error("pipeline failed",
			"job_id", jobID,
			"video_url", req.VideoURL,
			"error", err,
		)
		h.writeError(w, http.StatusInternalServerError, "Failed to process request")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"message": "Message sent successfully",
	})
}

func (h *VideoHandler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *VideoHandler) writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

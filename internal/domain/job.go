package domain

import (
	"time"
)

// JobID is a unique identifier for a pipeline job.
type JobID string

// String returns the string representation of the JobID.
func (id JobID) String() string {
	return string(id)
}

// JobStatus represents the current state of a pipeline job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// Job tracks one resolve-download-transcode-deliver run. Exactly one job
// exists per accepted video request.
type Job struct {
	ID          JobID
	SourceURL   string
	Recipient   Recipient
	Status      JobStatus
	InputPath   string
	OutputPath  string
	Error       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
}

// NewJob creates a new job for the given request.
func NewJob(id JobID, req VideoRequest) *Job {
	now := time.Now()
	return &Job{
		ID:        id,
		SourceURL: req.SourceURL,
		Recipient: req.Recipient,
		Status:    JobStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// MarkRunning updates the job status to running.
func (j *Job) MarkRunning() {
	j.Status = JobStatusRunning
	j.UpdatedAt = time.Now()
}

// MarkCompleted updates the job status to completed.
func (j *Job) MarkCompleted() {
	now := time.Now()
	j.Status = JobStatusCompleted
	j.UpdatedAt = now
	j.CompletedAt = &now
}

// MarkFailed updates the job status to failed with an error message.
// Failure is terminal; jobs are never retried.
func (j *Job) MarkFailed(errMsg string) {
	now := time.Now()
	j.Status = JobStatusFailed
	j.Error = errMsg
	j.UpdatedAt = now
	j.CompletedAt = &now
}

// Terminal reports whether the job has reached a final state.
func (j *Job) Terminal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}

package domain

import "errors"

// Domain errors.
var (
	// ErrNoMediaURL is returned when the extraction API yields no usable direct media URL.
	ErrNoMediaURL = errors.New("no direct media URL in extraction result")

	// ErrDownloadFailed is returned when the media byte download fails.
	ErrDownloadFailed = errors.New("media download failed")

	// ErrTranscodeFailed is returned when the ffmpeg process exits with an error.
	ErrTranscodeFailed = errors.New("transcode failed")

	// ErrDeliveryFailed is returned when the message send is rejected.
	ErrDeliveryFailed = errors.New("message delivery failed")

	// ErrSessionNotReady is returned when a send is attempted before the
	// messaging session has been paired and connected.
	ErrSessionNotReady = errors.New("messaging session not ready")

	// ErrInvalidRecipient is returned when the recipient handle is empty or malformed.
	ErrInvalidRecipient = errors.New("invalid recipient handle")

	// ErrJobNotFound is returned when a job cannot be found.
	ErrJobNotFound = errors.New("job not found")
)

// JobError wraps an error with job context.
type JobError struct {
	JobID JobID
	Op    string
	Err   error
}

func (e *JobError) Error() string {
	if e.JobID != "" {
		return e.Op + " [" + e.JobID.String() + "]: " + e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *JobError) Unwrap() error {
	return e.Err
}

// NewJobError creates a new JobError.
func NewJobError(jobID JobID, op string, err error) *JobError {
	return &JobError{
		JobID: jobID,
		Op:    op,
		Err:   err,
	}
}

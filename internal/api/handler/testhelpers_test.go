package handler

import (
	"context"
	"io"
	"log/slog"

	"github.com/darwin242209/LuminaTiktok/internal/domain"
)

// testLogger returns a silent logger for tests.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubProcessor is a test implementation of Processor.
type stubProcessor struct {
	calls   int
	lastReq domain.VideoRequest
	jobID   domain.JobID
	err     error
}

func (s *stubProcessor) Process(ctx context.Context, req domain.VideoRequest) (domain.JobID, error) {
	s.calls++
	s.lastReq = req
	return s.jobID, s.err
}

// stubSender is a test implementation of session.Sender.
type stubSender struct {
	ready bool
}

func (s *stubSender) Ready() bool { return s.ready }

func (s *stubSender) Send(ctx context.Context, recipient domain.Recipient, payload domain.DeliveryPayload) error {
	return nil
}

// stubJobRepo is a test implementation of repository.JobRepository.
type stubJobRepo struct {
	jobs    map[domain.JobID]*domain.Job
	listErr error
	pingErr error
}

func newStubJobRepo() *stubJobRepo {
	return &stubJobRepo{jobs: make(map[domain.JobID]*domain.Job)}
}

func (r *stubJobRepo) Create(ctx context.Context, job *domain.Job) error {
	r.jobs[job.ID] = job
	return nil
}

func (r *stubJobRepo) Update(ctx context.Context, job *domain.Job) error {
	r.jobs[job.ID] = job
	return nil
}

func (r *stubJobRepo) Get(ctx context.Context, id domain.JobID) (*domain.Job, error) {
	job, ok := r.jobs[id]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	return job, nil
}

func (r *stubJobRepo) List(ctx context.Context, limit, offset int) ([]*domain.Job, int, error) {
	if r.listErr != nil {
		return nil, 0, r.listErr
	}
	var jobs []*domain.Job
	for _, job := range r.jobs {
		jobs = append(jobs, job)
	}
	return jobs, len(jobs), nil
}

func (r *stubJobRepo) Ping(ctx context.Context) error {
	return r.pingErr
}

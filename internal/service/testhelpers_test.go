package service

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/darwin242209/LuminaTiktok/internal/domain"
)

// testLogger returns a silent logger for tests.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubExtractor is a test implementation of extractor.Client.
type stubExtractor struct {
	mu     sync.Mutex
	calls  int
	err    error
	byURL  map[string]string // sourceURL -> directURL
	direct string
}

func (s *stubExtractor) Resolve(ctx context.Context, sourceURL string) (*domain.ResolvedMedia, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	direct := s.direct
	if s.byURL != nil {
		direct = s.byURL[sourceURL]
	}
	return &domain.ResolvedMedia{DirectURL: direct}, nil
}

// stubDownloader is a test implementation of downloader.Downloader.
type stubDownloader struct {
	mu       sync.Mutex
	calls    int
	err      error
	filename string
	data     []byte
	byURL    map[string][]byte // directURL -> content
}

func (s *stubDownloader) Download(ctx context.Context, url string) ([]byte, string, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.err != nil {
		return nil, "", s.err
	}
	filename := s.filename
	if filename == "" {
		filename = "video.mp4"
	}
	if s.byURL != nil {
		return s.byURL[url], filename, nil
	}
	return s.data, filename, nil
}

// stubTranscoder copies input to output, standing in for ffmpeg.
type stubTranscoder struct {
	mu      sync.Mutex
	calls   int
	err     error
	lastIn  string
	lastOut string
}

func (s *stubTranscoder) Transcode(ctx context.Context, inputPath, outputPath string) error {
	s.mu.Lock()
	s.calls++
	s.lastIn = inputPath
	s.lastOut = outputPath
	s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return err
	}
	return os.WriteFile(outputPath, data, 0o644)
}

// stubDeliverer records delivered file contents per recipient.
type stubDeliverer struct {
	mu        sync.Mutex
	calls     int
	err       error
	delivered map[domain.Recipient][]byte
}

func (s *stubDeliverer) Deliver(ctx context.Context, outputPath string, recipient domain.Recipient) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return s.err
	}
	data, err := os.ReadFile(outputPath)
	if err != nil {
		return err
	}
	if s.delivered == nil {
		s.delivered = make(map[domain.Recipient][]byte)
	}
	s.delivered[recipient] = data
	return nil
}

// memJobRepo is an in-memory test implementation of repository.JobRepository.
type memJobRepo struct {
	mu   sync.Mutex
	jobs map[domain.JobID]domain.Job
}

func newMemJobRepo() *memJobRepo {
	return &memJobRepo{jobs: make(map[domain.JobID]domain.Job)}
}

func (r *memJobRepo) Create(ctx context.Context, job *domain.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[job.ID] = *job
	return nil
}

func (r *memJobRepo) Update(ctx context.Context, job *domain.Job) error {
	// The real store's ExecContext fails once ctx is done; mirror that.
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[job.ID]; !ok {
		return domain.ErrJobNotFound
	}
	r.jobs[job.ID] = *job
	return nil
}

func (r *memJobRepo) Get(ctx context.Context, id domain.JobID) (*domain.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	return &job, nil
}

func (r *memJobRepo) List(ctx context.Context, limit, offset int) ([]*domain.Job, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var jobs []*domain.Job
	for _, job := range r.jobs {
		j := job
		jobs = append(jobs, &j)
	}
	return jobs, len(r.jobs), nil
}

func (r *memJobRepo) Ping(ctx context.Context) error {
	return nil
}

// assertWorkDirEmpty fails the test if any per-job directory survived.
func assertWorkDirEmpty(t *testing.T, workPath string) {
	t.Helper()
	entries, err := os.ReadDir(workPath)
	if err != nil {
		t.Fatalf("read work dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("work dir not empty after pipeline: %d entries remain", len(entries))
	}
}

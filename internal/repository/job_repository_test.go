package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/darwin242209/LuminaTiktok/internal/domain"
)

func newTestRepo(t *testing.T) *SQLiteJobRepository {
	t.Helper()
	repo, err := NewSQLiteJobRepository(filepath.Join(t.TempDir(), "jobs.db"))
	if err != nil {
		t.Fatalf("NewSQLiteJobRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func newTestJob(id string) *domain.Job {
	return domain.NewJob(domain.JobID(id), domain.VideoRequest{
		SourceURL: "https://vt.tiktok.com/ABC",
		Recipient: "1234567890@c.us",
	})
}

func TestCreateAndGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	job := newTestJob("job_1")
	if err := repo.Create(ctx, job); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := repo.Get(ctx, "job_1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	if got.ID != job.ID {
		t.Errorf("ID = %s, want %s", got.ID, job.ID)
	}
	if got.SourceURL != job.SourceURL {
		t.Errorf("source URL = %s", got.SourceURL)
	}
	if got.Recipient != job.Recipient {
		t.Errorf("recipient = %s", got.Recipient)
	}
	if got.Status != domain.JobStatusPending {
		t.Errorf("status = %s, want pending", got.Status)
	}
	if got.CompletedAt != nil {
		t.Error("completed at should be nil")
	}
}

func TestGet_NotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.Get(context.Background(), "job_missing")
	if !errors.Is(err, domain.ErrJobNotFound) {
		t.Errorf("err = %v, want ErrJobNotFound", err)
	}
}

func TestUpdate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	job := newTestJob("job_2")
	if err := repo.Create(ctx, job); err != nil {
		t.Fatal(err)
	}

	job.InputPath = "videos/job_2/in.mp4"
	job.OutputPath = "videos/job_2/output.mp4"
	job.MarkFailed("transcode failed")
	if err := repo.Update(ctx, job); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := repo.Get(ctx, "job_2")
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != domain.JobStatusFailed {
		t.Errorf("status = %s, want failed", got.Status)
	}
	if got.Error != "transcode failed" {
		t.Errorf("error = %q", got.Error)
	}
	if got.OutputPath != "videos/job_2/output.mp4" {
		t.Errorf("output path = %q", got.OutputPath)
	}
	if got.CompletedAt == nil {
		t.Error("completed at should be set after failure")
	}
}

func TestUpdate_NotFound(t *testing.T) {
	repo := newTestRepo(t)

	job := newTestJob("job_missing")
	if err := repo.Update(context.Background(), job); !errors.Is(err, domain.ErrJobNotFound) {
		t.Errorf("err = %v, want ErrJobNotFound", err)
	}
}

func TestList(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, id := range []string{"job_a", "job_b", "job_c"} {
		if err := repo.Create(ctx, newTestJob(id)); err != nil {
			t.Fatal(err)
		}
	}

	jobs, total, err := repo.List(ctx, 2, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}
	if len(jobs) != 2 {
		t.Errorf("len(jobs) = %d, want 2", len(jobs))
	}

	jobs, _, err = repo.List(ctx, 10, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(jobs) != 1 {
		t.Errorf("len(jobs) at offset 2 = %d, want 1", len(jobs))
	}
}

func TestPing(t *testing.T) {
	repo := newTestRepo(t)
	if err := repo.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}

package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/darwin242209/LuminaTiktok/internal/config"
	"github.com/darwin242209/LuminaTiktok/internal/domain"
	"github.com/darwin242209/LuminaTiktok/internal/downloader"
	"github.com/darwin242209/LuminaTiktok/internal/extractor"
	"github.com/darwin242209/LuminaTiktok/internal/metrics"
	"github.com/darwin242209/LuminaTiktok/internal/repository"
)

// outputFilename is the transcode target inside each job work directory.
const outputFilename = "output.mp4"

// Transcoder re-encodes a downloaded file into a new container.
type Transcoder interface {
	Transcode(ctx context.Context, inputPath, outputPath string) error
}

// Deliverer submits a transcoded file to a recipient.
type Deliverer interface {
	Deliver(ctx context.Context, outputPath string, recipient domain.Recipient) error
}

// Pipeline runs the resolve -> download -> transcode -> deliver chain for
// one request. Stages are strictly sequential; failures are terminal and
// never retried. Each run works in its own directory so concurrent
// requests cannot clobber each other's files.
type Pipeline struct {
	extractor  extractor.Client
	downloader downloader.Downloader
	transcoder Transcoder
	deliverer  Deliverer
	jobRepo    repository.JobRepository
	workPath   string
	sem        *semaphore.Weighted
	logger     *slog.Logger
}

// NewPipeline creates a new pipeline service.
func NewPipeline(
	ex extractor.Client,
	dl downloader.Downloader,
	tc Transcoder,
	dv Deliverer,
	jobRepo repository.JobRepository,
	storageCfg config.StorageConfig,
	pipelineCfg config.PipelineConfig,
	logger *slog.Logger,
) *Pipeline {
	var sem *semaphore.Weighted
	if pipelineCfg.MaxConcurrent > 0 {
		sem = semaphore.NewWeighted(int64(pipelineCfg.MaxConcurrent))
	}

	return &Pipeline{
		extractor:  ex,
		downloader: dl,
		transcoder: tc,
		deliverer:  dv,
		jobRepo:    jobRepo,
		workPath:   storageCfg.WorkPath,
		sem:        sem,
		logger:     logger,
	}
}

// Process runs the full pipeline for one request and blocks until the
// terminal outcome. The per-job work directory is removed on every exit
// path, success and failure alike.
func (p *Pipeline) Process(ctx context.Context, req domain.VideoRequest) (domain.JobID, error) {
	if p.sem != nil {
		if err := p.sem.Acquire(ctx, 1); err != nil {
			return "", fmt.Errorf("acquire pipeline slot: %w", err)
		}
		defer p.sem.Release(1)
	}

	job := domain.NewJob(domain.JobID("job_"+uuid.New().String()), req)
	logger := p.logger.With("job_id", job.ID)

	if err := p.jobRepo.Create(ctx, job); err != nil {
		return "", fmt.Errorf("record job: %w", err)
	}

	metrics.JobsInFlight.Inc()
	defer metrics.JobsInFlight.Dec()

	job.MarkRunning()
	if err := p.jobRepo.Update(ctx, job); err != nil {
		logger.Warn("failed to update job status", "error", err)
	}

	workDir := filepath.Join(p.workPath, job.ID.String())
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return job.ID, p.fail(ctx, job, "prepare", fmt.Errorf("create work dir: %w", err))
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			logger.Error("failed to remove work dir", "path", workDir, "error", err)
		}
	}()

	// Stage 1: resolve the short URL to a direct media URL.
	logger.Info("resolving source URL", "source_url", req.SourceURL)
	resolved, err := timed("resolve", func() (*domain.ResolvedMedia, error) {
		return p.extractor.Resolve(ctx, req.SourceURL)
	})
	if err != nil {
		return job.ID, p.fail(ctx, job, "resolve", err)
	}

	// Stage 2: download the media bytes and persist them.
	logger.Info("downloading media", "direct_url", resolved.DirectURL)
	type downloadResult struct {
		data     []byte
		filename string
	}
	dl, err := timed("download", func() (downloadResult, error) {
		data, filename, err := p.downloader.Download(ctx, resolved.DirectURL)
		return downloadResult{data: data, filename: filename}, err
	})
	if err != nil {
		return job.ID, p.fail(ctx, job, "download", err)
	}

	inputName := dl.filename
	if inputName == outputFilename {
		// The server-suggested name must not collide with the transcode
		// target; ffmpeg cannot encode a file onto itself.
		inputName = "in_" + inputName
	}
	job.InputPath = filepath.Join(workDir, inputName)
	job.OutputPath = filepath.Join(workDir, outputFilename)
	if err := os.WriteFile(job.InputPath, dl.data, 0o644); err != nil {
		return job.ID, p.fail(ctx, job, "download", fmt.Errorf("write input file: %w", err))
	}
	if err := p.jobRepo.Update(ctx, job); err != nil {
		logger.Warn("failed to update job paths", "error", err)
	}

	// Stage 3: transcode to H.264/AAC.
	logger.Info("transcoding", "input", job.InputPath, "output", job.OutputPath)
	if _, err := timed("transcode", func() (struct{}, error) {
		return struct{}{}, p.transcoder.Transcode(ctx, job.InputPath, job.OutputPath)
	}); err != nil {
		return job.ID, p.fail(ctx, job, "transcode", err)
	}

	// Stage 4: deliver over the messaging session.
	logger.Info("delivering", "recipient", req.Recipient)
	if _, err := timed("deliver", func() (struct{}, error) {
		return struct{}{}, p.deliverer.Deliver(ctx, job.OutputPath, req.Recipient)
	}); err != nil {
		return job.ID, p.fail(ctx, job, "deliver", err)
	}

	job.MarkCompleted()
	if err := p.jobRepo.Update(ctx, job); err != nil {
		logger.Warn("failed to mark job completed", "error", err)
	}
	metrics.JobsTotal.WithLabelValues("completed").Inc()

	logger.Info("pipeline completed", "source_url", req.SourceURL, "recipient", req.Recipient)
	return job.ID, nil
}

// fail records the terminal failure and wraps the error with job context.
// The status write runs detached from the request context: when the
// deadline is what killed the stage, the job must still land as failed
// rather than stay running in history.
func (p *Pipeline) fail(ctx context.Context, job *domain.Job, op string, err error) error {
	job.MarkFailed(err.Error())
	if updateErr := p.jobRepo.Update(context.WithoutCancel(ctx), job); updateErr != nil {
		p.logger.Error("failed to mark job failed", "job_id", job.ID, "error", updateErr)
	}
	metrics.JobsTotal.WithLabelValues("failed").Inc()

	p.logger.Error("pipeline stage failed",
		"job_id", job.ID,
		"stage", op,
		"error", err,
	)
	return domain.NewJobError(job.ID, op, err)
}

// timed runs fn and observes its duration under the given stage label.
func timed[T any](stage string, fn func() (T, error)) (T, error) {
	start := time.Now()
	v, err := fn()
	metrics.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
	return v, err
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/darwin242209/LuminaTiktok/internal/domain"
)

// JobRepository persists pipeline job history.
type JobRepository interface {
	Create(ctx context.Context, job *domain.Job) error
	Update(ctx context.Context, job *domain.Job) error
	Get(ctx context.Context, id domain.JobID) (*domain.Job, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Job, int, error)
	Ping(ctx context.Context) error
}

// SQLiteJobRepository implements JobRepository on a SQLite database.
type SQLiteJobRepository struct {
	db *sql.DB
}

// NewSQLiteJobRepository opens (and if needed initializes) the job
// history database at path.
func NewSQLiteJobRepository(path string) (*SQLiteJobRepository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite handles one writer at a time; serialize through a single conn.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS jobs (
			id TEXT PRIMARY KEY,
			source_url TEXT NOT NULL,
			recipient TEXT NOT NULL,
			status TEXT NOT NULL,
			error TEXT NOT NULL DEFAULT '',
			input_path TEXT NOT NULL DEFAULT '',
			output_path TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			completed_at DATETIME
		);
		CREATE INDEX IF NOT EXISTS idx_jobs_created_at ON jobs(created_at);
		CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status);
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	return &SQLiteJobRepository{db: db}, nil
}

// Create inserts a new job record.
func (r *SQLiteJobRepository) Create(ctx context.Context, job *domain.Job) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO jobs (id, source_url, recipient, status, error, input_path, output_path, created_at, updated_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID.String(),
		job.SourceURL,
		job.Recipient.String(),
		string(job.Status),
		job.Error,
		job.InputPath,
		job.OutputPath,
		job.CreatedAt.UTC(),
		job.UpdatedAt.UTC(),
		nullableTime(job.CompletedAt),
	)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

// Update rewrites the mutable fields of a job record.
func (r *SQLiteJobRepository) Update(ctx context.Context, job *domain.Job) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE jobs
		SET status = ?, error = ?, input_path = ?, output_path = ?, updated_at = ?, completed_at = ?
		WHERE id = ?`,
		string(job.Status),
		job.Error,
		job.InputPath,
		job.OutputPath,
		job.UpdatedAt.UTC(),
		nullableTime(job.CompletedAt),
		job.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrJobNotFound
	}
	return nil
}

// Get retrieves a job by ID.
func (r *SQLiteJobRepository) Get(ctx context.Context, id domain.JobID) (*domain.Job, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, source_url, recipient, status, error, input_path, output_path, created_at, updated_at, completed_at
		FROM jobs WHERE id = ?`,
		id.String(),
	)

	job, err := scanJob(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrJobNotFound
		}
		return nil, fmt.Errorf("scan job: %w", err)
	}
	return job, nil
}

// List returns jobs ordered newest first, plus the total count.
func (r *SQLiteJobRepository) List(ctx context.Context, limit, offset int) ([]*domain.Job, int, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, source_url, recipient, status, error, input_path, output_path, created_at, updated_at, completed_at
		FROM jobs ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("query jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*domain.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate jobs: %w", err)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM jobs`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count jobs: %w", err)
	}

	return jobs, total, nil
}

// Ping verifies the database is reachable.
func (r *SQLiteJobRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close releases the database handle.
func (r *SQLiteJobRepository) Close() error {
	return r.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanJob(row rowScanner) (*domain.Job, error) {
	var (
		job         domain.Job
		id          string
		recipient   string
		status      string
		completedAt sql.NullTime
	)

	err := row.Scan(
		&id,
		&job.SourceURL,
		&recipient,
		&status,
		&job.Error,
		&job.InputPath,
		&job.OutputPath,
		&job.CreatedAt,
		&job.UpdatedAt,
		&completedAt,
	)
	if err != nil {
		return nil, err
	}

	job.ID = domain.JobID(id)
	job.Recipient = domain.Recipient(recipient)
	job.Status = domain.JobStatus(status)
	if completedAt.Valid {
		t := completedAt.Time
		job.CompletedAt = &t
	}

	return &job, nil
}

func nullableTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC()
}

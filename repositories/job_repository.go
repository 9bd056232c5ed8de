package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Dosada05/team-manager/models"
	"github.com/google/uuid"
)

var ErrJobNotFound = errors.New("job not found")

// MaxJobAttempts limits how many times a job whose lease expired is handed out again.
const MaxJobAttempts = 5

type JobFilter struct {
	JobType *string
	GameID  *int
	Status  *models.JobStatus
	Limit   int
}

type JobRepository interface {
	Create(ctx context.Context, exec SQLExecutor, job *models.Job) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error)
	List(ctx context.Context, filter JobFilter) ([]*models.Job, error)
	// ClaimPending moves up to limit jobs to processing and returns them. Besides pending
	// jobs it takes back processing jobs whose lease expired (their worker died or could
	// not record the outcome).
	ClaimPending(ctx context.Context, limit int, lease time.Duration) ([]*models.Job, error)
	MarkDone(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
	// Release puts a processing job back to pending without counting it as failed.
	Release(ctx context.Context, id uuid.UUID) error
}

type postgresJobRepository struct {
	db *sql.DB
}

func NewPostgresJobRepository(db *sql.DB) JobRepository {
	return &postgresJobRepository{db: db}
}

const jobColumns = `id, job_type, payload, status, attempts, last_error, created_at, updated_at`

func scanJob(row rowScanner) (*models.Job, error) {
	var job models.Job
	var payload []byte
	err := row.Scan(
		&job.ID,
		&job.JobType,
		&payload,
		&job.Status,
		&job.Attempts,
		&job.LastError,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &job.Payload); err != nil {
			return nil, fmt.Errorf("failed to decode payload of job %s: %w", job.ID, err)
		}
	}
	return &job, nil
}

func (r *postgresJobRepository) Create(ctx context.Context, exec SQLExecutor, job *models.Job) error {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	if job.Status == "" {
		job.Status = models.JobStatusPending
	}
	payload, err := json.Marshal(job.Payload)
	if err != nil {
		return fmt.Errorf("failed to encode job payload: %w", err)
	}

	query := `
		INSERT INTO jobs (id, job_type, payload, status)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`

	err = getExecutor(r.db, exec).QueryRowContext(ctx, query,
		job.ID,
		job.JobType,
		string(payload),
		job.Status,
	).Scan(&job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create job %s: %w", job.JobType, err)
	}
	return nil
}

func (r *postgresJobRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE id = $1`
	job, err := scanJob(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to scan job %s: %w", id, err)
	}
	return job, nil
}

func (r *postgresJobRepository) List(ctx context.Context, filter JobFilter) ([]*models.Job, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + jobColumns + ` FROM jobs WHERE 1=1`)

	args := []interface{}{}
	placeholderIndex := 1

	if filter.JobType != nil {
		queryBuilder.WriteString(" AND job_type = $" + strconv.Itoa(placeholderIndex))
		args = append(args, *filter.JobType)
		placeholderIndex++
	}
	if filter.GameID != nil {
		queryBuilder.WriteString(" AND (payload->>'gameId')::int = $" + strconv.Itoa(placeholderIndex))
		args = append(args, *filter.GameID)
		placeholderIndex++
	}
	if filter.Status != nil {
		queryBuilder.WriteString(" AND status = $" + strconv.Itoa(placeholderIndex))
		args = append(args, *filter.Status)
		placeholderIndex++
	}

	queryBuilder.WriteString(" ORDER BY created_at DESC")
	if filter.Limit > 0 {
		queryBuilder.WriteString(" LIMIT $" + strconv.Itoa(placeholderIndex))
		args = append(args, filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query jobs: %w", err)
	}
	defer rows.Close()

	jobs := make([]*models.Job, 0)
	for rows.Next() {
		job, scanErr := scanJob(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan job row: %w", scanErr)
		}
		jobs = append(jobs, job)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during job rows iteration: %w", err)
	}
	return jobs, nil
}

func (r *postgresJobRepository) ClaimPending(ctx context.Context, limit int, lease time.Duration) ([]*models.Job, error) {
	if limit <= 0 {
		limit = 1
	}
	leaseSeconds := lease.Seconds()

	// задачи, исчерпавшие попытки, закрываем как failed, чтобы они не висели в processing
	expireQuery := `
		UPDATE jobs
		SET status = 'failed', last_error = 'lease expired after ' || attempts || ' attempts', updated_at = NOW()
		WHERE status = 'processing'
		  AND updated_at < NOW() - $1::float8 * INTERVAL '1 second'
		  AND attempts >= $2`
	if _, err := r.db.ExecContext(ctx, expireQuery, leaseSeconds, MaxJobAttempts); err != nil {
		return nil, fmt.Errorf("failed to expire stale jobs: %w", err)
	}

	query := `
		UPDATE jobs
		SET status = 'processing', attempts = attempts + 1, updated_at = NOW()
		WHERE id IN (
			SELECT id FROM jobs
			WHERE status = 'pending'
			   OR (status = 'processing'
			       AND updated_at < NOW() - $2::float8 * INTERVAL '1 second'
			       AND attempts < $3)
			ORDER BY created_at ASC
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING ` + jobColumns

	rows, err := r.db.QueryContext(ctx, query, limit, leaseSeconds, MaxJobAttempts)
	if err != nil {
		return nil, fmt.Errorf("failed to claim pending jobs: %w", err)
	}
	defer rows.Close()

	jobs := make([]*models.Job, 0, limit)
	for rows.Next() {
		job, scanErr := scanJob(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan claimed job: %w", scanErr)
		}
		jobs = append(jobs, job)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during claimed job iteration: %w", err)
	}
	return jobs, nil
}

func (r *postgresJobRepository) MarkDone(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE jobs SET status = 'done', last_error = NULL, updated_at = NOW() WHERE id = $1 AND status = 'processing'`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to mark job %s done: %w", id, err)
	}
	return checkAffectedRows(result, ErrJobNotFound)
}

func (r *postgresJobRepository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	query := `UPDATE jobs SET status = 'failed', last_error = $1, updated_at = NOW() WHERE id = $2 AND status = 'processing'`
	result, err := r.db.ExecContext(ctx, query, reason, id)
	if err != nil {
		return fmt.Errorf("failed to mark job %s failed: %w", id, err)
	}
	return checkAffectedRows(result, ErrJobNotFound)
}

func (r *postgresJobRepository) Release(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE jobs SET status = 'pending', updated_at = NOW() WHERE id = $1 AND status = 'processing'`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to release job %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrJobNotFound)
}

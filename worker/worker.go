package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/Dosada05/team-manager/models"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	defaultJobTimeout = 30 * time.Second
	defaultLease      = 5 * time.Minute
	// outcomeTimeout bounds the MarkDone/MarkFailed write after the batch context is gone.
	outcomeTimeout = 5 * time.Second
)

// ErrUnknownJobType is recorded on jobs no handler is registered for.
var ErrUnknownJobType = errors.New("unknown job type")

// JobSource is the part of the job repository the worker needs.
type JobSource interface {
	ClaimPending(ctx context.Context, limit int, lease time.Duration) ([]*models.Job, error)
	MarkDone(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
	Release(ctx context.Context, id uuid.UUID) error
}

type Recorder interface {
	RecordJobProcessed(jobType string, status models.JobStatus, took time.Duration)
}

// Handler executes one job. A returned error marks the job failed.
type Handler func(ctx context.Context, job *models.Job) error

type Options struct {
	BatchSize   int
	Concurrency int
	JobTimeout  time.Duration
	// Lease is how long a claimed job may stay in processing before it is handed out
	// again. It is kept at least twice JobTimeout.
	Lease time.Duration
}

type Processor struct {
	source   JobSource
	handlers map[string]Handler
	metrics  Recorder
	logger   *slog.Logger
	opts     Options
}

func NewProcessor(source JobSource, metrics Recorder, logger *slog.Logger, opts Options) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 10
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	if opts.JobTimeout <= 0 {
		opts.JobTimeout = defaultJobTimeout
	}
	if opts.Lease <= 0 {
		opts.Lease = defaultLease
	}
	if opts.Lease < 2*opts.JobTimeout {
		opts.Lease = 2 * opts.JobTimeout
	}
	return &Processor{
		source:   source,
		handlers: make(map[string]Handler),
		metrics:  metrics,
		logger:   logger,
		opts:     opts,
	}
}

func (p *Processor) Register(jobType string, h Handler) {
	p.handlers[jobType] = h
}

// ProcessBatch claims up to BatchSize pending jobs and runs them with bounded
// concurrency. It returns the number of jobs claimed. Failing jobs do not stop the batch.
func (p *Processor) ProcessBatch(ctx context.Context) (int, error) {
	jobs, err := p.source.ClaimPending(ctx, p.opts.BatchSize, p.opts.Lease)
	if err != nil {
		return 0, fmt.Errorf("failed to claim jobs: %w", err)
	}
	if len(jobs) == 0 {
		return 0, nil
	}

	var failed atomic.Int32
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Concurrency)
	for _, job := range jobs {
		job := job
		g.Go(func() error {
			if !p.process(gCtx, job) {
				failed.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	p.logger.Info("job batch processed", slog.Int("claimed", len(jobs)), slog.Int("failed", int(failed.Load())))
	return len(jobs), nil
}

// process runs one job and records its outcome. It reports whether the job succeeded.
func (p *Processor) process(ctx context.Context, job *models.Job) bool {
	start := time.Now()
	log := p.logger.With(
		slog.String("job_id", job.ID.String()),
		slog.String("job_type", job.JobType),
		slog.Int("game_id", job.Payload.GameID),
		slog.Int("attempt", job.Attempts),
	)

	err := p.run(ctx, job)
	took := time.Since(start)

	// исход записываем и при остановке воркера, иначе задача остается в processing до истечения аренды
	outcomeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), outcomeTimeout)
	defer cancel()

	if err != nil && ctx.Err() != nil {
		// воркер останавливается: задачу не проваливаем, а возвращаем в очередь
		log.Warn("job interrupted by shutdown, releasing", slog.Any("error", err), slog.Duration("took", took))
		if markErr := p.source.Release(outcomeCtx, job.ID); markErr != nil {
			log.Error("failed to release job", slog.Any("error", markErr))
		}
		return false
	}

	if err != nil {
		log.Error("job failed", slog.Any("error", err), slog.Duration("took", took))
		if markErr := p.source.MarkFailed(outcomeCtx, job.ID, err.Error()); markErr != nil {
			log.Error("failed to mark job as failed", slog.Any("error", markErr))
		}
		p.record(job.JobType, models.JobStatusFailed, took)
		return false
	}

	if markErr := p.source.MarkDone(outcomeCtx, job.ID); markErr != nil {
		log.Error("failed to mark job as done", slog.Any("error", markErr))
		return false
	}
	log.Info("job done", slog.Duration("took", took))
	p.record(job.JobType, models.JobStatusDone, took)
	return true
}

func (p *Processor) run(ctx context.Context, job *models.Job) (err error) {
	handler, ok := p.handlers[job.JobType]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownJobType, job.JobType)
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job handler panicked: %v", r)
		}
	}()

	jobCtx, cancel := context.WithTimeout(ctx, p.opts.JobTimeout)
	defer cancel()
	return handler(jobCtx, job)
}

func (p *Processor) record(jobType string, status models.JobStatus, took time.Duration) {
	if p.metrics != nil {
		p.metrics.RecordJobProcessed(jobType, status, took)
	}
}

// Run polls for jobs every interval until ctx is done. A signal on wake triggers an
// immediate poll; wake may be nil. A full batch is followed by another poll right away.
func (p *Processor) Run(ctx context.Context, interval time.Duration, wake <-chan struct{}) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	p.logger.Info("job worker started",
		slog.Duration("interval", interval),
		slog.Int("batch", p.opts.BatchSize),
		slog.Int("concurrency", p.opts.Concurrency),
	)

	for {
		p.drain(ctx)

		select {
		case <-ctx.Done():
			p.logger.Info("job worker stopped")
			return nil
		case <-ticker.C:
		case _, ok := <-wake:
			if !ok {
				wake = nil
			}
		}
	}
}

func (p *Processor) drain(ctx context.Context) {
	for ctx.Err() == nil {
		n, err := p.ProcessBatch(ctx)
		if err != nil {
			p.logger.Error("job poll failed", slog.Any("error", err))
			return
		}
		if n < p.opts.BatchSize {
			return
		}
	}
}

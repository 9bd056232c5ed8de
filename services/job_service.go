package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/Dosada05/team-manager/models"
	"github.com/Dosada05/team-manager/repositories"
	"github.com/google/uuid"
)

const (
	defaultJobListLimit = 50
	maxJobListLimit     = 200
)

// JobQuery holds raw query parameters of a job listing; empty strings mean "any".
type JobQuery struct {
	JobType string
	GameID  string
	Status  string
	Limit   string
}

type JobService interface {
	List(ctx context.Context, query JobQuery) ([]*models.Job, error)
	Get(ctx context.Context, id string) (*models.Job, error)
}

type jobService struct {
	jobRepo repositories.JobRepository
}

func NewJobService(jobRepo repositories.JobRepository) JobService {
	return &jobService{jobRepo: jobRepo}
}

func (s *jobService) List(ctx context.Context, query JobQuery) ([]*models.Job, error) {
	filter, err := parseJobQuery(query)
	if err != nil {
		return nil, err
	}
	jobs, err := s.jobRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	return jobs, nil
}

func (s *jobService) Get(ctx context.Context, id string) (*models.Job, error) {
	jobID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid job id %q", ErrValidationFailed, id)
	}
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, repositories.ErrJobNotFound) {
			return nil, fmt.Errorf("%w: id %s", ErrJobNotFound, jobID)
		}
		return nil, err
	}
	return job, nil
}

func parseJobQuery(q JobQuery) (repositories.JobFilter, error) {
	filter := repositories.JobFilter{Limit: defaultJobListLimit}

	if q.JobType != "" {
		jobType := q.JobType
		filter.JobType = &jobType
	}
	if q.GameID != "" {
		gameID, err := strconv.Atoi(q.GameID)
		if err != nil || gameID <= 0 {
			return filter, fmt.Errorf("%w: invalid gameId %q", ErrValidationFailed, q.GameID)
		}
		filter.GameID = &gameID
	}
	if q.Status != "" {
		status := models.JobStatus(q.Status)
		if !status.IsValid() {
			return filter, fmt.Errorf("%w: invalid status %q", ErrValidationFailed, q.Status)
		}
		filter.Status = &status
	}
	if q.Limit != "" {
		limit, err := strconv.Atoi(q.Limit)
		if err != nil || limit <= 0 {
			return filter, fmt.Errorf("%w: invalid limit %q", ErrValidationFailed, q.Limit)
		}
		if limit > maxJobListLimit {
			limit = maxJobListLimit
		}
		filter.Limit = limit
	}
	return filter, nil
}

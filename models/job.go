package models

import (
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusDone       JobStatus = "done"
	JobStatusFailed     JobStatus = "failed"
)

func (s JobStatus) IsValid() bool {
	switch s {
	case JobStatusPending, JobStatusProcessing, JobStatusDone, JobStatusFailed:
		return true
	}
	return false
}

// JobTypeRecalcMinutes recomputes minutes played for every player of a game.
const JobTypeRecalcMinutes = "recalc-minutes"

type JobPayload struct {
	GameID int `json:"gameId"`
}

type Job struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	JobType   string     `json:"job_type" db:"job_type"`
	Payload   JobPayload `json:"payload" db:"payload"`
	Status    JobStatus  `json:"status" db:"status"`
	Attempts  int        `json:"attempts" db:"attempts"`
	LastError *string    `json:"last_error,omitempty" db:"last_error"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

// NewRecalcMinutesJob builds a pending recalc-minutes job for the game.
func NewRecalcMinutesJob(gameID int) *Job {
	return &Job{
		ID:      uuid.New(),
		JobType: JobTypeRecalcMinutes,
		Payload: JobPayload{GameID: gameID},
		Status:  JobStatusPending,
	}
}

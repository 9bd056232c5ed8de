package services

import (
	"context"
	"time"

	"github.com/Dosada05/team-manager/models"
)

// RoomBroadcaster pushes a message to every websocket client of a room.
type RoomBroadcaster interface {
	BroadcastToRoom(roomID string, message interface{})
}

type MetricsRecorder interface {
	RecordTransition(from, to models.GameStatus)
	RecordDraftWrite(slot models.DraftKind)
	RecordJobEnqueued(jobType string)
	RecordJobProcessed(jobType string, status models.JobStatus, took time.Duration)
}

// JobNotifier wakes job consumers after a job row is committed.
type JobNotifier interface {
	NotifyJobEnqueued(ctx context.Context, job *models.Job) error
}

// ReportArchiver keeps a copy of a finalized report outside the database.
type ReportArchiver interface {
	ArchiveReport(ctx context.Context, game *models.Game) error
}

type noopMetrics struct{}

func (noopMetrics) RecordTransition(models.GameStatus, models.GameStatus)      {}
func (noopMetrics) RecordDraftWrite(models.DraftKind)                          {}
func (noopMetrics) RecordJobEnqueued(string)                                   {}
func (noopMetrics) RecordJobProcessed(string, models.JobStatus, time.Duration) {}

type noopBroadcaster struct{}

func (noopBroadcaster) BroadcastToRoom(string, interface{}) {}

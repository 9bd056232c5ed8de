package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/Dosada05/team-manager/models"
	"github.com/redis/go-redis/v9"
)

// JobEvent is published on the jobs channel once a job row is committed.
type JobEvent struct {
	JobID   string `json:"jobId"`
	JobType string `json:"jobType"`
	GameID  int    `json:"gameId"`
}

// RedisNotifier publishes job events and lets workers wait for them.
type RedisNotifier struct {
	client  *redis.Client
	channel string
	logger  *slog.Logger
}

func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

func NewRedisNotifier(client *redis.Client, channel string, logger *slog.Logger) *RedisNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisNotifier{client: client, channel: channel, logger: logger}
}

func (n *RedisNotifier) NotifyJobEnqueued(ctx context.Context, job *models.Job) error {
	data, err := json.Marshal(JobEvent{
		JobID:   job.ID.String(),
		JobType: job.JobType,
		GameID:  job.Payload.GameID,
	})
	if err != nil {
		return err
	}
	if err := n.client.Publish(ctx, n.channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish job %s on %s: %w", job.ID, n.channel, err)
	}
	return nil
}

// Subscribe sends a signal on the returned channel for every job event until ctx is done.
// Signals are coalesced: a worker that is busy gets at most one pending wake-up.
func (n *RedisNotifier) Subscribe(ctx context.Context) <-chan struct{} {
	wake := make(chan struct{}, 1)
	pubsub := n.client.Subscribe(ctx, n.channel)

	go func() {
		defer close(wake)
		defer pubsub.Close()

		messages := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				var event JobEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					n.logger.Warn("ignoring malformed job event", slog.String("payload", msg.Payload), slog.Any("error", err))
					continue
				}
				n.logger.Debug("job event received", slog.String("job_id", event.JobID), slog.String("job_type", event.JobType))
				select {
				case wake <- struct{}{}:
				default:
				}
			}
		}
	}()
	return wake
}

func (n *RedisNotifier) Ping(ctx context.Context) error {
	return n.client.Ping(ctx).Err()
}

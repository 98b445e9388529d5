// Package rabbitmq implements the work queue port on RabbitMQ. Enqueue
// publishes a persistent JSON job message; Dequeue pulls one message with
// basic.get and auto-ack, which keeps the at-most-once contract of the
// port.
package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/trungbq/docflow-be/internal/domain"
	"github.com/trungbq/docflow-be/shared/rabbitmq"
)

// Queue is a RabbitMQ-backed domain.WorkQueue.
type Queue struct {
	client *rabbitmq.Client
	logger *slog.Logger
}

// NewQueue creates a queue adapter over an already connected client.
func NewQueue(client *rabbitmq.Client, logger *slog.Logger) *Queue {
	return &Queue{
		client: client,
		logger: logger,
	}
}

// Enqueue assigns a job id, publishes the job message and returns the id.
func (q *Queue) Enqueue(ctx context.Context, documentID, objectKey string) (string, error) {
	job := domain.Job{
		JobID:      uuid.New().String(),
		DocumentID: documentID,
		ObjectKey:  objectKey,
		EnqueuedAt: time.Now().UTC(),
	}

	body, err := json.Marshal(job)
	if err != nil {
		return "", fmt.Errorf("failed to marshal job message: %w", err)
	}

	if err := q.client.Publish(ctx, body, "application/json"); err != nil {
		return "", fmt.Errorf("failed to publish job message: %w", err)
	}

	q.logger.Debug("Job message published",
		slog.String("job_id", job.JobID),
		slog.String("document_id", documentID),
	)

	return job.JobID, nil
}

// Dequeue pulls the next job message, or returns (nil, nil) when the queue
// is empty. Auto-ack means the broker never redelivers a message handed out
// here.
func (q *Queue) Dequeue(_ context.Context) (*domain.Job, error) {
	delivery, ok, err := q.client.Get(true)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	var job domain.Job
	if err := json.Unmarshal(delivery.Body, &job); err != nil {
		q.logger.Error("Dropping malformed job message",
			slog.String("error", err.Error()),
			slog.String("body", string(delivery.Body)),
		)
		return nil, nil
	}

	return &job, nil
}

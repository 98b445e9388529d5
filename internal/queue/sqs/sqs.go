// Package sqs implements the work queue port on Amazon SQS. The job id is
// the SQS-assigned MessageId. Dequeue deletes the message as soon as it is
// received, which keeps the at-most-once contract of the port.
package sqs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awssqs "github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/trungbq/docflow-be/internal/domain"
)

// Config holds SQS adapter configuration.
type Config struct {
	QueueURL string
	// WaitTime enables SQS long polling on receive. Zero means short poll.
	WaitTime time.Duration
}

// Queue is an SQS-backed domain.WorkQueue.
type Queue struct {
	client   *awssqs.Client
	queueURL string
	waitTime time.Duration
	logger   *slog.Logger
}

// message is the JSON body carried by each SQS message. The job id lives in
// the SQS MessageId, not the body.
type message struct {
	DocumentID string    `json:"document_id"`
	ObjectKey  string    `json:"object_key"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// NewQueue creates an SQS-backed queue.
func NewQueue(awsCfg aws.Config, cfg *Config, logger *slog.Logger) *Queue {
	return &Queue{
		client:   awssqs.NewFromConfig(awsCfg),
		queueURL: cfg.QueueURL,
		waitTime: cfg.WaitTime,
		logger:   logger,
	}
}

// Enqueue sends a job message and returns the SQS MessageId as the job id.
func (q *Queue) Enqueue(ctx context.Context, documentID, objectKey string) (string, error) {
	body, err := json.Marshal(message{
		DocumentID: documentID,
		ObjectKey:  objectKey,
		EnqueuedAt: time.Now().UTC(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal job message: %w", err)
	}

	resp, err := q.client.SendMessage(ctx, &awssqs.SendMessageInput{
		QueueUrl:    aws.String(q.queueURL),
		MessageBody: aws.String(string(body)),
	})
	if err != nil {
		return "", fmt.Errorf("failed to send message to SQS: %w", err)
	}

	jobID := aws.ToString(resp.MessageId)

	q.logger.Debug("Job message sent to SQS",
		slog.String("job_id", jobID),
		slog.String("document_id", documentID),
	)

	return jobID, nil
}

// Dequeue receives at most one message, deletes it immediately and returns
// the decoded job, or (nil, nil) when the queue is empty.
func (q *Queue) Dequeue(ctx context.Context) (*domain.Job, error) {
	input := &awssqs.ReceiveMessageInput{
		QueueUrl:            aws.String(q.queueURL),
		MaxNumberOfMessages: 1,
	}
	if q.waitTime > 0 {
		input.WaitTimeSeconds = int32(q.waitTime / time.Second)
	}

	resp, err := q.client.ReceiveMessage(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to receive message from SQS: %w", err)
	}

	if len(resp.Messages) == 0 {
		return nil, nil
	}

	raw := resp.Messages[0]

	// Delete before processing: once handed out, the job is gone.
	_, err = q.client.DeleteMessage(ctx, &awssqs.DeleteMessageInput{
		QueueUrl:      aws.String(q.queueURL),
		ReceiptHandle: raw.ReceiptHandle,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to delete message from SQS: %w", err)
	}

	var msg message
	if err := json.Unmarshal([]byte(aws.ToString(raw.Body)), &msg); err != nil {
		q.logger.Error("Dropping malformed SQS message",
			slog.String("message_id", aws.ToString(raw.MessageId)),
			slog.String("error", err.Error()),
		)
		return nil, nil
	}

	return &domain.Job{
		JobID:      aws.ToString(raw.MessageId),
		DocumentID: msg.DocumentID,
		ObjectKey:  msg.ObjectKey,
		EnqueuedAt: msg.EnqueuedAt,
	}, nil
}

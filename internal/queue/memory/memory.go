// Package memory provides the in-memory reference implementation of the
// work queue port: a mutex-guarded FIFO slice of pending jobs.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/trungbq/docflow-be/internal/domain"
)

// Queue is an in-memory domain.WorkQueue.
type Queue struct {
	mu   sync.Mutex
	jobs []domain.Job
}

// NewQueue creates an empty in-memory queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Enqueue appends a job and returns its freshly assigned id.
func (q *Queue) Enqueue(_ context.Context, documentID, objectKey string) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	job := domain.Job{
		JobID:      uuid.New().String(),
		DocumentID: documentID,
		ObjectKey:  objectKey,
		EnqueuedAt: time.Now().UTC(),
	}
	q.jobs = append(q.jobs, job)
	return job.JobID, nil
}

// Dequeue removes and returns the oldest job, or (nil, nil) when the queue
// is empty. A job handed out once is gone for good.
func (q *Queue) Dequeue(_ context.Context) (*domain.Job, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.jobs) == 0 {
		return nil, nil
	}
	job := q.jobs[0]
	q.jobs = q.jobs[1:]
	return &job, nil
}

// Len reports the number of pending jobs.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

package domain

import "time"

// Job is the message carried by the work queue between enqueue and dequeue.
// It references a document by id together with the object key the processing
// step will read from. Jobs are discarded after a worker handles them; there
// is no acknowledgement or redelivery protocol.
type Job struct {
	JobID      string    `json:"job_id"`
	DocumentID string    `json:"document_id"`
	ObjectKey  string    `json:"object_key"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

package domain

import "context"

// RecordStore persists documents. Update overwrites by id with no
// concurrency token; last-writer-wins is accepted for the reference
// deployment where each document has a single mover at a time.
type RecordStore interface {
	Create(ctx context.Context, doc Document) (Document, error)
	Get(ctx context.Context, id string) (Document, error)
	Update(ctx context.Context, doc Document) (Document, error)
	List(ctx context.Context, filter ListFilter) ([]Document, error)
}

// ListFilter narrows and paginates List results. PageSize is the number of
// documents requested; implementations return up to PageSize+1 rows so the
// caller can detect whether more pages exist.
type ListFilter struct {
	Status   Status
	PageSize int
	Cursor   *ListCursor
}

// ListCursor marks a position in the (created_at, id) descending order used
// by List.
type ListCursor struct {
	CreatedAt int64 // unix nanoseconds
	ID        string
}

// ObjectStorage mints object keys and upload handles. ObjectKey is
// deterministic for a given (documentID, filename) pair and cannot collide
// across distinct document ids. UploadURL returns a link the client uses to
// upload file bytes directly; it may be a real time-limited pre-signed URL
// or a synthetic placeholder.
type ObjectStorage interface {
	ObjectKey(documentID, filename string) string
	UploadURL(ctx context.Context, objectKey, contentType string) (string, error)
}

// WorkQueue carries processing jobs from the API to the worker. Dequeue
// returns jobs in enqueue order and returns (nil, nil) when the queue is
// empty. Delivery is at-most-once: a dequeued job is never returned again.
type WorkQueue interface {
	Enqueue(ctx context.Context, documentID, objectKey string) (string, error)
	Dequeue(ctx context.Context) (*Job, error)
}

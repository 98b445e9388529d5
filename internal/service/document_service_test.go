package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trungbq/docflow-be/internal/domain"
	memoryobject "github.com/trungbq/docflow-be/internal/objectstore/memory"
	memoryqueue "github.com/trungbq/docflow-be/internal/queue/memory"
	memoryrecords "github.com/trungbq/docflow-be/internal/records/memory"
)

func newTestService() (*DocumentService, *memoryrecords.Store, *memoryqueue.Queue) {
	records := memoryrecords.NewStore()
	queue := memoryqueue.NewQueue()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewDocumentService(records, memoryobject.NewStorage(), queue, logger)
	return svc, records, queue
}

func TestInitiateUpload(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		contentType string
		wantErr     error
	}{
		{
			name:        "valid pdf",
			filename:    "report.pdf",
			contentType: "application/pdf",
		},
		{
			name:        "valid png",
			filename:    "scan.png",
			contentType: "image/png",
		},
		{
			name:        "content type not in allow-list",
			filename:    "report.docx",
			contentType: "application/msword",
			wantErr:     domain.ErrInvalidInput,
		},
		{
			name:        "empty content type",
			filename:    "report.pdf",
			contentType: "",
			wantErr:     domain.ErrInvalidInput,
		},
		{
			name:        "empty filename",
			filename:    "",
			contentType: "application/pdf",
			wantErr:     domain.ErrInvalidInput,
		},
		{
			name:        "whitespace-only filename",
			filename:    "   \t ",
			contentType: "application/pdf",
			wantErr:     domain.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, records, _ := newTestService()

			result, err := svc.InitiateUpload(context.Background(), tt.filename, tt.contentType)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, result)

				// Nothing may be persisted on a validation failure.
				docs, listErr := records.List(context.Background(), domain.ListFilter{})
				require.NoError(t, listErr)
				assert.Empty(t, docs)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, result)
			assert.NotEmpty(t, result.DocumentID)
			assert.NotEmpty(t, result.ObjectKey)
			assert.NotEmpty(t, result.UploadURL)

			doc, err := svc.GetDocument(context.Background(), result.DocumentID)
			require.NoError(t, err)
			assert.Equal(t, domain.StatusInitiated, doc.Status)
			assert.Equal(t, doc.CreatedAt, doc.UpdatedAt)
			assert.Empty(t, doc.LastError)
			assert.Equal(t, result.ObjectKey, doc.ObjectKey)
		})
	}
}

func TestInitiateUpload_SanitizesFilename(t *testing.T) {
	svc, _, _ := newTestService()

	result, err := svc.InitiateUpload(context.Background(), "  ../etc/passwd  ", "application/pdf")
	require.NoError(t, err)

	doc, err := svc.GetDocument(context.Background(), result.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, ".._etc_passwd", doc.Filename)
	assert.NotContains(t, doc.Filename, "/")
	assert.NotContains(t, doc.Filename, "\\")
}

func TestGetDocument_NotFound(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.GetDocument(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
}

func TestEnqueueProcessing(t *testing.T) {
	svc, _, queue := newTestService()

	result, err := svc.InitiateUpload(context.Background(), "report.pdf", "application/pdf")
	require.NoError(t, err)

	jobID, err := svc.EnqueueProcessing(context.Background(), result.DocumentID)
	require.NoError(t, err)
	assert.NotEmpty(t, jobID)

	doc, err := svc.GetDocument(context.Background(), result.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusQueued, doc.Status)
	assert.True(t, doc.UpdatedAt.After(doc.CreatedAt) || doc.UpdatedAt.Equal(doc.CreatedAt))

	// The queue must hand back a job matching what was enqueued.
	job, err := queue.Dequeue(context.Background())
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, jobID, job.JobID)
	assert.Equal(t, result.DocumentID, job.DocumentID)
	assert.Equal(t, result.ObjectKey, job.ObjectKey)
}

func TestEnqueueProcessing_NotFound(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.EnqueueProcessing(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
}

func TestEnqueueProcessing_Twice(t *testing.T) {
	svc, _, queue := newTestService()

	result, err := svc.InitiateUpload(context.Background(), "report.pdf", "application/pdf")
	require.NoError(t, err)

	_, err = svc.EnqueueProcessing(context.Background(), result.DocumentID)
	require.NoError(t, err)

	before, err := svc.GetDocument(context.Background(), result.DocumentID)
	require.NoError(t, err)

	// Second attempt hits QUEUED -> QUEUED, which the table rejects.
	_, err = svc.EnqueueProcessing(context.Background(), result.DocumentID)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	// The stored document is untouched by the rejected attempt.
	after, err := svc.GetDocument(context.Background(), result.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	// Exactly one job was enqueued.
	assert.Equal(t, 1, queue.Len())
}

func TestEnqueueProcessing_RejectedFromEveryNonInitiatedStatus(t *testing.T) {
	for _, status := range []domain.Status{
		domain.StatusQueued,
		domain.StatusProcessing,
		domain.StatusCompleted,
		domain.StatusFailed,
	} {
		t.Run(string(status), func(t *testing.T) {
			svc, records, queue := newTestService()

			result, err := svc.InitiateUpload(context.Background(), "report.pdf", "application/pdf")
			require.NoError(t, err)

			doc, err := records.Get(context.Background(), result.DocumentID)
			require.NoError(t, err)
			doc.Status = status
			_, err = records.Update(context.Background(), doc)
			require.NoError(t, err)

			_, err = svc.EnqueueProcessing(context.Background(), result.DocumentID)
			assert.ErrorIs(t, err, domain.ErrInvalidTransition)
			assert.Equal(t, 0, queue.Len())
		})
	}
}

// failingQueue always refuses to enqueue.
type failingQueue struct{}

func (failingQueue) Enqueue(context.Context, string, string) (string, error) {
	return "", errors.New("broker unavailable")
}

func (failingQueue) Dequeue(context.Context) (*domain.Job, error) {
	return nil, nil
}

func TestEnqueueProcessing_EnqueueFailureLeavesDocumentQueued(t *testing.T) {
	records := memoryrecords.NewStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewDocumentService(records, memoryobject.NewStorage(), failingQueue{}, logger)

	result, err := svc.InitiateUpload(context.Background(), "report.pdf", "application/pdf")
	require.NoError(t, err)

	_, err = svc.EnqueueProcessing(context.Background(), result.DocumentID)
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrInvalidTransition)

	// The status update was committed before the enqueue call; the document
	// stays QUEUED with no corresponding job. Known limitation, surfaced,
	// not rolled back.
	doc, err := svc.GetDocument(context.Background(), result.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusQueued, doc.Status)
}

func TestListDocuments_StatusFilter(t *testing.T) {
	svc, _, _ := newTestService()

	first, err := svc.InitiateUpload(context.Background(), "a.pdf", "application/pdf")
	require.NoError(t, err)
	_, err = svc.InitiateUpload(context.Background(), "b.pdf", "application/pdf")
	require.NoError(t, err)

	_, err = svc.EnqueueProcessing(context.Background(), first.DocumentID)
	require.NoError(t, err)

	queued, err := svc.ListDocuments(context.Background(), domain.ListFilter{Status: domain.StatusQueued, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, queued, 1)
	assert.Equal(t, first.DocumentID, queued[0].ID)

	initiated, err := svc.ListDocuments(context.Background(), domain.ListFilter{Status: domain.StatusInitiated, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, initiated, 1)
}

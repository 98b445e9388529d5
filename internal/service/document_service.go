package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/trungbq/docflow-be/internal/domain"
)

// allowedContentTypes is the fixed allow-list for uploads.
var allowedContentTypes = map[string]struct{}{
	"application/pdf": {},
	"image/png":       {},
	"image/jpeg":      {},
}

// DocumentService orchestrates the document lifecycle: it validates input,
// creates documents, performs status transitions through the transition
// table, and hands processing work to the queue. It depends only on the
// three ports and never on a concrete backend.
type DocumentService struct {
	records domain.RecordStore
	storage domain.ObjectStorage
	queue   domain.WorkQueue
	logger  *slog.Logger
}

// NewDocumentService creates a DocumentService with its collaborators
// injected.
func NewDocumentService(records domain.RecordStore, storage domain.ObjectStorage, queue domain.WorkQueue, logger *slog.Logger) *DocumentService {
	return &DocumentService{
		records: records,
		storage: storage,
		queue:   queue,
		logger:  logger,
	}
}

// InitiateUploadResult is what the API returns after a document is created.
type InitiateUploadResult struct {
	DocumentID string
	ObjectKey  string
	UploadURL  string
}

// InitiateUpload validates the request, creates a document in INITIATED
// status and returns the id, object key and upload handle. Nothing is
// enqueued here.
func (s *DocumentService) InitiateUpload(ctx context.Context, filename, contentType string) (*InitiateUploadResult, error) {
	if _, ok := allowedContentTypes[contentType]; !ok {
		return nil, fmt.Errorf("%w: unsupported content type %q", domain.ErrInvalidInput, contentType)
	}

	safeFilename := sanitizeFilename(filename)
	if safeFilename == "" {
		return nil, fmt.Errorf("%w: filename is empty after sanitization", domain.ErrInvalidInput)
	}

	documentID := uuid.New().String()

	objectKey := s.storage.ObjectKey(documentID, safeFilename)

	uploadURL, err := s.storage.UploadURL(ctx, objectKey, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload URL: %w", err)
	}

	now := time.Now().UTC()
	doc := domain.Document{
		ID:          documentID,
		Filename:    safeFilename,
		ContentType: contentType,
		ObjectKey:   objectKey,
		Status:      domain.StatusInitiated,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := s.records.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to create document: %w", err)
	}

	s.logger.Info("Document upload initiated",
		slog.String("document_id", documentID),
		slog.String("object_key", objectKey),
		slog.String("content_type", contentType),
	)

	return &InitiateUploadResult{
		DocumentID: documentID,
		ObjectKey:  objectKey,
		UploadURL:  uploadURL,
	}, nil
}

// GetDocument returns the document with the given id, or
// domain.ErrDocumentNotFound.
func (s *DocumentService) GetDocument(ctx context.Context, documentID string) (domain.Document, error) {
	return s.records.Get(ctx, documentID)
}

// EnqueueProcessing moves a document from INITIATED to QUEUED and enqueues a
// processing job for it, returning the queue-assigned job id. The status
// update is committed before the enqueue call; if the enqueue then fails the
// document stays QUEUED with no corresponding job. That gap is surfaced to
// the caller, not silently retried.
func (s *DocumentService) EnqueueProcessing(ctx context.Context, documentID string) (string, error) {
	doc, err := s.records.Get(ctx, documentID)
	if err != nil {
		return "", err
	}

	// Validate before mutating anything.
	if err := domain.EnsureTransition(doc.Status, domain.StatusQueued); err != nil {
		return "", err
	}

	queued := doc.WithStatus(domain.StatusQueued, time.Now().UTC())
	if _, err := s.records.Update(ctx, queued); err != nil {
		return "", fmt.Errorf("failed to update document status: %w", err)
	}

	jobID, err := s.queue.Enqueue(ctx, doc.ID, doc.ObjectKey)
	if err != nil {
		s.logger.Error("Enqueue failed after status update, document left QUEUED without a job",
			slog.String("document_id", doc.ID),
			slog.String("error", err.Error()),
		)
		return "", fmt.Errorf("failed to enqueue processing job: %w", err)
	}

	s.logger.Info("Document enqueued for processing",
		slog.String("document_id", doc.ID),
		slog.String("job_id", jobID),
	)

	return jobID, nil
}

// ListDocuments returns documents matching the filter, newest first. The
// caller receives up to PageSize+1 entries and uses the extra one to decide
// whether a next page exists.
func (s *DocumentService) ListDocuments(ctx context.Context, filter domain.ListFilter) ([]domain.Document, error) {
	return s.records.List(ctx, filter)
}

// sanitizeFilename trims whitespace and replaces path separators with an
// inert character so a filename can never escape its object-key prefix.
func sanitizeFilename(filename string) string {
	safe := strings.TrimSpace(filename)
	safe = strings.ReplaceAll(safe, "/", "_")
	safe = strings.ReplaceAll(safe, "\\", "_")
	return safe
}

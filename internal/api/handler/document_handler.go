package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/trungbq/docflow-be/internal/api/dto"
	"github.com/trungbq/docflow-be/internal/domain"
)

// InitiateUpload handles POST /documents/initiate-upload.
// Creates a document in INITIATED status and returns the upload handle.
func (h *DocumentHandler) InitiateUpload(c *gin.Context) {
	var req dto.InitiateUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", slog.String("error", err.Error()))
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	result, err := h.documents.InitiateUpload(c.Request.Context(), req.Filename, req.ContentType)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": err.Error(),
			})
			return
		}
		h.logger.Error("Failed to initiate upload", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to initiate upload",
		})
		return
	}

	c.JSON(http.StatusOK, dto.InitiateUploadResponse{
		DocumentID: result.DocumentID,
		ObjectKey:  result.ObjectKey,
		UploadURL:  result.UploadURL,
	})
}

// GetDocument handles GET /documents/:document_id.
func (h *DocumentHandler) GetDocument(c *gin.Context) {
	documentID := c.Param("document_id")

	doc, err := h.documents.GetDocument(c.Request.Context(), documentID)
	if err != nil {
		if errors.Is(err, domain.ErrDocumentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Document not found",
			})
			return
		}
		h.logger.Error("Failed to get document",
			slog.String("document_id", documentID),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to get document",
		})
		return
	}

	c.JSON(http.StatusOK, toDocumentDTO(doc))
}

// EnqueueProcessing handles POST /documents/:document_id/enqueue.
// Moves the document to QUEUED and returns the id of the processing job.
func (h *DocumentHandler) EnqueueProcessing(c *gin.Context) {
	documentID := c.Param("document_id")

	jobID, err := h.documents.EnqueueProcessing(c.Request.Context(), documentID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDocumentNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Document not found",
			})
		case errors.Is(err, domain.ErrInvalidTransition):
			c.JSON(http.StatusConflict, gin.H{
				"error": err.Error(),
			})
		default:
			h.logger.Error("Failed to enqueue document",
				slog.String("document_id", documentID),
				slog.String("error", err.Error()),
			)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to enqueue document",
			})
		}
		return
	}

	c.JSON(http.StatusOK, dto.EnqueueResponse{JobID: jobID})
}

// ListDocuments handles GET /documents.
// Lists documents with optional status filtering and cursor pagination.
func (h *DocumentHandler) ListDocuments(c *gin.Context) {
	var req dto.ListDocumentsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid query parameters",
		})
		return
	}

	if req.PageSize <= 0 {
		req.PageSize = 20
	}
	if req.PageSize > 100 {
		req.PageSize = 100
	}

	cursor, err := DecodeListCursor(req.Cursor)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid cursor",
		})
		return
	}

	filter := domain.ListFilter{
		Status:   domain.Status(req.Status),
		PageSize: req.PageSize,
		Cursor:   cursor,
	}

	docs, err := h.documents.ListDocuments(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to list documents", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list documents",
		})
		return
	}

	hasMore := len(docs) > req.PageSize
	if hasMore {
		docs = docs[:req.PageSize]
	}

	response := make([]dto.DocumentDTO, len(docs))
	for i, doc := range docs {
		response[i] = toDocumentDTO(doc)
	}

	var nextCursor string
	if hasMore {
		last := docs[len(docs)-1]
		nextCursor = EncodeListCursor(&domain.ListCursor{
			CreatedAt: last.CreatedAt.UnixNano(),
			ID:        last.ID,
		})
	}

	c.JSON(http.StatusOK, dto.ListDocumentsResponse{
		Documents:  response,
		NextCursor: nextCursor,
	})
}

func toDocumentDTO(doc domain.Document) dto.DocumentDTO {
	return dto.DocumentDTO{
		ID:          doc.ID,
		Filename:    doc.Filename,
		ContentType: doc.ContentType,
		ObjectKey:   doc.ObjectKey,
		Status:      string(doc.Status),
		CreatedAt:   doc.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:   doc.UpdatedAt.Format(time.RFC3339Nano),
		LastError:   doc.LastError,
	}
}

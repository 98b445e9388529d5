package handler

import (
	"log/slog"

	"github.com/trungbq/docflow-be/internal/service"
)

// Dependencies holds all dependencies needed by handlers.
type Dependencies struct {
	Logger    *slog.Logger
	Documents *service.DocumentService
}

// DocumentHandler handles document-related HTTP requests.
type DocumentHandler struct {
	logger    *slog.Logger
	documents *service.DocumentService
}

// NewDocumentHandler creates a new DocumentHandler instance.
func NewDocumentHandler(deps *Dependencies) *DocumentHandler {
	return &DocumentHandler{
		logger:    deps.Logger,
		documents: deps.Documents,
	}
}

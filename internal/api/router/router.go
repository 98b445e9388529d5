package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/trungbq/docflow-be/internal/api/handler"
)

// SetupRouter configures and returns the Gin router with all routes.
func SetupRouter(deps *handler.Dependencies) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORSMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "document-api-service",
		})
	})

	documentHandler := handler.NewDocumentHandler(deps)

	documents := r.Group("/documents")
	{
		// POST /documents/initiate-upload - create a document and mint an upload handle
		documents.POST("/initiate-upload", documentHandler.InitiateUpload)

		// GET /documents - list documents with filtering and pagination
		documents.GET("", documentHandler.ListDocuments)

		// GET /documents/:document_id - get document details
		documents.GET("/:document_id", documentHandler.GetDocument)

		// POST /documents/:document_id/enqueue - enqueue a document for processing
		documents.POST("/:document_id/enqueue", documentHandler.EnqueueProcessing)
	}

	return r
}

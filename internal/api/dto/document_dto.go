package dto

type InitiateUploadRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
}

type InitiateUploadResponse struct {
	DocumentID string `json:"document_id"`
	ObjectKey  string `json:"object_key"`
	UploadURL  string `json:"upload_url"`
}

type DocumentDTO struct {
	ID          string `json:"id"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	// The detail view exposes the storage key as s3_key; only the
	// initiate-upload response uses object_key.
	ObjectKey string `json:"s3_key"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
	LastError string `json:"last_error,omitempty"`
}

type EnqueueResponse struct {
	JobID string `json:"job_id"`
}

type ListDocumentsRequest struct {
	Status   string `form:"status"`
	PageSize int    `form:"page_size"`
	Cursor   string `form:"cursor"`
}

type ListDocumentsResponse struct {
	Documents  []DocumentDTO `json:"documents"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

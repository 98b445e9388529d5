package memory

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorage_ObjectKey(t *testing.T) {
	storage := NewStorage()

	key := storage.ObjectKey("doc-1", "report.pdf")
	assert.Equal(t, "documents/doc-1/report.pdf", key)

	// Deterministic for the same input.
	assert.Equal(t, key, storage.ObjectKey("doc-1", "report.pdf"))

	// Distinct document ids can never collide, even with the same filename.
	assert.NotEqual(t, key, storage.ObjectKey("doc-2", "report.pdf"))
}

func TestStorage_ObjectKeySanitizesFilename(t *testing.T) {
	storage := NewStorage()

	key := storage.ObjectKey("doc-1", "  nested/path.pdf ")
	assert.Equal(t, "documents/doc-1/nested_path.pdf", key)
}

func TestStorage_UploadURL(t *testing.T) {
	storage := NewStorage()

	rawURL, err := storage.UploadURL(context.Background(), "documents/doc-1/report.pdf", "application/pdf")
	require.NoError(t, err)

	parsed, err := url.Parse(rawURL)
	require.NoError(t, err)

	// The handle encodes the object key and content type.
	assert.Equal(t, "documents/doc-1/report.pdf", parsed.Query().Get("key"))
	assert.Equal(t, "application/pdf", parsed.Query().Get("content_type"))
}

// Package memory provides the in-memory reference implementation of the
// object storage port. No bytes are stored; it only mints keys and
// synthetic upload links for local development.
package memory

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// Storage is an in-memory domain.ObjectStorage.
type Storage struct{}

// NewStorage creates an in-memory object storage.
func NewStorage() *Storage {
	return &Storage{}
}

// ObjectKey returns a deterministic key under a per-document prefix. The
// document id segment guarantees keys from distinct documents never collide.
func (s *Storage) ObjectKey(documentID, filename string) string {
	safe := strings.ReplaceAll(strings.TrimSpace(filename), "/", "_")
	return fmt.Sprintf("documents/%s/%s", documentID, safe)
}

// UploadURL returns a synthetic upload link that encodes the object key and
// content type, the same shape a real pre-signed URL would carry.
func (s *Storage) UploadURL(_ context.Context, objectKey, contentType string) (string, error) {
	params := url.Values{}
	params.Set("key", objectKey)
	params.Set("content_type", contentType)
	return "https://storage.local/upload?" + params.Encode(), nil
}

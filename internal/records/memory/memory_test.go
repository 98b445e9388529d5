package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trungbq/docflow-be/internal/domain"
)

func newDoc(id string, createdAt time.Time) domain.Document {
	return domain.Document{
		ID:          id,
		Filename:    id + ".pdf",
		ContentType: "application/pdf",
		ObjectKey:   "documents/" + id + "/" + id + ".pdf",
		Status:      domain.StatusInitiated,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
}

func TestStore_CreateAndGet(t *testing.T) {
	store := NewStore()
	doc := newDoc("doc-1", time.Now().UTC())

	created, err := store.Create(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, doc, created)

	got, err := store.Get(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.Equal(t, doc, got)
}

func TestStore_GetNotFound(t *testing.T) {
	store := NewStore()

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
}

func TestStore_Update(t *testing.T) {
	store := NewStore()
	now := time.Now().UTC()
	doc := newDoc("doc-1", now)

	_, err := store.Create(context.Background(), doc)
	require.NoError(t, err)

	queued := doc.WithStatus(domain.StatusQueued, now.Add(time.Second))
	updated, err := store.Update(context.Background(), queued)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusQueued, updated.Status)

	got, err := store.Get(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusQueued, got.Status)
	assert.Equal(t, now.Add(time.Second), got.UpdatedAt)
}

func TestStore_UpdateNotFound(t *testing.T) {
	store := NewStore()

	_, err := store.Update(context.Background(), newDoc("missing", time.Now().UTC()))
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
}

func TestStore_List(t *testing.T) {
	store := NewStore()
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	for i, id := range []string{"doc-a", "doc-b", "doc-c"} {
		doc := newDoc(id, base.Add(time.Duration(i)*time.Minute))
		_, err := store.Create(context.Background(), doc)
		require.NoError(t, err)
	}

	// Newest first.
	docs, err := store.List(context.Background(), domain.ListFilter{PageSize: 10})
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "doc-c", docs[0].ID)
	assert.Equal(t, "doc-b", docs[1].ID)
	assert.Equal(t, "doc-a", docs[2].ID)
}

func TestStore_ListStatusFilter(t *testing.T) {
	store := NewStore()
	now := time.Now().UTC()

	queued := newDoc("doc-queued", now)
	queued.Status = domain.StatusQueued
	_, err := store.Create(context.Background(), queued)
	require.NoError(t, err)

	_, err = store.Create(context.Background(), newDoc("doc-initiated", now))
	require.NoError(t, err)

	docs, err := store.List(context.Background(), domain.ListFilter{Status: domain.StatusQueued, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "doc-queued", docs[0].ID)
}

func TestStore_ListCursor(t *testing.T) {
	store := NewStore()
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	ids := []string{"doc-a", "doc-b", "doc-c", "doc-d"}
	for i, id := range ids {
		_, err := store.Create(context.Background(), newDoc(id, base.Add(time.Duration(i)*time.Minute)))
		require.NoError(t, err)
	}

	// First page: PageSize+1 rows come back so the caller can detect more.
	page, err := store.List(context.Background(), domain.ListFilter{PageSize: 2})
	require.NoError(t, err)
	require.Len(t, page, 3)
	assert.Equal(t, "doc-d", page[0].ID)
	assert.Equal(t, "doc-c", page[1].ID)

	// Second page resumes after the last row of the first.
	cursor := &domain.ListCursor{
		CreatedAt: page[1].CreatedAt.UnixNano(),
		ID:        page[1].ID,
	}
	page2, err := store.List(context.Background(), domain.ListFilter{PageSize: 2, Cursor: cursor})
	require.NoError(t, err)
	require.Len(t, page2, 2)
	assert.Equal(t, "doc-b", page2[0].ID)
	assert.Equal(t, "doc-a", page2[1].ID)
}

// Package memory provides the in-memory reference implementation of the
// record store port. State lives in a map guarded by a mutex so the API
// handlers and an in-process worker can share one instance.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/trungbq/docflow-be/internal/domain"
)

// Store is an in-memory domain.RecordStore.
type Store struct {
	mu   sync.RWMutex
	docs map[string]domain.Document
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		docs: make(map[string]domain.Document),
	}
}

// Create saves a new document and returns it.
func (s *Store) Create(_ context.Context, doc domain.Document) (domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.docs[doc.ID] = doc
	return doc, nil
}

// Get returns the document with the given id or domain.ErrDocumentNotFound.
func (s *Store) Get(_ context.Context, id string) (domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[id]
	if !ok {
		return domain.Document{}, domain.ErrDocumentNotFound
	}
	return doc, nil
}

// Update overwrites the stored document by id. Last writer wins.
func (s *Store) Update(_ context.Context, doc domain.Document) (domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[doc.ID]; !ok {
		return domain.Document{}, domain.ErrDocumentNotFound
	}
	s.docs[doc.ID] = doc
	return doc, nil
}

// List returns documents matching the filter ordered by (created_at, id)
// descending, up to PageSize+1 entries.
func (s *Store) List(_ context.Context, filter domain.ListFilter) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]domain.Document, 0, len(s.docs))
	for _, doc := range s.docs {
		if filter.Status != "" && doc.Status != filter.Status {
			continue
		}
		docs = append(docs, doc)
	}

	sort.Slice(docs, func(i, j int) bool {
		if !docs[i].CreatedAt.Equal(docs[j].CreatedAt) {
			return docs[i].CreatedAt.After(docs[j].CreatedAt)
		}
		return docs[i].ID > docs[j].ID
	})

	if filter.Cursor != nil {
		cut := 0
		for i, doc := range docs {
			if doc.CreatedAt.UnixNano() < filter.Cursor.CreatedAt ||
				(doc.CreatedAt.UnixNano() == filter.Cursor.CreatedAt && doc.ID < filter.Cursor.ID) {
				cut = i
				break
			}
			cut = len(docs)
		}
		docs = docs[cut:]
	}

	if filter.PageSize > 0 && len(docs) > filter.PageSize+1 {
		docs = docs[:filter.PageSize+1]
	}

	return docs, nil
}

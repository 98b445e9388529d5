// Package postgres implements the record store port on PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/trungbq/docflow-be/internal/domain"
	"github.com/trungbq/docflow-be/shared/postgresql"
)

// Store persists documents in the documents table.
type Store struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a Store backed by the given PostgreSQL client.
func NewStore(pg *postgresql.Client, logger *slog.Logger) *Store {
	return &Store{
		db:     pg.GetDB(),
		logger: logger,
	}
}

// row mirrors the documents table layout.
type row struct {
	ID          string         `db:"document_id"`
	Filename    string         `db:"filename"`
	ContentType string         `db:"content_type"`
	ObjectKey   string         `db:"object_key"`
	Status      string         `db:"status"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
	LastError   sql.NullString `db:"last_error"`
}

func (r row) toDomain() domain.Document {
	doc := domain.Document{
		ID:          r.ID,
		Filename:    r.Filename,
		ContentType: r.ContentType,
		ObjectKey:   r.ObjectKey,
		Status:      domain.Status(r.Status),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.LastError.Valid {
		doc.LastError = r.LastError.String
	}
	return doc
}

func nullableError(lastError string) sql.NullString {
	if lastError == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: lastError, Valid: true}
}

// Create inserts a new document.
func (s *Store) Create(ctx context.Context, doc domain.Document) (domain.Document, error) {
	query := `
		INSERT INTO documents (
			document_id, filename, content_type, object_key,
			status, created_at, updated_at, last_error
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7, $8
		)
	`

	_, err := s.db.ExecContext(
		ctx,
		query,
		doc.ID,
		doc.Filename,
		doc.ContentType,
		doc.ObjectKey,
		string(doc.Status),
		doc.CreatedAt,
		doc.UpdatedAt,
		nullableError(doc.LastError),
	)
	if err != nil {
		return domain.Document{}, fmt.Errorf("failed to create document: %w", err)
	}

	return doc, nil
}

// Get returns the document with the given id, mapping a missing row to
// domain.ErrDocumentNotFound.
func (s *Store) Get(ctx context.Context, id string) (domain.Document, error) {
	query := `
		SELECT
			document_id, filename, content_type, object_key,
			status, created_at, updated_at, last_error
		FROM documents
		WHERE document_id = $1
	`

	var r row
	if err := s.db.GetContext(ctx, &r, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Document{}, domain.ErrDocumentNotFound
		}
		return domain.Document{}, fmt.Errorf("failed to get document: %w", err)
	}

	return r.toDomain(), nil
}

// Update overwrites the document row by id. Last writer wins; there is no
// version column in this deployment.
func (s *Store) Update(ctx context.Context, doc domain.Document) (domain.Document, error) {
	query := `
		UPDATE documents
		SET status = $1,
		    updated_at = $2,
		    last_error = $3
		WHERE document_id = $4
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		string(doc.Status),
		doc.UpdatedAt,
		nullableError(doc.LastError),
		doc.ID,
	)
	if err != nil {
		return domain.Document{}, fmt.Errorf("failed to update document: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return domain.Document{}, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return domain.Document{}, domain.ErrDocumentNotFound
	}

	s.logger.Debug("Document updated",
		slog.String("document_id", doc.ID),
		slog.String("status", string(doc.Status)),
	)

	return doc, nil
}

// List returns documents matching the filter ordered by (created_at,
// document_id) descending. One extra row beyond PageSize is fetched so the
// caller can detect whether a next page exists.
func (s *Store) List(ctx context.Context, filter domain.ListFilter) ([]domain.Document, error) {
	query := `
		SELECT
			document_id, filename, content_type, object_key,
			status, created_at, updated_at, last_error
		FROM documents
		WHERE 1=1
	`
	args := []interface{}{}
	argIdx := 1

	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, string(filter.Status))
		argIdx++
	}

	if filter.Cursor != nil {
		query += fmt.Sprintf(" AND (created_at, document_id) < ($%d, $%d)", argIdx, argIdx+1)
		args = append(args, time.Unix(0, filter.Cursor.CreatedAt).UTC(), filter.Cursor.ID)
		argIdx += 2
	}

	query += " ORDER BY created_at DESC, document_id DESC"

	if filter.PageSize > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, filter.PageSize+1)
	}

	var rows []row
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	docs := make([]domain.Document, len(rows))
	for i, r := range rows {
		docs[i] = r.toDomain()
	}

	return docs, nil
}

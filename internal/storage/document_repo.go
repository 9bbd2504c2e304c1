package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Document is one ingested source document.
type Document struct {
	ID           int
	Source       string
	Hash         string
	Pages        int
	PassageCount int
	IndexedAt    time.Time
}

// PassageRecord is the registry entry for one indexed vector point.
type PassageRecord struct {
	ID      string
	Page    int
	Section string
}

// DocumentStore tracks ingested documents and their vector points.
type DocumentStore interface {
	// GetBySource returns the document for a source label, or ErrNotFound.
	GetBySource(ctx context.Context, source string) (*Document, error)
	// ListAll returns all ingested documents ordered by source.
	ListAll(ctx context.Context) ([]Document, error)
	// Replace records a freshly indexed document and its passages, replacing
	// any previous registration for the same source atomically.
	Replace(ctx context.Context, doc Document, passages []PassageRecord) (int, error)
	// ListPassageIDs returns the vector point IDs registered for a document.
	ListPassageIDs(ctx context.Context, documentID int) ([]string, error)
}

// documentRepo implements DocumentStore on SQLite.
type documentRepo struct {
	db *sql.DB
}

// NewDocumentRepo creates a DocumentStore backed by the given database.
func NewDocumentRepo(db *sql.DB) DocumentStore {
	return &documentRepo{db: db}
}

func (r *documentRepo) GetBySource(ctx context.Context, source string) (*Document, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, source, hash, pages, passage_count, indexed_at FROM documents WHERE source = ?`, source)

	var doc Document
	err := row.Scan(&doc.ID, &doc.Source, &doc.Hash, &doc.Pages, &doc.PassageCount, &doc.IndexedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return &doc, nil
}

func (r *documentRepo) ListAll(ctx context.Context) ([]Document, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, source, hash, pages, passage_count, indexed_at FROM documents ORDER BY source`)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var docs []Document
	for rows.Next() {
		var doc Document
		if err := rows.Scan(&doc.ID, &doc.Source, &doc.Hash, &doc.Pages, &doc.PassageCount, &doc.IndexedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (r *documentRepo) Replace(ctx context.Context, doc Document, passages []PassageRecord) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// ON DELETE CASCADE clears the old passage rows.
	if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE source = ?`, doc.Source); err != nil {
		return 0, fmt.Errorf("failed to delete previous document: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO documents (source, hash, pages, passage_count) VALUES (?, ?, ?, ?)`,
		doc.Source, doc.Hash, doc.Pages, len(passages))
	if err != nil {
		return 0, fmt.Errorf("failed to insert document: %w", err)
	}

	docID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get document id: %w", err)
	}

	for _, p := range passages {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO passages (id, document_id, page, section) VALUES (?, ?, ?, ?)`,
			p.ID, docID, p.Page, p.Section); err != nil {
			return 0, fmt.Errorf("failed to insert passage: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}
	return int(docID), nil
}

func (r *documentRepo) ListPassageIDs(ctx context.Context, documentID int) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM passages WHERE document_id = ?`, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list passage ids: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan passage id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

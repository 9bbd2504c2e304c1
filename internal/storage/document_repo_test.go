package storage_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"constitution-qa/internal/storage"
)

func newTestRepo(t *testing.T) storage.DocumentStore {
	t.Helper()

	db, err := storage.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	if err := storage.Migrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return storage.NewDocumentRepo(db)
}

func TestDocumentRepoReplaceAndGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	passages := []storage.PassageRecord{
		{ID: "point-1", Page: 1, Section: "Committees"},
		{ID: "point-2", Page: 2, Section: "Clubs"},
	}
	docID, err := repo.Replace(ctx, storage.Document{
		Source: "student-constitution",
		Hash:   "abc123",
		Pages:  10,
	}, passages)
	if err != nil {
		t.Fatalf("Replace() failed: %v", err)
	}

	doc, err := repo.GetBySource(ctx, "student-constitution")
	if err != nil {
		t.Fatalf("GetBySource() failed: %v", err)
	}
	if doc.Hash != "abc123" {
		t.Errorf("Hash = %q, want %q", doc.Hash, "abc123")
	}
	if doc.Pages != 10 {
		t.Errorf("Pages = %d, want 10", doc.Pages)
	}
	if doc.PassageCount != 2 {
		t.Errorf("PassageCount = %d, want 2", doc.PassageCount)
	}
	if doc.IndexedAt.IsZero() {
		t.Error("IndexedAt was not set")
	}

	ids, err := repo.ListPassageIDs(ctx, docID)
	if err != nil {
		t.Fatalf("ListPassageIDs() failed: %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("ListPassageIDs() returned %d ids, want 2", len(ids))
	}
}

func TestDocumentRepoGetBySourceNotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetBySource(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("GetBySource() error = %v, want ErrNotFound", err)
	}
}

func TestDocumentRepoReplaceOverwrites(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	firstID, err := repo.Replace(ctx, storage.Document{
		Source: "student-constitution",
		Hash:   "old",
		Pages:  5,
	}, []storage.PassageRecord{
		{ID: "old-1", Page: 1, Section: "Committees"},
	})
	if err != nil {
		t.Fatalf("first Replace() failed: %v", err)
	}

	newID, err := repo.Replace(ctx, storage.Document{
		Source: "student-constitution",
		Hash:   "new",
		Pages:  6,
	}, []storage.PassageRecord{
		{ID: "new-1", Page: 1, Section: "Clubs"},
		{ID: "new-2", Page: 2, Section: "Clubs"},
	})
	if err != nil {
		t.Fatalf("second Replace() failed: %v", err)
	}

	docs, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll() failed: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("ListAll() returned %d documents, want 1", len(docs))
	}
	if docs[0].Hash != "new" {
		t.Errorf("Hash = %q, want the replacement", docs[0].Hash)
	}
	if docs[0].PassageCount != 2 {
		t.Errorf("PassageCount = %d, want 2", docs[0].PassageCount)
	}

	// The cascade removed the old registration's passages.
	oldIDs, err := repo.ListPassageIDs(ctx, firstID)
	if err != nil {
		t.Fatalf("ListPassageIDs(old) failed: %v", err)
	}
	if len(oldIDs) != 0 {
		t.Errorf("old passage ids still present: %v", oldIDs)
	}

	newIDs, err := repo.ListPassageIDs(ctx, newID)
	if err != nil {
		t.Fatalf("ListPassageIDs(new) failed: %v", err)
	}
	if len(newIDs) != 2 {
		t.Errorf("ListPassageIDs(new) returned %d ids, want 2", len(newIDs))
	}
}

func TestDocumentRepoListAllEmpty(t *testing.T) {
	repo := newTestRepo(t)

	docs, err := repo.ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll() failed: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("ListAll() returned %d documents, want 0", len(docs))
	}
}

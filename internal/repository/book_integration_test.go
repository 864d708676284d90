//go:build integration

package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/booklend/booklend/internal/repository"
	"github.com/booklend/booklend/internal/testutil"
)

// ============================================================================
// Book Repository Integration Tests
// ============================================================================

func TestIntegrationBookRepository_CreateBook(t *testing.T) {
	ctx, repo := newLibraryTestEnv(t)

	title := testutil.UniqueTitle("Create")
	book := testutil.NewTestBook(t, title)

	if err := repo.CreateBook(ctx, book); err != nil {
		t.Fatalf("CreateBook failed: %v", err)
	}

	retrieved, err := repo.GetBookByID(ctx, book.ID)
	if err != nil {
		t.Fatalf("GetBookByID failed: %v", err)
	}

	if retrieved.Title != title {
		t.Errorf("Title mismatch: got %q, want %q", retrieved.Title, title)
	}
	if retrieved.Author != book.Author {
		t.Errorf("Author mismatch: got %q, want %q", retrieved.Author, book.Author)
	}
	if retrieved.Borrowed {
		t.Error("new book should not be borrowed")
	}
}

func TestIntegrationBookRepository_CreateBook_DuplicateTitle(t *testing.T) {
	ctx, repo := newLibraryTestEnv(t)

	title := testutil.UniqueTitle("Dup")
	book1 := testutil.NewTestBook(t, title)
	book2 := testutil.NewTestBook(t, title)

	if err := repo.CreateBook(ctx, book1); err != nil {
		t.Fatalf("CreateBook (first) failed: %v", err)
	}

	err := repo.CreateBook(ctx, book2)
	if !errors.Is(err, repository.ErrTitleExists) {
		t.Errorf("Expected ErrTitleExists, got: %v", err)
	}
}

func TestIntegrationBookRepository_GetBookByTitle(t *testing.T) {
	ctx, repo := newLibraryTestEnv(t)

	title := testutil.UniqueTitle("ByTitle")
	book := testutil.NewTestBook(t, title)

	if err := repo.CreateBook(ctx, book); err != nil {
		t.Fatalf("CreateBook failed: %v", err)
	}

	retrieved, err := repo.GetBookByTitle(ctx, title)
	if err != nil {
		t.Fatalf("GetBookByTitle failed: %v", err)
	}
	if retrieved.ID != book.ID {
		t.Errorf("ID mismatch: got %q, want %q", retrieved.ID, book.ID)
	}

	if _, err := repo.GetBookByTitle(ctx, "no such title"); !errors.Is(err, repository.ErrBookNotFound) {
		t.Errorf("Expected ErrBookNotFound, got: %v", err)
	}
}

func TestIntegrationBookRepository_ListAvailableBooks(t *testing.T) {
	ctx, repo := newLibraryTestEnv(t)

	available := testutil.NewTestBook(t, testutil.UniqueTitle("Available"))
	borrowed := testutil.NewTestBook(t, testutil.UniqueTitle("Borrowed"))
	borrowed.MarkBorrowed(time.Now().UTC())

	if err := repo.CreateBook(ctx, available); err != nil {
		t.Fatalf("CreateBook failed: %v", err)
	}
	if err := repo.CreateBook(ctx, borrowed); err != nil {
		t.Fatalf("CreateBook failed: %v", err)
	}

	books, err := repo.ListAvailableBooks(ctx)
	if err != nil {
		t.Fatalf("ListAvailableBooks failed: %v", err)
	}

	for _, b := range books {
		if b.ID == borrowed.ID {
			t.Error("borrowed book should not be listed as available")
		}
	}

	found := false
	for _, b := range books {
		if b.ID == available.ID {
			found = true
		}
	}
	if !found {
		t.Error("available book missing from listing")
	}
}

func TestIntegrationBookRepository_SearchBooks(t *testing.T) {
	ctx, repo := newLibraryTestEnv(t)

	book := testutil.NewTestBook(t, testutil.UniqueTitle("The Go Programming Language"))
	book.Author = "Donovan and Kernighan"

	if err := repo.CreateBook(ctx, book); err != nil {
		t.Fatalf("CreateBook failed: %v", err)
	}

	// Case-insensitive match on title
	results, err := repo.SearchBooks(ctx, "go programming")
	if err != nil {
		t.Fatalf("SearchBooks failed: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("expected at least one result for title match")
	}

	// Match on author
	results, err = repo.SearchBooks(ctx, "kernighan")
	if err != nil {
		t.Fatalf("SearchBooks failed: %v", err)
	}
	found := false
	for _, b := range results {
		if b.ID == book.ID {
			found = true
		}
	}
	if !found {
		t.Error("expected author match to include book")
	}
}

func TestIntegrationBookRepository_UpdateBook(t *testing.T) {
	ctx, repo := newLibraryTestEnv(t)

	book := testutil.NewTestBook(t, testutil.UniqueTitle("Update"))
	if err := repo.CreateBook(ctx, book); err != nil {
		t.Fatalf("CreateBook failed: %v", err)
	}

	now := time.Now().UTC().Truncate(time.Microsecond)
	book.MarkBorrowed(now)

	if err := repo.UpdateBook(ctx, book); err != nil {
		t.Fatalf("UpdateBook failed: %v", err)
	}

	retrieved, err := repo.GetBookByID(ctx, book.ID)
	if err != nil {
		t.Fatalf("GetBookByID failed: %v", err)
	}
	if !retrieved.Borrowed {
		t.Error("book should be borrowed after update")
	}
	if retrieved.BorrowedAt == nil || !retrieved.BorrowedAt.Equal(now) {
		t.Errorf("BorrowedAt mismatch: got %v, want %v", retrieved.BorrowedAt, now)
	}
}

func TestIntegrationBookRepository_DeleteBook(t *testing.T) {
	ctx, repo := newLibraryTestEnv(t)

	book := testutil.NewTestBook(t, testutil.UniqueTitle("Delete"))
	if err := repo.CreateBook(ctx, book); err != nil {
		t.Fatalf("CreateBook failed: %v", err)
	}

	if err := repo.DeleteBook(ctx, book.ID); err != nil {
		t.Fatalf("DeleteBook failed: %v", err)
	}

	if _, err := repo.GetBookByID(ctx, book.ID); !errors.Is(err, repository.ErrBookNotFound) {
		t.Errorf("Expected ErrBookNotFound after delete, got: %v", err)
	}

	if err := repo.DeleteBook(ctx, book.ID); !errors.Is(err, repository.ErrBookNotFound) {
		t.Errorf("Expected ErrBookNotFound on double delete, got: %v", err)
	}
}

// ============================================================================
// Test Environment Setup
// ============================================================================

func newLibraryTestEnv(t *testing.T) (context.Context, *repository.Repository) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	dbURL := testutil.RequireEnv(t, "DATABASE_URL")

	repo, err := repository.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(repo.Close)

	unlock, err := testutil.AcquireDBLock(ctx, repo.Pool())
	if err != nil {
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() {
		_ = unlock()
	})

	if err := testutil.ResetLibrarySchema(ctx, repo.Pool()); err != nil {
		t.Fatalf("reset library schema: %v", err)
	}

	return ctx, repo
}

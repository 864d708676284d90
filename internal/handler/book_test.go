package handler

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/booklend/booklend/internal/handler/dto"
	"github.com/booklend/booklend/internal/model"
	"github.com/booklend/booklend/internal/service"
	"github.com/booklend/booklend/internal/testutil"
)

func newBookTestEnv(t *testing.T) (*testutil.MemStore, *BookHandler) {
	t.Helper()
	store := testutil.NewMemStore()
	svc := service.NewBookService(store, nil)
	logger := slog.New(slog.NewTextHandler(testWriter{t}, nil))
	return store, NewBookHandler(svc, logger)
}

// testWriter routes handler logs through the test log.
type testWriter struct {
	t *testing.T
}

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(strings.TrimSpace(string(p)))
	return len(p), nil
}

func TestBookHandler_Create(t *testing.T) {
	store, h := newBookTestEnv(t)

	body := `{"title":"Dune","author":"Frank Herbert"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/books", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.CreatedBookResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.Message != "Book added successfully" {
		t.Errorf("unexpected message: %s", resp.Message)
	}
	if resp.Book.Title != "Dune" {
		t.Errorf("unexpected title: %s", resp.Book.Title)
	}
	if resp.Book.ID == "" {
		t.Error("expected book ID to be set")
	}

	if stored := store.Book(resp.Book.ID); stored == nil {
		t.Error("book should exist in store")
	}
}

func TestBookHandler_Create_MissingFields(t *testing.T) {
	_, h := newBookTestEnv(t)

	body := `{"title":"Dune"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/books", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}

	var resp dto.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Code != "MISSING_FIELDS" {
		t.Errorf("unexpected error code: %s", resp.Code)
	}
}

func TestBookHandler_Create_InvalidJSON(t *testing.T) {
	_, h := newBookTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/books", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestBookHandler_Create_DuplicateTitle(t *testing.T) {
	store, h := newBookTestEnv(t)
	store.AddBook(&model.Book{ID: "book-1", Title: "Dune", Author: "Frank Herbert"})

	body := `{"title":"Dune","author":"Frank Herbert"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/books", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", rec.Code)
	}

	var resp dto.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Code != "TITLE_EXISTS" {
		t.Errorf("unexpected error code: %s", resp.Code)
	}
}

func TestBookHandler_List(t *testing.T) {
	store, h := newBookTestEnv(t)
	store.AddBook(&model.Book{ID: "book-1", Title: "Dune", Author: "Frank Herbert"})
	store.AddBook(&model.Book{ID: "book-2", Title: "Neuromancer", Author: "William Gibson", Borrowed: true})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/books", nil)
	rec := httptest.NewRecorder()

	h.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp dto.BookListResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Books) != 2 {
		t.Errorf("expected 2 books, got %d", len(resp.Books))
	}
}

func TestBookHandler_ListAvailable(t *testing.T) {
	store, h := newBookTestEnv(t)
	now := time.Now().UTC()
	borrowed := &model.Book{ID: "book-2", Title: "Neuromancer", Author: "William Gibson"}
	borrowed.MarkBorrowed(now)
	store.AddBook(&model.Book{ID: "book-1", Title: "Dune", Author: "Frank Herbert"})
	store.AddBook(borrowed)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/books/available", nil)
	rec := httptest.NewRecorder()

	h.ListAvailable(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp dto.AvailableBookListResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Books) != 1 {
		t.Fatalf("expected 1 available book, got %d", len(resp.Books))
	}
	if resp.Books[0].ID != "book-1" {
		t.Errorf("unexpected book: %s", resp.Books[0].ID)
	}
}

func TestBookHandler_Search(t *testing.T) {
	store, h := newBookTestEnv(t)
	store.AddBook(&model.Book{ID: "book-1", Title: "Dune", Author: "Frank Herbert"})
	store.AddBook(&model.Book{ID: "book-2", Title: "Dune Messiah", Author: "Frank Herbert"})
	store.AddBook(&model.Book{ID: "book-3", Title: "Neuromancer", Author: "William Gibson"})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/books/search?term=dune", nil)
	rec := httptest.NewRecorder()

	h.Search(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp dto.BookListResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Books) != 2 {
		t.Errorf("expected 2 matches, got %d", len(resp.Books))
	}
}

func TestBookHandler_Search_MissingTerm(t *testing.T) {
	_, h := newBookTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/books/search", nil)
	rec := httptest.NewRecorder()

	h.Search(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}

	var resp dto.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Code != "SEARCH_TERM_REQUIRED" {
		t.Errorf("unexpected error code: %s", resp.Code)
	}
}

func TestBookHandler_Delete(t *testing.T) {
	store, h := newBookTestEnv(t)
	store.AddBook(&model.Book{ID: "book-1", Title: "Dune", Author: "Frank Herbert"})

	r := chi.NewRouter()
	r.Delete("/api/v1/books/{id}", h.Delete)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/books/book-1", nil)
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d: %s", rec.Code, rec.Body.String())
	}
	if store.Book("book-1") != nil {
		t.Error("book should be removed from store")
	}
}

func TestBookHandler_Delete_NotFound(t *testing.T) {
	_, h := newBookTestEnv(t)

	r := chi.NewRouter()
	r.Delete("/api/v1/books/{id}", h.Delete)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/books/missing", nil)
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}

	var resp dto.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Code != "BOOK_NOT_FOUND" {
		t.Errorf("unexpected error code: %s", resp.Code)
	}
}

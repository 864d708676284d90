package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/booklend/booklend/internal/handler/dto"
	"github.com/booklend/booklend/internal/service"
)

// BookHandler handles HTTP requests for catalog operations.
type BookHandler struct {
	svc    *service.BookService
	logger *slog.Logger
}

// NewBookHandler creates a new BookHandler.
func NewBookHandler(svc *service.BookService, logger *slog.Logger) *BookHandler {
	return &BookHandler{
		svc:    svc,
		logger: logger,
	}
}

// List handles GET /api/v1/books.
func (h *BookHandler) List(w http.ResponseWriter, r *http.Request) {
	books, err := h.svc.ListBooks(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToBookListResponse(books))
}

// ListAvailable handles GET /api/v1/books/available.
func (h *BookHandler) ListAvailable(w http.ResponseWriter, r *http.Request) {
	books, err := h.svc.ListAvailableBooks(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToAvailableBookListResponse(books))
}

// Search handles GET /api/v1/books/search?term=.
func (h *BookHandler) Search(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("term")
	if term == "" {
		writeError(w, http.StatusBadRequest, "SEARCH_TERM_REQUIRED", "A search term is required")
		return
	}

	books, err := h.svc.SearchBooks(r.Context(), term)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToBookListResponse(books))
}

// Create handles POST /api/v1/books.
func (h *BookHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if req.Title == "" || req.Author == "" {
		writeError(w, http.StatusBadRequest, "MISSING_FIELDS", "Title and author are required")
		return
	}

	book, err := h.svc.CreateBook(r.Context(), req.Title, req.Author)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("book_created",
		"book_id", book.ID,
		"title", book.Title,
	)

	writeJSON(w, http.StatusCreated, dto.ToCreatedBookResponse(book))
}

// Delete handles DELETE /api/v1/books/{id}.
func (h *BookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Book ID is required")
		return
	}

	if err := h.svc.DeleteBook(r.Context(), id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("book_deleted", "book_id", id)

	w.WriteHeader(http.StatusNoContent)
}

// handleServiceError maps catalog service errors to HTTP responses.
func (h *BookHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrBookNotFound):
		writeError(w, http.StatusNotFound, "BOOK_NOT_FOUND", "Book not found")
	case errors.Is(err, service.ErrTitleExists):
		writeError(w, http.StatusConflict, "TITLE_EXISTS", "A book with this title already exists")
	case errors.Is(err, service.ErrTitleRequired):
		writeError(w, http.StatusBadRequest, "TITLE_REQUIRED", "Title is required")
	case errors.Is(err, service.ErrAuthorRequired):
		writeError(w, http.StatusBadRequest, "AUTHOR_REQUIRED", "Author is required")
	case errors.Is(err, service.ErrSearchTermRequired):
		writeError(w, http.StatusBadRequest, "SEARCH_TERM_REQUIRED", "A search term is required")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}

package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/booklend/booklend/internal/handler/dto"
	"github.com/booklend/booklend/internal/service"
)

// LoanHandler handles HTTP requests for borrow/return operations and
// loan queries.
type LoanHandler struct {
	svc    *service.LoanService
	logger *slog.Logger
}

// NewLoanHandler creates a new LoanHandler.
func NewLoanHandler(svc *service.LoanService, logger *slog.Logger) *LoanHandler {
	return &LoanHandler{
		svc:    svc,
		logger: logger,
	}
}

// Borrow handles POST /api/v1/books/borrow.
func (h *LoanHandler) Borrow(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeLoanRequest(w, r)
	if !ok {
		return
	}

	loan, err := h.svc.BorrowBook(r.Context(), req.Title, req.UserID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("book_borrowed",
		"loan_id", loan.ID,
		"book_id", loan.BookID,
		"user_id", loan.UserID,
	)

	writeJSON(w, http.StatusOK, dto.ToBorrowResponse(loan))
}

// Return handles POST /api/v1/books/return.
func (h *LoanHandler) Return(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeLoanRequest(w, r)
	if !ok {
		return
	}

	loan, err := h.svc.ReturnBook(r.Context(), req.Title, req.UserID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	attrs := []any{
		"loan_id", loan.ID,
		"book_id", loan.BookID,
		"user_id", loan.UserID,
	}
	if loan.LateFee != nil && *loan.LateFee > 0 {
		attrs = append(attrs, "late_fee", *loan.LateFee)
	}
	h.logger.Info("book_returned", attrs...)

	writeJSON(w, http.StatusOK, dto.ToReturnResponse(loan))
}

// Overdue handles GET /api/v1/loans/overdue.
func (h *LoanHandler) Overdue(w http.ResponseWriter, r *http.Request) {
	loans, asOf, err := h.svc.GetOverdueLoans(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToOverdueLoanListResponse(loans, asOf))
}

// Active handles GET /api/v1/loans/active.
func (h *LoanHandler) Active(w http.ResponseWriter, r *http.Request) {
	loans, err := h.svc.GetActiveLoans(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToActiveLoanListResponse(loans))
}

// decodeLoanRequest parses and validates the shared borrow/return
// body. It writes the error response itself and reports success via
// the bool.
func (h *LoanHandler) decodeLoanRequest(w http.ResponseWriter, r *http.Request) (dto.BorrowRequest, bool) {
	var req dto.BorrowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return req, false
	}

	if req.Title == "" || req.UserID == "" {
		writeError(w, http.StatusBadRequest, "MISSING_FIELDS", "Book title and user ID are required")
		return req, false
	}

	return req, true
}

// handleServiceError maps lending service errors to HTTP responses.
func (h *LoanHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrBookNotFound):
		writeError(w, http.StatusNotFound, "BOOK_NOT_FOUND", "Book not found")
	case errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
	case errors.Is(err, service.ErrLoanNotFound):
		writeError(w, http.StatusNotFound, "LOAN_NOT_FOUND", "This book was not borrowed by this user")
	case errors.Is(err, service.ErrBookAlreadyBorrowed):
		writeError(w, http.StatusConflict, "BOOK_ALREADY_BORROWED", "This book is already borrowed")
	case errors.Is(err, service.ErrTooManyBooks):
		writeError(w, http.StatusConflict, "TOO_MANY_BOOKS", "User has already borrowed the maximum number of books")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}

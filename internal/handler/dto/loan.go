package dto

import (
	"time"

	"github.com/booklend/booklend/internal/model"
)

// BorrowRequest represents the request body for borrowing or
// returning a book.
type BorrowRequest struct {
	Title  string `json:"title"`
	UserID string `json:"userId"`
}

// LoanSummary represents a freshly created loan.
type LoanSummary struct {
	ID         string `json:"id"`
	BookTitle  string `json:"bookTitle"`
	UserName   string `json:"userName"`
	BorrowedAt string `json:"borrowedAt"`
}

// BorrowResponse confirms a borrow operation.
type BorrowResponse struct {
	Message string      `json:"message"`
	Loan    LoanSummary `json:"loan"`
}

// ReturnedLoanSummary represents a completed loan.
type ReturnedLoanSummary struct {
	ID         string `json:"id"`
	BookTitle  string `json:"bookTitle"`
	UserName   string `json:"userName"`
	BorrowedAt string `json:"borrowedAt"`
	ReturnedAt string `json:"returnedAt"`
}

// LateFee describes the fee charged on a late return.
type LateFee struct {
	Amount  float64 `json:"amount"`
	Message string  `json:"message"`
}

// ReturnResponse confirms a return operation. LateFee is present only
// when a fee was charged.
type ReturnResponse struct {
	Message string              `json:"message"`
	Loan    ReturnedLoanSummary `json:"loan"`
	LateFee *LateFee            `json:"lateFee,omitempty"`
}

// OverdueLoanResponse represents one overdue loan.
type OverdueLoanResponse struct {
	ID           string  `json:"id"`
	BookTitle    string  `json:"bookTitle"`
	UserName     string  `json:"userName"`
	BorrowedAt   string  `json:"borrowedAt"`
	DaysOverdue  int     `json:"daysOverdue"`
	EstimatedFee float64 `json:"estimatedFee"`
}

// OverdueLoanListResponse wraps the overdue listing.
type OverdueLoanListResponse struct {
	OverdueLoans []OverdueLoanResponse `json:"overdueLoans"`
}

// ActiveLoanResponse represents one active loan.
type ActiveLoanResponse struct {
	ID         string `json:"id"`
	BookTitle  string `json:"bookTitle"`
	UserName   string `json:"userName"`
	BorrowedAt string `json:"borrowedAt"`
}

// ActiveLoanListResponse wraps the active-loans listing.
type ActiveLoanListResponse struct {
	ActiveLoans []ActiveLoanResponse `json:"activeLoans"`
}

// ToBorrowResponse builds the borrow confirmation.
func ToBorrowResponse(loan *model.LoanDetail) *BorrowResponse {
	return &BorrowResponse{
		Message: "Book borrowed successfully",
		Loan: LoanSummary{
			ID:         loan.ID,
			BookTitle:  loan.BookTitle,
			UserName:   loan.UserName,
			BorrowedAt: loan.BorrowedAt.Format(timeLayout),
		},
	}
}

// ToReturnResponse builds the return confirmation, attaching the fee
// block only when a fee was charged.
func ToReturnResponse(loan *model.LoanDetail) *ReturnResponse {
	resp := &ReturnResponse{
		Message: "Book returned successfully",
		Loan: ReturnedLoanSummary{
			ID:         loan.ID,
			BookTitle:  loan.BookTitle,
			UserName:   loan.UserName,
			BorrowedAt: loan.BorrowedAt.Format(timeLayout),
		},
	}

	if loan.ReturnedAt != nil {
		resp.Loan.ReturnedAt = loan.ReturnedAt.Format(timeLayout)
	}

	if loan.LateFee != nil && *loan.LateFee > 0 {
		resp.LateFee = &LateFee{
			Amount:  *loan.LateFee,
			Message: "A late fee has been applied.",
		}
	}

	return resp
}

// ToOverdueLoanListResponse builds the overdue listing evaluated at
// asOf.
func ToOverdueLoanListResponse(loans []*model.LoanDetail, asOf time.Time) *OverdueLoanListResponse {
	out := make([]OverdueLoanResponse, len(loans))
	for i, l := range loans {
		out[i] = OverdueLoanResponse{
			ID:           l.ID,
			BookTitle:    l.BookTitle,
			UserName:     l.UserName,
			BorrowedAt:   l.BorrowedAt.Format(timeLayout),
			DaysOverdue:  l.DaysOverdue(asOf),
			EstimatedFee: l.EstimatedFee(asOf),
		}
	}
	return &OverdueLoanListResponse{OverdueLoans: out}
}

// ToActiveLoanListResponse builds the active-loans listing.
func ToActiveLoanListResponse(loans []*model.LoanDetail) *ActiveLoanListResponse {
	out := make([]ActiveLoanResponse, len(loans))
	for i, l := range loans {
		out[i] = ActiveLoanResponse{
			ID:         l.ID,
			BookTitle:  l.BookTitle,
			UserName:   l.UserName,
			BorrowedAt: l.BorrowedAt.Format(timeLayout),
		}
	}
	return &ActiveLoanListResponse{ActiveLoans: out}
}

package model

import "time"

// Loan links a user and a book for one borrowing. Loans are created
// only by the borrow operation and are never deleted; returned loans
// remain as history.
type Loan struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	BookID     string     `json:"book_id"`
	BorrowedAt time.Time  `json:"borrowed_at"`
	ReturnedAt *time.Time `json:"returned_at,omitempty"`
	LateFee    *float64   `json:"late_fee,omitempty"`
}

// IsActive returns true while the loan has no return timestamp.
func (l *Loan) IsActive() bool {
	return l.ReturnedAt == nil
}

// MarkReturned closes the loan at the given time and stores the final
// late fee. This is the authoritative fee computation for a completed
// loan; both fields are set exactly once.
func (l *Loan) MarkReturned(at time.Time) {
	t := at
	l.ReturnedAt = &t
	fee := lateFeeBetween(l.BorrowedAt, at)
	l.LateFee = &fee
}

// IsOverdue reports whether an active loan has exceeded the loan
// period as of the given time. Returned loans are never overdue.
func (l *Loan) IsOverdue(asOf time.Time) bool {
	return l.IsActive() && daysBetween(l.BorrowedAt, asOf) > LoanPeriodDays
}

// DaysOverdue returns how many days past the loan period the loan is,
// zero if within the period.
func (l *Loan) DaysOverdue(asOf time.Time) int {
	days := daysBetween(l.BorrowedAt, asOf) - LoanPeriodDays
	if days < 0 {
		return 0
	}
	return days
}

// EstimatedFee returns the fee that would be owed if the loan were
// returned at asOf.
func (l *Loan) EstimatedFee(asOf time.Time) float64 {
	return lateFeeBetween(l.BorrowedAt, asOf)
}

// OverdueCutoff returns the borrow-time threshold before which an
// active loan counts as overdue at asOf, using the same calendar-day
// semantics as the fee rule.
func OverdueCutoff(asOf time.Time) time.Time {
	return asOf.UTC().Truncate(24 * time.Hour).AddDate(0, 0, -LoanPeriodDays)
}

// LoanDetail is a loan joined with the book and user it references,
// as produced by the storage layer for listing queries.
type LoanDetail struct {
	Loan
	BookTitle  string `json:"book_title"`
	BookAuthor string `json:"book_author"`
	UserName   string `json:"user_name"`
}

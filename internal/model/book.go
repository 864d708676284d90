// Package model defines domain entities for the application.
package model

import "time"

// Lending policy constants. These are fixed by library policy,
// not configuration.
const (
	// LoanPeriodDays is the number of days a book may be kept fee-free.
	LoanPeriodDays = 14
	// LateFeePerDay is the fee charged per day beyond the loan period.
	LateFeePerDay = 0.50
)

// Book represents a catalog entry. Title is a natural lookup key and
// is unique within the catalog.
type Book struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Author     string     `json:"author"`
	Borrowed   bool       `json:"borrowed"`
	BorrowedAt *time.Time `json:"borrowed_at,omitempty"`
	ReturnedAt *time.Time `json:"returned_at,omitempty"`
}

// IsAvailable returns true if the book can be borrowed.
func (b *Book) IsAvailable() bool {
	return !b.Borrowed
}

// MarkBorrowed flags the book as borrowed as of the given time.
func (b *Book) MarkBorrowed(at time.Time) {
	b.Borrowed = true
	t := at
	b.BorrowedAt = &t
}

// MarkReturned clears the borrowed flag and records the return time.
func (b *Book) MarkReturned(at time.Time) {
	b.Borrowed = false
	t := at
	b.ReturnedAt = &t
}

// CalculateLateFee returns the fee that would be owed if the book were
// returned at asOf. Returns 0 for a book that was never borrowed.
// This is a preview computation; the authoritative fee for a completed
// loan is set by Loan.MarkReturned.
func (b *Book) CalculateLateFee(asOf time.Time) float64 {
	if b.BorrowedAt == nil {
		return 0
	}
	return lateFeeBetween(*b.BorrowedAt, asOf)
}

// daysBetween counts whole calendar days between two instants.
// Both are truncated to UTC dates first, so the count matches a
// calendar difference rather than elapsed hours divided by 24.
func daysBetween(from, to time.Time) int {
	f := from.UTC().Truncate(24 * time.Hour)
	t := to.UTC().Truncate(24 * time.Hour)
	return int(t.Sub(f) / (24 * time.Hour))
}

// lateFeeBetween applies the 14-day grace / 0.50-per-day rule.
func lateFeeBetween(borrowedAt, asOf time.Time) float64 {
	days := daysBetween(borrowedAt, asOf)
	if days <= LoanPeriodDays {
		return 0
	}
	return float64(days-LoanPeriodDays) * LateFeePerDay
}

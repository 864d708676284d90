package model

import (
	"testing"
	"time"
)

func TestLoan_IsActive(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()

	active := Loan{ID: "loan-1", BorrowedAt: now}
	returned := Loan{ID: "loan-2", BorrowedAt: now, ReturnedAt: &now}

	if !active.IsActive() {
		t.Error("loan without return timestamp should be active")
	}
	if returned.IsActive() {
		t.Error("returned loan should not be active")
	}
}

func TestLoan_MarkReturned(t *testing.T) {
	t.Parallel()

	borrowed := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		retDay  int
		wantFee float64
	}{
		{"on time", 10, 0},
		{"last fee-free day", 14, 0},
		{"one day late", 15, 0.50},
		{"six days late", 20, 3.00},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			loan := Loan{ID: "loan-1", UserID: "user-1", BookID: "book-1", BorrowedAt: borrowed}
			returnedAt := borrowed.AddDate(0, 0, tt.retDay)

			loan.MarkReturned(returnedAt)

			if loan.ReturnedAt == nil || !loan.ReturnedAt.Equal(returnedAt) {
				t.Fatalf("ReturnedAt = %v, want %v", loan.ReturnedAt, returnedAt)
			}
			if loan.LateFee == nil {
				t.Fatal("LateFee should be set on return, even when zero")
			}
			if *loan.LateFee != tt.wantFee {
				t.Errorf("LateFee = %v, want %v", *loan.LateFee, tt.wantFee)
			}
			if loan.IsActive() {
				t.Error("returned loan should not be active")
			}
		})
	}
}

func TestLoan_IsOverdue(t *testing.T) {
	t.Parallel()

	borrowed := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		asOfDays int
		returned bool
		want     bool
	}{
		{"within period", 10, false, false},
		{"day 14", 14, false, false},
		{"day 15", 15, false, true},
		{"late but already returned", 20, true, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			loan := Loan{BorrowedAt: borrowed}
			if tt.returned {
				retAt := borrowed.AddDate(0, 0, 5)
				loan.ReturnedAt = &retAt
			}

			asOf := borrowed.AddDate(0, 0, tt.asOfDays)
			if got := loan.IsOverdue(asOf); got != tt.want {
				t.Errorf("IsOverdue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoan_DaysOverdue(t *testing.T) {
	t.Parallel()

	borrowed := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	loan := Loan{BorrowedAt: borrowed}

	if got := loan.DaysOverdue(borrowed.AddDate(0, 0, 10)); got != 0 {
		t.Errorf("DaysOverdue() = %d, want 0 within period", got)
	}
	if got := loan.DaysOverdue(borrowed.AddDate(0, 0, 21)); got != 7 {
		t.Errorf("DaysOverdue() = %d, want 7", got)
	}
}

func TestLoan_EstimatedFee(t *testing.T) {
	t.Parallel()

	borrowed := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	loan := Loan{BorrowedAt: borrowed}

	if got := loan.EstimatedFee(borrowed.AddDate(0, 0, 20)); got != 3.00 {
		t.Errorf("EstimatedFee() = %v, want 3.00", got)
	}
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/booklend/booklend/internal/model"
)

// ErrLoanNotFound is returned when no matching loan exists.
var ErrLoanNotFound = errors.New("loan not found")

// loanDetailQuery joins loans with the book and user they reference.
const loanDetailQuery = `
	SELECT l.id, l.user_id, l.book_id, l.borrowed_at, l.returned_at, l.late_fee,
	       b.title, b.author, u.name
	FROM loans l
	JOIN books b ON b.id = l.book_id
	JOIN users u ON u.id = l.user_id
`

// CreateLoanWithBook inserts a loan and updates the borrowed book in a
// single transaction. A partial apply would break the book/loan
// consistency invariant, so both writes commit or neither does.
func (r *Repository) CreateLoanWithBook(ctx context.Context, loan *model.Loan, book *model.Book) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	insertLoan := `
		INSERT INTO loans (id, user_id, book_id, borrowed_at, returned_at, late_fee)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := tx.Exec(ctx, insertLoan,
		loan.ID, loan.UserID, loan.BookID, loan.BorrowedAt, loan.ReturnedAt, loan.LateFee,
	); err != nil {
		return fmt.Errorf("failed to create loan: %w", err)
	}

	updateBook := `
		UPDATE books
		SET borrowed = $2, borrowed_at = $3, returned_at = $4
		WHERE id = $1
	`
	result, err := tx.Exec(ctx, updateBook,
		book.ID, book.Borrowed, book.BorrowedAt, book.ReturnedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update book: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrBookNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit borrow: %w", err)
	}

	return nil
}

// CompleteLoanWithBook closes a loan and releases the book in a single
// transaction.
func (r *Repository) CompleteLoanWithBook(ctx context.Context, loan *model.Loan, book *model.Book) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	updateLoan := `
		UPDATE loans
		SET returned_at = $2, late_fee = $3
		WHERE id = $1
	`
	result, err := tx.Exec(ctx, updateLoan, loan.ID, loan.ReturnedAt, loan.LateFee)
	if err != nil {
		return fmt.Errorf("failed to update loan: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrLoanNotFound
	}

	updateBook := `
		UPDATE books
		SET borrowed = $2, borrowed_at = $3, returned_at = $4
		WHERE id = $1
	`
	result, err = tx.Exec(ctx, updateBook,
		book.ID, book.Borrowed, book.BorrowedAt, book.ReturnedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update book: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrBookNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit return: %w", err)
	}

	return nil
}

// GetActiveLoanByUserAndBook finds the active loan linking exactly
// this user and this book.
func (r *Repository) GetActiveLoanByUserAndBook(ctx context.Context, userID, bookID string) (*model.Loan, error) {
	query := `
		SELECT id, user_id, book_id, borrowed_at, returned_at, late_fee
		FROM loans
		WHERE user_id = $1 AND book_id = $2 AND returned_at IS NULL
	`

	var loan model.Loan
	err := r.pool.QueryRow(ctx, query, userID, bookID).Scan(
		&loan.ID, &loan.UserID, &loan.BookID, &loan.BorrowedAt, &loan.ReturnedAt, &loan.LateFee,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLoanNotFound
		}
		return nil, fmt.Errorf("failed to get active loan: %w", err)
	}

	return &loan, nil
}

// CountActiveLoansByUser counts a user's loans with no return
// timestamp.
func (r *Repository) CountActiveLoansByUser(ctx context.Context, userID string) (int, error) {
	query := `SELECT COUNT(*) FROM loans WHERE user_id = $1 AND returned_at IS NULL`

	var count int
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count active loans: %w", err)
	}

	return count, nil
}

// ListActiveLoans returns every loan with no return timestamp.
func (r *Repository) ListActiveLoans(ctx context.Context) ([]*model.LoanDetail, error) {
	query := loanDetailQuery + `
		WHERE l.returned_at IS NULL
		ORDER BY l.borrowed_at ASC
	`
	return r.queryLoanDetails(ctx, query)
}

// ListOverdueLoans returns active loans borrowed before the cutoff.
// The caller derives the cutoff from the lending policy so that the
// calendar-day semantics live in one place.
func (r *Repository) ListOverdueLoans(ctx context.Context, cutoff time.Time) ([]*model.LoanDetail, error) {
	query := loanDetailQuery + `
		WHERE l.returned_at IS NULL AND l.borrowed_at < $1
		ORDER BY l.borrowed_at ASC
	`
	return r.queryLoanDetails(ctx, query, cutoff)
}

// ListActiveLoansByUser returns a user's active loans.
func (r *Repository) ListActiveLoansByUser(ctx context.Context, userID string) ([]*model.LoanDetail, error) {
	query := loanDetailQuery + `
		WHERE l.returned_at IS NULL AND l.user_id = $1
		ORDER BY l.borrowed_at ASC
	`
	return r.queryLoanDetails(ctx, query, userID)
}

func (r *Repository) queryLoanDetails(ctx context.Context, query string, args ...any) ([]*model.LoanDetail, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list loans: %w", err)
	}
	defer rows.Close()

	var loans []*model.LoanDetail
	for rows.Next() {
		var d model.LoanDetail
		if err := rows.Scan(
			&d.ID, &d.UserID, &d.BookID, &d.BorrowedAt, &d.ReturnedAt, &d.LateFee,
			&d.BookTitle, &d.BookAuthor, &d.UserName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan loan: %w", err)
		}
		loans = append(loans, &d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating loans: %w", err)
	}

	return loans, nil
}

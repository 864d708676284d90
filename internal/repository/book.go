package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/jackc/pgx/v5"

	"github.com/booklend/booklend/internal/model"
)

// Common errors for book repository operations.
var (
	ErrBookNotFound = errors.New("book not found")
	ErrTitleExists  = errors.New("title already exists")
)

// bookColumns is the column set scanned into model.Book.
var bookColumns = []any{"id", "title", "author", "borrowed", "borrowed_at", "returned_at"}

// CreateBook inserts a new book into the catalog.
func (r *Repository) CreateBook(ctx context.Context, book *model.Book) error {
	query := `
		INSERT INTO books (id, title, author, borrowed, borrowed_at, returned_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		book.ID,
		book.Title,
		book.Author,
		book.Borrowed,
		book.BorrowedAt,
		book.ReturnedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrTitleExists
		}
		return fmt.Errorf("failed to create book: %w", err)
	}

	return nil
}

// GetBookByID retrieves a book by its ID.
func (r *Repository) GetBookByID(ctx context.Context, id string) (*model.Book, error) {
	query := `
		SELECT id, title, author, borrowed, borrowed_at, returned_at
		FROM books
		WHERE id = $1
	`

	book, err := scanBook(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to get book by ID: %w", err)
	}

	return book, nil
}

// GetBookByTitle retrieves a book by its exact title. Titles are
// unique within the catalog, so this is a well-defined lookup.
func (r *Repository) GetBookByTitle(ctx context.Context, title string) (*model.Book, error) {
	query := `
		SELECT id, title, author, borrowed, borrowed_at, returned_at
		FROM books
		WHERE title = $1
	`

	book, err := scanBook(r.pool.QueryRow(ctx, query, title))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to get book by title: %w", err)
	}

	return book, nil
}

// ListBooks returns the whole catalog ordered by title.
func (r *Repository) ListBooks(ctx context.Context) ([]*model.Book, error) {
	ds := pgDialect.From("books").
		Select(bookColumns...).
		Order(goqu.C("title").Asc())

	return r.queryBooks(ctx, ds)
}

// ListAvailableBooks returns books that are not currently borrowed.
func (r *Repository) ListAvailableBooks(ctx context.Context) ([]*model.Book, error) {
	ds := pgDialect.From("books").
		Select(bookColumns...).
		Where(goqu.C("borrowed").IsFalse()).
		Order(goqu.C("title").Asc())

	return r.queryBooks(ctx, ds)
}

// SearchBooks returns books whose title or author contains the term,
// case-insensitive.
func (r *Repository) SearchBooks(ctx context.Context, term string) ([]*model.Book, error) {
	pattern := "%" + term + "%"
	ds := pgDialect.From("books").
		Select(bookColumns...).
		Where(goqu.Or(
			goqu.C("title").ILike(pattern),
			goqu.C("author").ILike(pattern),
		)).
		Order(goqu.C("title").Asc())

	return r.queryBooks(ctx, ds)
}

// UpdateBook persists the mutable borrow-state fields of a book.
func (r *Repository) UpdateBook(ctx context.Context, book *model.Book) error {
	query := `
		UPDATE books
		SET borrowed = $2, borrowed_at = $3, returned_at = $4
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		book.ID,
		book.Borrowed,
		book.BorrowedAt,
		book.ReturnedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update book: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrBookNotFound
	}

	return nil
}

// DeleteBook removes a book from the catalog permanently. It does not
// check for active loans referencing the book; callers own that
// decision.
func (r *Repository) DeleteBook(ctx context.Context, id string) error {
	query := `DELETE FROM books WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrBookNotFound
	}

	return nil
}

// queryBooks executes a goqu dataset and scans the resulting rows.
func (r *Repository) queryBooks(ctx context.Context, ds *goqu.SelectDataset) ([]*model.Book, error) {
	sql, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build book query: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	defer rows.Close()

	var books []*model.Book
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, book)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating books: %w", err)
	}

	return books, nil
}

// scanBook scans a single row into a Book model.
func scanBook(row pgx.Row) (*model.Book, error) {
	var book model.Book
	err := row.Scan(
		&book.ID,
		&book.Title,
		&book.Author,
		&book.Borrowed,
		&book.BorrowedAt,
		&book.ReturnedAt,
	)
	return &book, err
}

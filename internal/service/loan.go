package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/booklend/booklend/internal/cache"
	"github.com/booklend/booklend/internal/model"
	"github.com/booklend/booklend/internal/repository"
)

// Lending policy errors.
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrBookAlreadyBorrowed = errors.New("book is already borrowed")
	ErrTooManyBooks        = errors.New("user has reached the maximum number of borrowed books")
	ErrLoanNotFound        = errors.New("no active loan for this user and book")
	ErrNameRequired        = errors.New("name is required")
)

// LoanStore is the storage contract the lending policy depends on.
// *repository.Repository satisfies it. The two dual-write methods must
// apply both updates atomically.
type LoanStore interface {
	GetBookByTitle(ctx context.Context, title string) (*model.Book, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	CreateUser(ctx context.Context, user *model.User) error
	CountActiveLoansByUser(ctx context.Context, userID string) (int, error)
	GetActiveLoanByUserAndBook(ctx context.Context, userID, bookID string) (*model.Loan, error)
	CreateLoanWithBook(ctx context.Context, loan *model.Loan, book *model.Book) error
	CompleteLoanWithBook(ctx context.Context, loan *model.Loan, book *model.Book) error
	ListActiveLoans(ctx context.Context) ([]*model.LoanDetail, error)
	ListOverdueLoans(ctx context.Context, cutoff time.Time) ([]*model.LoanDetail, error)
	ListActiveLoansByUser(ctx context.Context, userID string) ([]*model.LoanDetail, error)
}

// LoanService orchestrates borrow and return transitions and the
// read-only loan queries.
type LoanService struct {
	store LoanStore
	cache *cache.Cache
	now   func() time.Time
}

// NewLoanService creates a LoanService. The cache may be nil.
func NewLoanService(store LoanStore, cache *cache.Cache) *LoanService {
	return &LoanService{
		store: store,
		cache: cache,
		now:   time.Now,
	}
}

// BorrowBook lends the book with the given title to the given user.
// The check order is part of the API contract: book lookup, then user
// lookup, then already-borrowed, then the borrowing limit. A failure
// at any step leaves all state unchanged.
func (s *LoanService) BorrowBook(ctx context.Context, title, userID string) (*model.LoanDetail, error) {
	book, err := s.resolveBook(ctx, title)
	if err != nil {
		return nil, err
	}

	user, err := s.resolveUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if book.Borrowed {
		return nil, ErrBookAlreadyBorrowed
	}

	active, err := s.store.CountActiveLoansByUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count active loans: %w", err)
	}
	if !user.CanBorrow(active) {
		return nil, ErrTooManyBooks
	}

	now := s.now().UTC()
	loan := &model.Loan{
		ID:         newID(),
		UserID:     user.ID,
		BookID:     book.ID,
		BorrowedAt: now,
	}
	book.MarkBorrowed(now)

	if err := s.store.CreateLoanWithBook(ctx, loan, book); err != nil {
		return nil, fmt.Errorf("failed to persist borrow: %w", err)
	}

	s.invalidateListing(ctx)

	return &model.LoanDetail{
		Loan:       *loan,
		BookTitle:  book.Title,
		BookAuthor: book.Author,
		UserName:   user.Name,
	}, nil
}

// ReturnBook closes the active loan linking the user and the titled
// book. The returned loan carries the final late fee, possibly zero.
func (s *LoanService) ReturnBook(ctx context.Context, title, userID string) (*model.LoanDetail, error) {
	book, err := s.resolveBook(ctx, title)
	if err != nil {
		return nil, err
	}

	user, err := s.resolveUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	loan, err := s.store.GetActiveLoanByUserAndBook(ctx, user.ID, book.ID)
	if err != nil {
		if errors.Is(err, repository.ErrLoanNotFound) {
			return nil, ErrLoanNotFound
		}
		return nil, fmt.Errorf("failed to find active loan: %w", err)
	}

	now := s.now().UTC()
	loan.MarkReturned(now)
	book.MarkReturned(now)

	if err := s.store.CompleteLoanWithBook(ctx, loan, book); err != nil {
		return nil, fmt.Errorf("failed to persist return: %w", err)
	}

	s.invalidateListing(ctx)

	return &model.LoanDetail{
		Loan:       *loan,
		BookTitle:  book.Title,
		BookAuthor: book.Author,
		UserName:   user.Name,
	}, nil
}

// GetOverdueLoans returns active loans older than the loan period,
// along with the instant the listing was evaluated at. Callers derive
// days-overdue and estimated fees from that same instant so they
// cannot disagree with the filter.
func (s *LoanService) GetOverdueLoans(ctx context.Context) ([]*model.LoanDetail, time.Time, error) {
	asOf := s.now().UTC()
	loans, err := s.store.ListOverdueLoans(ctx, model.OverdueCutoff(asOf))
	if err != nil {
		return nil, time.Time{}, err
	}
	return loans, asOf, nil
}

// GetActiveLoans returns every loan that has not been returned.
func (s *LoanService) GetActiveLoans(ctx context.Context) ([]*model.LoanDetail, error) {
	return s.store.ListActiveLoans(ctx)
}

// GetActiveLoansForUser returns the user and their active loans.
func (s *LoanService) GetActiveLoansForUser(ctx context.Context, userID string) (*model.User, []*model.LoanDetail, error) {
	user, err := s.resolveUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	loans, err := s.store.ListActiveLoansByUser(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	return user, loans, nil
}

// CreateUser registers a new library member.
func (s *LoanService) CreateUser(ctx context.Context, name string) (*model.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}

	user := &model.User{
		ID:        newID(),
		Name:      name,
		CreatedAt: s.now().UTC(),
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

func (s *LoanService) resolveBook(ctx context.Context, title string) (*model.Book, error) {
	book, err := s.store.GetBookByTitle(ctx, title)
	if err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to resolve book: %w", err)
	}
	return book, nil
}

func (s *LoanService) resolveUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}
	return user, nil
}

func (s *LoanService) invalidateListing(ctx context.Context) {
	if s.cache == nil {
		return
	}
	_ = s.cache.InvalidateBooks(ctx)
}

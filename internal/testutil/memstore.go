package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/booklend/booklend/internal/model"
	"github.com/booklend/booklend/internal/repository"
)

// MemStore is an in-memory store satisfying the service layer's
// BookStore and LoanStore contracts. It mirrors the repository's
// sentinel errors and copy-on-read behavior so policy tests observe
// the same semantics as the Postgres implementation.
type MemStore struct {
	mu    sync.Mutex
	books map[string]*model.Book
	users map[string]*model.User
	loans map[string]*model.Loan
}

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{
		books: make(map[string]*model.Book),
		users: make(map[string]*model.User),
		loans: make(map[string]*model.Loan),
	}
}

// AddBook seeds a book directly, bypassing policy.
func (m *MemStore) AddBook(book *model.Book) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.books[book.ID] = cloneBook(book)
}

// AddUser seeds a user directly.
func (m *MemStore) AddUser(user *model.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := *user
	m.users[user.ID] = &u
}

// AddLoan seeds a loan directly.
func (m *MemStore) AddLoan(loan *model.Loan) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loans[loan.ID] = cloneLoan(loan)
}

// Book returns the stored state of a book, or nil.
func (m *MemStore) Book(id string) *model.Book {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.books[id]; ok {
		return cloneBook(b)
	}
	return nil
}

// Loans returns all stored loans.
func (m *MemStore) Loans() []*model.Loan {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Loan, 0, len(m.loans))
	for _, l := range m.loans {
		out = append(out, cloneLoan(l))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BorrowedAt.Before(out[j].BorrowedAt) })
	return out
}

func (m *MemStore) CreateBook(_ context.Context, book *model.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.books {
		if b.Title == book.Title {
			return repository.ErrTitleExists
		}
	}
	m.books[book.ID] = cloneBook(book)
	return nil
}

func (m *MemStore) GetBookByTitle(_ context.Context, title string) (*model.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.books {
		if b.Title == title {
			return cloneBook(b), nil
		}
	}
	return nil, repository.ErrBookNotFound
}

func (m *MemStore) ListBooks(_ context.Context) ([]*model.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.collectBooks(func(*model.Book) bool { return true }), nil
}

func (m *MemStore) ListAvailableBooks(_ context.Context) ([]*model.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.collectBooks(func(b *model.Book) bool { return !b.Borrowed }), nil
}

func (m *MemStore) SearchBooks(_ context.Context, term string) ([]*model.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	needle := strings.ToLower(term)
	return m.collectBooks(func(b *model.Book) bool {
		return strings.Contains(strings.ToLower(b.Title), needle) ||
			strings.Contains(strings.ToLower(b.Author), needle)
	}), nil
}

func (m *MemStore) DeleteBook(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.books[id]; !ok {
		return repository.ErrBookNotFound
	}
	delete(m.books, id)
	return nil
}

func (m *MemStore) CreateUser(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := *user
	m.users[user.ID] = &u
	return nil
}

func (m *MemStore) GetUserByID(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, repository.ErrUserNotFound
}

func (m *MemStore) CountActiveLoansByUser(_ context.Context, userID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, l := range m.loans {
		if l.UserID == userID && l.ReturnedAt == nil {
			count++
		}
	}
	return count, nil
}

func (m *MemStore) GetActiveLoanByUserAndBook(_ context.Context, userID, bookID string) (*model.Loan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.loans {
		if l.UserID == userID && l.BookID == bookID && l.ReturnedAt == nil {
			return cloneLoan(l), nil
		}
	}
	return nil, repository.ErrLoanNotFound
}

func (m *MemStore) CreateLoanWithBook(_ context.Context, loan *model.Loan, book *model.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.books[book.ID]; !ok {
		return repository.ErrBookNotFound
	}
	m.loans[loan.ID] = cloneLoan(loan)
	m.books[book.ID] = cloneBook(book)
	return nil
}

func (m *MemStore) CompleteLoanWithBook(_ context.Context, loan *model.Loan, book *model.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.loans[loan.ID]; !ok {
		return repository.ErrLoanNotFound
	}
	if _, ok := m.books[book.ID]; !ok {
		return repository.ErrBookNotFound
	}
	m.loans[loan.ID] = cloneLoan(loan)
	m.books[book.ID] = cloneBook(book)
	return nil
}

func (m *MemStore) ListActiveLoans(_ context.Context) ([]*model.LoanDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.collectLoans(func(l *model.Loan) bool { return l.ReturnedAt == nil }), nil
}

func (m *MemStore) ListOverdueLoans(_ context.Context, cutoff time.Time) ([]*model.LoanDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.collectLoans(func(l *model.Loan) bool {
		return l.ReturnedAt == nil && l.BorrowedAt.Before(cutoff)
	}), nil
}

func (m *MemStore) ListActiveLoansByUser(_ context.Context, userID string) ([]*model.LoanDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.collectLoans(func(l *model.Loan) bool {
		return l.ReturnedAt == nil && l.UserID == userID
	}), nil
}

func (m *MemStore) collectBooks(match func(*model.Book) bool) []*model.Book {
	var books []*model.Book
	for _, b := range m.books {
		if match(b) {
			books = append(books, cloneBook(b))
		}
	}
	sort.Slice(books, func(i, j int) bool { return books[i].Title < books[j].Title })
	return books
}

func (m *MemStore) collectLoans(match func(*model.Loan) bool) []*model.LoanDetail {
	var details []*model.LoanDetail
	for _, l := range m.loans {
		if !match(l) {
			continue
		}
		d := &model.LoanDetail{Loan: *cloneLoan(l)}
		if b, ok := m.books[l.BookID]; ok {
			d.BookTitle = b.Title
			d.BookAuthor = b.Author
		}
		if u, ok := m.users[l.UserID]; ok {
			d.UserName = u.Name
		}
		details = append(details, d)
	}
	sort.Slice(details, func(i, j int) bool { return details[i].BorrowedAt.Before(details[j].BorrowedAt) })
	return details
}

func cloneBook(b *model.Book) *model.Book {
	copied := *b
	if b.BorrowedAt != nil {
		t := *b.BorrowedAt
		copied.BorrowedAt = &t
	}
	if b.ReturnedAt != nil {
		t := *b.ReturnedAt
		copied.ReturnedAt = &t
	}
	return &copied
}

func cloneLoan(l *model.Loan) *model.Loan {
	copied := *l
	if l.ReturnedAt != nil {
		t := *l.ReturnedAt
		copied.ReturnedAt = &t
	}
	if l.LateFee != nil {
		f := *l.LateFee
		copied.LateFee = &f
	}
	return &copied
}

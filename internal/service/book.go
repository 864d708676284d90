package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/booklend/booklend/internal/cache"
	"github.com/booklend/booklend/internal/model"
	"github.com/booklend/booklend/internal/repository"
)

// Catalog service errors.
var (
	ErrTitleRequired      = errors.New("title is required")
	ErrAuthorRequired     = errors.New("author is required")
	ErrSearchTermRequired = errors.New("search term is required")
	ErrBookNotFound       = errors.New("book not found")
	ErrTitleExists        = errors.New("a book with this title already exists")
)

// BookStore is the storage contract the catalog policy depends on.
// *repository.Repository satisfies it.
type BookStore interface {
	CreateBook(ctx context.Context, book *model.Book) error
	GetBookByTitle(ctx context.Context, title string) (*model.Book, error)
	ListBooks(ctx context.Context) ([]*model.Book, error)
	ListAvailableBooks(ctx context.Context) ([]*model.Book, error)
	SearchBooks(ctx context.Context, term string) ([]*model.Book, error)
	DeleteBook(ctx context.Context, id string) error
}

// BookService handles catalog business logic.
type BookService struct {
	store BookStore
	cache *cache.Cache
}

// NewBookService creates a BookService. The cache may be nil, in which
// case every read goes to storage.
func NewBookService(store BookStore, cache *cache.Cache) *BookService {
	return &BookService{store: store, cache: cache}
}

// CreateBook adds a new book to the catalog, unborrowed.
func (s *BookService) CreateBook(ctx context.Context, title, author string) (*model.Book, error) {
	title = strings.TrimSpace(title)
	author = strings.TrimSpace(author)

	if title == "" {
		return nil, ErrTitleRequired
	}
	if author == "" {
		return nil, ErrAuthorRequired
	}

	book := &model.Book{
		ID:     newID(),
		Title:  title,
		Author: author,
	}

	if err := s.store.CreateBook(ctx, book); err != nil {
		if errors.Is(err, repository.ErrTitleExists) {
			return nil, ErrTitleExists
		}
		return nil, fmt.Errorf("failed to create book: %w", err)
	}

	s.invalidateListing(ctx)

	return book, nil
}

// ListBooks returns the whole catalog.
func (s *BookService) ListBooks(ctx context.Context) ([]*model.Book, error) {
	return s.store.ListBooks(ctx)
}

// ListAvailableBooks returns books that can currently be borrowed.
// Served cache-first; storage results are backfilled into the cache.
func (s *BookService) ListAvailableBooks(ctx context.Context) ([]*model.Book, error) {
	if s.cache != nil {
		books, err := s.cache.GetAvailableBooks(ctx)
		if err == nil {
			return books, nil
		}
		// Miss or Redis error, fall through to storage.
	}

	books, err := s.store.ListAvailableBooks(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		// Stale entries are bounded by the TTL and writer invalidation.
		_ = s.cache.SetAvailableBooks(ctx, books)
	}

	return books, nil
}

// SearchBooks returns books whose title or author contains the term.
// Matching is case-insensitive.
func (s *BookService) SearchBooks(ctx context.Context, term string) ([]*model.Book, error) {
	if strings.TrimSpace(term) == "" {
		return nil, ErrSearchTermRequired
	}
	return s.store.SearchBooks(ctx, term)
}

// FindBookByTitle resolves a book by its exact title.
func (s *BookService) FindBookByTitle(ctx context.Context, title string) (*model.Book, error) {
	book, err := s.store.GetBookByTitle(ctx, title)
	if err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	return book, nil
}

// DeleteBook removes a book permanently. It performs no active-loan
// check; loan rows referencing the book still hold their foreign key,
// so the database rejects deleting a book with loan history.
func (s *BookService) DeleteBook(ctx context.Context, id string) error {
	if err := s.store.DeleteBook(ctx, id); err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			return ErrBookNotFound
		}
		return err
	}

	s.invalidateListing(ctx)

	return nil
}

func (s *BookService) invalidateListing(ctx context.Context) {
	if s.cache == nil {
		return
	}
	// Best effort; the TTL covers a failed invalidation.
	_ = s.cache.InvalidateBooks(ctx)
}

// Package dto provides Data Transfer Objects for API requests and
// responses.
package dto

import "github.com/booklend/booklend/internal/model"

// timeLayout is the timestamp format used across the API.
const timeLayout = "2006-01-02 15:04:05"

// CreateBookRequest represents the request body for adding a book.
type CreateBookRequest struct {
	Title  string `json:"title"`
	Author string `json:"author"`
}

// BookResponse represents a catalog entry in API responses.
type BookResponse struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Author   string `json:"author"`
	Borrowed bool   `json:"borrowed"`
}

// BookListResponse wraps a list of catalog entries.
type BookListResponse struct {
	Books []BookResponse `json:"books"`
}

// AvailableBookResponse represents an available book; the borrowed
// flag is implicitly false and omitted.
type AvailableBookResponse struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
}

// AvailableBookListResponse wraps a list of available books.
type AvailableBookListResponse struct {
	Books []AvailableBookResponse `json:"books"`
}

// CreatedBookResponse confirms a catalog addition.
type CreatedBookResponse struct {
	Message string                `json:"message"`
	Book    AvailableBookResponse `json:"book"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// ToBookListResponse converts Book models to a BookListResponse.
func ToBookListResponse(books []*model.Book) *BookListResponse {
	out := make([]BookResponse, len(books))
	for i, b := range books {
		out[i] = BookResponse{
			ID:       b.ID,
			Title:    b.Title,
			Author:   b.Author,
			Borrowed: b.Borrowed,
		}
	}
	return &BookListResponse{Books: out}
}

// ToAvailableBookListResponse converts Book models to an
// AvailableBookListResponse.
func ToAvailableBookListResponse(books []*model.Book) *AvailableBookListResponse {
	out := make([]AvailableBookResponse, len(books))
	for i, b := range books {
		out[i] = AvailableBookResponse{
			ID:     b.ID,
			Title:  b.Title,
			Author: b.Author,
		}
	}
	return &AvailableBookListResponse{Books: out}
}

// ToCreatedBookResponse builds the creation confirmation.
func ToCreatedBookResponse(book *model.Book) *CreatedBookResponse {
	return &CreatedBookResponse{
		Message: "Book added successfully",
		Book: AvailableBookResponse{
			ID:     book.ID,
			Title:  book.Title,
			Author: book.Author,
		},
	}
}

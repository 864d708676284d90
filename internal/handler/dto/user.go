package dto

import "github.com/booklend/booklend/internal/model"

// CreateUserRequest represents the request body for registering a
// user.
type CreateUserRequest struct {
	Name string `json:"name"`
}

// UserSummary identifies a user in API responses.
type UserSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// UserLoanResponse represents one of a user's active loans.
type UserLoanResponse struct {
	ID         string `json:"id"`
	BookTitle  string `json:"bookTitle"`
	BookAuthor string `json:"bookAuthor"`
	BorrowedAt string `json:"borrowedAt"`
}

// UserLoansResponse wraps a user and their active loans.
type UserLoansResponse struct {
	User        UserSummary        `json:"user"`
	ActiveLoans []UserLoanResponse `json:"activeLoans"`
}

// ToUserSummary converts a User model to its API summary.
func ToUserSummary(user *model.User) UserSummary {
	return UserSummary{ID: user.ID, Name: user.Name}
}

// ToUserLoansResponse builds a user's active-loans listing.
func ToUserLoansResponse(user *model.User, loans []*model.LoanDetail) *UserLoansResponse {
	out := make([]UserLoanResponse, len(loans))
	for i, l := range loans {
		out[i] = UserLoanResponse{
			ID:         l.ID,
			BookTitle:  l.BookTitle,
			BookAuthor: l.BookAuthor,
			BorrowedAt: l.BorrowedAt.Format(timeLayout),
		}
	}
	return &UserLoansResponse{
		User:        ToUserSummary(user),
		ActiveLoans: out,
	}
}

package model

import "time"

// MaxActiveLoans is the maximum number of concurrent active loans a
// user may hold. Fixed by library policy.
const MaxActiveLoans = 3

// User represents a library member.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// CanBorrow reports whether a user with the given number of active
// loans may borrow another book. The active count is derived from loan
// records by the storage layer, not held on the entity.
func (u *User) CanBorrow(activeLoans int) bool {
	return activeLoans < MaxActiveLoans
}

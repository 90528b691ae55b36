package entity

import "time"

// User represents an account row in the `users` table.
// PasswordHash is a bcrypt digest; the plaintext is never stored.
type User struct {
	ID           string    `db:"id"`
	Name         string    `db:"name"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

// Principal is the minimal identity projection attached to an authenticated request.
type Principal struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Principal projects u to the fields exposed to authenticated handlers.
func (u *User) Principal() *Principal {
	return &Principal{ID: u.ID, Email: u.Email, Name: u.Name}
}

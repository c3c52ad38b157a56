package db

import "time"

// User roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is a row of the users table.
type User struct {
	ID           uint64
	Name         string
	Role         string
	PasswordHash []byte
	CreatedAt    time.Time
}

// IsAdmin reports whether the user has the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Message is a row of the messages table. Ciphertext holds the encrypted
// envelope; the plaintext is never stored.
type Message struct {
	ID         uint64
	UserID     uint64
	Username   string
	Ciphertext []byte
	CreatedAt  time.Time
}

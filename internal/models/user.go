package models

import "time"

// User represents a row in the PostgreSQL users table. PasswordHash is a
// bcrypt hash; the plaintext password is never stored anywhere.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

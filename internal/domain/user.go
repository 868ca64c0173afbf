package domain

import "time"

// User is the domain entity for a user account.
type User struct {
	ID           int64
	Email        string
	Username     string
	PasswordHash string
	FullName     string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

package domain

import "time"

// User is the authenticating identity behind a membership.
type User struct {
	ID           string
	Email        string
	PasswordHash string // argon2id PHC string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

package domain

import "time"

// User is the domain model for sellers who submit redemption claims.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

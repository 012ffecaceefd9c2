// Package model defines domain entities for the application.
package model

import "time"

// User represents a registered account.
// The password hash is excluded from all JSON serialization.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Package auth provides password hashing and reset-token generation.
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost is the work factor for password hashing.
const bcryptCost = 10

// ErrPasswordTooLong indicates the password exceeds bcrypt's 72-byte limit.
var ErrPasswordTooLong = errors.New("password too long")

// HashPassword creates a salted bcrypt hash of the given password.
func HashPassword(password string) (string, error) {
	if len(password) > 72 {
		return "", ErrPasswordTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	return string(hash), nil
}

// VerifyPassword checks whether the password matches the stored hash.
// Comparison is constant-time within bcrypt itself.
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

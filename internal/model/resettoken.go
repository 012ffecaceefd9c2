package model

import "time"

// ResetToken is a single-use password-reset token. Only its SHA-256
// digest is persisted; the plaintext token appears once in the email.
type ResetToken struct {
	TokenHash string
	UserID    string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

// Expired reports whether the token's validity window has passed.
func (t *ResetToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// Used reports whether the token has already been redeemed.
func (t *ResetToken) Used() bool {
	return t.UsedAt != nil
}

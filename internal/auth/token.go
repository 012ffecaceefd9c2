package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// resetTokenLen is the number of random bytes in a reset token.
const resetTokenLen = 32

// GenerateResetToken returns a URL-safe password-reset token from a
// cryptographically secure source, together with the digest to persist.
// The plaintext goes into the email; only the hash is stored, so a
// database leak does not expose live tokens.
func GenerateResetToken() (plaintext, digest string, err error) {
	b := make([]byte, resetTokenLen)
	if _, err := rand.Read(b); err != nil {
		return "", "", fmt.Errorf("generate reset token: %w", err)
	}

	plaintext = base64.RawURLEncoding.EncodeToString(b)
	return plaintext, HashResetToken(plaintext), nil
}

// HashResetToken returns the hex SHA-256 digest of a plaintext token.
func HashResetToken(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}

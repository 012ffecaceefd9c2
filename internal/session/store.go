// Package session provides the server-side session store.
//
// A session carries the login flag and a snapshot of the user taken at
// login time, keyed by an opaque ID mirrored to the client in a signed
// cookie. The Redis-backed store is the production implementation; the
// in-memory store serves tests and local development.
package session

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/pingme/pingme/internal/model"
)

// Store errors.
var (
	ErrNotFound = errors.New("session not found")
)

// Store is the capability a session consumer needs: create, look up,
// refresh, and destroy sessions by ID.
type Store interface {
	// Create persists a new session and returns it with a fresh ID.
	Create(ctx context.Context, user model.User) (*model.Session, error)

	// Get retrieves a session by ID. Expired or unknown sessions
	// return ErrNotFound.
	Get(ctx context.Context, id string) (*model.Session, error)

	// Touch extends the session's TTL without changing its data.
	Touch(ctx context.Context, id string) error

	// Destroy removes a session. Destroying an absent session is not
	// an error.
	Destroy(ctx context.Context, id string) error
}

// newSessionID returns a 32-byte random identifier, hex encoded.
func newSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Codec signs and verifies session IDs for transport in cookies, so a
// tampered cookie is rejected before the store is consulted.
type Codec struct {
	secret []byte
}

// NewCodec creates a Codec from the configured session secret.
func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret)}
}

// Encode returns the cookie value for a session ID: "<id>.<signature>".
func (c *Codec) Encode(id string) string {
	return id + "." + c.sign(id)
}

// Decode verifies a cookie value and returns the embedded session ID.
func (c *Codec) Decode(value string) (string, bool) {
	id, sig, ok := strings.Cut(value, ".")
	if !ok || id == "" {
		return "", false
	}
	if !hmac.Equal([]byte(sig), []byte(c.sign(id))) {
		return "", false
	}
	return id, true
}

func (c *Codec) sign(id string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(id))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/pingme/pingme/internal/model"
	"github.com/pingme/pingme/internal/session"
)

// SessionCookieName is the cookie carrying the signed session ID.
const SessionCookieName = "pingme_session"

// sessionKey is the context key for the loaded session.
const sessionKey contextKey = "session"

// SessionConfig holds configuration for the session middleware.
type SessionConfig struct {
	Logger *slog.Logger
	Store  session.Store
	Codec  *session.Codec
}

// Session loads the session referenced by the request cookie into the
// request context and slides its expiry. Requests without a valid
// session pass through with no session attached; rejecting them is the
// auth guard's job, not this middleware's.
func Session(cfg SessionConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			id, ok := cfg.Codec.Decode(cookie.Value)
			if !ok {
				cfg.Logger.Warn("rejected session cookie with bad signature",
					slog.String("ip", r.RemoteAddr),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				next.ServeHTTP(w, r)
				return
			}

			sess, err := cfg.Store.Get(r.Context(), id)
			if err != nil {
				if !errors.Is(err, session.ErrNotFound) {
					cfg.Logger.Error("session store error",
						slog.String("error", err.Error()),
						slog.String("request_id", GetRequestID(r.Context())),
					)
				}
				next.ServeHTTP(w, r)
				return
			}

			// Sliding expiry; a failed touch is not fatal for this request.
			if err := cfg.Store.Touch(r.Context(), id); err != nil && !errors.Is(err, session.ErrNotFound) {
				cfg.Logger.Warn("failed to touch session",
					slog.String("error", err.Error()),
					slog.String("request_id", GetRequestID(r.Context())),
				)
			}

			ctx := context.WithValue(r.Context(), sessionKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFromContext returns the session loaded for this request, or nil.
func SessionFromContext(ctx context.Context) *model.Session {
	if sess, ok := ctx.Value(sessionKey).(*model.Session); ok {
		return sess
	}
	return nil
}

// SetSessionCookie writes the signed session cookie.
func SetSessionCookie(w http.ResponseWriter, codec *session.Codec, sessionID string, ttl time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    codec.Encode(sessionID),
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

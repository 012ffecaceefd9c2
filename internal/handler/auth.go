package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/pingme/pingme/internal/middleware"
	"github.com/pingme/pingme/internal/model"
	"github.com/pingme/pingme/internal/service"
	"github.com/pingme/pingme/internal/session"
)

// AuthHandler handles signup, login, logout, and session introspection.
type AuthHandler struct {
	svc        *service.AuthService
	codec      *session.Codec
	logger     *slog.Logger
	sessionTTL time.Duration
	secure     bool
}

// NewAuthHandler creates a new AuthHandler. secure controls the Secure
// flag on the session cookie.
func NewAuthHandler(svc *service.AuthService, codec *session.Codec, logger *slog.Logger, sessionTTL time.Duration, secure bool) *AuthHandler {
	return &AuthHandler{
		svc:        svc,
		codec:      codec,
		logger:     logger,
		sessionTTL: sessionTTL,
		secure:     secure,
	}
}

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup handles POST /signup.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.svc.Signup(r.Context(), service.SignupInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailExists):
			writeError(w, http.StatusConflict, "User already exists")
		case errors.Is(err, service.ErrValidation):
			writeError(w, http.StatusBadRequest, "Invalid signup details")
		default:
			h.logger.Error("signup failed",
				slog.String("error", err.Error()),
				slog.String("request_id", middleware.GetRequestID(r.Context())),
			)
			writeError(w, http.StatusInternalServerError, "Signup failed")
		}
		return
	}

	h.logger.Info("user signed up",
		slog.String("user_id", user.ID),
		slog.String("request_id", middleware.GetRequestID(r.Context())),
	)

	writeJSON(w, http.StatusCreated, map[string]string{"message": "Signup successful"})
}

// Login handles POST /login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sess, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		// Unknown email and wrong password produce the same response,
		// so the endpoint cannot be used to probe registered emails.
		case errors.Is(err, service.ErrUserNotFound), errors.Is(err, service.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, "Invalid email or password")
		default:
			h.logger.Error("login failed",
				slog.String("error", err.Error()),
				slog.String("request_id", middleware.GetRequestID(r.Context())),
			)
			writeError(w, http.StatusInternalServerError, "Login failed")
		}
		return
	}

	middleware.SetSessionCookie(w, h.codec, sess.ID, h.sessionTTL, h.secure)

	h.logger.Info("user logged in",
		slog.String("user_id", sess.User.ID),
		slog.String("request_id", middleware.GetRequestID(r.Context())),
	)

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Login successful",
		"user":    sess.User,
	})
}

// Logout handles GET /logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromContext(r.Context())
	if sess != nil {
		if err := h.svc.Logout(r.Context(), sess.ID); err != nil {
			h.logger.Error("logout failed",
				slog.String("error", err.Error()),
				slog.String("request_id", middleware.GetRequestID(r.Context())),
			)
			writeError(w, http.StatusInternalServerError, "Logout failed")
			return
		}
	}

	middleware.ClearSessionCookie(w, h.secure)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

// CheckSession handles GET /check-session. It reports the session state
// without requiring authentication.
func (h *AuthHandler) CheckSession(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromContext(r.Context())
	if sess == nil || !sess.IsLoggedIn {
		writeJSON(w, http.StatusOK, map[string]any{"loggedIn": false})
		return
	}

	writeJSON(w, http.StatusOK, struct {
		LoggedIn bool       `json:"loggedIn"`
		User     model.User `json:"user"`
	}{
		LoggedIn: true,
		User:     sess.User,
	})
}

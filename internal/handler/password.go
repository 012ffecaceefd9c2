package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/pingme/pingme/internal/middleware"
	"github.com/pingme/pingme/internal/service"
)

// PasswordHandler handles the password-reset flow.
type PasswordHandler struct {
	svc    *service.NotificationService
	logger *slog.Logger
}

// NewPasswordHandler creates a new PasswordHandler.
func NewPasswordHandler(svc *service.NotificationService, logger *slog.Logger) *PasswordHandler {
	return &PasswordHandler{svc: svc, logger: logger}
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

// ForgotPassword handles POST /forgot-password.
func (h *PasswordHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		writeError(w, http.StatusBadRequest, "Email is required")
		return
	}

	if err := h.svc.RequestPasswordReset(r.Context(), req.Email); err != nil {
		h.logger.Error("forgot-password failed",
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetRequestID(r.Context())),
		)
		writeError(w, http.StatusInternalServerError, "Failed to send email")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Reset link sent"})
}

// ResetPassword handles POST /reset-password.
func (h *PasswordHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.svc.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, service.ErrTokenInvalid):
			writeError(w, http.StatusBadRequest, "Invalid reset token")
		case errors.Is(err, service.ErrTokenExpired):
			writeError(w, http.StatusBadRequest, "Reset token expired")
		case errors.Is(err, service.ErrTokenUsed):
			writeError(w, http.StatusBadRequest, "Reset token already used")
		case errors.Is(err, service.ErrValidation):
			writeError(w, http.StatusBadRequest, "New password is required")
		default:
			h.logger.Error("reset-password failed",
				slog.String("error", err.Error()),
				slog.String("request_id", middleware.GetRequestID(r.Context())),
			)
			writeError(w, http.StatusInternalServerError, "Failed to reset password")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Password updated"})
}

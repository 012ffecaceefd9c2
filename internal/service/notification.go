package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/pingme/pingme/internal/auth"
	"github.com/pingme/pingme/internal/mail"
	"github.com/pingme/pingme/internal/model"
	"github.com/pingme/pingme/internal/repository"
)

// Reset-token errors.
var (
	ErrTokenInvalid = errors.New("invalid reset token")
	ErrTokenExpired = errors.New("reset token expired")
	ErrTokenUsed    = errors.New("reset token already used")
)

// TokenStore is the persistence capability for reset tokens.
type TokenStore interface {
	CreateResetToken(ctx context.Context, token *model.ResetToken) error
	GetResetToken(ctx context.Context, tokenHash string) (*model.ResetToken, error)
	MarkResetTokenUsed(ctx context.Context, tokenHash string) error
}

// NotificationService dispatches password-reset email and redeems the
// resulting tokens. Tokens are persisted single-use with an expiry, so a
// reset submission is verified against what was actually issued.
type NotificationService struct {
	users    UserStore
	tokens   TokenStore
	mailer   mail.Mailer
	baseURL  string
	tokenTTL time.Duration
	logger   *slog.Logger
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(users UserStore, tokens TokenStore, mailer mail.Mailer, baseURL string, tokenTTL time.Duration, logger *slog.Logger) *NotificationService {
	return &NotificationService{
		users:    users,
		tokens:   tokens,
		mailer:   mailer,
		baseURL:  baseURL,
		tokenTTL: tokenTTL,
		logger:   logger,
	}
}

// RequestPasswordReset issues a reset token for the account and emails a
// reset link. Unknown emails report success without sending, so the
// endpoint cannot be used to probe which addresses are registered.
func (s *NotificationService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.logger.Info("password reset requested for unknown email")
			return nil
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}

	plaintext, digest, err := auth.GenerateResetToken()
	if err != nil {
		return err
	}

	token := &model.ResetToken{
		TokenHash: digest,
		UserID:    user.ID,
		ExpiresAt: time.Now().UTC().Add(s.tokenTTL),
		CreatedAt: time.Now().UTC(),
	}

	if err := s.tokens.CreateResetToken(ctx, token); err != nil {
		return fmt.Errorf("failed to persist reset token: %w", err)
	}

	link := fmt.Sprintf("%s/reset-password?token=%s", s.baseURL, url.QueryEscape(plaintext))
	if err := s.mailer.SendPasswordReset(ctx, user.Email, link); err != nil {
		return fmt.Errorf("failed to send reset mail: %w", err)
	}

	return nil
}

// ResetPassword redeems a token and replaces the account password. The
// token is claimed before the password changes, so two concurrent
// submissions of the same token cannot both succeed.
func (s *NotificationService) ResetPassword(ctx context.Context, plaintext, newPassword string) error {
	if newPassword == "" {
		return fmt.Errorf("%w: new password is required", ErrValidation)
	}

	token, err := s.tokens.GetResetToken(ctx, auth.HashResetToken(plaintext))
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return ErrTokenInvalid
		}
		return fmt.Errorf("failed to look up reset token: %w", err)
	}

	if token.Used() {
		return ErrTokenUsed
	}
	if token.Expired(time.Now().UTC()) {
		return ErrTokenExpired
	}

	if err := s.tokens.MarkResetTokenUsed(ctx, token.TokenHash); err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			// Lost the race to a concurrent redemption.
			return ErrTokenUsed
		}
		return fmt.Errorf("failed to claim reset token: %w", err)
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	if err := s.users.UpdateUserPassword(ctx, token.UserID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}

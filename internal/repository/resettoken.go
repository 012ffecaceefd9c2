package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/pingme/pingme/internal/model"
)

// ErrTokenNotFound indicates no reset token matched the lookup.
var ErrTokenNotFound = errors.New("reset token not found")

// CreateResetToken persists a password-reset token digest.
func (r *Repository) CreateResetToken(ctx context.Context, token *model.ResetToken) error {
	query := `
		INSERT INTO password_reset_tokens (token_hash, user_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.Exec(ctx, query,
		token.TokenHash,
		token.UserID,
		token.ExpiresAt,
		token.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create reset token: %w", err)
	}

	return nil
}

// GetResetToken retrieves a reset token by its digest.
func (r *Repository) GetResetToken(ctx context.Context, tokenHash string) (*model.ResetToken, error) {
	query := `
		SELECT token_hash, user_id, expires_at, used_at, created_at
		FROM password_reset_tokens
		WHERE token_hash = $1
	`

	var token model.ResetToken
	err := r.db.QueryRow(ctx, query, tokenHash).Scan(
		&token.TokenHash,
		&token.UserID,
		&token.ExpiresAt,
		&token.UsedAt,
		&token.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to get reset token: %w", err)
	}

	return &token, nil
}

// MarkResetTokenUsed stamps a token as redeemed. The used_at guard makes
// redemption single-use even under concurrent submissions.
func (r *Repository) MarkResetTokenUsed(ctx context.Context, tokenHash string) error {
	query := `
		UPDATE password_reset_tokens
		SET used_at = now()
		WHERE token_hash = $1 AND used_at IS NULL
	`

	tag, err := r.db.Exec(ctx, query, tokenHash)
	if err != nil {
		return fmt.Errorf("failed to mark reset token used: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrTokenNotFound
	}

	return nil
}

package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lsa-mis/student-visit-api/internal/pkg/apperrors"
)

// TokenRepository handles refresh token persistence
type TokenRepository struct {
	db *pgxpool.Pool
}

// NewTokenRepository creates a new token repository
func NewTokenRepository(db *pgxpool.Pool) *TokenRepository {
	return &TokenRepository{db: db}
}

// StoreRefreshToken persists a refresh token for a user
func (r *TokenRepository) StoreRefreshToken(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	query := `
		INSERT INTO refresh_tokens (user_id, token, expires_at)
		VALUES ($1, $2, $3)
	`

	_, err := r.db.Exec(ctx, query, userID, token, expiresAt)
	if err != nil {
		return fmt.Errorf("error storing refresh token: %w", err)
	}

	return nil
}

// GetUserIDByToken resolves an unexpired refresh token to its owner
func (r *TokenRepository) GetUserIDByToken(ctx context.Context, token string) (int64, error) {
	query := `
		SELECT user_id FROM refresh_tokens
		WHERE token = $1 AND expires_at > NOW()
	`

	var userID int64
	err := r.db.QueryRow(ctx, query, token).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperrors.ErrTokenInvalid
		}
		return 0, fmt.Errorf("error retrieving refresh token: %w", err)
	}

	return userID, nil
}

// DeleteToken revokes a single refresh token
func (r *TokenRepository) DeleteToken(ctx context.Context, token string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM refresh_tokens WHERE token = $1`, token)
	if err != nil {
		return fmt.Errorf("error deleting refresh token: %w", err)
	}

	return nil
}

// DeleteUserTokens revokes every refresh token a user holds
func (r *TokenRepository) DeleteUserTokens(ctx context.Context, userID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("error deleting user refresh tokens: %w", err)
	}

	return nil
}

// DeleteExpiredTokens removes refresh tokens past their expiry
func (r *TokenRepository) DeleteExpiredTokens(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `DELETE FROM refresh_tokens WHERE expires_at <= NOW()`)
	if err != nil {
		return fmt.Errorf("error deleting expired refresh tokens: %w", err)
	}

	return nil
}

package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/sumire/strava-bridge/internal/domain"
)

// TokenRepository persists the latest Strava token pair per user in PostgreSQL.
type TokenRepository struct {
	db *sqlx.DB
}

// NewTokenRepository creates a new TokenRepository.
func NewTokenRepository(db *sqlx.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// SaveTokens writes the token pair for tokens.UserID, replacing any previous pair.
func (r *TokenRepository) SaveTokens(ctx context.Context, tokens domain.StoredTokens) error {
	_, err := r.db.NamedExecContext(ctx,
		`INSERT INTO strava_tokens (user_id, access_token, refresh_token)
		 VALUES (:user_id, :access_token, :refresh_token)
		 ON CONFLICT (user_id)
		 DO UPDATE SET access_token = EXCLUDED.access_token,
		               refresh_token = EXCLUDED.refresh_token,
		               updated_at = NOW()`,
		tokens,
	)
	if err != nil {
		return fmt.Errorf("save tokens for %s: %w", tokens.UserID, err)
	}
	return nil
}

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// TokenStore is the logout blacklist. Entries outlive their token only
// until expires_at.
type TokenStore struct {
	db *sql.DB
}

func NewTokenStore(db *sql.DB) *TokenStore {
	return &TokenStore{db: db}
}

func (s *TokenStore) BlacklistToken(ctx context.Context, token string, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO token_blacklist (token, expires_at)
		VALUES ($1, $2)
		ON CONFLICT (token) DO NOTHING
	`, token, expiresAt)
	if err != nil {
		return storeError("Failed to log out", fmt.Errorf("blacklist token: %w", err))
	}

	// drop entries whose token can no longer validate
	if _, err := s.db.ExecContext(ctx, `DELETE FROM token_blacklist WHERE expires_at < NOW()`); err != nil {
		return storeError("Failed to log out", fmt.Errorf("purge blacklist: %w", err))
	}
	return nil
}

func (s *TokenStore) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM token_blacklist WHERE token = $1)`, token,
	).Scan(&exists)
	if err != nil {
		return false, storeError("Authentication failed", fmt.Errorf("check blacklist: %w", err))
	}
	return exists, nil
}

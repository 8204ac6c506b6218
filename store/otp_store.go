package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"storefront/api/apperr"
	"storefront/api/models"
)

// OTPStore keeps at most one live password-reset code per email.
type OTPStore struct {
	db *sql.DB
}

func NewOTPStore(db *sql.DB) *OTPStore {
	return &OTPStore{db: db}
}

func (s *OTPStore) UpsertOTP(ctx context.Context, otp models.OTP) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO otps (email, code, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE
		SET code = EXCLUDED.code, expires_at = EXCLUDED.expires_at, created_at = NOW()
	`, otp.Email, otp.Code, otp.ExpiresAt)
	if err != nil {
		return storeError("Failed to store OTP", fmt.Errorf("upsert otp: %w", err))
	}
	return nil
}

// GetOTP ignores expired codes.
func (s *OTPStore) GetOTP(ctx context.Context, email string) (*models.OTP, error) {
	otp := &models.OTP{}
	err := s.db.QueryRowContext(ctx,
		`SELECT email, code, expires_at FROM otps WHERE email = $1 AND expires_at > $2`,
		email, time.Now(),
	).Scan(&otp.Email, &otp.Code, &otp.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("Invalid or expired OTP")
		}
		return nil, storeError("Failed to read OTP", fmt.Errorf("get otp: %w", err))
	}
	return otp, nil
}

func (s *OTPStore) DeleteOTP(ctx context.Context, email string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM otps WHERE email = $1`, email); err != nil {
		return storeError("Failed to delete OTP", fmt.Errorf("delete otp: %w", err))
	}
	return nil
}

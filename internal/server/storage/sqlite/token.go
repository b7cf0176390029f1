package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/securenotes/internal/models"
	"github.com/iudanet/securenotes/internal/server/storage"
)

// SaveRefreshToken persists a new active refresh token record
func (s *Storage) SaveRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	query := `
		INSERT INTO refresh_tokens (id, user_id, token, expires_at, revoked, created_at)
		VALUES (?, ?, ?, ?, 0, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		token.ID,
		token.UserID,
		token.Token,
		token.ExpiresAt.Unix(),
		token.CreatedAt.Unix(),
	)

	if err != nil {
		return fmt.Errorf("failed to save refresh token: %w", err)
	}

	return nil
}

// GetRefreshToken retrieves refresh token record by exact token value
func (s *Storage) GetRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	query := `
		SELECT id, user_id, token, expires_at, revoked, created_at
		FROM refresh_tokens
		WHERE token = ?
	`

	record := &models.RefreshToken{}
	var expiresAt, createdAt int64
	var revoked int

	err := s.db.QueryRowContext(ctx, query, token).Scan(
		&record.ID,
		&record.UserID,
		&record.Token,
		&expiresAt,
		&revoked,
		&createdAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}

	record.ExpiresAt = time.Unix(expiresAt, 0).UTC()
	record.CreatedAt = time.Unix(createdAt, 0).UTC()
	record.Revoked = revoked != 0

	return record, nil
}

// RotateRefreshToken atomically revokes oldToken and persists newToken.
// Ревокация условная: UPDATE затрагивает только активную запись, и ноль
// затронутых строк означает, что конкурентная ротация уже победила —
// в этом случае новая запись не создается.
func (s *Storage) RotateRefreshToken(ctx context.Context, oldToken string, newToken *models.RefreshToken) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE refresh_tokens SET revoked = 1 WHERE token = ? AND revoked = 0 AND expires_at > ?`,
			oldToken, time.Now().Unix(),
		)
		if err != nil {
			return fmt.Errorf("failed to revoke old refresh token: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}

		if rows == 0 {
			return storage.ErrTokenExpiredOrRevoked
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO refresh_tokens (id, user_id, token, expires_at, revoked, created_at)
			 VALUES (?, ?, ?, ?, 0, ?)`,
			newToken.ID,
			newToken.UserID,
			newToken.Token,
			newToken.ExpiresAt.Unix(),
			newToken.CreatedAt.Unix(),
		)
		if err != nil {
			return fmt.Errorf("failed to save new refresh token: %w", err)
		}

		return nil
	})
}

// RevokeRefreshToken flips the revoked flag for the matching record.
// Idempotent: absent or already revoked tokens are not an error.
func (s *Storage) RevokeRefreshToken(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked = 1 WHERE token = ?`, token)
	if err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}

	return nil
}

// RevokeUserTokens revokes every active record owned by the user
func (s *Storage) RevokeUserTokens(ctx context.Context, userID string) (int, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked = 1 WHERE user_id = ? AND revoked = 0`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to revoke user tokens: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return int(rows), nil
}

// DeleteExpiredTokens removes records whose expiry has passed
func (s *Storage) DeleteExpiredTokens(ctx context.Context) (int, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM refresh_tokens WHERE expires_at < ?`, time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired tokens: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return int(rows), nil
}

package storage

import (
	"context"

	"github.com/iudanet/securenotes/internal/models"
)

// TokenStorage defines the refresh token ledger contract.
// Records transition Active -> Revoked exactly once; rotated and revoked
// records are equivalent for validation purposes.
type TokenStorage interface {
	// SaveRefreshToken persists a new active refresh token record
	SaveRefreshToken(ctx context.Context, token *models.RefreshToken) error

	// GetRefreshToken retrieves refresh token record by exact token value.
	// Returns ErrTokenNotFound if the record doesn't exist. Expiry and
	// revocation are reported on the record; callers decide how to fail.
	GetRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error)

	// RotateRefreshToken atomically revokes the record matching oldToken and
	// persists newToken in a single transaction. The revoke is conditional:
	// if the old record is already revoked or expired (e.g. a concurrent
	// rotation won the race), ErrTokenExpiredOrRevoked is returned and
	// newToken is NOT persisted.
	RotateRefreshToken(ctx context.Context, oldToken string, newToken *models.RefreshToken) error

	// RevokeRefreshToken flips the revoked flag for the matching record.
	// Idempotent: revoking an absent or already revoked token is not an error.
	RevokeRefreshToken(ctx context.Context, token string) error

	// RevokeUserTokens revokes every active record owned by the user.
	// Returns the number of records revoked.
	RevokeUserTokens(ctx context.Context, userID string) (int, error)

	// DeleteExpiredTokens removes records whose expiry has passed.
	// Advisory cleanup; validation already checks expiry.
	// Returns number of deleted records.
	DeleteExpiredTokens(ctx context.Context) (int, error)
}

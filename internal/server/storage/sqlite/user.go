package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iudanet/securenotes/internal/models"
	"github.com/iudanet/securenotes/internal/server/storage"
)

// CreateUser creates a new user together with its roles in one transaction
func (s *Storage) CreateUser(ctx context.Context, user *models.User) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO users (id, username, email, password_hash, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`

		_, err := tx.ExecContext(ctx, query,
			user.ID,
			user.Username,
			user.Email,
			user.PasswordHash,
			user.CreatedAt.Unix(),
			user.UpdatedAt.Unix(),
		)

		if err != nil {
			// Проверяем на duplicate email/username
			if strings.Contains(err.Error(), "UNIQUE constraint failed: users.email") {
				return storage.ErrEmailTaken
			}
			if strings.Contains(err.Error(), "UNIQUE constraint failed: users.username") {
				return storage.ErrUsernameTaken
			}
			return fmt.Errorf("failed to insert user: %w", err)
		}

		for _, role := range user.Roles.Strings() {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO user_roles (user_id, role) VALUES (?, ?)`,
				user.ID, role,
			); err != nil {
				return fmt.Errorf("failed to insert user role: %w", err)
			}
		}

		return nil
	})
}

// GetUserByEmail retrieves user by email
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, `email = ?`, email)
}

// GetUserByID retrieves user by ID
func (s *Storage) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	return s.getUser(ctx, `id = ?`, userID)
}

func (s *Storage) getUser(ctx context.Context, where string, arg any) (*models.User, error) {
	query := `
		SELECT id, username, email, password_hash, created_at, updated_at
		FROM users
		WHERE ` + where

	user := &models.User{}
	var createdAt, updatedAt int64

	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	user.CreatedAt = time.Unix(createdAt, 0).UTC()
	user.UpdatedAt = time.Unix(updatedAt, 0).UTC()

	roles, err := s.getUserRoles(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	user.Roles = roles

	return user, nil
}

func (s *Storage) getUserRoles(ctx context.Context, userID string) (models.RoleSet, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT role FROM user_roles WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query user roles: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		names = append(names, name)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return models.RoleSetFromStrings(names), nil
}

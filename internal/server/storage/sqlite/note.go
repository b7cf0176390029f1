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

// CreateNote persists a new note
func (s *Storage) CreateNote(ctx context.Context, note *models.Note) error {
	query := `
		INSERT INTO notes (id, user_id, title, content, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		note.ID,
		note.UserID,
		note.Title,
		note.Content,
		note.CreatedAt.Unix(),
		note.UpdatedAt.Unix(),
	)

	if err != nil {
		return fmt.Errorf("failed to insert note: %w", err)
	}

	return nil
}

// GetUserNotes retrieves all notes owned by the user, newest first
func (s *Storage) GetUserNotes(ctx context.Context, userID string) ([]*models.Note, error) {
	query := `
		SELECT id, user_id, title, content, created_at, updated_at
		FROM notes
		WHERE user_id = ?
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query user notes: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	notes := []*models.Note{}

	for rows.Next() {
		note := &models.Note{}
		var createdAt, updatedAt int64

		if err := rows.Scan(
			&note.ID,
			&note.UserID,
			&note.Title,
			&note.Content,
			&createdAt,
			&updatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}

		note.CreatedAt = time.Unix(createdAt, 0).UTC()
		note.UpdatedAt = time.Unix(updatedAt, 0).UTC()
		notes = append(notes, note)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return notes, nil
}

// GetNote retrieves a note by ID only if it is owned by userID.
// Запрос фильтрует и по id, и по владельцу: чужая и несуществующая
// заметка неразличимы для вызывающего.
func (s *Storage) GetNote(ctx context.Context, noteID, userID string) (*models.Note, error) {
	query := `
		SELECT id, user_id, title, content, created_at, updated_at
		FROM notes
		WHERE id = ? AND user_id = ?
	`

	note := &models.Note{}
	var createdAt, updatedAt int64

	err := s.db.QueryRowContext(ctx, query, noteID, userID).Scan(
		&note.ID,
		&note.UserID,
		&note.Title,
		&note.Content,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNoteNotFound
		}
		return nil, fmt.Errorf("failed to get note: %w", err)
	}

	note.CreatedAt = time.Unix(createdAt, 0).UTC()
	note.UpdatedAt = time.Unix(updatedAt, 0).UTC()

	return note, nil
}

// UpdateNote updates title/content of a note owned by note.UserID
func (s *Storage) UpdateNote(ctx context.Context, note *models.Note) error {
	query := `
		UPDATE notes
		SET title = ?, content = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`

	result, err := s.db.ExecContext(ctx, query,
		note.Title,
		note.Content,
		note.UpdatedAt.Unix(),
		note.ID,
		note.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update note: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return storage.ErrNoteNotFound
	}

	return nil
}

// DeleteNote deletes a note by ID only if it is owned by userID
func (s *Storage) DeleteNote(ctx context.Context, noteID, userID string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM notes WHERE id = ? AND user_id = ?`, noteID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return storage.ErrNoteNotFound
	}

	return nil
}

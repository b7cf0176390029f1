package storage

import (
	"context"

	"github.com/iudanet/securenotes/internal/models"
)

// NoteStorage defines interface for note persistence.
// Every lookup is scoped by both note ID and owner ID: there is no
// unscoped variant a caller could use to bypass ownership checks.
type NoteStorage interface {
	// CreateNote persists a new note
	CreateNote(ctx context.Context, note *models.Note) error

	// GetUserNotes retrieves all notes owned by the user, newest first.
	// Returns empty slice if the user has no notes.
	GetUserNotes(ctx context.Context, userID string) ([]*models.Note, error)

	// GetNote retrieves a note by ID only if it is owned by userID.
	// Returns ErrNoteNotFound if the note is absent or owned by someone else.
	GetNote(ctx context.Context, noteID, userID string) (*models.Note, error)

	// UpdateNote updates title/content of a note owned by note.UserID.
	// Returns ErrNoteNotFound if the note is absent or owned by someone else.
	UpdateNote(ctx context.Context, note *models.Note) error

	// DeleteNote deletes a note by ID only if it is owned by userID.
	// Returns ErrNoteNotFound if the note is absent or owned by someone else.
	DeleteNote(ctx context.Context, noteID, userID string) error
}

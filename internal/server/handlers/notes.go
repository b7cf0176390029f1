package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/securenotes/internal/models"
	"github.com/iudanet/securenotes/internal/server/storage"
	"github.com/iudanet/securenotes/internal/validation"
	"github.com/iudanet/securenotes/pkg/api"
)

// NotesHandler обрабатывает CRUD запросы к заметкам.
// Все запросы к хранилищу ограничены владельцем: заметка другого
// пользователя и несуществующая заметка дают одинаковый 404.
type NotesHandler struct {
	logger *slog.Logger
	notes  storage.NoteStorage
}

// NewNotesHandler создает новый handler для заметок
func NewNotesHandler(logger *slog.Logger, notes storage.NoteStorage) *NotesHandler {
	return &NotesHandler{
		logger: logger,
		notes:  notes,
	}
}

// Create обрабатывает POST /api/notes
func (h *NotesHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		WriteError(h.logger, w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	req, ok := h.decodeNoteRequest(w, r)
	if !ok {
		return
	}

	now := time.Now().UTC()
	note := &models.Note{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     req.Title,
		Content:   req.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.notes.CreateNote(ctx, note); err != nil {
		h.logger.ErrorContext(ctx, "failed to create note", slog.Any("error", err))
		WriteError(h.logger, w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.logger.InfoContext(ctx, "note created",
		slog.String("note_id", note.ID),
		slog.String("user_id", userID))

	WriteJSON(h.logger, w, toNoteResponse(note), http.StatusCreated)
}

// List обрабатывает GET /api/notes
// Возвращает все заметки пользователя, новые первыми
func (h *NotesHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		WriteError(h.logger, w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	notes, err := h.notes.GetUserNotes(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list notes", slog.Any("error", err))
		WriteError(h.logger, w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	resp := make([]api.NoteResponse, 0, len(notes))
	for _, note := range notes {
		resp = append(resp, toNoteResponse(note))
	}

	WriteJSON(h.logger, w, resp, http.StatusOK)
}

// Get обрабатывает GET /api/notes/{id}
func (h *NotesHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		WriteError(h.logger, w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	noteID := r.PathValue("id")

	note, err := h.notes.GetNote(ctx, noteID, userID)
	if err != nil {
		h.writeNoteError(w, r, err)
		return
	}

	WriteJSON(h.logger, w, toNoteResponse(note), http.StatusOK)
}

// Update обрабатывает PUT /api/notes/{id}
func (h *NotesHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		WriteError(h.logger, w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	req, ok := h.decodeNoteRequest(w, r)
	if !ok {
		return
	}

	noteID := r.PathValue("id")

	note, err := h.notes.GetNote(ctx, noteID, userID)
	if err != nil {
		h.writeNoteError(w, r, err)
		return
	}

	note.Title = req.Title
	note.Content = req.Content
	note.UpdatedAt = time.Now().UTC()

	if err := h.notes.UpdateNote(ctx, note); err != nil {
		h.writeNoteError(w, r, err)
		return
	}

	WriteJSON(h.logger, w, toNoteResponse(note), http.StatusOK)
}

// Delete обрабатывает DELETE /api/notes/{id}
func (h *NotesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		WriteError(h.logger, w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	noteID := r.PathValue("id")

	if err := h.notes.DeleteNote(ctx, noteID, userID); err != nil {
		h.writeNoteError(w, r, err)
		return
	}

	h.logger.InfoContext(ctx, "note deleted",
		slog.String("note_id", noteID),
		slog.String("user_id", userID))

	w.WriteHeader(http.StatusNoContent)
}

// decodeNoteRequest парсит и валидирует тело запроса create/update
func (h *NotesHandler) decodeNoteRequest(w http.ResponseWriter, r *http.Request) (api.NoteRequest, bool) {
	var req api.NoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(r.Context(), "failed to decode note request", slog.Any("error", err))
		WriteError(h.logger, w, r, http.StatusBadRequest, "Invalid request body")
		return req, false
	}

	var fieldErrors []api.FieldError
	if err := validation.ValidateNoteTitle(req.Title); err != nil {
		fieldErrors = append(fieldErrors, api.FieldError{Field: "title", Message: err.Error()})
	}
	if err := validation.ValidateNoteContent(req.Content); err != nil {
		fieldErrors = append(fieldErrors, api.FieldError{Field: "content", Message: err.Error()})
	}
	if len(fieldErrors) > 0 {
		WriteValidationError(h.logger, w, r, fieldErrors)
		return req, false
	}

	return req, true
}

func (h *NotesHandler) writeNoteError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, storage.ErrNoteNotFound) {
		// Ответ не различает "нет такой заметки" и "заметка чужая"
		WriteError(h.logger, w, r, http.StatusNotFound, "Note not found")
		return
	}
	h.logger.ErrorContext(r.Context(), "note storage error", slog.Any("error", err))
	WriteError(h.logger, w, r, http.StatusInternalServerError, "Internal server error")
}

func toNoteResponse(note *models.Note) api.NoteResponse {
	return api.NoteResponse{
		ID:        note.ID,
		Title:     note.Title,
		Content:   note.Content,
		CreatedAt: note.CreatedAt,
		UpdatedAt: note.UpdatedAt,
	}
}

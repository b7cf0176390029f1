package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/iudanet/securenotes/internal/models"
	"github.com/iudanet/securenotes/pkg/api"
)

// contextKey тип для ключей контекста
type contextKey string

const (
	// UserIDKey ключ для хранения user_id в контексте
	UserIDKey contextKey = "user_id"
	// EmailKey ключ для хранения email в контексте
	EmailKey contextKey = "email"
	// RolesKey ключ для хранения ролей в контексте
	RolesKey contextKey = "roles"
)

// GetUserID извлекает user_id из контекста запроса
func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok
}

// GetEmail извлекает email из контекста запроса
func GetEmail(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(EmailKey).(string)
	return email, ok
}

// GetRoles извлекает роли из контекста запроса
func GetRoles(ctx context.Context) (models.RoleSet, bool) {
	roles, ok := ctx.Value(RolesKey).(models.RoleSet)
	return roles, ok
}

// WriteJSON отправляет JSON ответ
func WriteJSON(logger *slog.Logger, w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", slog.Any("error", err))
	}
}

// WriteError отправляет ошибку в едином формате API
func WriteError(logger *slog.Logger, w http.ResponseWriter, r *http.Request, statusCode int, message string) {
	resp := api.ErrorResponse{
		Status:    statusCode,
		Error:     http.StatusText(statusCode),
		Message:   message,
		Path:      r.URL.Path,
		Timestamp: time.Now().UTC(),
	}
	WriteJSON(logger, w, resp, statusCode)
}

// WriteValidationError отправляет 400 с пофилдовыми ошибками валидации
func WriteValidationError(logger *slog.Logger, w http.ResponseWriter, r *http.Request, fieldErrors []api.FieldError) {
	resp := api.ErrorResponse{
		Status:      http.StatusBadRequest,
		Error:       "Validation Failed",
		Message:     "Invalid input data",
		Path:        r.URL.Path,
		Timestamp:   time.Now().UTC(),
		FieldErrors: fieldErrors,
	}
	WriteJSON(logger, w, resp, http.StatusBadRequest)
}

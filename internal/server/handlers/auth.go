package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/iudanet/securenotes/internal/models"
	"github.com/iudanet/securenotes/internal/server/auth"
	"github.com/iudanet/securenotes/internal/server/storage"
	"github.com/iudanet/securenotes/internal/validation"
	"github.com/iudanet/securenotes/pkg/api"
)

// SessionService описывает операции жизненного цикла сессий
type SessionService interface {
	Register(ctx context.Context, username, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*auth.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	LogoutAll(ctx context.Context, userID string) (int, error)
}

// AuthHandler обрабатывает запросы авторизации
type AuthHandler struct {
	logger   *slog.Logger
	sessions SessionService
}

// NewAuthHandler создает новый handler для авторизации
func NewAuthHandler(logger *slog.Logger, sessions SessionService) *AuthHandler {
	return &AuthHandler{
		logger:   logger,
		sessions: sessions,
	}
}

// Register обрабатывает POST /auth/register
// Регистрация нового пользователя
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode register request", slog.Any("error", err))
		WriteError(h.logger, w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	// Собираем все ошибки валидации разом, а не первую попавшуюся
	var fieldErrors []api.FieldError
	if err := validation.ValidateUsername(req.Username); err != nil {
		fieldErrors = append(fieldErrors, api.FieldError{Field: "username", Message: err.Error()})
	}
	if err := validation.ValidateEmail(req.Email); err != nil {
		fieldErrors = append(fieldErrors, api.FieldError{Field: "email", Message: err.Error()})
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		fieldErrors = append(fieldErrors, api.FieldError{Field: "password", Message: err.Error()})
	}
	if len(fieldErrors) > 0 {
		h.logger.WarnContext(ctx, "register validation failed", slog.Int("field_errors", len(fieldErrors)))
		WriteValidationError(h.logger, w, r, fieldErrors)
		return
	}

	user, err := h.sessions.Register(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrEmailTaken):
			h.logger.WarnContext(ctx, "register failed: email taken", slog.String("email", req.Email))
			WriteError(h.logger, w, r, http.StatusBadRequest, "Email is already registered")
		case errors.Is(err, storage.ErrUsernameTaken):
			h.logger.WarnContext(ctx, "register failed: username taken", slog.String("username", req.Username))
			WriteError(h.logger, w, r, http.StatusBadRequest, "Username is already taken")
		default:
			h.logger.ErrorContext(ctx, "failed to register user", slog.Any("error", err))
			WriteError(h.logger, w, r, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	WriteJSON(h.logger, w, toUserResponse(user), http.StatusCreated)
}

// Login обрабатывает POST /auth/login
// Аутентификация по email и паролю. Ограничение частоты попыток
// выполняется middleware'ом до этого обработчика.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode login request", slog.Any("error", err))
		WriteError(h.logger, w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	var fieldErrors []api.FieldError
	if err := validation.ValidateEmail(req.Email); err != nil {
		fieldErrors = append(fieldErrors, api.FieldError{Field: "email", Message: err.Error()})
	}
	if req.Password == "" {
		fieldErrors = append(fieldErrors, api.FieldError{Field: "password", Message: "password cannot be empty"})
	}
	if len(fieldErrors) > 0 {
		WriteValidationError(h.logger, w, r, fieldErrors)
		return
	}

	pair, err := h.sessions.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			// Одинаковый ответ для неизвестного email и неверного пароля
			WriteError(h.logger, w, r, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		h.logger.ErrorContext(ctx, "login failed", slog.Any("error", err))
		WriteError(h.logger, w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	WriteJSON(h.logger, w, toAuthResponse(pair), http.StatusOK)
}

// Refresh обрабатывает POST /auth/refresh
// Обмен refresh token'а на новую пару токенов с ротацией
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.RefreshTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode refresh request", slog.Any("error", err))
		WriteError(h.logger, w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.RefreshToken == "" {
		WriteValidationError(h.logger, w, r, []api.FieldError{
			{Field: "refreshToken", Message: "refreshToken cannot be empty"},
		})
		return
	}

	pair, err := h.sessions.Refresh(ctx, req.RefreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrTokenInvalid) {
			WriteError(h.logger, w, r, http.StatusUnauthorized, "Invalid or expired refresh token")
			return
		}
		h.logger.ErrorContext(ctx, "refresh failed", slog.Any("error", err))
		WriteError(h.logger, w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	WriteJSON(h.logger, w, toAuthResponse(pair), http.StatusOK)
}

// Logout обрабатывает POST /auth/logout
// Отзыв одного refresh token'а. Идемпотентен: невалидный или уже
// отозванный токен тоже дает 204.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.RefreshTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode logout request", slog.Any("error", err))
		WriteError(h.logger, w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.RefreshToken == "" {
		WriteValidationError(h.logger, w, r, []api.FieldError{
			{Field: "refreshToken", Message: "refreshToken cannot be empty"},
		})
		return
	}

	if err := h.sessions.Logout(ctx, req.RefreshToken); err != nil {
		h.logger.ErrorContext(ctx, "logout failed", slog.Any("error", err))
		WriteError(h.logger, w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// LogoutAll обрабатывает POST /auth/logout-all
// Отзыв всех refresh tokens пользователя. Требует валидный access token.
func (h *AuthHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		WriteError(h.logger, w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	if _, err := h.sessions.LogoutAll(ctx, userID); err != nil {
		h.logger.ErrorContext(ctx, "logout-all failed", slog.Any("error", err))
		WriteError(h.logger, w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func toUserResponse(user *models.User) api.UserResponse {
	return api.UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Roles:     user.Roles.Strings(),
		CreatedAt: user.CreatedAt,
	}
}

func toAuthResponse(pair *auth.TokenPair) api.AuthResponse {
	return api.AuthResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    pair.ExpiresIn,
	}
}

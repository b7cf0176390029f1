// Package auth composes credential verification, the token codec and the
// refresh token ledger into the session lifecycle: register, login,
// refresh (with rotation), logout and logout-all.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/securenotes/internal/crypto"
	"github.com/iudanet/securenotes/internal/models"
	"github.com/iudanet/securenotes/internal/server/storage"
	"github.com/iudanet/securenotes/internal/server/token"
)

// Ошибки уровня сессий. Conflict'ы хранилища
// (storage.ErrEmailTaken/ErrUsernameTaken) пробрасываются как есть.
var (
	// ErrInvalidCredentials не различает неверный email и неверный пароль
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrTokenInvalid покрывает все причины отказа refresh'а:
	// malformed, просроченный, отозванный или уже ротированный токен
	ErrTokenInvalid = errors.New("refresh token is invalid or expired")
)

// opTimeout ограничивает время операций с ledger'ом и хранилищем
// пользователей в рамках одного вызова сервиса
const opTimeout = 5 * time.Second

// TokenPair результат login/refresh
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64 // время жизни access token в миллисекундах
}

// Service реализует жизненный цикл сессий
type Service struct {
	logger *slog.Logger
	users  storage.UserStorage
	tokens storage.TokenStorage
	codec  *token.Codec
}

// NewService creates a new session service
func NewService(logger *slog.Logger, users storage.UserStorage, tokens storage.TokenStorage, codec *token.Codec) *Service {
	return &Service{
		logger: logger,
		users:  users,
		tokens: tokens,
		codec:  codec,
	}
}

// Register создает нового пользователя с базовой ролью.
// Пароль хешируется bcrypt'ом, в открытом виде никуда не попадает.
// Возвращает storage.ErrEmailTaken / storage.ErrUsernameTaken при конфликте.
func (s *Service) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	passwordHash, err := crypto.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Roles:        models.NewRoleSet(models.RoleUser),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user registered",
		slog.String("user_id", user.ID),
		slog.String("email", email))

	return user, nil
}

// Login проверяет учетные данные и выдает новую пару токенов.
// Ограничение частоты выполняется ДО вызова Login (middleware на маршруте):
// отклоненный bucket не должен доходить до проверки пароля.
func (s *Service) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			s.logger.WarnContext(ctx, "login failed: user not found", slog.String("email", email))
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := crypto.VerifyPassword(password, user.PasswordHash); err != nil {
		s.logger.WarnContext(ctx, "login failed: invalid password",
			slog.String("user_id", user.ID),
			slog.String("email", email))
		return nil, ErrInvalidCredentials
	}

	pair, refreshToken, err := s.issuePair(user)
	if err != nil {
		return nil, err
	}

	record := s.newRecord(user.ID, refreshToken)
	if err := s.tokens.SaveRefreshToken(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to save refresh token: %w", err)
	}

	s.logger.InfoContext(ctx, "user logged in", slog.String("user_id", user.ID))

	return pair, nil
}

// Refresh обменивает валидный refresh token на новую пару.
// Ротация одноразовая: старая запись отзывается атомарно с созданием новой,
// из двух конкурентных refresh'ов одним токеном выигрывает ровно один.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	claims, err := s.codec.Parse(refreshToken, token.KindRefresh)
	if err != nil {
		s.logger.WarnContext(ctx, "refresh failed: token parse error", slog.Any("error", err))
		return nil, ErrTokenInvalid
	}

	record, err := s.tokens.GetRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, storage.ErrTokenNotFound) {
			s.logger.WarnContext(ctx, "refresh failed: token not in ledger",
				slog.String("user_id", claims.UserID))
			return nil, ErrTokenInvalid
		}
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}

	if !record.Active(time.Now()) {
		// Предъявление отозванного токена — сигнал возможной компрометации
		s.logger.WarnContext(ctx, "refresh failed: revoked or expired token presented",
			slog.String("user_id", record.UserID),
			slog.Bool("revoked", record.Revoked))
		return nil, ErrTokenInvalid
	}

	// Роли перечитываются из хранилища, а не из старых claims
	user, err := s.users.GetUserByID(ctx, record.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, ErrTokenInvalid
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	pair, newRefreshToken, err := s.issuePair(user)
	if err != nil {
		return nil, err
	}

	newRecord := s.newRecord(user.ID, newRefreshToken)
	if err := s.tokens.RotateRefreshToken(ctx, refreshToken, newRecord); err != nil {
		if errors.Is(err, storage.ErrTokenExpiredOrRevoked) {
			// Конкурентная ротация победила
			s.logger.WarnContext(ctx, "refresh failed: lost rotation race",
				slog.String("user_id", user.ID))
			return nil, ErrTokenInvalid
		}
		return nil, fmt.Errorf("failed to rotate refresh token: %w", err)
	}

	s.logger.DebugContext(ctx, "tokens refreshed", slog.String("user_id", user.ID))

	return pair, nil
}

// Logout отзывает один refresh token.
// Идемпотентен и всегда успешен для невалидного токена: неаутентифицированный
// вызывающий не должен узнать, был ли токен действителен.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if err := s.tokens.RevokeRefreshToken(ctx, refreshToken); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}

	s.logger.DebugContext(ctx, "refresh token revoked on logout")

	return nil
}

// LogoutAll отзывает все активные refresh tokens пользователя.
// userID получен Access Guard'ом из валидного access token'а.
func (s *Service) LogoutAll(ctx context.Context, userID string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	count, err := s.tokens.RevokeUserTokens(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to revoke user tokens: %w", err)
	}

	s.logger.InfoContext(ctx, "user logged out from all devices",
		slog.String("user_id", userID),
		slog.Int("tokens_revoked", count))

	return count, nil
}

// PurgeExpired удаляет просроченные записи ledger'а (фоновая очистка)
func (s *Service) PurgeExpired(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	return s.tokens.DeleteExpiredTokens(ctx)
}

func (s *Service) issuePair(user *models.User) (*TokenPair, string, error) {
	accessToken, err := s.codec.IssueAccess(user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue access token: %w", err)
	}

	refreshToken, err := s.codec.IssueRefresh(user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue refresh token: %w", err)
	}

	pair := &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    s.codec.AccessTTL().Milliseconds(),
	}

	return pair, refreshToken, nil
}

func (s *Service) newRecord(userID, refreshToken string) *models.RefreshToken {
	now := time.Now().UTC()
	return &models.RefreshToken{
		ID:        uuid.New().String(),
		UserID:    userID,
		Token:     refreshToken,
		ExpiresAt: now.Add(s.codec.RefreshTTL()),
		CreatedAt: now,
	}
}

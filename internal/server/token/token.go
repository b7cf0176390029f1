package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/iudanet/securenotes/internal/models"
)

// Kind различает назначение токена: access или refresh.
// Токен одного вида никогда не принимается там, где ожидается другой.
type Kind string

const (
	// KindAccess короткоживущий токен для авторизации запросов
	KindAccess Kind = "access"
	// KindRefresh долгоживущий токен для обмена на новую пару
	KindRefresh Kind = "refresh"
)

// MinSecretLen минимальная длина ключа подписи в байтах (256 бит)
const MinSecretLen = 32

// Ошибки разбора токена. Различимы для аудита, но наружу
// все отображаются одинаковым 401.
var (
	ErrTokenMalformed   = errors.New("token is malformed")
	ErrTokenSignature   = errors.New("token signature is invalid")
	ErrTokenExpired     = errors.New("token is expired")
	ErrUnexpectedKind   = errors.New("unexpected token kind")
	ErrTokenInvalid     = errors.New("token is invalid")
	ErrSecretTooShort   = errors.New("signing secret must be at least 32 bytes")
	ErrUnexpectedMethod = errors.New("unexpected signing method")
)

// Claims представляет JWT claims приложения
type Claims struct {
	UserID string   `json:"userId"`
	Roles  []string `json:"roles,omitempty"`
	Type   Kind     `json:"type"`
	jwt.RegisteredClaims
}

// Codec создает и разбирает подписанные токены.
// Не имеет изменяемого состояния, безопасен для конкурентного использования.
type Codec struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewCodec creates a token codec.
// secret must carry at least 256 bits of entropy.
func NewCodec(secret []byte, accessTTL, refreshTTL time.Duration) (*Codec, error) {
	if len(secret) < MinSecretLen {
		return nil, ErrSecretTooShort
	}

	return &Codec{
		secret:     secret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}, nil
}

// AccessTTL returns the configured access token lifetime.
func (c *Codec) AccessTTL() time.Duration {
	return c.accessTTL
}

// RefreshTTL returns the configured refresh token lifetime.
func (c *Codec) RefreshTTL() time.Duration {
	return c.refreshTTL
}

// IssueAccess создает access token для пользователя.
// Claims: subject = email, userId, roles, type = access.
func (c *Codec) IssueAccess(user *models.User) (string, error) {
	return c.issue(user, KindAccess, user.Roles.Strings(), c.accessTTL)
}

// IssueRefresh создает refresh token для пользователя.
// Роли в refresh token не включаются: они перечитываются при ротации.
func (c *Codec) IssueRefresh(user *models.User) (string, error) {
	return c.issue(user, KindRefresh, nil, c.refreshTTL)
}

func (c *Codec) issue(user *models.User, kind Kind, roles []string, ttl time.Duration) (string, error) {
	now := time.Now()

	claims := Claims{
		UserID: user.ID,
		Roles:  roles,
		Type:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			// jti гарантирует уникальность токена даже при выпуске
			// двух токенов с одинаковыми claims в одну секунду
			ID:        uuid.New().String(),
			Subject:   user.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    "securenotes",
		},
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// Parse валидирует подпись и срок действия токена и проверяет его вид.
// Возвращает различимые ошибки: ErrTokenMalformed, ErrTokenSignature,
// ErrTokenExpired, ErrUnexpectedKind.
func (c *Codec) Parse(tokenString string, kind Kind) (*Claims, error) {
	claims := &Claims{}

	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%w: %v", ErrUnexpectedMethod, t.Header["alg"])
		}
		return c.secret, nil
	})

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrTokenMalformed
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrTokenSignature
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		default:
			return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
		}
	}

	if !parsed.Valid {
		return nil, ErrTokenInvalid
	}

	if claims.Type != kind {
		return nil, ErrUnexpectedKind
	}

	return claims, nil
}

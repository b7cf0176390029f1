package api

import "time"

// RegisterRequest представляет запрос на регистрацию нового пользователя
type RegisterRequest struct {
	Username string `json:"username"` // отображаемое имя
	Email    string `json:"email"`    // login пользователя
	Password string `json:"password"` // пароль в открытом виде, передается только по TLS
}

// UserResponse представляет публичное представление пользователя
// Никогда не содержит пароль или его хеш
type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"createdAt"`
}

// LoginRequest представляет запрос на аутентификацию
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse представляет ответ с парой токенов
type AuthResponse struct {
	AccessToken  string `json:"accessToken"`  // JWT access token
	RefreshToken string `json:"refreshToken"` // JWT refresh token
	TokenType    string `json:"tokenType"`    // всегда "Bearer"
	ExpiresIn    int64  `json:"expiresIn"`    // время жизни access token в миллисекундах
}

// RefreshTokenRequest представляет запрос refresh/logout с refresh token'ом
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

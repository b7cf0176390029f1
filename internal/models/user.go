package models

import (
	"sort"
	"time"
)

// Role представляет роль пользователя в системе.
// Закрытый набор значений: RoleUser, RoleAdmin.
type Role string

const (
	// RoleUser базовая роль, назначается каждому пользователю при регистрации
	RoleUser Role = "ROLE_USER"
	// RoleAdmin роль администратора
	RoleAdmin Role = "ROLE_ADMIN"
)

// Valid reports whether the role belongs to the closed role set.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// RoleSet is a set of roles: unique membership, order-independent.
type RoleSet map[Role]struct{}

// NewRoleSet creates a RoleSet from the given roles.
// Invalid roles are dropped.
func NewRoleSet(roles ...Role) RoleSet {
	s := make(RoleSet, len(roles))
	for _, r := range roles {
		s.Add(r)
	}
	return s
}

// RoleSetFromStrings rebuilds a RoleSet from serialized role names
// (token claims, DB rows). Unknown names are dropped.
func RoleSetFromStrings(names []string) RoleSet {
	s := make(RoleSet, len(names))
	for _, n := range names {
		s.Add(Role(n))
	}
	return s
}

// Add inserts a role into the set. Invalid roles are ignored.
func (s RoleSet) Add(r Role) {
	if r.Valid() {
		s[r] = struct{}{}
	}
}

// Has reports whether the set contains the role.
func (s RoleSet) Has(r Role) bool {
	_, ok := s[r]
	return ok
}

// Strings returns sorted role names for serialization.
func (s RoleSet) Strings() []string {
	names := make([]string, 0, len(s))
	for r := range s {
		names = append(names, string(r))
	}
	sort.Strings(names)
	return names
}

// User представляет пользователя в системе
type User struct {
	ID           string    `json:"id"`       // UUID пользователя
	Username     string    `json:"username"` // отображаемое имя, уникальное
	Email        string    `json:"email"`    // login пользователя, уникальный
	PasswordHash string    `json:"-"`        // bcrypt хеш пароля, никогда не сериализуется
	Roles        RoleSet   `json:"roles"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RefreshToken представляет запись refresh token'а в ledger
type RefreshToken struct {
	ID        string    `json:"id"`      // UUID записи
	UserID    string    `json:"user_id"` // владелец
	Token     string    `json:"-"`       // значение токена, уникальное
	ExpiresAt time.Time `json:"expires_at"`
	Revoked   bool      `json:"revoked"`
	CreatedAt time.Time `json:"created_at"`
}

// Active reports whether the record may still satisfy validation:
// not revoked and not past its expiry instant.
func (t *RefreshToken) Active(now time.Time) bool {
	return !t.Revoked && now.Before(t.ExpiresAt)
}

package validation

import (
	"fmt"
	"regexp"
)

// UsernamePattern определяет допустимый формат username
// Только латинские буквы (a-z, A-Z), цифры (0-9), нижнее подчеркивание (_)
// Длина: 3-32 символа
var UsernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,32}$`)

// EmailPattern грубая проверка формата email: local@domain.tld
var EmailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

const (
	// MinUsernameLen минимальная длина username
	MinUsernameLen = 3
	// MaxUsernameLen максимальная длина username
	MaxUsernameLen = 32
	// MinPasswordLen минимальная длина пароля
	MinPasswordLen = 8
	// MaxPasswordLen максимальная длина пароля (ограничение bcrypt — 72 байта)
	MaxPasswordLen = 72
	// MaxNoteTitleLen максимальная длина заголовка заметки
	MaxNoteTitleLen = 200
	// MaxNoteContentLen максимальная длина содержимого заметки
	MaxNoteContentLen = 10000
)

// ValidateUsername проверяет, что username соответствует требованиям
// Формат: только латинские буквы (a-z, A-Z), цифры (0-9), нижнее подчеркивание (_)
// Длина: 3-32 символа
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("username cannot be empty")
	}

	if len(username) < MinUsernameLen {
		return fmt.Errorf("username must be at least %d characters long", MinUsernameLen)
	}

	if len(username) > MaxUsernameLen {
		return fmt.Errorf("username must not exceed %d characters", MaxUsernameLen)
	}

	if !UsernamePattern.MatchString(username) {
		return fmt.Errorf("username can only contain letters (a-z, A-Z), numbers (0-9), and underscores (_)")
	}

	return nil
}

// ValidateEmail проверяет базовый формат email
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email cannot be empty")
	}

	if len(email) > 254 {
		return fmt.Errorf("email must not exceed 254 characters")
	}

	if !EmailPattern.MatchString(email) {
		return fmt.Errorf("email must be a valid email address")
	}

	return nil
}

// ValidatePassword проверяет минимальные требования к паролю
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("password cannot be empty")
	}

	if len(password) < MinPasswordLen {
		return fmt.Errorf("password must be at least %d characters long", MinPasswordLen)
	}

	if len(password) > MaxPasswordLen {
		return fmt.Errorf("password must not exceed %d characters", MaxPasswordLen)
	}

	return nil
}

// ValidateNoteTitle проверяет заголовок заметки: обязателен, до 200 символов
func ValidateNoteTitle(title string) error {
	if title == "" {
		return fmt.Errorf("title is required")
	}

	if len(title) > MaxNoteTitleLen {
		return fmt.Errorf("title must not exceed %d characters", MaxNoteTitleLen)
	}

	return nil
}

// ValidateNoteContent проверяет содержимое заметки: до 10000 символов
func ValidateNoteContent(content string) error {
	if len(content) > MaxNoteContentLen {
		return fmt.Errorf("content must not exceed %d characters", MaxNoteContentLen)
	}

	return nil
}

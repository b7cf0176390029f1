package models

import "time"

// Note представляет заметку пользователя.
// Все операции над заметками проверяют владельца на уровне запроса к БД.
type Note struct {
	ID        string    `json:"id"`      // UUID заметки
	UserID    string    `json:"user_id"` // владелец
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

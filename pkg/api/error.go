package api

import "time"

// FieldError описывает ошибку валидации конкретного поля запроса
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorResponse представляет единый формат ошибки API
// Тело 404 одинаково для "не существует" и "чужой ресурс"
type ErrorResponse struct {
	Status      int          `json:"status"`
	Error       string       `json:"error"`
	Message     string       `json:"message"`
	Path        string       `json:"path"`
	Timestamp   time.Time    `json:"timestamp"`
	FieldErrors []FieldError `json:"fieldErrors,omitempty"`
}
